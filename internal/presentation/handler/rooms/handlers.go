package rooms

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/tmarcken/hushroom/internal/domain"
	"github.com/tmarcken/hushroom/internal/infrastructure/json"
	"github.com/tmarcken/hushroom/internal/infrastructure/logging"
	"github.com/tmarcken/hushroom/internal/infrastructure/ws"
	"rsc.io/qr"
)

const maxQRContentLength = 512

type Handler struct {
	registry *ws.Registry
	upgrader *websocket.Upgrader
	logger   logging.Logger
}

func NewHandler(registry *ws.Registry, upgrader *websocket.Upgrader, logger logging.Logger) *Handler {
	return &Handler{
		registry: registry,
		upgrader: upgrader,
		logger:   logger,
	}
}

// JoinRoomHandler upgrades the request and runs room admission. The join
// request carries the room name in the path and the password proof, the
// password intent, and the TTL preference as query parameters. The
// password proof is a hash computed client-side; the server never sees a
// plaintext password or a decryption key.
func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "roomName")

	query := r.URL.Query()
	passwordHash := query.Get("password")
	wantPassword, _ := strconv.ParseBool(query.Get("withPassword"))
	ttlMinutes, _ := strconv.Atoi(query.Get("ttl"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debugf("websocket upgrade failed for room %q: %v", roomName, err)
		return
	}

	if err := domain.ValidateRoomName(roomName); err != nil {
		ws.CloseWithCode(conn, ws.CloseInvalidRoomName, "invalid room name")
		return
	}

	client, err := h.registry.Admit(conn, ws.AdmitRequest{
		RoomName:     roomName,
		PasswordHash: passwordHash,
		WantPassword: wantPassword,
		TTL:          time.Duration(ttlMinutes) * time.Minute,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuthFailed):
			ws.RejectAuth(conn, "incorrect room password")
		case errors.Is(err, domain.ErrInvalidRoomName):
			ws.CloseWithCode(conn, ws.CloseInvalidRoomName, "invalid room name")
		default:
			_ = conn.Close()
		}
		return
	}

	go client.WritePump(h.registry)
	go client.ReadPump(h.registry)
}

// RoomInfoHandler is a read-only lookup used by the landing page to show
// whether a room exists and is password-gated before joining.
func (h *Handler) RoomInfoHandler(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "roomName")
	if err := domain.ValidateRoomName(roomName); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	info := h.registry.Info(roomName)

	json.Write(w, http.StatusOK, roomInfoResponse{
		Exists:       info.Exists,
		HasPassword:  info.HasPassword,
		Participants: info.Participants,
	})
}

// QRCodeHandler renders a PNG QR code for a room URL so one participant
// can hand the room to another device.
func (h *Handler) QRCodeHandler(w http.ResponseWriter, r *http.Request) {
	roomURL := r.URL.Query().Get("url")
	if roomURL == "" {
		json.WriteBadRequestError(w, "url query parameter is required")
		return
	}
	if len(roomURL) > maxQRContentLength {
		json.WriteBadRequestError(w, "url is too long to encode")
		return
	}

	code, err := qr.Encode(roomURL, qr.M)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	png := code.PNG()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = bytes.NewReader(png).WriteTo(w)
}
