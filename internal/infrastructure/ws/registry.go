package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tmarcken/hushroom/internal/domain"
	"github.com/tmarcken/hushroom/internal/infrastructure/logging"
	"github.com/tmarcken/hushroom/internal/infrastructure/metrics"
)

const defaultDestroyGraceDelay = 2500 * time.Millisecond

// Registry is the process-wide room store. Empty at startup; rooms are
// created lazily on first reference and destroyed on expiry, emptiness,
// or manual teardown. One mutex serializes every registry mutation,
// membership change, and broadcast snapshot, reproducing the serialized
// execution the relay semantics assume.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	logger        logging.Logger
	metrics       *metrics.Metrics
	graceDelay    time.Duration
	maxFrameBytes int64
}

type Options struct {
	// DestroyGraceDelay is how long after a manual destroy notice the
	// sockets stay open. Empirical constant, kept configurable.
	DestroyGraceDelay time.Duration
	MaxFrameBytes     int64
}

func NewRegistry(logger logging.Logger, m *metrics.Metrics, opts Options) *Registry {
	if opts.DestroyGraceDelay <= 0 {
		opts.DestroyGraceDelay = defaultDestroyGraceDelay
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = 50 * 1024 * 1024
	}

	return &Registry{
		rooms:         make(map[string]*Room),
		logger:        logger,
		metrics:       m,
		graceDelay:    opts.DestroyGraceDelay,
		maxFrameBytes: opts.MaxFrameBytes,
	}
}

// AdmitRequest carries what an inbound join supplies: the room name, a
// password-proof hash, whether the joiner wants a new room to be
// password-gated, and a TTL preference. Password and TTL only take effect
// when this join materializes the room.
type AdmitRequest struct {
	RoomName     string
	PasswordHash string
	WantPassword bool
	TTL          time.Duration
}

// Admit runs the admission state machine for an upgraded connection:
// resolve or materialize the room, check the password gate, assign a
// codename, record membership, queue the private init event, and
// broadcast the join to everyone else. A failed attempt leaves the room
// and its membership untouched.
func (g *Registry) Admit(conn *websocket.Conn, req AdmitRequest) (*Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	passwordHash := ""
	if req.WantPassword {
		passwordHash = req.PasswordHash
	}

	room, created, err := g.getOrCreateLocked(req.RoomName, passwordHash, req.TTL)
	if err != nil {
		g.metrics.JoinsRejected.WithLabelValues("invalid_name").Inc()
		return nil, err
	}

	if !created && room.HasPassword() && req.PasswordHash != room.settings.PasswordHash {
		g.metrics.JoinsRejected.WithLabelValues("auth").Inc()
		return nil, domain.ErrAuthFailed
	}

	client := newClient(conn)
	client.room = room
	client.Codename = assignCodename(room.usedCodenames)
	room.members[client] = client.Codename
	g.metrics.ActiveConnections.Inc()

	g.sendLocked(client, NewInit(
		client.Codename,
		len(room.members),
		room.CreatedAt(),
		room.ExpiresAt(),
		room.HasPassword(),
	))
	g.broadcastLocked(room, NewJoin(client.Codename, len(room.members)), client)

	g.logger.Info(logging.Relay, logging.Membership, "member joined", map[logging.ExtraKey]any{
		logging.RoomName:     room.Name(),
		logging.Codename:     client.Codename,
		logging.ClientID:     client.ID,
		logging.Participants: len(room.members),
	})

	return client, nil
}

// GetOrCreate resolves an existing room unchanged, or atomically
// materializes one with the supplied settings. Two concurrent first
// reference attempts for the same unseen name converge on a single Room
// instance. Password and TTL are ignored when the room already exists;
// whoever connects first to an unseen name fixes both for its lifetime.
func (g *Registry) GetOrCreate(name, passwordHash string, ttl time.Duration) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, _, err := g.getOrCreateLocked(name, passwordHash, ttl)
	return room, err
}

func (g *Registry) getOrCreateLocked(name, passwordHash string, ttl time.Duration) (*Room, bool, error) {
	if room, exists := g.rooms[name]; exists {
		return room, false, nil
	}

	settings, err := domain.NewRoom(name, passwordHash, ttl)
	if err != nil {
		return nil, false, err
	}

	room := newRoom(settings)
	room.expiry = time.AfterFunc(time.Until(settings.ExpiresAt), func() {
		g.expire(room)
	})
	g.rooms[name] = room
	g.metrics.ActiveRooms.Inc()

	g.logger.Info(logging.Relay, logging.RoomLifecycle, "room created", map[logging.ExtraKey]any{
		logging.RoomName: room.Name(),
		"ttl":            settings.TTL.String(),
		"hasPassword":    settings.HasPassword(),
	})

	return room, true, nil
}

// Get is a pure lookup with no side effects.
func (g *Registry) Get(name string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[name]
	return room, ok
}

// RoomInfo is the read-only lookup consumed by the room-info endpoint.
type RoomInfo struct {
	Exists       bool
	HasPassword  bool
	Participants int
}

func (g *Registry) Info(name string) RoomInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[name]
	if !ok {
		return RoomInfo{}
	}

	return RoomInfo{
		Exists:       true,
		HasPassword:  room.HasPassword(),
		Participants: len(room.members),
	}
}

// Participants reports the current member count of a room.
func (g *Registry) Participants(room *Room) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(room.members)
}

// Relay fans a validated inbound frame out to every other member of the
// sender's room, stamped with the sender's codename and a server
// timestamp. The payload stays opaque end to end.
func (g *Registry) Relay(c *Client, frame *Frame) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room := c.room
	if room == nil || room.destroyed {
		return
	}
	if _, member := room.members[c]; !member {
		return
	}

	now := time.Now()

	switch frame.Type {
	case FrameMessage:
		g.broadcastLocked(room, NewMessage(c.Codename, frame, now), c)
	case FrameFile:
		g.broadcastLocked(room, NewFile(c.Codename, frame, now), c)
	case FrameTyping:
		g.broadcastLocked(room, NewTyping(c.Codename), c)
	default:
		return
	}

	g.metrics.RelayedEvents.WithLabelValues(frame.Type).Inc()
}

// Leave runs disconnect cleanup: membership removal, codename release, a
// leave broadcast, and a synchronous destroy when the room empties. Safe
// to call more than once per client.
func (g *Registry) Leave(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room := c.room
	if room == nil || room.destroyed {
		return
	}

	codename, member := room.members[c]
	if !member {
		return
	}

	delete(room.members, c)
	releaseCodename(room.usedCodenames, codename)
	close(c.send)
	g.metrics.ActiveConnections.Dec()

	if len(room.members) == 0 {
		g.destroyLocked(room, "emptied")
		return
	}

	g.broadcastLocked(room, NewLeave(codename, len(room.members)), nil)

	g.logger.Info(logging.Relay, logging.Membership, "member left", map[logging.ExtraKey]any{
		logging.RoomName:     room.Name(),
		logging.Codename:     codename,
		logging.Participants: len(room.members),
	})
}

// Destroy tears a room down immediately. Idempotent: destroying an absent
// name is a no-op.
func (g *Registry) Destroy(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[name]; ok {
		g.destroyLocked(room, "destroyed")
	}
}

// ManualDestroy broadcasts a distinguished destroyed notice to every
// member first, then schedules the actual teardown after the grace delay
// so clients can render a closing transition before their socket drops.
// Any member may trigger it; repeat triggers while one is pending are
// no-ops.
func (g *Registry) ManualDestroy(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[name]
	if !ok || room.manualPending {
		return
	}

	room.manualPending = true
	g.broadcastLocked(room, NewDestroyed(true), nil)

	room.grace = time.AfterFunc(g.graceDelay, func() {
		g.teardown(room, "manual")
	})

	g.logger.Info(logging.Relay, logging.RoomLifecycle, "manual destroy scheduled", map[logging.ExtraKey]any{
		logging.RoomName: room.Name(),
		"graceDelay":     g.graceDelay.String(),
	})
}

// expire is the TTL timer callback. It re-validates that the room still
// exists under its name before acting, so a timer outliving its room is a
// safe no-op.
func (g *Registry) expire(room *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rooms[room.Name()] != room || room.destroyed {
		return
	}

	if !room.manualPending {
		g.broadcastLocked(room, NewDestroyed(false), nil)
	}
	g.destroyLocked(room, "expired")
}

// teardown finishes a scheduled manual destroy, unless the room was
// already destroyed (or replaced) through another path.
func (g *Registry) teardown(room *Room, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rooms[room.Name()] != room || room.destroyed {
		return
	}
	g.destroyLocked(room, reason)
}

// destroyLocked removes the room from the registry, cancels its timers,
// and releases every member connection. Closing the send queue lets each
// write pump flush queued events (the destroyed notice included) before
// closing the socket. Caller holds the lock.
func (g *Registry) destroyLocked(room *Room, reason string) {
	room.destroyed = true
	room.stopTimers()
	delete(g.rooms, room.Name())

	for client := range room.members {
		delete(room.members, client)
		close(client.send)
		g.metrics.ActiveConnections.Dec()
	}
	room.usedCodenames = make(map[string]struct{})

	g.metrics.ActiveRooms.Dec()
	g.metrics.RoomsDestroyed.WithLabelValues(reason).Inc()

	g.logger.Info(logging.Relay, logging.RoomLifecycle, "room destroyed", map[logging.ExtraKey]any{
		logging.RoomName: room.Name(),
		"reason":         reason,
	})
}

// sendLocked queues a private event for one client.
func (g *Registry) sendLocked(c *Client, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	g.enqueueLocked(c, payload)
}

// broadcastLocked serializes the event once and queues the identical
// bytes for every member except exclude. A slow or broken recipient is
// skipped; per-recipient failures never abort the fan-out.
func (g *Registry) broadcastLocked(room *Room, event any, exclude *Client) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range room.members {
		if client == exclude {
			continue
		}
		g.enqueueLocked(client, payload)
	}
}

func (g *Registry) enqueueLocked(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		// Client is too slow; drop rather than stall the room.
		g.logger.Warn(logging.Relay, logging.Broadcast, "send buffer full, dropping event", map[logging.ExtraKey]any{
			logging.ClientID: c.ID,
			logging.Codename: c.Codename,
		})
	}
}
