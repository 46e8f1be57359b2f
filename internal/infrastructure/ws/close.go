package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

// CloseWithCode sends a close frame with an application close code and
// drops the connection. Best-effort: a broken transport is ignored.
func CloseWithCode(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = conn.Close()
}

// RejectAuth sends the explicit authentication-failure notice required
// before the fatal close, then closes with the distinguishable code.
func RejectAuth(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(NewAuthError(message))
	CloseWithCode(conn, CloseAuthFailed, "authentication failed")
}
