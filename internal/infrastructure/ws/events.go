package ws

// Server → client event types, one JSON object per frame.
const (
	EventInit      = "init"
	EventJoin      = "join"
	EventLeave     = "leave"
	EventMessage   = "message"
	EventFile      = "file"
	EventTyping    = "typing"
	EventAuthError = "auth_error"
	EventDestroyed = "destroyed"
)

// Client → server frame types. message/file/typing are relayed; destroy
// triggers a manual room teardown.
const (
	FrameMessage = "message"
	FrameFile    = "file"
	FrameTyping  = "typing"
	FrameDestroy = "destroy"
)

// Fatal close codes in the application range, distinct so clients can
// branch their recovery UI without parsing close reason text.
const (
	CloseInvalidRoomName = 4001
	CloseAuthFailed      = 4003
)
