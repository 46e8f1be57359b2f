package ws

import "encoding/json"

// Frame is an inbound client frame. Payload fields are opaque base64
// ciphertext the server relays without inspection.
type Frame struct {
	Type      string `json:"type"`
	Encrypted string `json:"encrypted,omitempty"`
	IV        string `json:"iv,omitempty"`
	Data      string `json:"data,omitempty"`
	DataIV    string `json:"dataIv,omitempty"`
	Meta      string `json:"meta,omitempty"`
	MetaIV    string `json:"metaIv,omitempty"`
}

// ParseFrame decodes and validates an inbound frame. A false return means
// the frame is malformed and must be dropped silently; malformed input
// never terminates the connection or the room.
func ParseFrame(raw []byte) (*Frame, bool) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, false
	}

	switch f.Type {
	case FrameMessage:
		if f.Encrypted == "" || f.IV == "" {
			return nil, false
		}
	case FrameFile:
		if f.Data == "" || f.DataIV == "" || f.Meta == "" || f.MetaIV == "" {
			return nil, false
		}
	case FrameTyping, FrameDestroy:
		// no payload
	default:
		return nil, false
	}

	return &f, true
}
