package ws

import "time"

type InitEvent struct {
	Type         string `json:"type"`
	Codename     string `json:"codename"`
	Participants int    `json:"participants"`
	CreatedAt    string `json:"createdAt"`
	ExpiresAt    string `json:"expiresAt"`
	HasPassword  bool   `json:"hasPassword"`
}

type PresenceEvent struct {
	Type         string `json:"type"`
	Codename     string `json:"codename"`
	Participants int    `json:"participants"`
}

type MessageEvent struct {
	Type      string `json:"type"`
	Codename  string `json:"codename"`
	Encrypted string `json:"encrypted"`
	IV        string `json:"iv"`
	Timestamp string `json:"timestamp"`
}

type FileEvent struct {
	Type      string `json:"type"`
	Codename  string `json:"codename"`
	Data      string `json:"data"`
	DataIV    string `json:"dataIv"`
	Meta      string `json:"meta"`
	MetaIV    string `json:"metaIv"`
	Timestamp string `json:"timestamp"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	Codename string `json:"codename"`
}

type AuthErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type DestroyedEvent struct {
	Type   string `json:"type"`
	Manual bool   `json:"manual"`
}

func NewInit(codename string, participants int, createdAt, expiresAt time.Time, hasPassword bool) InitEvent {
	return InitEvent{
		Type:         EventInit,
		Codename:     codename,
		Participants: participants,
		CreatedAt:    createdAt.UTC().Format(time.RFC3339),
		ExpiresAt:    expiresAt.UTC().Format(time.RFC3339),
		HasPassword:  hasPassword,
	}
}

func NewJoin(codename string, participants int) PresenceEvent {
	return PresenceEvent{
		Type:         EventJoin,
		Codename:     codename,
		Participants: participants,
	}
}

func NewLeave(codename string, participants int) PresenceEvent {
	return PresenceEvent{
		Type:         EventLeave,
		Codename:     codename,
		Participants: participants,
	}
}

func NewMessage(codename string, frame *Frame, now time.Time) MessageEvent {
	return MessageEvent{
		Type:      EventMessage,
		Codename:  codename,
		Encrypted: frame.Encrypted,
		IV:        frame.IV,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

func NewFile(codename string, frame *Frame, now time.Time) FileEvent {
	return FileEvent{
		Type:      EventFile,
		Codename:  codename,
		Data:      frame.Data,
		DataIV:    frame.DataIV,
		Meta:      frame.Meta,
		MetaIV:    frame.MetaIV,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

func NewTyping(codename string) TypingEvent {
	return TypingEvent{
		Type:     EventTyping,
		Codename: codename,
	}
}

func NewAuthError(message string) AuthErrorEvent {
	return AuthErrorEvent{
		Type:    EventAuthError,
		Message: message,
	}
}

func NewDestroyed(manual bool) DestroyedEvent {
	return DestroyedEvent{
		Type:   EventDestroyed,
		Manual: manual,
	}
}
