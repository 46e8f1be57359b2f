package rooms

// roomInfoResponse is the read-only lookup for a room name
type roomInfoResponse struct {
	Exists       bool `json:"exists"`       // Whether the room currently exists
	HasPassword  bool `json:"hasPassword"`  // Whether joining requires a password proof
	Participants int  `json:"participants"` // Current member count
}
