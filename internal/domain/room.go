package domain

import (
	"errors"
	"time"

	"github.com/tmarcken/hushroom/internal/infrastructure/validate"
)

const MaxRoomNameLength = 64

// DefaultTTL applies when a creator supplies no lifespan or one outside
// the allow-list.
const DefaultTTL = 10 * time.Minute

// ttlChoices is the fixed allow-list of room lifespans a creator may pick.
var ttlChoices = []time.Duration{
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
}

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidRoomName = errors.New("invalid room name")
	ErrAuthFailed      = errors.New("room authentication failed")
	ErrRoomDestroyed   = errors.New("room destroyed")
)

var roomNameValidator = validate.Field("room name",
	validate.Required(),
	validate.MaxLength(MaxRoomNameLength),
)

// Room carries the immutable settings fixed by whoever first materializes
// a room name. Live membership is tracked separately by the relay.
type Room struct {
	Name         string
	CreatedAt    time.Time
	TTL          time.Duration
	ExpiresAt    time.Time
	PasswordHash string
}

// NewRoom fixes a room's settings for its entire lifetime. The password
// hash is opaque to the server; an empty hash means the room is open.
func NewRoom(name, passwordHash string, ttl time.Duration) (*Room, error) {
	if err := ValidateRoomName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ttl = NormalizeTTL(ttl)

	return &Room{
		Name:         name,
		CreatedAt:    now,
		TTL:          ttl,
		ExpiresAt:    now.Add(ttl),
		PasswordHash: passwordHash,
	}, nil
}

func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}

func ValidateRoomName(name string) error {
	if err := roomNameValidator(name); err != nil {
		return errors.Join(ErrInvalidRoomName, err)
	}
	return nil
}

// NormalizeTTL maps anything outside the allow-list to the default.
func NormalizeTTL(ttl time.Duration) time.Duration {
	for _, choice := range ttlChoices {
		if ttl == choice {
			return ttl
		}
	}
	return DefaultTTL
}
