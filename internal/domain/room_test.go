package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	room, err := NewRoom("ops-standup", "abc123", 15*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "ops-standup", room.Name)
	assert.Equal(t, 15*time.Minute, room.TTL)
	assert.Equal(t, room.CreatedAt.Add(15*time.Minute), room.ExpiresAt)
	assert.True(t, room.HasPassword())
}

func TestNewRoomOpenWhenHashEmpty(t *testing.T) {
	room, err := NewRoom("lobby", "", 0)
	require.NoError(t, err)

	assert.False(t, room.HasPassword())
}

func TestNewRoomRejectsInvalidName(t *testing.T) {
	_, err := NewRoom("", "", 0)
	assert.ErrorIs(t, err, ErrInvalidRoomName)

	_, err = NewRoom(strings.Repeat("x", MaxRoomNameLength+1), "", 0)
	assert.ErrorIs(t, err, ErrInvalidRoomName)
}

func TestValidateRoomName(t *testing.T) {
	assert.NoError(t, ValidateRoomName("room-1"))
	assert.NoError(t, ValidateRoomName(strings.Repeat("x", MaxRoomNameLength)))

	assert.ErrorIs(t, ValidateRoomName(""), ErrInvalidRoomName)
	assert.ErrorIs(t, ValidateRoomName(strings.Repeat("x", MaxRoomNameLength+1)), ErrInvalidRoomName)
}

func TestNormalizeTTL(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, DefaultTTL},
		{10 * time.Minute, 10 * time.Minute},
		{15 * time.Minute, 15 * time.Minute},
		{30 * time.Minute, 30 * time.Minute},
		{7 * time.Minute, DefaultTTL},
		{45 * time.Minute, DefaultTTL},
		{-5 * time.Minute, DefaultTTL},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTTL(tt.in), "ttl %s", tt.in)
	}
}
