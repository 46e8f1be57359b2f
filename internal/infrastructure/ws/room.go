package ws

import (
	"time"

	"github.com/tmarcken/hushroom/internal/domain"
)

// Room is the live aggregate behind one room name: immutable settings plus
// the mutable membership the relay fans out to. All mutable fields are
// guarded by the owning Registry's lock.
type Room struct {
	settings *domain.Room

	members       map[*Client]string  // connection to codename
	usedCodenames map[string]struct{} // disjoint from the available pool

	expiry *time.Timer // one-shot TTL destroy; owned exclusively by the room
	grace  *time.Timer // pending manual-destroy teardown, nil unless armed

	destroyed     bool
	manualPending bool
}

func newRoom(settings *domain.Room) *Room {
	return &Room{
		settings:      settings,
		members:       make(map[*Client]string),
		usedCodenames: make(map[string]struct{}),
	}
}

func (r *Room) Name() string { return r.settings.Name }

func (r *Room) CreatedAt() time.Time { return r.settings.CreatedAt }

func (r *Room) ExpiresAt() time.Time { return r.settings.ExpiresAt }

func (r *Room) HasPassword() bool { return r.settings.HasPassword() }

// stopTimers cancels every scheduled action owned by the room so that no
// timer can fire against a resurrected room name. Caller holds the
// registry lock.
func (r *Room) stopTimers() {
	if r.expiry != nil {
		r.expiry.Stop()
	}
	if r.grace != nil {
		r.grace.Stop()
	}
}
