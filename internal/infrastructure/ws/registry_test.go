package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmarcken/hushroom/internal/domain"
)

func TestGetOrCreateConvergesOnOneRoom(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	const workers = 32
	results := make([]*Room, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = reg.GetOrCreate("alpha", "", 0)
		}(i)
	}
	wg.Wait()

	for i, room := range results {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], room)
	}

	_, ok := reg.Get("alpha")
	assert.True(t, ok)
}

func TestGetOrCreateRejectsInvalidName(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	_, err := reg.GetOrCreate("", "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRoomName)

	long := make([]byte, domain.MaxRoomNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = reg.GetOrCreate(string(long), "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRoomName)
}

func TestGetOrCreateNormalizesTTL(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	room, err := reg.GetOrCreate("odd-ttl", "", 7*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultTTL, room.settings.TTL)
	assert.WithinDuration(t, room.CreatedAt().Add(domain.DefaultTTL), room.ExpiresAt(), time.Second)
}

func TestGetOrCreateIgnoresSettingsOnExistingRoom(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	first, err := reg.GetOrCreate("settled", "hash-a", 30*time.Minute)
	require.NoError(t, err)

	second, err := reg.GetOrCreate("settled", "hash-b", 15*time.Minute)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "hash-a", second.settings.PasswordHash)
	assert.Equal(t, 30*time.Minute, second.settings.TTL)
}

func TestAdmitAssignsDistinctCodenames(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	const joiners = 12
	clients := make([]*Client, 0, joiners)
	seen := make(map[string]struct{})

	for i := 0; i < joiners; i++ {
		c := admit(t, reg, AdmitRequest{RoomName: "crowded"})
		_, dup := seen[c.Codename]
		assert.False(t, dup, "codename %q assigned twice", c.Codename)
		seen[c.Codename] = struct{}{}
		clients = append(clients, c)
	}

	room, ok := reg.Get("crowded")
	require.True(t, ok)
	assert.Len(t, room.members, joiners)
	assert.Len(t, room.usedCodenames, joiners)

	// Leaving hands the codename back to the pool.
	reg.Leave(clients[0])
	assert.Len(t, room.members, joiners-1)
	assert.Len(t, room.usedCodenames, joiners-1)
	_, held := room.usedCodenames[clients[0].Codename]
	assert.False(t, held)
}

func TestAdmitInitOnlyToJoinerJoinOnlyToOthers(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	alice := admit(t, reg, AdmitRequest{RoomName: "pair"})
	bob := admit(t, reg, AdmitRequest{RoomName: "pair"})

	aliceEvents := drainEvents(t, alice)
	require.Equal(t, []string{"init", "join"}, eventTypes(aliceEvents))
	assert.Equal(t, alice.Codename, aliceEvents[0]["codename"])
	assert.Equal(t, float64(1), aliceEvents[0]["participants"])
	assert.Equal(t, bob.Codename, aliceEvents[1]["codename"])
	assert.Equal(t, float64(2), aliceEvents[1]["participants"])

	bobEvents := drainEvents(t, bob)
	require.Equal(t, []string{"init"}, eventTypes(bobEvents))
	assert.Equal(t, bob.Codename, bobEvents[0]["codename"])
	assert.Equal(t, float64(2), bobEvents[0]["participants"])
}

func TestAdmitPasswordGate(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	creator := admit(t, reg, AdmitRequest{
		RoomName:     "vault",
		PasswordHash: "secret-hash",
		WantPassword: true,
	})

	_, err := reg.Admit(nil, AdmitRequest{RoomName: "vault", PasswordHash: "wrong-hash"})
	assert.ErrorIs(t, err, domain.ErrAuthFailed)

	// A rejected attempt leaves membership untouched and leaks nothing to
	// the members inside.
	room, ok := reg.Get("vault")
	require.True(t, ok)
	assert.Len(t, room.members, 1)
	assert.Equal(t, []string{"init"}, eventTypes(drainEvents(t, creator)))

	joined, err := reg.Admit(nil, AdmitRequest{RoomName: "vault", PasswordHash: "secret-hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, joined.Codename)
	assert.Len(t, room.members, 2)
}

func TestAdmitOpenRoomIgnoresSuppliedPassword(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	admit(t, reg, AdmitRequest{RoomName: "open"})

	// WantPassword on an existing room must not retrofit a gate.
	c, err := reg.Admit(nil, AdmitRequest{
		RoomName:     "open",
		PasswordHash: "whatever",
		WantPassword: true,
	})
	require.NoError(t, err)
	assert.False(t, c.room.HasPassword())
}

func TestRelayExcludesSenderAndStampsCodename(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	alice := admit(t, reg, AdmitRequest{RoomName: "relay"})
	bob := admit(t, reg, AdmitRequest{RoomName: "relay"})
	drainEvents(t, alice)
	drainEvents(t, bob)

	reg.Relay(alice, &Frame{Type: FrameMessage, Encrypted: "deadbeef", IV: "cafe"})

	assert.Empty(t, drainEvents(t, alice))

	bobEvents := drainEvents(t, bob)
	require.Len(t, bobEvents, 1)
	ev := bobEvents[0]
	assert.Equal(t, "message", ev["type"])
	assert.Equal(t, alice.Codename, ev["codename"])
	assert.Equal(t, "deadbeef", ev["encrypted"])
	assert.Equal(t, "cafe", ev["iv"])
	assert.NotEmpty(t, ev["timestamp"])
}

func TestRelayFanOutDeliversIdenticalBytes(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	sender := admit(t, reg, AdmitRequest{RoomName: "fanout"})
	receivers := make([]*Client, 0, 4)
	for i := 0; i < 4; i++ {
		receivers = append(receivers, admit(t, reg, AdmitRequest{RoomName: "fanout"}))
	}
	drainEvents(t, sender)
	for _, r := range receivers {
		drainEvents(t, r)
	}

	reg.Relay(sender, &Frame{Type: FrameTyping})

	var payloads [][]byte
	for _, r := range receivers {
		select {
		case p := <-r.send:
			payloads = append(payloads, p)
		default:
			t.Fatal("receiver got no typing event")
		}
	}
	for _, p := range payloads[1:] {
		assert.Equal(t, string(payloads[0]), string(p))
	}
}

func TestRelayFromNonMemberIsNoOp(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	alice := admit(t, reg, AdmitRequest{RoomName: "strict"})
	bob := admit(t, reg, AdmitRequest{RoomName: "strict"})
	drainEvents(t, alice)
	drainEvents(t, bob)

	reg.Leave(alice)
	drainEvents(t, bob)

	reg.Relay(alice, &Frame{Type: FrameMessage, Encrypted: "x", IV: "y"})
	assert.Empty(t, drainEvents(t, bob))
}

func TestLeaveBroadcastsAndLastLeaveDestroys(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	alice := admit(t, reg, AdmitRequest{RoomName: "draining"})
	bob := admit(t, reg, AdmitRequest{RoomName: "draining"})
	drainEvents(t, alice)
	drainEvents(t, bob)

	reg.Leave(bob)

	aliceEvents := drainEvents(t, alice)
	require.Equal(t, []string{"leave"}, eventTypes(aliceEvents))
	assert.Equal(t, bob.Codename, aliceEvents[0]["codename"])
	assert.Equal(t, float64(1), aliceEvents[0]["participants"])

	reg.Leave(alice)

	info := reg.Info("draining")
	assert.False(t, info.Exists)
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.metrics.RoomsDestroyed.WithLabelValues("emptied")))

	// The name is free again; the next reference materializes a new room.
	fresh, err := reg.GetOrCreate("draining", "", 0)
	require.NoError(t, err)
	assert.NotSame(t, alice.room, fresh)
}

func TestLeaveIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	alice := admit(t, reg, AdmitRequest{RoomName: "twice"})
	bob := admit(t, reg, AdmitRequest{RoomName: "twice"})
	drainEvents(t, alice)
	drainEvents(t, bob)

	reg.Leave(bob)
	reg.Leave(bob)

	assert.Len(t, drainEvents(t, alice), 1)
	assert.Equal(t, 1, reg.Participants(alice.room))
}

func TestManualDestroyBroadcastsThenTearsDown(t *testing.T) {
	reg := newTestRegistry(t, Options{DestroyGraceDelay: 150 * time.Millisecond})

	alice := admit(t, reg, AdmitRequest{RoomName: "doomed"})
	bob := admit(t, reg, AdmitRequest{RoomName: "doomed"})
	drainEvents(t, alice)
	drainEvents(t, bob)

	reg.ManualDestroy("doomed")
	reg.ManualDestroy("doomed") // pending destroy makes repeats no-ops

	for _, c := range []*Client{alice, bob} {
		events := drainEvents(t, c)
		require.Equal(t, []string{"destroyed"}, eventTypes(events))
		assert.Equal(t, true, events[0]["manual"])
	}

	// Members stay attached through the grace window.
	assert.True(t, reg.Info("doomed").Exists)

	waitFor(t, time.Second, func() bool {
		return !reg.Info("doomed").Exists
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.metrics.RoomsDestroyed.WithLabelValues("manual")))
}

func TestManualDestroyOfUnknownRoomIsNoOp(t *testing.T) {
	reg := newTestRegistry(t, Options{DestroyGraceDelay: 5 * time.Millisecond})

	reg.ManualDestroy("ghost")
	assert.False(t, reg.Info("ghost").Exists)
}

func TestExpireBroadcastsAndDestroysOnce(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	alice := admit(t, reg, AdmitRequest{RoomName: "fleeting"})
	drainEvents(t, alice)
	room := alice.room

	reg.expire(room)

	assert.False(t, reg.Info("fleeting").Exists)
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.metrics.RoomsDestroyed.WithLabelValues("expired")))

	// A stale timer firing after the destroy must not double-count.
	reg.expire(room)
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.metrics.RoomsDestroyed.WithLabelValues("expired")))
}

func TestExpireOfReplacedRoomLeavesSuccessorAlone(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	old, err := reg.GetOrCreate("recycled", "", 0)
	require.NoError(t, err)
	reg.Destroy("recycled")

	successor := admit(t, reg, AdmitRequest{RoomName: "recycled"})

	// The old room's timer fires late; the successor is untouched.
	reg.expire(old)

	assert.True(t, reg.Info("recycled").Exists)
	assert.Same(t, successor.room, reg.mustGet(t, "recycled"))
}

func TestExpiredDestroyedNoticeIsNotManual(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	alice := admit(t, reg, AdmitRequest{RoomName: "timed-out"})
	drainEvents(t, alice)

	reg.expire(alice.room)

	events := drainEvents(t, alice)
	require.Equal(t, []string{"destroyed"}, eventTypes(events))
	assert.Equal(t, false, events[0]["manual"])
}

func TestDestroyIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	admit(t, reg, AdmitRequest{RoomName: "gone"})

	reg.Destroy("gone")
	reg.Destroy("gone")
	reg.Destroy("never-existed")

	assert.Equal(t, float64(1), testutil.ToFloat64(reg.metrics.RoomsDestroyed.WithLabelValues("destroyed")))
}

func (g *Registry) mustGet(t *testing.T, name string) *Room {
	t.Helper()
	room, ok := g.Get(name)
	require.True(t, ok)
	return room
}
