package ws

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignCodenameDrawsFromPool(t *testing.T) {
	used := make(map[string]struct{})

	name := assignCodename(used)

	assert.Contains(t, codenamePool, name)
	assert.Contains(t, used, name)
}

func TestAssignCodenameNeverRepeatsWithinRoom(t *testing.T) {
	used := make(map[string]struct{})
	seen := make(map[string]struct{})

	for i := 0; i < len(codenamePool); i++ {
		name := assignCodename(used)
		_, dup := seen[name]
		assert.False(t, dup, "codename %q drawn twice", name)
		seen[name] = struct{}{}
	}

	assert.Len(t, used, len(codenamePool))
}

func TestAssignCodenameFallsBackWhenPoolExhausted(t *testing.T) {
	used := make(map[string]struct{})
	for _, name := range codenamePool {
		used[name] = struct{}{}
	}

	first := assignCodename(used)
	second := assignCodename(used)

	assert.True(t, strings.HasPrefix(first, "cipher-"), "got %q", first)
	assert.True(t, strings.HasPrefix(second, "cipher-"), "got %q", second)
	assert.NotEqual(t, first, second)
	assert.Len(t, used, len(codenamePool)+2)
}

func TestReleaseCodenameReturnsNameToPool(t *testing.T) {
	used := make(map[string]struct{})
	for _, name := range codenamePool {
		used[name] = struct{}{}
	}

	releaseCodename(used, codenamePool[0])

	// With exactly one pool name free the next draw is deterministic.
	assert.Equal(t, codenamePool[0], assignCodename(used))
}
