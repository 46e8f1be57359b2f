package ws

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// codenamePool holds the pseudonyms handed out to room members. Drawn
// uniformly at random from the names not already in use in the room.
var codenamePool = []string{
	"Falcon", "Viper", "Raven", "Lynx", "Cobra", "Onyx", "Echo", "Mantis",
	"Sable", "Vesper", "Drift", "Cinder", "Quill", "Frost", "Harrier",
	"Jackal", "Kestrel", "Lumen", "Mirage", "Nomad", "Osprey", "Pike",
	"Rogue", "Saffron", "Talon", "Umbra", "Vortex", "Wraith", "Zephyr",
	"Basilisk", "Corsair", "Dusk",
}

// assignCodename draws an unused pool name for the room, or falls back to
// a synthetic tag when the pool is exhausted. Exhaustion never prevents a
// join. Caller holds the registry lock.
func assignCodename(used map[string]struct{}) string {
	available := make([]string, 0, len(codenamePool))
	for _, name := range codenamePool {
		if _, taken := used[name]; !taken {
			available = append(available, name)
		}
	}

	if len(available) == 0 {
		return syntheticCodename(used)
	}

	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(available))))
	if err != nil {
		return syntheticCodename(used)
	}

	name := available[idx.Int64()]
	used[name] = struct{}{}
	return name
}

func syntheticCodename(used map[string]struct{}) string {
	for {
		var tag [2]byte
		if _, err := rand.Read(tag[:]); err != nil {
			continue
		}

		name := "cipher-" + hex.EncodeToString(tag[:])
		if _, taken := used[name]; taken {
			continue
		}

		used[name] = struct{}{}
		return name
	}
}

// releaseCodename frees a pseudonym for reuse by future joiners. Called
// exactly once per assignment, on disconnect. Caller holds the registry
// lock.
func releaseCodename(used map[string]struct{}, codename string) {
	delete(used, codename)
}
