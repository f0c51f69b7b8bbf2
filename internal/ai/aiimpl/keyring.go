package aiimpl

import (
	"strings"
	"sync"

	"github.com/orgball2608/technews-autopilot/pkg/errors"
)

// KeyRing owns the API keys and the cursor pointing at the one in use.
type KeyRing struct {
	mu        sync.Mutex
	keys      []string
	cursor    int
	rotations int
}

func NewKeyRing(keys []string) *KeyRing {
	clean := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			clean = append(clean, k)
		}
	}
	return &KeyRing{keys: clean}
}

func (r *KeyRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// Current returns the key under the cursor.
func (r *KeyRing) Current() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return "", errors.ErrNoAPIKeys
	}
	return r.keys[r.cursor], nil
}

// Rotate advances the cursor, wrapping around.
func (r *KeyRing) Rotate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return
	}
	r.cursor = (r.cursor + 1) % len(r.keys)
	r.rotations++
}

func (r *KeyRing) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Rotations counts every advance since creation.
func (r *KeyRing) Rotations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotations
}
