// Package hashes defines the boundary to the hash functions under test:
// a fixed-width Digest type, a process-global registry of hash adapters,
// and per-test-category seed derivation.
package hashes

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fn computes the digest of key under seed into out. Implementations are
// total: they never fail, and they must leave bits at or above the declared
// width clear. out is owned by the caller and reused across calls.
type Fn func(key []byte, seed uint64, out Digest)

// Info describes one hash function under test.
type Info struct {
	// Name identifies the hash in the registry and in reports.
	Name string

	// Bits is the digest width. Must be a positive multiple of 8.
	Bits int

	// VerySlow marks hashes whose repetition counts should be reduced.
	VerySlow bool

	// Fn is the hash implementation.
	Fn Fn
}

var (
	errHashNameEmpty = errors.New("hash name cannot be empty")
	errHashNilFn     = errors.New("hash function cannot be nil")
	errHashBadWidth  = errors.New("hash width must be a positive multiple of 8")
	errHashDuplicate = errors.New("hash already registered")
	errHashNotFound  = errors.New("hash not found")
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Info{}
)

// Register adds a hash to the global registry.
func Register(h *Info) error {
	if h.Name == "" {
		return errHashNameEmpty
	}

	if h.Fn == nil {
		return fmt.Errorf("%w: %s", errHashNilFn, h.Name)
	}

	if h.Bits <= 0 || h.Bits%8 != 0 {
		return fmt.Errorf("%w: %s has %d", errHashBadWidth, h.Name, h.Bits)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[h.Name]; ok {
		return fmt.Errorf("%w: %s", errHashDuplicate, h.Name)
	}

	registry[h.Name] = h

	return nil
}

// MustRegister registers a hash and panics on error. For init-time use.
func MustRegister(h *Info) {
	if err := Register(h); err != nil {
		panic(err)
	}
}

// Lookup returns the named hash.
func Lookup(name string) (*Info, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	h, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errHashNotFound, name)
	}

	return h, nil
}

// Names returns all registered hash names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Seed derives the hash seed for one test category from the global seed.
// Each (hash, discriminator) pair gets an independent, reproducible stream;
// the same inputs always produce the same seed across runs and platforms.
func (h *Info) Seed(global uint64, discriminator uint64) uint64 {
	var buf [16]byte

	binary.LittleEndian.PutUint64(buf[0:8], global)
	binary.LittleEndian.PutUint64(buf[8:16], discriminator)

	d := xxhash.New()
	_, _ = d.WriteString(h.Name)
	_, _ = d.Write(buf[:])

	return d.Sum64()
}
