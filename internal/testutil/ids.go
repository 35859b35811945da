package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDs generates a reproducible UUID sequence for tests.
//
// The same scenario run with a fresh SequentialIDs produces
// byte-identical records, which golden snapshot comparison relies on.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDs struct {
	mu      sync.Mutex
	counter uint64
}

// NewSequentialIDs creates a generator. The first call to Next returns
// the UUID ending in ...0001.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// Next returns the next UUID in the sequence. The counter occupies the
// final eight bytes; version and variant bits are set so the result is
// a well-formed RFC 4122 UUID.
func (g *SequentialIDs) Next() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++

	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], g.counter)
	id[6] = (id[6] & 0x0f) | 0x40 // version 4
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id
}
