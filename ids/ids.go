// Package ids defines and generates the two identifier spaces warpdesk
// routes by: Cid (client/host identity) and Did (display identity).
// Persisting them is left to package config.
package ids

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Cid identifies a host. 0 is reserved for the server.
type Cid uint32

// Did identifies a display, unique across the fleet.
type Did uint32

// ServerCid is the reserved identifier for server-owned displays.
const ServerCid Cid = 0

// NewCid generates a random client identifier. Clients call this once on
// first run and persist the result; it must never collide with ServerCid
// in practice (the probability is negligible at 32 bits, and a collision
// only costs a client a fresh random retry).
func NewCid() Cid {
	for {
		if c := Cid(randomUint32()); c != ServerCid {
			return c
		}
	}
}

// NewDid generates a random display identifier, assigned once per display
// the first time it is sighted (locally or from a connecting client).
func NewDid() Did {
	return Did(randomUint32())
}

// randomUint32 draws 32 bits from a UUID's random bytes rather than
// hand-rolling a PRNG: uuid.New() already wraps a cryptographically seeded
// generator, so four of its bytes make a perfectly good uniform uint32.
func randomUint32() uint32 {
	id := uuid.New()
	return binary.BigEndian.Uint32(id[:4])
}
