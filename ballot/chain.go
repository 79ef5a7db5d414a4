package ballot

import (
	"github.com/google/uuid"

	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/group"
)

// DeviceSeed derives the starting code for a scanning device: the first
// ballot scanned on that device chains from this seed instead of a prior
// ballot's code (spec.md §4.9's get_hash_for_device).
func DeviceSeed(deviceID uuid.UUID, sessionID string, launchCode int64, location string) *group.ElementModQ {
	return eghash.HashElems(deviceID.String(), sessionID, launchCode, location)
}

// Chain tracks the running ballot code for one device: an append-only
// sequence where each ballot's code becomes the next ballot's code_seed.
// Tampering with any ballot in the chain requires re-hashing every
// subsequent one, making the chain externally auditable.
type Chain struct {
	current *group.ElementModQ
}

// NewChain starts a chain from a device seed.
func NewChain(deviceSeed *group.ElementModQ) *Chain {
	return &Chain{current: deviceSeed}
}

// Seed returns the code_seed the next ballot on this device must use.
func (c *Chain) Seed() *group.ElementModQ {
	return c.current
}

// Advance records a newly encrypted ballot's code as the chain's new head.
func (c *Chain) Advance(b *CiphertextBallot) {
	c.current = b.Code
}
