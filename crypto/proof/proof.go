package proof

import (
	"errors"

	"github.com/evoteguard/eg-core/crypto/group"
)

// ErrInvalidProof is returned by Verify when a proof fails its own
// verification equations, wrapping whichever IsValid call rejected it.
var ErrInvalidProof = errors.New("proof: verification failed")

// VerifyContext carries every field any of this package's four proof types
// can reference in its verification equations. A concrete proof's Verify
// reads only the subset its own equations need; callers building a context
// for one proof kind can leave the rest zero.
type VerifyContext struct {
	PublicKey        *group.ElementModP
	Pad, Data        *group.ElementModP
	ExtendedBaseHash *group.ElementModQ
	Share            *group.ElementModP
}

// Proof is the common interface over SchnorrProof, ChaumPedersenProof,
// DisjunctiveCPProof, and ConstantCPProof: whatever the concrete type, a
// caller holding it as part of a larger structure (a selection's
// ciphertext, a guardian's coefficient commitment, a decryption share) can
// verify it without a type switch on which proof kind it is.
type Proof interface {
	Verify(ctx VerifyContext) error
}

var (
	_ Proof = (*SchnorrProof)(nil)
	_ Proof = (*ChaumPedersenProof)(nil)
	_ Proof = (*DisjunctiveCPProof)(nil)
	_ Proof = (*ConstantCPProof)(nil)
)

// Verify checks the proof against ctx.PublicKey. Pad, Data, ExtendedBaseHash
// and Share are unused for a Schnorr proof of knowledge.
func (p *SchnorrProof) Verify(ctx VerifyContext) error {
	if !p.IsValid(ctx.PublicKey) {
		return ErrInvalidProof
	}
	return nil
}

// Verify checks the proof against ctx.ExtendedBaseHash, ctx.PublicKey,
// ctx.Pad/ctx.Data (the ciphertext the share was computed from), and
// ctx.Share (the claimed partial decryption).
func (p *ChaumPedersenProof) Verify(ctx VerifyContext) error {
	if !p.IsValid(ctx.ExtendedBaseHash, ctx.PublicKey, ctx.Pad, ctx.Data, ctx.Share) {
		return ErrInvalidProof
	}
	return nil
}

// Verify checks the proof against ctx.Pad, ctx.Data and ctx.PublicKey.
// ExtendedBaseHash and Share are unused.
func (p *DisjunctiveCPProof) Verify(ctx VerifyContext) error {
	if !p.IsValid(ctx.Pad, ctx.Data, ctx.PublicKey) {
		return ErrInvalidProof
	}
	return nil
}

// Verify checks the proof against ctx.Pad, ctx.Data and ctx.PublicKey.
// ExtendedBaseHash and Share are unused.
func (p *ConstantCPProof) Verify(ctx VerifyContext) error {
	if !p.IsValid(ctx.Pad, ctx.Data, ctx.PublicKey) {
		return ErrInvalidProof
	}
	return nil
}
