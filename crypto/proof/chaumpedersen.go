package proof

import (
	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/nonces"
)

// ChaumPedersenProof proves that a guardian's partial decryption share M
// shares its discrete log (the guardian's secret share) with the
// guardian's public key K, relative to bases A (the ciphertext pad) and g.
// This equality-of-logs proof underlies every partial and compensated
// decryption share (spec.md §4.11).
type ChaumPedersenProof struct {
	A         *group.ElementModP // g^u
	B         *group.ElementModP // A^u
	Challenge *group.ElementModQ
	Response  *group.ElementModQ
}

// MakeChaumPedersenProof proves that share = ciphertextA^secret and
// publicKey = g^secret share the same exponent, binding the challenge to
// the extended base hash and the full ciphertext so it cannot be replayed
// against a different selection.
func MakeChaumPedersenProof(
	secret *group.ElementModQ,
	extendedBaseHash *group.ElementModQ,
	ciphertextA, ciphertextB, share *group.ElementModP,
	seed *group.ElementModQ,
) *ChaumPedersenProof {
	u := nonces.New(seed).At(0)
	a := group.GPowP(u)
	b := group.PowP(ciphertextA, u)
	challenge := eghash.HashElems(extendedBaseHash, ciphertextA, ciphertextB, a, b, share)
	response := group.AddQ(u, group.MulQ(challenge, secret))
	return &ChaumPedersenProof{A: a, B: b, Challenge: challenge, Response: response}
}

// IsValid checks the proof against the public key, the ciphertext (A, B),
// and the claimed share M.
func (p *ChaumPedersenProof) IsValid(
	extendedBaseHash *group.ElementModQ,
	publicKey *group.ElementModP,
	ciphertextA, ciphertextB, share *group.ElementModP,
) bool {
	if !group.ValidResidue(publicKey) || !group.ValidResidue(ciphertextA) ||
		!group.ValidResidue(ciphertextB) || !group.ValidResidue(share) {
		return false
	}
	expectedChallenge := eghash.HashElems(extendedBaseHash, ciphertextA, ciphertextB, p.A, p.B, share)
	if !expectedChallenge.Equal(p.Challenge) {
		return false
	}
	left1 := group.GPowP(p.Response)
	right1 := group.MulP(p.A, group.PowP(publicKey, p.Challenge))
	if !left1.Equal(right1) {
		return false
	}
	left2 := group.PowP(ciphertextA, p.Response)
	right2 := group.MulP(p.B, group.PowP(share, p.Challenge))
	return left2.Equal(right2)
}
