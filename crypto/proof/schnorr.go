// Package proof implements the zero-knowledge proof suite: Schnorr proof of
// knowledge of a discrete log, Chaum-Pedersen proof of equality of discrete
// logs (partial decryption), the disjunctive Chaum-Pedersen proof that a
// ciphertext encrypts 0 or 1, and the constant-sum Chaum-Pedersen proof used
// to bind a contest's accumulated ciphertext to number_elected (spec.md
// §4.5). Every proof is non-interactive via Fiat-Shamir, with challenges
// derived from eghash.HashElems and randomness drawn from a caller-seeded
// nonces.Sequence rather than the system RNG, so a retained seed lets a
// verifier (or the original prover) reproduce the exact transcript.
package proof

import (
	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/nonces"
)

// SchnorrProof demonstrates knowledge of the secret exponent behind a public
// key K = g^secret, without revealing secret.
type SchnorrProof struct {
	Commitment *group.ElementModP // g^u
	Challenge  *group.ElementModQ
	Response   *group.ElementModQ
}

// MakeSchnorrProof proves knowledge of secret (where publicKey = g^secret),
// drawing its nonce from a Nonces stream seeded by seed.
func MakeSchnorrProof(secret *group.ElementModQ, seed *group.ElementModQ) *SchnorrProof {
	publicKey := group.GPowP(secret)
	u := nonces.New(seed).At(0)
	commitment := group.GPowP(u)
	challenge := eghash.HashElems(commitment, publicKey)
	response := group.AddQ(u, group.MulQ(challenge, secret))
	return &SchnorrProof{Commitment: commitment, Challenge: challenge, Response: response}
}

// IsValid checks the proof against the claimed public key: K must be a
// valid residue, and g^response must equal commitment * K^challenge.
func (p *SchnorrProof) IsValid(publicKey *group.ElementModP) bool {
	if !group.ValidResidue(publicKey) {
		return false
	}
	expectedChallenge := eghash.HashElems(p.Commitment, publicKey)
	if !expectedChallenge.Equal(p.Challenge) {
		return false
	}
	left := group.GPowP(p.Response)
	right := group.MulP(p.Commitment, group.PowP(publicKey, p.Challenge))
	return left.Equal(right)
}
