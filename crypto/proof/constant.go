package proof

import (
	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/nonces"
)

// ConstantCPProof proves that the accumulated ciphertext of a contest
// encrypts exactly the known constant L (number_elected), using the sum of
// the individual selection nonces as the witness (spec.md §4.5, §4.8e).
type ConstantCPProof struct {
	A, B      *group.ElementModP
	Challenge *group.ElementModQ
	Response  *group.ElementModQ
	Constant  int
}

// MakeConstantCPProof proves that (pad, data) = (g^r, g^L . K^r) for the
// known constant L, given the aggregate nonce r and the joint public key.
func MakeConstantCPProof(pad, data *group.ElementModP, r *group.ElementModQ, publicKey *group.ElementModP, constant int, seed *group.ElementModQ) *ConstantCPProof {
	u := nonces.New(seed).At(0)
	a := group.GPowP(u)
	b := group.PowP(publicKey, u)
	challenge := eghash.HashElems(pad, data, constant, a, b)
	response := group.AddQ(u, group.MulQ(challenge, r))
	return &ConstantCPProof{A: a, B: b, Challenge: challenge, Response: response, Constant: constant}
}

// IsValid checks the proof against the ciphertext and public key: g^v must
// equal a.pad^c, and K^v.g^(L.c) must equal b.data^c.
func (p *ConstantCPProof) IsValid(pad, data *group.ElementModP, publicKey *group.ElementModP) bool {
	if !group.ValidResidue(pad) || !group.ValidResidue(data) || !group.ValidResidue(p.A) || !group.ValidResidue(p.B) {
		return false
	}
	expectedChallenge := eghash.HashElems(pad, data, p.Constant, p.A, p.B)
	if !expectedChallenge.Equal(p.Challenge) {
		return false
	}

	left1 := group.GPowP(p.Response)
	right1 := group.MulP(p.A, group.PowP(pad, p.Challenge))
	if !left1.Equal(right1) {
		return false
	}

	lConstant := group.ElementFromInt64(int64(p.Constant))
	left2 := group.MulP(group.PowP(publicKey, p.Response), group.GPowP(group.MulQ(lConstant, p.Challenge)))
	right2 := group.MulP(p.B, group.PowP(data, p.Challenge))
	return left2.Equal(right2)
}
