package proof

import (
	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/nonces"
)

// DisjunctiveCPProof proves that an ElGamal ciphertext (pad, data) encrypts
// either 0 or 1 under the joint public key, without revealing which. It is
// a two-branch OR-proof: the prover honestly proves the branch matching the
// real plaintext and simulates the other by choosing its challenge and
// response first (spec.md §4.5).
type DisjunctiveCPProof struct {
	A0, B0 *group.ElementModP
	A1, B1 *group.ElementModP
	C0, C1 *group.ElementModQ
	V0, V1 *group.ElementModQ
}

// MakeDisjunctiveCPProofZero proves that (pad, data) encrypts 0, using
// nonce r (the encryption nonce) and publicKey K. Branch 1 (encrypts-1) is
// faked: c1 and v1 are drawn directly from the seed, and a1/b1 are built to
// satisfy the verification equations for an arbitrary c1; branch 0 is
// proved honestly with its own fresh nonce u0.
func MakeDisjunctiveCPProofZero(pad, data *group.ElementModP, r *group.ElementModQ, publicKey *group.ElementModP, seed *group.ElementModQ) *DisjunctiveCPProof {
	seq := nonces.New(seed)
	c1 := seq.At(0)
	v1 := seq.At(1)
	u0 := seq.At(2)

	a0 := group.GPowP(u0)
	b0 := group.PowP(publicKey, u0)

	qMinusC1 := group.NegQ(c1)
	a1 := group.MulP(group.GPowP(v1), group.PowP(pad, qMinusC1))
	b1 := group.MulPMany(group.PowP(publicKey, v1), group.GPowP(c1), group.PowP(data, qMinusC1))

	c := eghash.HashElems(pad, data, a0, b0, a1, b1)
	c0 := group.SubQ(c, c1)
	v0 := group.AddQ(u0, group.MulQ(c0, r))

	return &DisjunctiveCPProof{A0: a0, B0: b0, A1: a1, B1: b1, C0: c0, C1: c1, V0: v0, V1: v1}
}

// MakeDisjunctiveCPProofOne is the mirror image of
// MakeDisjunctiveCPProofZero for a ciphertext that actually encrypts 1:
// branch 0 is faked and branch 1 is proved honestly.
func MakeDisjunctiveCPProofOne(pad, data *group.ElementModP, r *group.ElementModQ, publicKey *group.ElementModP, seed *group.ElementModQ) *DisjunctiveCPProof {
	seq := nonces.New(seed)
	c0 := seq.At(0)
	v0 := seq.At(1)
	u1 := seq.At(2)

	qMinusC0 := group.NegQ(c0)
	a0 := group.MulP(group.GPowP(v0), group.PowP(pad, qMinusC0))
	b0 := group.MulP(group.PowP(publicKey, v0), group.PowP(data, qMinusC0))

	a1 := group.GPowP(u1)
	b1 := group.PowP(publicKey, u1)

	c := eghash.HashElems(pad, data, a0, b0, a1, b1)
	c1 := group.SubQ(c, c0)
	v1 := group.AddQ(u1, group.MulQ(c1, r))

	return &DisjunctiveCPProof{A0: a0, B0: b0, A1: a1, B1: b1, C0: c0, C1: c1, V0: v0, V1: v1}
}

// IsValid checks every bound, recomputes the challenge split, and verifies
// both branch equations (spec.md §4.5's DisjunctiveCP row).
func (p *DisjunctiveCPProof) IsValid(pad, data *group.ElementModP, publicKey *group.ElementModP) bool {
	for _, e := range []*group.ElementModP{pad, data, p.A0, p.B0, p.A1, p.B1} {
		if !group.ValidResidue(e) {
			return false
		}
	}

	c := eghash.HashElems(pad, data, p.A0, p.B0, p.A1, p.B1)
	if !c.Equal(group.AddQ(p.C0, p.C1)) {
		return false
	}

	gv0 := group.GPowP(p.V0)
	if !gv0.Equal(group.MulP(p.A0, group.PowP(pad, p.C0))) {
		return false
	}
	gv1 := group.GPowP(p.V1)
	if !gv1.Equal(group.MulP(p.A1, group.PowP(pad, p.C1))) {
		return false
	}
	kv0 := group.PowP(publicKey, p.V0)
	if !kv0.Equal(group.MulP(p.B0, group.PowP(data, p.C0))) {
		return false
	}
	gc1kv1 := group.MulP(group.GPowP(p.C1), group.PowP(publicKey, p.V1))
	return gc1kv1.Equal(group.MulP(p.B1, group.PowP(data, p.C1)))
}
