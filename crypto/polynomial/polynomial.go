// Package polynomial implements the degree-(k-1) secret-sharing polynomial
// used by the guardian key ceremony: generation with per-coefficient
// Schnorr commitments, coordinate evaluation, coordinate verification
// against the published commitments, and Lagrange coefficient computation
// for threshold recombination (spec.md §4.6).
package polynomial

import (
	"fmt"

	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/proof"
)

// Polynomial is a degree-(k-1) secret polynomial: coefficients[0] is the
// guardian's secret key, commitments[i] = g^coefficients[i], and each
// coefficient carries a Schnorr proof of knowledge.
type Polynomial struct {
	Coefficients []*group.ElementModQ
	Commitments  []*group.ElementModP
	Proofs       []*proof.SchnorrProof
}

// Generate draws k coefficients — from seed if provided (coefficient i =
// seed + i, mirroring the deterministic test-vector convention), otherwise
// from fresh randomness — and computes each commitment and Schnorr proof.
// The constant term is the guardian's secret key; its commitment is the
// guardian's public key.
func Generate(k int, seed *group.ElementModQ) (*Polynomial, error) {
	p := &Polynomial{
		Coefficients: make([]*group.ElementModQ, k),
		Commitments:  make([]*group.ElementModP, k),
		Proofs:       make([]*proof.SchnorrProof, k),
	}
	for i := 0; i < k; i++ {
		var coefficient *group.ElementModQ
		if seed != nil {
			coefficient = group.AddQ(seed, group.ElementFromInt64(int64(i)))
		} else {
			var err error
			coefficient, err = group.RandQ()
			if err != nil {
				return nil, fmt.Errorf("polynomial: generate: %w", err)
			}
		}
		proofSeed, err := group.RandQ()
		if err != nil {
			return nil, fmt.Errorf("polynomial: generate: %w", err)
		}

		p.Coefficients[i] = coefficient
		p.Commitments[i] = group.GPowP(coefficient)
		p.Proofs[i] = proof.MakeSchnorrProof(coefficient, proofSeed)
	}
	return p, nil
}

// Coordinate evaluates the polynomial at x: sum_i coefficients[i] * x^i mod q.
func Coordinate(x int, p *Polynomial) *group.ElementModQ {
	sum := group.ZeroQ()
	xq := group.ElementFromInt64(int64(x))
	for i, coefficient := range p.Coefficients {
		term := group.MulQ(coefficient, powQInt(xq, i))
		sum = group.AddQ(sum, term)
	}
	return sum
}

// VerifyCoordinate checks that y = P(x) is consistent with the published
// commitments, without knowing the coefficients: g^y must equal
// prod_i commitments[i]^(x^i).
func VerifyCoordinate(y *group.ElementModQ, x int, commitments []*group.ElementModP) bool {
	xq := group.ElementFromInt64(int64(x))
	product := group.One()
	for i, commitment := range commitments {
		exp := powQInt(xq, i)
		product = group.MulP(product, group.PowP(commitment, exp))
	}
	return group.GPowP(y).Equal(product)
}

// LagrangeCoefficient computes the Lagrange coefficient for reconstructing
// the polynomial's value at 0 from the point at xj, given the sequence
// orders of the other participating points. Every other order must differ
// from xj; sequence-order uniqueness is a ceremony-wide invariant the
// caller is responsible for maintaining.
func LagrangeCoefficient(xj int, others ...int) (*group.ElementModQ, error) {
	numerator := group.ElementFromInt64(1)
	denominator := group.ElementFromInt64(1)
	for _, xl := range others {
		if xl == xj {
			return nil, fmt.Errorf("polynomial: lagrange coefficient: duplicate sequence order %d", xl)
		}
		numerator = group.MulQ(numerator, group.ElementFromInt64(int64(xl)))
		denominator = group.MulQ(denominator, group.ElementFromInt64(int64(xl-xj)))
	}
	inv, err := group.InvQ(denominator)
	if err != nil {
		return nil, fmt.Errorf("polynomial: lagrange coefficient: %w", err)
	}
	return group.MulQ(numerator, inv), nil
}

// powQInt raises a Z_q element to a small non-negative integer power by
// repeated multiplication; exponents here are coefficient indices, always
// small.
func powQInt(base *group.ElementModQ, exp int) *group.ElementModQ {
	result := group.ElementFromInt64(1)
	for i := 0; i < exp; i++ {
		result = group.MulQ(result, base)
	}
	return result
}
