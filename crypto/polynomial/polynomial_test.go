package polynomial

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/evoteguard/eg-core/crypto/group"
)

func TestMain_initParams(t *testing.T) {
	group.Init(group.ParamSetTest)
}

func TestGeneratePolynomialCoefficientProofsVerify(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	p, err := Generate(3, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(len(p.Coefficients), qt.Equals, 3)

	for i, commitment := range p.Commitments {
		c.Assert(p.Proofs[i].IsValid(commitment), qt.IsTrue)
	}
}

func TestCoordinateVerifiesAgainstCommitments(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	p, err := Generate(3, nil)
	c.Assert(err, qt.IsNil)

	for _, x := range []int{1, 2, 3, 4} {
		y := Coordinate(x, p)
		c.Assert(VerifyCoordinate(y, x, p.Commitments), qt.IsTrue)
	}
}

func TestVerifyCoordinateRejectsWrongValue(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	p, err := Generate(2, nil)
	c.Assert(err, qt.IsNil)

	y := Coordinate(1, p)
	tampered := group.AddQ(y, group.ElementFromInt64(1))
	c.Assert(VerifyCoordinate(tampered, 1, p.Commitments), qt.IsFalse)
}

func TestLagrangeInterpolationRecoversSecretInExponent(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	k := 3
	p, err := Generate(k, nil)
	c.Assert(err, qt.IsNil)

	xs := []int{1, 2, 3}
	secretCommitment := p.Commitments[0] // g^P(0)

	accumulated := group.One()
	for _, xj := range xs {
		others := otherThan(xs, xj)
		w, err := LagrangeCoefficient(xj, others...)
		c.Assert(err, qt.IsNil)

		yj := Coordinate(xj, p)
		share := group.GPowP(yj) // g^P(xj), in place of a real guardian's partial share
		accumulated = group.MulP(accumulated, group.PowP(share, w))
	}

	c.Assert(accumulated.Equal(secretCommitment), qt.IsTrue)
}

func TestLagrangeCoefficientRejectsDuplicateOrder(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	_, err := LagrangeCoefficient(1, 1, 2)
	c.Assert(err, qt.Not(qt.IsNil))
}

func otherThan(xs []int, skip int) []int {
	out := make([]int, 0, len(xs)-1)
	for _, x := range xs {
		if x != skip {
			out = append(out, x)
		}
	}
	return out
}
