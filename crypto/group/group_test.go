package group

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMain_initTestParams(t *testing.T) {
	Init(ParamSetTest)
}

func TestStandardParamsAreInternallyConsistent(t *testing.T) {
	c := qt.New(t)
	Init(ParamSetStandard)
	defer Init(ParamSetTest)

	p := Active()
	c.Assert(p.Name, qt.Equals, ParamSetStandard)

	rem := new(big.Int).Mod(new(big.Int).Sub(p.P, big.NewInt(1)), p.Q)
	c.Assert(rem.Sign(), qt.Equals, 0, qt.Commentf("q must divide p-1"))

	residue := new(big.Int).Exp(p.G, p.Q, p.P)
	c.Assert(residue.Cmp(big.NewInt(1)), qt.Equals, 0, qt.Commentf("g must generate the order-q subgroup"))

	c.Assert(ValidResidue(&ElementModP{v: new(big.Int).Set(p.G)}), qt.IsTrue)
}

func TestElementConstructorsRejectOutOfRange(t *testing.T) {
	c := qt.New(t)
	Init(ParamSetTest)

	_, err := NewElementModQ(new(big.Int).Set(Active().Q))
	c.Assert(err, qt.Not(qt.IsNil))

	_, err = NewElementModP(new(big.Int).Set(Active().P))
	c.Assert(err, qt.Not(qt.IsNil))

	_, err = NewElementModQ(big.NewInt(-1))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestValidResidue(t *testing.T) {
	c := qt.New(t)
	Init(ParamSetTest)

	c.Assert(ValidResidue(G()), qt.IsTrue)

	notResidue := UncheckedElementModP(big.NewInt(2))
	// 2 may or may not be a residue depending on params; assert the
	// predicate agrees with direct computation rather than hard-coding.
	residue := new(big.Int).Exp(notResidue.Int(), Active().Q, Active().P)
	c.Assert(ValidResidue(notResidue), qt.Equals, residue.Cmp(big.NewInt(1)) == 0)
}

func TestGPowPMatchesNaivePow(t *testing.T) {
	c := qt.New(t)
	Init(ParamSetTest)

	for _, opt := range []RadixOption{RadixNone, RadixLow, RadixHigh, RadixExtreme} {
		SetRadixOption(opt)
		for _, e := range []int64{0, 1, 2, 1000, 65520} {
			exp := ElementFromInt64(e)
			got := GPowP(exp)
			want := new(big.Int).Exp(Active().G, exp.Int(), Active().P)
			c.Assert(got.Int().Cmp(want), qt.Equals, 0, qt.Commentf("opt=%v e=%d", opt, e))
		}
	}
	SetRadixOption(RadixHigh)
}

func TestHexRoundTripAndLeadingZeroCanonicality(t *testing.T) {
	c := qt.New(t)
	Init(ParamSetTest)

	e, err := NewElementModQ(big.NewInt(10))
	c.Assert(err, qt.IsNil)
	hex := e.ToHex()
	c.Assert(len(hex)%2, qt.Equals, 0)

	back, err := HexToQ(hex)
	c.Assert(err, qt.IsNil)
	c.Assert(back.Equal(e), qt.IsTrue)
}

func TestModularArithmeticRoundTrips(t *testing.T) {
	c := qt.New(t)
	Init(ParamSetTest)

	a, _ := RandQ()
	b, _ := RandQ()

	sum := AddQ(a, b)
	back := SubQ(sum, b)
	c.Assert(back.Equal(a), qt.IsTrue)

	inv, err := InvQ(a)
	c.Assert(err, qt.IsNil)
	one := MulQ(a, inv)
	c.Assert(one.Equal(ElementFromInt64(1)), qt.IsTrue)
}

func TestDivPIsMulByInverse(t *testing.T) {
	c := qt.New(t)
	Init(ParamSetTest)

	a := GPowP(ElementFromInt64(7))
	b := GPowP(ElementFromInt64(3))

	quotient, err := DivP(a, b)
	c.Assert(err, qt.IsNil)

	bInv, err := InvP(b)
	c.Assert(err, qt.IsNil)
	c.Assert(quotient.Equal(MulP(a, bInv)), qt.IsTrue)
}
