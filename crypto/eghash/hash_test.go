package eghash

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/evoteguard/eg-core/crypto/group"
)

func TestMain_initParams(t *testing.T) {
	group.Init(group.ParamSetTest)
}

func TestHashElemsDeterministicAndOrderSensitive(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	a := HashElems("alice", "bob")
	b := HashElems("alice", "bob")
	c.Assert(a.Equal(b), qt.IsTrue)

	reordered := HashElems("bob", "alice")
	c.Assert(a.Equal(reordered), qt.IsFalse)
}

func TestHashElemsIntAndStringCanonicality(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	c.Assert(HashElems(0).Equal(HashElems("0")), qt.IsTrue)
	c.Assert(HashElems(42).Equal(HashElems("42")), qt.IsTrue)

	e, err := group.NewElementModQ(big.NewInt(7))
	c.Assert(err, qt.IsNil)
	c.Assert(HashElems(e).Equal(HashElems("7")), qt.IsTrue)
}

func TestHashElemsNilMatchesNullLiteral(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	c.Assert(HashElems(nil).Equal(HashElems("null")), qt.IsTrue)
}

func TestHashElemsResultIsNeverZero(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	for _, args := range [][]Element{
		{}, {"a"}, {0}, {nil}, {"a", "b", "c"},
	} {
		h := HashElems(args...)
		c.Assert(h.IsZero(), qt.IsFalse)
	}
}
