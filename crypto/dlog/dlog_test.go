package dlog

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/evoteguard/eg-core/crypto/group"
)

func TestMain_initParams(t *testing.T) {
	group.Init(group.ParamSetTest)
}

func TestLookupFindsSmallExponents(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	cache := New(1000)
	for _, want := range []int{0, 1, 2, 10, 500} {
		target := group.GPowP(group.ElementFromInt64(int64(want)))
		got, err := cache.Lookup(target)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
}

func TestLookupIsMonotonicAndCached(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	cache := New(1000)
	target := group.GPowP(group.ElementFromInt64(50))
	first, err := cache.Lookup(target)
	c.Assert(err, qt.IsNil)
	second, err := cache.Lookup(target)
	c.Assert(err, qt.IsNil)
	c.Assert(first, qt.Equals, second)
}

func TestLookupExceedsCeiling(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	cache := New(10)
	target := group.GPowP(group.ElementFromInt64(500))
	_, err := cache.Lookup(target)
	c.Assert(err, qt.Equals, ErrExponentTooLarge)
}

func TestLookupRejectsNonResidueWithoutSearching(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	cache := New(1000)
	notInGq := group.ElementFromInt64(2) // outside the order-q subgroup
	c.Assert(group.ValidResidue(notInGq), qt.IsFalse)

	_, err := cache.Lookup(notInGq)
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestPrewarmCollapsesLookupToCacheHit(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	cache := New(1000)
	cache.Prewarm(100)
	target := group.GPowP(group.ElementFromInt64(99))
	got, err := cache.Lookup(target)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, 99)
}
