package config

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/evoteguard/eg-core/crypto/group"
)

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)
	r, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(r.ParamSet, qt.Equals, group.ParamSetTest)
	c.Assert(r.PowRadix, qt.Equals, group.RadixHigh)
	c.Assert(r.Workers, qt.Equals, defaultWorkers)
}

func TestLoadFromEnvironment(t *testing.T) {
	c := qt.New(t)
	t.Setenv(envParams, "standard")
	t.Setenv(envPowRadix, "extreme")
	t.Setenv(envWorkers, "16")

	r, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(r.ParamSet, qt.Equals, group.ParamSetStandard)
	c.Assert(r.PowRadix, qt.Equals, group.RadixExtreme)
	c.Assert(r.Workers, qt.Equals, 16)
}

func TestLoadRejectsUnknownParamSet(t *testing.T) {
	c := qt.New(t)
	t.Setenv(envParams, "bogus")
	_, err := Load()
	c.Assert(err, qt.ErrorMatches, "config: EG_PARAMS.*")
}

func TestLoadRejectsUnknownPowRadix(t *testing.T) {
	c := qt.New(t)
	t.Setenv(envPowRadix, "bogus")
	_, err := Load()
	c.Assert(err, qt.ErrorMatches, "config: EG_POWRADIX.*")
}

func TestLoadTreatsNonPositiveWorkersAsDefault(t *testing.T) {
	c := qt.New(t)
	t.Setenv(envWorkers, "0")
	r, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(r.Workers, qt.Equals, defaultWorkers)
}
