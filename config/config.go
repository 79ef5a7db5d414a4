// Package config loads the process-wide runtime configuration for the core:
// which parameter set to run on, how much memory to trade for exponentiation
// speed, and how many workers to use for bounded-parallel operations. It is
// read once at process start by the host binary; the core never consults
// viper again afterward (spec.md §5: "process-global, stable after init").
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/evoteguard/eg-core/crypto/group"
)

// Runtime is the immutable configuration value a host binary derives once
// from the environment and threads through to the core.
type Runtime struct {
	// ParamSet selects the active group parameters (spec.md §4.1):
	// "standard" for production elections, "test" for fast local runs.
	ParamSet group.ParamSetName
	// PowRadix selects the fixed-base exponentiation table's memory/speed
	// tradeoff (spec.md §4.1's acceleration note).
	PowRadix group.RadixOption
	// Workers is the requested worker count; Load replaces a non-positive
	// value with a small positive default. Apply does not install it and no
	// package of the core reads it: ballot encryption and decryption start
	// one goroutine per contest or ciphertext key.
	Workers int
}

const (
	envParams   = "EG_PARAMS"
	envPowRadix = "EG_POWRADIX"
	envWorkers  = "EG_WORKERS"

	defaultWorkers = 4
)

// Load reads EG_PARAMS, EG_POWRADIX and EG_WORKERS from the environment
// (with viper's defaults filling in anything unset), validates them, and
// returns the Runtime the rest of the process should use for its lifetime.
// It does not itself call group.Init/group.SetRadixOption — the host binary
// applies the returned Runtime once, at a point of its choosing.
func Load() (Runtime, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetDefault(envParams, string(group.ParamSetTest))
	v.SetDefault(envPowRadix, "high")
	v.SetDefault(envWorkers, defaultWorkers)

	paramSet, err := parseParamSet(v.GetString(envParams))
	if err != nil {
		return Runtime{}, err
	}
	radix, err := parsePowRadix(v.GetString(envPowRadix))
	if err != nil {
		return Runtime{}, err
	}
	workers := v.GetInt(envWorkers)
	if workers <= 0 {
		workers = defaultWorkers
	}

	return Runtime{ParamSet: paramSet, PowRadix: radix, Workers: workers}, nil
}

func parseParamSet(raw string) (group.ParamSetName, error) {
	switch strings.ToLower(raw) {
	case string(group.ParamSetStandard):
		return group.ParamSetStandard, nil
	case string(group.ParamSetTest):
		return group.ParamSetTest, nil
	default:
		return "", fmt.Errorf("config: %s must be %q or %q, got %q", envParams, group.ParamSetStandard, group.ParamSetTest, raw)
	}
}

func parsePowRadix(raw string) (group.RadixOption, error) {
	switch strings.ToLower(raw) {
	case "none":
		return group.RadixNone, nil
	case "low":
		return group.RadixLow, nil
	case "high":
		return group.RadixHigh, nil
	case "extreme":
		return group.RadixExtreme, nil
	default:
		return 0, fmt.Errorf("config: %s must be one of none|low|high|extreme, got %q", envPowRadix, raw)
	}
}

// Apply installs a Runtime's parameter set and radix option as the active
// process-wide group configuration. Call this exactly once, before any
// crypto/group operation runs.
func Apply(r Runtime) {
	group.Init(r.ParamSet)
	group.SetRadixOption(r.PowRadix)
}
