// Package nonces derives deterministic pseudorandom Z_q sequences from a
// seed, so that every nonce consumed during ballot encryption or proof
// generation can be reconstructed later from the same seed (spec.md §4.3).
package nonces

import (
	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/group"
)

// Sequence produces an unbounded stream of ElementModQ values seeded from
// an initial element. The same seed always yields the same sequence;
// indexing is O(1) and requires no state beyond the seed itself.
type Sequence struct {
	seed *group.ElementModQ
}

// New builds a Sequence from seed and optional headers. Headers are mixed
// into the seed once at construction (hash_elems(seed, headers...)) so that
// sequences derived for different purposes from the same underlying seed
// never collide.
func New(seed *group.ElementModQ, headers ...eghash.Element) *Sequence {
	if len(headers) == 0 {
		return &Sequence{seed: seed}
	}
	args := append([]eghash.Element{seed}, headers...)
	return &Sequence{seed: eghash.HashElems(args...)}
}

// At returns the element at the given non-negative index, optionally mixing
// in per-call headers to disambiguate what the nonce is being used for.
func (s *Sequence) At(index int, headers ...eghash.Element) *group.ElementModQ {
	if index < 0 {
		panic("nonces: negative index")
	}
	args := append([]eghash.Element{s.seed, index}, headers...)
	return eghash.HashElems(args...)
}
