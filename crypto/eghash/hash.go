// Package eghash implements the canonical hash-of-elements used to derive
// Fiat-Shamir challenges and deterministic nonce seeds throughout the core
// (spec.md §4.2).
package eghash

import (
	"crypto/sha256"
	"math/big"

	"github.com/evoteguard/eg-core/crypto/group"
)

// Element is anything HashElems knows how to serialize canonically: an
// ElementModP/ElementModQ, a string, an int, another Element, a slice of
// Elements, or nil (serialized as the literal "null").
type Element = any

const sep = '|' // the delimiter used between and after every serialized argument

// HashElems canonically serializes each argument as a decimal-digit string
// (so that, e.g., the integer 0 and the string "0" serialize identically —
// spec.md §4.2's canonicality invariant), joins them behind a leading
// separator with each element followed by its own separator, and hashes the
// result with SHA-256. The digest is reduced mod (q-1) and incremented by
// one, yielding a nonzero element of Z_q suitable for use as a challenge or
// a nonce.
func HashElems(elems ...Element) *group.ElementModQ {
	h := sha256.New()
	h.Write([]byte{sep})
	for _, e := range elems {
		h.Write([]byte(serialize(e)))
		h.Write([]byte{sep})
	}
	digest := h.Sum(nil)
	x := new(big.Int).SetBytes(digest)

	qMinus1 := new(big.Int).Sub(group.Active().Q, big.NewInt(1))
	x.Mod(x, qMinus1)
	x.Add(x, big.NewInt(1))
	return group.UncheckedElementModQ(x)
}

// serialize renders a single argument's canonical text form: integers
// (ElementModP, ElementModQ, big.Int, int, int64, uint64) as decimal
// digits, strings verbatim, nil as "null", and slices as their elements'
// serializations joined by the same separator HashElems uses between
// top-level arguments.
func serialize(e Element) string {
	switch v := e.(type) {
	case nil:
		return "null"
	case *group.ElementModP:
		if v == nil {
			return "null"
		}
		return v.Int().String()
	case *group.ElementModQ:
		if v == nil {
			return "null"
		}
		return v.Int().String()
	case *big.Int:
		if v == nil {
			return "null"
		}
		return v.String()
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return big.NewInt(int64(v)).String()
	case int64:
		return big.NewInt(v).String()
	case uint64:
		return new(big.Int).SetUint64(v).String()
	case []Element:
		out := make([]byte, 0, len(v)*8)
		for i, el := range v {
			if i > 0 {
				out = append(out, sep)
			}
			out = append(out, serialize(el)...)
		}
		return string(out)
	default:
		if s, ok := e.(interface{ String() string }); ok {
			return s.String()
		}
		panic("eghash: unsupported element type in HashElems")
	}
}
