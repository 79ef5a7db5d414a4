package group

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/evoteguard/eg-core/log"
)

// ElementModP is a value in [0, p). Construction always checks the range;
// callers that need the weaker "valid residue" guarantee call ValidResidue
// explicitly, mirroring spec.md §3's split between bounds-checking and
// residue-checking.
type ElementModP struct {
	v *big.Int
}

// ElementModQ is a value in [0, q).
type ElementModQ struct {
	v *big.Int
}

// Int returns the underlying big.Int. The returned value must not be
// mutated; elements are immutable after construction (spec.md §3).
func (e *ElementModP) Int() *big.Int { return e.v }

// Int returns the underlying big.Int. The returned value must not be
// mutated.
func (e *ElementModQ) Int() *big.Int { return e.v }

// NewElementModP validates x is in [0, p) and wraps it. It does not check
// that x is a valid residue of G_q; use ValidResidue for that.
func NewElementModP(x *big.Int) (*ElementModP, error) {
	p := Active().P
	if x.Sign() < 0 || x.Cmp(p) >= 0 {
		return nil, fmt.Errorf("group: element out of range [0, p)")
	}
	return &ElementModP{v: new(big.Int).Set(x)}, nil
}

// NewElementModQ validates x is in [0, q) and wraps it.
func NewElementModQ(x *big.Int) (*ElementModQ, error) {
	q := Active().Q
	if x.Sign() < 0 || x.Cmp(q) >= 0 {
		log.Warnw("group: rejecting out-of-range ElementModQ")
		return nil, fmt.Errorf("group: element out of range [0, q)")
	}
	return &ElementModQ{v: new(big.Int).Set(x)}, nil
}

// UncheckedElementModP constructs an ElementModP without a range check. It
// exists only for tests that need to build out-of-range values to exercise
// validation paths (spec.md §7: "constructors that tolerate out-of-range
// inputs exist for testing only").
func UncheckedElementModP(x *big.Int) *ElementModP { return &ElementModP{v: new(big.Int).Set(x)} }

// UncheckedElementModQ is the Z_q counterpart of UncheckedElementModP.
// Besides tests, eghash.HashElems uses it to wrap a digest it has already
// reduced into range.
func UncheckedElementModQ(x *big.Int) *ElementModQ { return &ElementModQ{v: new(big.Int).Set(x)} }

// HexToP parses an uppercase-hex big-integer string and validates it lies in
// [0, p). Returns (nil, err) on a malformed string or an out-of-range value.
func HexToP(s string) (*ElementModP, error) {
	x, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("group: malformed hex element %q", s)
	}
	return NewElementModP(x)
}

// HexToQ is the Z_q counterpart of HexToP.
func HexToQ(s string) (*ElementModQ, error) {
	x, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("group: malformed hex element %q", s)
	}
	return NewElementModQ(x)
}

// ToHex renders the element as uppercase hexadecimal, left-trimmed of
// leading 00 bytes, preserving an even number of hex digits by keeping a
// leading '0' nibble when needed (spec.md §6's bit-exact serialization
// rule).
func (e *ElementModP) ToHex() string { return toHex(e.v) }

// ToHex is the Z_q counterpart of ElementModP.ToHex.
func (e *ElementModQ) ToHex() string { return toHex(e.v) }

func toHex(x *big.Int) string {
	b := x.Bytes()
	// left-trim leading 0x00 bytes
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	b = b[i:]
	s := fmt.Sprintf("%X", b)
	if len(s)%2 != 0 {
		s = "0" + s
	}
	if s == "" {
		s = "00"
	}
	return s
}

// Equal reports value equality.
func (e *ElementModP) Equal(o *ElementModP) bool { return e.v.Cmp(o.v) == 0 }

// Equal reports value equality.
func (e *ElementModQ) Equal(o *ElementModQ) bool { return e.v.Cmp(o.v) == 0 }

// IsZero reports whether the element is the additive identity.
func (e *ElementModQ) IsZero() bool { return e.v.Sign() == 0 }

// ValidResidue reports whether x is a member of G_q: 0 <= x < p and x^q = 1
// (mod p).
func ValidResidue(x *ElementModP) bool {
	p := Active().P
	if x.v.Sign() < 0 || x.v.Cmp(p) >= 0 {
		return false
	}
	residue := new(big.Int).Exp(x.v, Active().Q, p)
	return residue.Cmp(big.NewInt(1)) == 0
}

// ---- Z_q arithmetic ----

// AddQ returns (a + b) mod q.
func AddQ(a, b *ElementModQ) *ElementModQ {
	z := new(big.Int).Add(a.v, b.v)
	z.Mod(z, Active().Q)
	return &ElementModQ{v: z}
}

// SubQ returns (a - b) mod q.
func SubQ(a, b *ElementModQ) *ElementModQ {
	z := new(big.Int).Sub(a.v, b.v)
	z.Mod(z, Active().Q)
	return &ElementModQ{v: z}
}

// NegQ returns (-a) mod q.
func NegQ(a *ElementModQ) *ElementModQ {
	z := new(big.Int).Neg(a.v)
	z.Mod(z, Active().Q)
	return &ElementModQ{v: z}
}

// MulQ returns (a * b) mod q.
func MulQ(a, b *ElementModQ) *ElementModQ {
	z := new(big.Int).Mul(a.v, b.v)
	z.Mod(z, Active().Q)
	return &ElementModQ{v: z}
}

// InvQ returns a^-1 mod q, or an error if a is 0.
func InvQ(a *ElementModQ) (*ElementModQ, error) {
	if a.v.Sign() == 0 {
		return nil, fmt.Errorf("group: zero has no inverse mod q")
	}
	z := new(big.Int).ModInverse(a.v, Active().Q)
	if z == nil {
		return nil, fmt.Errorf("group: no inverse for element mod q")
	}
	return &ElementModQ{v: z}, nil
}

// ---- Z_p arithmetic ----

// MulP returns (a * b) mod p.
func MulP(a, b *ElementModP) *ElementModP {
	z := new(big.Int).Mul(a.v, b.v)
	z.Mod(z, Active().P)
	return &ElementModP{v: z}
}

// MulPMany returns the product of all factors mod p; the empty product is
// the identity element 1. Used by homomorphic ciphertext addition and
// joint-key combination.
func MulPMany(factors ...*ElementModP) *ElementModP {
	z := big.NewInt(1)
	for _, f := range factors {
		z.Mul(z, f.v)
		z.Mod(z, Active().P)
	}
	return &ElementModP{v: z}
}

// InvP returns a^-1 mod p.
func InvP(a *ElementModP) (*ElementModP, error) {
	if a.v.Sign() == 0 {
		return nil, fmt.Errorf("group: zero has no inverse mod p")
	}
	z := new(big.Int).ModInverse(a.v, Active().P)
	if z == nil {
		return nil, fmt.Errorf("group: no inverse for element mod p")
	}
	return &ElementModP{v: z}, nil
}

// DivP returns (a * b^-1) mod p.
func DivP(a, b *ElementModP) (*ElementModP, error) {
	inv, err := InvP(b)
	if err != nil {
		return nil, err
	}
	return MulP(a, inv), nil
}

// PowP returns base^exp mod p, using naive modular exponentiation. Use
// GPowP for exponentiation by the fixed generator g, which is accelerated.
func PowP(base *ElementModP, exp *ElementModQ) *ElementModP {
	z := new(big.Int).Exp(base.v, exp.v, Active().P)
	return &ElementModP{v: z}
}

// GPowP computes g^exp mod p using the precomputed radix table (see
// powradix.go) when available, falling back to naive exponentiation.
func GPowP(exp *ElementModQ) *ElementModP {
	return gPowRadix(exp)
}

// One returns the multiplicative identity in G_p.
func One() *ElementModP { return &ElementModP{v: big.NewInt(1)} }

// ZeroQ returns the additive identity in Z_q.
func ZeroQ() *ElementModQ { return &ElementModQ{v: big.NewInt(0)} }

// G returns the generator as an ElementModP.
func G() *ElementModP { return &ElementModP{v: new(big.Int).Set(Active().G)} }

// ---- randomness ----

// RandQ returns a uniform random element of [0, q).
func RandQ() (*ElementModQ, error) {
	x, err := rand.Int(rand.Reader, Active().Q)
	if err != nil {
		log.Warnw("group: failed to sample random Z_q element", "error", err)
		return nil, fmt.Errorf("group: rand_q: %w", err)
	}
	return &ElementModQ{v: x}, nil
}

// RandRangeQ returns a uniform random element of [lo, q).
func RandRangeQ(lo int64) (*ElementModQ, error) {
	q := Active().Q
	span := new(big.Int).Sub(q, big.NewInt(lo))
	if span.Sign() <= 0 {
		return nil, fmt.Errorf("group: rand_range_q: lo >= q")
	}
	x, err := rand.Int(rand.Reader, span)
	if err != nil {
		return nil, fmt.Errorf("group: rand_range_q: %w", err)
	}
	x.Add(x, big.NewInt(lo))
	return &ElementModQ{v: x}, nil
}

// ElementFromInt64 wraps a small non-negative literal as an ElementModQ,
// useful for constants such as contest constants and sequence orders.
func ElementFromInt64(n int64) *ElementModQ {
	return &ElementModQ{v: big.NewInt(n)}
}

// ElementFromUint64P wraps a small non-negative literal as an ElementModP.
func ElementFromUint64P(n uint64) *ElementModP {
	return &ElementModP{v: new(big.Int).SetUint64(n)}
}
