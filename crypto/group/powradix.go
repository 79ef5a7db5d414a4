package group

import (
	"math/big"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RadixOption selects a memory-vs-speed tradeoff for the fixed-base
// exponentiation table (spec.md §4.1). Larger options precompute more
// entries (more memory) in exchange for fewer multiplications per GPowP
// call.
type RadixOption int

const (
	// RadixNone disables acceleration; GPowP falls back to naive powmod.
	RadixNone RadixOption = iota
	// RadixLow partitions the 256-bit exponent into 2-bit slices.
	RadixLow
	// RadixHigh partitions into 4-bit slices.
	RadixHigh
	// RadixExtreme partitions into 8-bit slices, trading the most memory
	// for the fewest multiplications.
	RadixExtreme
)

// bitsPerSlice returns b, the number of exponent bits each radix digit
// covers, for a given acceleration option.
func bitsPerSlice(opt RadixOption) int {
	switch opt {
	case RadixLow:
		return 2
	case RadixHigh:
		return 4
	case RadixExtreme:
		return 8
	default:
		return 0
	}
}

// exponentBits is the bit width of exponents the table is built for; Z_q
// elements for both parameter sets fit comfortably under this bound.
const exponentBits = 256

// powRadix precomputes g^(k*2^(i*b)) for every slice index i and every
// possible b-bit digit k, so that g^e can be computed as a product of at
// most ceil(256/b) table lookups instead of 256 squarings.
type powRadix struct {
	b      int
	p      *big.Int
	cache  *lru.Cache[string, *big.Int] // key: "i:k" -> g^(k*2^(i*b)) mod p
	base   *big.Int
	slices int
}

func newPowRadix(g, p, _ *big.Int, opt RadixOption) *powRadix {
	b := bitsPerSlice(opt)
	if b == 0 {
		return nil
	}
	slices := (exponentBits + b - 1) / b
	// Table has slices * 2^b entries; cap the LRU so a RadixLow table
	// (128 slices * 4 entries) and a RadixExtreme table (32 slices * 256
	// entries) both fit without unbounded growth if callers churn through
	// many parameter-set switches in a test process.
	size := slices * (1 << uint(b))
	cache, _ := lru.New[string, *big.Int](size)
	pr := &powRadix{b: b, p: new(big.Int).Set(p), cache: cache, base: new(big.Int).Set(g), slices: slices}
	pr.precompute()
	return pr
}

func (pr *powRadix) precompute() {
	digitSpan := uint(1) << uint(pr.b)
	for i := 0; i < pr.slices; i++ {
		shift := uint(i * pr.b)
		base := new(big.Int).Exp(pr.base, new(big.Int).Lsh(big.NewInt(1), shift), pr.p)
		acc := big.NewInt(1)
		for k := uint(0); k < digitSpan; k++ {
			pr.cache.Add(radixKey(i, int(k)), new(big.Int).Set(acc))
			acc.Mul(acc, base)
			acc.Mod(acc, pr.p)
		}
	}
}

func radixKey(i, k int) string {
	// small integers; a manual builder avoids fmt overhead in the hot path
	return itoa(i) + ":" + itoa(k)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// exp computes g^e mod p by multiplying the ceil(256/b) table entries
// selected by e's b-bit digits.
func (pr *powRadix) exp(e *big.Int) *big.Int {
	result := big.NewInt(1)
	digitSpan := uint(1) << uint(pr.b)
	mask := new(big.Int).Sub(new(big.Int).SetUint64(uint64(digitSpan)), big.NewInt(1))
	ee := new(big.Int).Set(e)
	for i := 0; i < pr.slices; i++ {
		digit := new(big.Int).And(ee, mask)
		ee.Rsh(ee, uint(pr.b))
		k := int(digit.Int64())
		if k == 0 {
			continue
		}
		v, ok := pr.cache.Get(radixKey(i, k))
		if !ok {
			// table miss (shouldn't happen for a fully precomputed table);
			// fall back to direct computation for this slice.
			shift := uint(i * pr.b)
			base := new(big.Int).Exp(pr.base, new(big.Int).Lsh(big.NewInt(1), shift), pr.p)
			v = new(big.Int).Exp(base, digit, pr.p)
		}
		result.Mul(result, v)
		result.Mod(result, pr.p)
	}
	return result
}

var (
	radixMu            sync.RWMutex
	defaultRadix       *powRadix
	defaultRadixOption = RadixHigh
)

func resetRadix() {
	defaultRadix = newPowRadix(Active().G, Active().P, Active().Q, defaultRadixOption)
}

// SetRadixOption changes the memory-vs-speed tradeoff and rebuilds the
// table for the currently active parameter set.
func SetRadixOption(opt RadixOption) {
	radixMu.Lock()
	defer radixMu.Unlock()
	defaultRadixOption = opt
	resetRadix()
}

func gPowRadix(exp *ElementModQ) *ElementModP {
	radixMu.RLock()
	pr := defaultRadix
	radixMu.RUnlock()
	if pr == nil {
		z := new(big.Int).Exp(Active().G, exp.v, Active().P)
		return &ElementModP{v: z}
	}
	return &ElementModP{v: pr.exp(exp.v)}
}

func init() {
	resetRadix()
}
