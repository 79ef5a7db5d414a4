// Package group implements the modular arithmetic the rest of the core is
// built on: elements of Z_p and the order-q subgroup G_q it contains, plus
// the two named parameter sets (standard and test) that define p, q and the
// generator g.
package group

import (
	"math/big"
	"sync"
)

// ParamSetName identifies one of the published parameter sets.
type ParamSetName string

const (
	// ParamSetStandard is the production parameter set: a ~4096-bit prime p
	// defining a subgroup of order q = 2^256 - 189.
	ParamSetStandard ParamSetName = "standard"
	// ParamSetTest uses small primes, fast enough for unit tests, with the
	// same algebraic shape (p, q, g, r = (p-1)/q).
	ParamSetTest ParamSetName = "test"
)

// Params is one named (p, q, g, r) parameter set.
type Params struct {
	Name ParamSetName
	P    *big.Int // large prime modulus
	Q    *big.Int // prime order of the subgroup G_q
	G    *big.Int // generator of G_q
	R    *big.Int // cofactor r = (p-1)/q
}

// Standard 4096-bit election parameters: the published ElectionGuard
// constants (original_source/src/electionguard/constants.py's
// STANDARD_CONSTANTS), p an RFC3526 Group 16 modulus, q = 2^256 - 189, and g
// the generator of the order-q subgroup G_q that q was chosen to divide
// p-1 for.
const (
	standardPHex = "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF93C467E37DB0C7A4D1BE3F810152CB56A1CECC3AF65CC0190C03DF34709AFFBD8E4B59FA03A9F0EED0649CCB621057D11056AE9132135A08E43B4673D74BAFEA58DEB878CC86D733DBE7BF38154B36CF8A96D1567899AAAE0C09D4C8B6B7B86FD2A1EA1DE62FF8643EC7C271827977225E6AC2F0BD61C746961542A3CE3BEA5DB54FE70E63E6D09F8FC28658E80567A47CFDE60EE741E5D85A7BD46931CED8220365594964B839896FCAABCCC9B31959C083F22AD3EE591C32FAB2C7448F2A057DB2DB49EE52E0182741E53865F004CC8E704B7C5C40BF304C4D8C4F13EDF6047C555302D2238D8CE11DF2424F1B66C2C5D238D0744DB679AF2890487031F9C0AEA1C4BB6FE9554EE528FDF1B05E5B256223B2F09215F3719F9C7CCC69DDF172D0D6234217FCC0037F18B93EF5389130B7A661E5C26E54214068BBCAFEA32A67818BD3075AD1F5C7E9CC3D1737FB28171BAF84DBB6612B7881C1A48E439CD03A92BF52225A2B38E6542E9F722BCE15A381B5753EA842763381CCAE83512B30511B32E5E8D80362149AD030AABA5F3A5798BB22AA7EC1B6D0F17903F4E22D840734AA85973F79A93FFB82A75C47C03D43D2F9CA02D03199BACEDDD4533A52566AFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"
	standardQHex = "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF43"
	standardGHex = "1D41E49C477E15EAEEF0C5E4AC08D4A46C268CD3424FC01D13769BDB43673218587BC86C4C1448D006A03699F3ABAE5FEB19E296F5D143CC5E4A3FC89088C9F4523D166EE3AE9D5FB03C0BDD77ADD5C017F6C55E2EC92C226FEF5C6C1DF2E7C36D90E7EAADE098241D3409983BCCD2B5379E9391FBC62F9F8D939D1208B160367C134264122189595EC85C8CDBE5F9D307F46912C04932F8C16815A76B4682BD6BDC0ED52B00D8D30F59C731D5A7FFAE8165D53CF96649AAC2B743DA56F14F19DACC5236F29B1AB9F9BEFC69697293D5DEAD8B5BF5DE9BAB6DE67C45719E56344A3CBDF3609824B1B578E34EAEB6DD3190AB3571D6D671C512282C1DA7BD36B4251D2584FADEA80B9E141423074DD9B5FB83ACBDEAD4C87A58FFF517F977A83080370A3B0CF98A1BC2978C47AAC29611FD6C40E2F9875C35D50443A9AA3F49611DCD3A0D6FF3CB3FACF31471BDB61860B92C594D4E46569BB39FEEADFF1FD64C836A6D6DB85C6BA7241766B7AB56BF739633B054147F7170921412E948D9E47402D15BB1C257318612C121C36B80EB8433C08E7D0B7149E3AB0A8735A92EDCE8FF943E28A2DCEACFCC69EC318909CB047BE1C5858844B5AD44F22EEB289E4CC554F7A5E2F3DEA026877FF92851816071CE028EB868D965CCB2D2295A8C55BD1C070B39B09AE06B37D29343B9D8997DC244C468B980970731736EE018BBADB987"
)

func newParamsFromHex(name ParamSetName, pHex, qHex, gHex string) *Params {
	p, ok := new(big.Int).SetString(pHex, 16)
	if !ok {
		panic("group: invalid p hex literal for " + string(name))
	}
	q, ok := new(big.Int).SetString(qHex, 16)
	if !ok {
		panic("group: invalid q hex literal for " + string(name))
	}
	g, ok := new(big.Int).SetString(gHex, 16)
	if !ok {
		panic("group: invalid g hex literal for " + string(name))
	}
	r := new(big.Int).Div(new(big.Int).Sub(p, big.NewInt(1)), q)
	return newParams(name, p, q, g, r)
}

// newParams rejects a (p, q, g) triple where q does not divide p-1, or
// where g does not generate a subgroup of order exactly q. Either defect
// would otherwise silently produce a meaningless cofactor and a generator
// that fails its own ValidResidue check downstream, instead of failing loud
// and early at parameter-set construction.
func newParams(name ParamSetName, p, q, g, r *big.Int) *Params {
	rem := new(big.Int).Mod(new(big.Int).Sub(p, big.NewInt(1)), q)
	if rem.Sign() != 0 {
		panic("group: q does not divide p-1 for parameter set " + string(name))
	}
	if new(big.Int).Exp(g, q, p).Cmp(big.NewInt(1)) != 0 {
		panic("group: g is not a generator of the order-q subgroup for parameter set " + string(name))
	}
	return &Params{Name: name, P: p, Q: q, G: g, R: r}
}

// newTestParams returns the small parameter set used by scenario S1 in the
// spec: p=18446744073704586917, q=65521, g=15463152587872997502.
func newTestParams() *Params {
	p, _ := new(big.Int).SetString("18446744073704586917", 10)
	q, _ := new(big.Int).SetString("65521", 10)
	g, _ := new(big.Int).SetString("15463152587872997502", 10)
	r := new(big.Int).Div(new(big.Int).Sub(p, big.NewInt(1)), q)
	return newParams(ParamSetTest, p, q, g, r)
}

var (
	standardParams = newParamsFromHex(ParamSetStandard, standardPHex, standardQHex, standardGHex)
	testParams     = newTestParams()

	activeMu     sync.RWMutex
	activeParams = testParams
)

// Init selects the process-wide active parameter set. It is intended to be
// called once at process start; the core treats the selection as stable for
// the remainder of the run (spec.md §5: "process-global... must not be
// mutated thereafter").
func Init(name ParamSetName) {
	activeMu.Lock()
	defer activeMu.Unlock()
	switch name {
	case ParamSetStandard:
		activeParams = standardParams
	case ParamSetTest:
		activeParams = testParams
	default:
		panic("group: unknown parameter set " + string(name))
	}
	resetRadix()
}

// Active returns the currently selected parameter set.
func Active() *Params {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return activeParams
}
