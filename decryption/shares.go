// Package decryption implements threshold decryption: per-guardian partial
// decryption shares, compensated shares for missing guardians via stored
// backups, Lagrange recombination in the exponent, and the final
// discrete-log recovery of the plaintext tally (spec.md §4.11).
package decryption

import (
	"fmt"

	"github.com/evoteguard/eg-core/crypto/dlog"
	"github.com/evoteguard/eg-core/crypto/elgamal"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/polynomial"
	"github.com/evoteguard/eg-core/crypto/proof"
)

// SelectionShare is a single guardian's partial decryption of one
// ciphertext, paired with the Chaum-Pedersen proof that it shares a
// discrete log with that guardian's public key (spec.md §3's
// CiphertextDecryptionSelection).
type SelectionShare struct {
	GuardianID string
	Share      *group.ElementModP
	Proof      *proof.ChaumPedersenProof
}

// PartialDecrypt computes guardian i's share M_i = A^{s_i} for ciphertext
// (A, B) and a Chaum-Pedersen proof that log_A(M_i) = log_g(publicKey),
// with the challenge bound to the extended base hash and the full
// ciphertext (spec.md §4.11).
func PartialDecrypt(
	guardianID string,
	secret *group.ElementModQ,
	publicKey *group.ElementModP,
	extendedBaseHash *group.ElementModQ,
	ciphertext *elgamal.Ciphertext,
	proofSeed *group.ElementModQ,
) SelectionShare {
	share := group.PowP(ciphertext.Pad, secret)
	p := proof.MakeChaumPedersenProof(secret, extendedBaseHash, ciphertext.Pad, ciphertext.Data, share, proofSeed)
	return SelectionShare{GuardianID: guardianID, Share: share, Proof: p}
}

// VerifyPartialDecrypt checks a SelectionShare's proof against the
// guardian's public key and the ciphertext it decrypted.
func VerifyPartialDecrypt(s SelectionShare, publicKey *group.ElementModP, extendedBaseHash *group.ElementModQ, ciphertext *elgamal.Ciphertext) bool {
	return s.Proof.IsValid(extendedBaseHash, publicKey, ciphertext.Pad, ciphertext.Data, s.Share)
}

// CompensatedShare is an available guardian's stand-in share for a missing
// guardian's contribution to one ciphertext, computed from the stored
// backup coordinate rather than a live secret (spec.md §3's
// CompensatedDecryptionSelection).
type CompensatedShare struct {
	AvailableGuardianID string
	MissingGuardianID   string
	Share               *group.ElementModP
	RecoveryPublicKey   *group.ElementModP
	Proof               *proof.ChaumPedersenProof
}

// CompensatedDecrypt computes an available guardian i's compensated share
// M_{i,m} = A^{y_{i,m}} for the missing guardian m, where y_{i,m} =
// P_m(sequence_order_i) is the coordinate i received and stored during the
// key ceremony's backup round. The proof is relative to the recovery
// public key R_{i,m} = g^{P_m(sequence_order_i)} (spec.md §4.11).
func CompensatedDecrypt(
	availableGuardianID, missingGuardianID string,
	backupCoordinate *group.ElementModQ,
	recoveryPublicKey *group.ElementModP,
	extendedBaseHash *group.ElementModQ,
	ciphertext *elgamal.Ciphertext,
	proofSeed *group.ElementModQ,
) CompensatedShare {
	share := group.PowP(ciphertext.Pad, backupCoordinate)
	p := proof.MakeChaumPedersenProof(backupCoordinate, extendedBaseHash, ciphertext.Pad, ciphertext.Data, share, proofSeed)
	return CompensatedShare{
		AvailableGuardianID: availableGuardianID,
		MissingGuardianID:   missingGuardianID,
		Share:               share,
		RecoveryPublicKey:   recoveryPublicKey,
		Proof:               p,
	}
}

// VerifyCompensatedDecrypt checks a CompensatedShare's proof against its
// own recovery public key, standing in for the missing guardian's public
// key in the Chaum-Pedersen verification equation.
func VerifyCompensatedDecrypt(s CompensatedShare, extendedBaseHash *group.ElementModQ, ciphertext *elgamal.Ciphertext) bool {
	return s.Proof.IsValid(extendedBaseHash, s.RecoveryPublicKey, ciphertext.Pad, ciphertext.Data, s.Share)
}

// ReconstructMissingShare recombines a missing guardian's share in the
// exponent from the available guardians' compensated shares, via Lagrange
// interpolation: M_m = prod_i (M_{i,m})^{w_i}, where w_i is the Lagrange
// coefficient for guardian i's sequence order relative to the full
// available set (spec.md §4.11).
func ReconstructMissingShare(compensated []CompensatedShare, sequenceOrderOf func(guardianID string) int) (*group.ElementModP, error) {
	if len(compensated) == 0 {
		return nil, fmt.Errorf("decryption: cannot reconstruct missing share from zero compensated shares")
	}
	orders := make([]int, len(compensated))
	for i, cs := range compensated {
		orders[i] = sequenceOrderOf(cs.AvailableGuardianID)
	}

	result := group.One()
	for i, cs := range compensated {
		others := make([]int, 0, len(orders)-1)
		for j, o := range orders {
			if j != i {
				others = append(others, o)
			}
		}
		w, err := polynomial.LagrangeCoefficient(orders[i], others...)
		if err != nil {
			return nil, fmt.Errorf("decryption: reconstruct missing share: %w", err)
		}
		result = group.MulP(result, group.PowP(cs.Share, w))
	}
	return result, nil
}

// CombineShares returns the product of every guardian's share (available
// and reconstructed) for one ciphertext: M = prod_g M_g (spec.md §4.11).
func CombineShares(shares ...*group.ElementModP) *group.ElementModP {
	return group.MulPMany(shares...)
}

// RecoverPlaintext computes the integer encoded by ciphertext given the
// combined share M: t = B . M^-1, and returns dlog_g(t) via the shared
// discrete-log cache (spec.md §4.11, §4.12).
func RecoverPlaintext(ciphertext *elgamal.Ciphertext, combinedShare *group.ElementModP) (int, error) {
	inv, err := group.InvP(combinedShare)
	if err != nil {
		return 0, fmt.Errorf("decryption: recover plaintext: %w", err)
	}
	t := group.MulP(ciphertext.Data, inv)
	i, err := dlog.Shared().Lookup(t)
	if err != nil {
		return 0, fmt.Errorf("decryption: recover plaintext: %w", err)
	}
	return i, nil
}
