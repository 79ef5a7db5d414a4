// Package guardian models a single trustee's share of the election secret
// key: the keypair and secret polynomial generated during the key
// ceremony, the public record derived from it, and the encrypted backup a
// guardian sends to every other guardian for later compensation (spec.md
// §4.6-4.7).
package guardian

import (
	"fmt"
	"math/big"

	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/elgamal"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/polynomial"
	"github.com/evoteguard/eg-core/crypto/proof"
	"github.com/evoteguard/eg-core/log"
)

// KeyPair is a guardian's full secret state: identity, the degree-(k-1)
// polynomial whose constant term is the guardian's secret key, and the
// derived ElGamal keypair. Never shared outside the guardian process.
type KeyPair struct {
	OwnerID         string
	SequenceOrder   int
	Polynomial      *polynomial.Polynomial
	ElectionKeyPair *elgamal.KeyPair
}

// GenerateKeyPair runs the key-generation round for one guardian: draws a
// degree-(quorum-1) polynomial (from seed if provided, for reproducible
// test vectors) and derives the election keypair from its constant term.
func GenerateKeyPair(ownerID string, sequenceOrder, quorum int, seed *group.ElementModQ) (*KeyPair, error) {
	poly, err := polynomial.Generate(quorum, seed)
	if err != nil {
		return nil, fmt.Errorf("guardian: generate keypair: %w", err)
	}
	ek, err := elgamal.KeyPairFromSecret(poly.Coefficients[0])
	if err != nil {
		return nil, fmt.Errorf("guardian: generate keypair: %w", err)
	}
	return &KeyPair{
		OwnerID:         ownerID,
		SequenceOrder:   sequenceOrder,
		Polynomial:      poly,
		ElectionKeyPair: ek,
	}, nil
}

// PublicKey is the published half of a guardian's key-ceremony contribution:
// enough for every other guardian to verify the coefficient proofs and
// compute recovery public keys.
type PublicKey struct {
	OwnerID       string
	SequenceOrder int
	Key           *group.ElementModP
	Commitments   []*group.ElementModP
	Proofs        []*proof.SchnorrProof
}

// Share derives the publishable PublicKey from a guardian's secret keypair.
func (kp *KeyPair) Share() *PublicKey {
	return &PublicKey{
		OwnerID:       kp.OwnerID,
		SequenceOrder: kp.SequenceOrder,
		Key:           kp.ElectionKeyPair.Public,
		Commitments:   kp.Polynomial.Commitments,
		Proofs:        kp.Polynomial.Proofs,
	}
}

// VerifyCommitmentProofs checks every coefficient's Schnorr proof against
// its published commitment (spec.md §4.7 round 1: "Verifiers confirm every
// coefficient proof").
func (pk *PublicKey) VerifyCommitmentProofs() bool {
	if len(pk.Proofs) != len(pk.Commitments) {
		return false
	}
	for i, commitment := range pk.Commitments {
		if !pk.Proofs[i].IsValid(commitment) {
			return false
		}
	}
	return true
}

// PartialKeyBackup is the hashed-ElGamal-encrypted coordinate a guardian
// sends to every other guardian so that guardian's share can later be
// reconstructed if they go missing at decryption time (spec.md §4.7 round
// 2). The auxiliary RSA transport present in older ElectionGuard sources is
// superseded entirely by this hashed-ElGamal channel.
type PartialKeyBackup struct {
	OwnerID                 string
	DesignatedID            string
	DesignatedSequenceOrder int
	EncryptedCoordinate     *elgamal.HashedCiphertext
}

// BackupSeed derives the deterministic seed string used both to encrypt and
// later decrypt a partial key backup (spec.md §4.7: "seed =
// hash_elems('backup', owner_id, designated_sequence_order)").
func BackupSeed(ownerID string, designatedSequenceOrder int) string {
	return eghash.HashElems("backup", ownerID, designatedSequenceOrder).Int().String()
}

// GenerateBackup computes y = P_ownerID(designatedSequenceOrder) and
// encrypts it under the designated guardian's public key.
func (kp *KeyPair) GenerateBackup(designated *PublicKey, nonce *group.ElementModQ) (*PartialKeyBackup, error) {
	y := polynomial.Coordinate(designated.SequenceOrder, kp.Polynomial)
	seed := BackupSeed(kp.OwnerID, designated.SequenceOrder)
	ciphertext, err := elgamal.HashedEncrypt(y.Int().Bytes(), nonce, designated.Key, seed)
	if err != nil {
		log.GuardianWarnw(kp.OwnerID, "guardian: failed to encrypt partial key backup", "designated", designated.OwnerID, "error", err)
		return nil, fmt.Errorf("guardian: generate backup: %w", err)
	}
	return &PartialKeyBackup{
		OwnerID:                 kp.OwnerID,
		DesignatedID:            designated.OwnerID,
		DesignatedSequenceOrder: designated.SequenceOrder,
		EncryptedCoordinate:     ciphertext,
	}, nil
}

// DecryptBackup recovers the coordinate y from a backup addressed to kp.
func (kp *KeyPair) DecryptBackup(backup *PartialKeyBackup) (*group.ElementModQ, error) {
	seed := BackupSeed(backup.OwnerID, kp.SequenceOrder)
	b, err := elgamal.HashedDecrypt(backup.EncryptedCoordinate, kp.ElectionKeyPair.Secret, seed)
	if err != nil {
		return nil, fmt.Errorf("guardian: decrypt backup: %w", err)
	}
	x, err := group.NewElementModQ(new(big.Int).SetBytes(b))
	if err != nil {
		return nil, fmt.Errorf("guardian: decrypt backup: %w", err)
	}
	return x, nil
}

// VerifyBackup checks a decrypted coordinate against the owner's published
// commitments (spec.md §4.7 round 3).
func VerifyBackup(y *group.ElementModQ, designatedSequenceOrder int, ownerCommitments []*group.ElementModP) bool {
	return polynomial.VerifyCoordinate(y, designatedSequenceOrder, ownerCommitments)
}

// RecoveryPublicKey computes R_{i,m} = prod_j commitments_m[j]^(i^j), the
// public key corresponding to the missing guardian m's polynomial evaluated
// at the available guardian i's sequence order (spec.md §4.11). It equals
// g^{P_m(i)} without ever learning P_m(i) itself.
func RecoveryPublicKey(availableSequenceOrder int, missingCommitments []*group.ElementModP) *group.ElementModP {
	x := group.ElementFromInt64(int64(availableSequenceOrder))
	product := group.One()
	for j, commitment := range missingCommitments {
		exponent := powQInt(x, j)
		product = group.MulP(product, group.PowP(commitment, exponent))
	}
	return product
}

func powQInt(base *group.ElementModQ, exp int) *group.ElementModQ {
	result := group.ElementFromInt64(1)
	for i := 0; i < exp; i++ {
		result = group.MulQ(result, base)
	}
	return result
}
