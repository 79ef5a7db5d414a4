// Package elgamal implements exponential ElGamal encryption over the group
// G_q, homomorphic addition of ciphertexts, and a hashed-ElGamal variant for
// encrypting variable-length byte payloads (guardian backup transport).
package elgamal

import (
	"fmt"

	"github.com/evoteguard/eg-core/crypto/dlog"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/log"
)

// KeyPair is a secret/public ElGamal keypair: public = g^secret mod p.
type KeyPair struct {
	Secret *group.ElementModQ
	Public *group.ElementModP
}

// GenerateKeyPair draws a uniform secret in [2, q) and derives the public
// key g^secret.
func GenerateKeyPair() (*KeyPair, error) {
	for {
		secret, err := group.RandQ()
		if err != nil {
			return nil, fmt.Errorf("elgamal: generate keypair: %w", err)
		}
		if secret.Int().Cmp(bigTwo) >= 0 {
			return KeyPairFromSecret(secret)
		}
	}
}

var bigTwo = group.ElementFromInt64(2).Int()

// KeyPairFromSecret builds a keypair from a caller-supplied secret, which
// must be >= 2 (spec.md §3: "secret >= 2").
func KeyPairFromSecret(secret *group.ElementModQ) (*KeyPair, error) {
	if secret.Int().Cmp(bigTwo) < 0 {
		return nil, ErrSecretTooSmall
	}
	return &KeyPair{Secret: secret, Public: group.GPowP(secret)}, nil
}

// Ciphertext is an exponential ElGamal ciphertext (pad, data) in G_q x G_q.
// The identity (1, 1) is the additive-zero element for homomorphic sums.
type Ciphertext struct {
	Pad  *group.ElementModP
	Data *group.ElementModP
}

// IdentityCiphertext returns the ElGamal encryption of 0 with nonce 0: the
// starting accumulator for tally contests.
func IdentityCiphertext() *Ciphertext {
	return &Ciphertext{Pad: group.One(), Data: group.One()}
}

// Encrypt draws a fresh nonzero nonce and encrypts m under publicKey,
// returning the ciphertext and the nonce used (callers that need the nonce
// for a proof retain it; callers that don't may discard it).
func Encrypt(m *group.ElementModQ, publicKey *group.ElementModP) (*Ciphertext, *group.ElementModQ, error) {
	n, err := group.RandQ()
	if err != nil {
		return nil, nil, fmt.Errorf("elgamal: encrypt: %w", err)
	}
	for n.IsZero() {
		if n, err = group.RandQ(); err != nil {
			return nil, nil, fmt.Errorf("elgamal: encrypt: %w", err)
		}
	}
	c, err := EncryptWithNonce(m, n, publicKey)
	return c, n, err
}

// EncryptWithNonce encrypts m under publicKey using the caller-supplied
// nonce n, returning (g^n, g^m . K^n). It fails if n is zero (spec.md
// §4.4): an all-zero nonce leaks m through the pad.
func EncryptWithNonce(m, n *group.ElementModQ, publicKey *group.ElementModP) (*Ciphertext, error) {
	if n.IsZero() {
		log.Warnw("elgamal: refusing to encrypt with a zero nonce")
		return nil, ErrZeroNonce
	}
	pad := group.GPowP(n)
	gm := group.GPowP(m)
	kn := group.PowP(publicKey, n)
	data := group.MulP(gm, kn)
	return &Ciphertext{Pad: pad, Data: data}, nil
}

// Decrypt recovers the integer plaintext from c using the secret key,
// computing dlog_g(data . pad^-secret) via the shared discrete-log cache.
func Decrypt(c *Ciphertext, secret *group.ElementModQ) (int, error) {
	padToSecret := group.PowP(c.Pad, secret)
	inv, err := group.InvP(padToSecret)
	if err != nil {
		return 0, fmt.Errorf("elgamal: decrypt: %w", err)
	}
	plaintextElem := group.MulP(c.Data, inv)
	i, err := dlog.Shared().Lookup(plaintextElem)
	if err != nil {
		return 0, fmt.Errorf("elgamal: decrypt: %w", err)
	}
	return i, nil
}

// DecryptKnownNonce recovers the integer plaintext given the public key and
// the original encryption nonce, without needing the secret key. This is
// used by the encryption-time self-verification step.
func DecryptKnownNonce(c *Ciphertext, publicKey *group.ElementModP, n *group.ElementModQ) (int, error) {
	kn := group.PowP(publicKey, n)
	inv, err := group.InvP(kn)
	if err != nil {
		return 0, fmt.Errorf("elgamal: decrypt_known_nonce: %w", err)
	}
	plaintextElem := group.MulP(c.Data, inv)
	i, err := dlog.Shared().Lookup(plaintextElem)
	if err != nil {
		return 0, fmt.Errorf("elgamal: decrypt_known_nonce: %w", err)
	}
	return i, nil
}

// Add returns the homomorphic sum of one or more ciphertexts, componentwise
// multiplication mod p. The identity is IdentityCiphertext().
func Add(ciphertexts ...*Ciphertext) *Ciphertext {
	pads := make([]*group.ElementModP, len(ciphertexts))
	datas := make([]*group.ElementModP, len(ciphertexts))
	for i, c := range ciphertexts {
		pads[i] = c.Pad
		datas[i] = c.Data
	}
	return &Ciphertext{Pad: group.MulPMany(pads...), Data: group.MulPMany(datas...)}
}

// CombinePublicKeys returns the product of every guardian's public key mod
// p: the joint election public key.
func CombinePublicKeys(keys ...*group.ElementModP) *group.ElementModP {
	return group.MulPMany(keys...)
}
