package elgamal

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/evoteguard/eg-core/crypto/group"
)

func TestHashedEncryptDecryptRoundTrip(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	kp, err := GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	n, err := group.RandQ()
	c.Assert(err, qt.IsNil)
	for n.IsZero() {
		n, err = group.RandQ()
		c.Assert(err, qt.IsNil)
	}

	payload := []byte("this is a polynomial coordinate, serialized")
	ct, err := HashedEncrypt(payload, n, kp.Public, "backup|owner-1|2")
	c.Assert(err, qt.IsNil)

	got, err := HashedDecrypt(ct, kp.Secret, "backup|owner-1|2")
	c.Assert(err, qt.IsNil)
	c.Assert(bytes.Equal(got, payload), qt.IsTrue)
}

func TestHashedDecryptRejectsTamperedCiphertext(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	kp, err := GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	n, err := group.RandQ()
	c.Assert(err, qt.IsNil)
	for n.IsZero() {
		n, err = group.RandQ()
		c.Assert(err, qt.IsNil)
	}

	ct, err := HashedEncrypt([]byte("secret coordinate"), n, kp.Public, "seed")
	c.Assert(err, qt.IsNil)

	ct.Ciphertext[0] ^= 0xFF
	_, err = HashedDecrypt(ct, kp.Secret, "seed")
	c.Assert(err, qt.Equals, ErrMACMismatch)
}

func TestHashedEncryptHandlesLongPayloadAcrossBlocks(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	kp, err := GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	n, err := group.RandQ()
	c.Assert(err, qt.IsNil)
	for n.IsZero() {
		n, err = group.RandQ()
		c.Assert(err, qt.IsNil)
	}

	payload := bytes.Repeat([]byte("0123456789abcdef"), 10) // > one SHA-256 block
	ct, err := HashedEncrypt(payload, n, kp.Public, "seed")
	c.Assert(err, qt.IsNil)

	got, err := HashedDecrypt(ct, kp.Secret, "seed")
	c.Assert(err, qt.IsNil)
	c.Assert(bytes.Equal(got, payload), qt.IsTrue)
}
