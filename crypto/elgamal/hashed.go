package elgamal

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/evoteguard/eg-core/crypto/group"
)

// sessionKeyLen is the fixed byte length a session key is zero-padded to
// before use: the byte length of the active modulus p, regardless of how
// many leading zero bytes K^n's big-integer representation happened to have
// (spec.md §4.4's edge case).
func sessionKeyLen() int { return (group.Active().P.BitLen() + 7) / 8 }

// HashedCiphertext is a hashed-ElGamal encryption of an arbitrary-length
// byte payload: pad = g^n, an XOR-stream ciphertext, and an HMAC binding pad
// and ciphertext together.
type HashedCiphertext struct {
	Pad        *group.ElementModP
	Ciphertext []byte
	MAC        []byte
}

// HashedEncrypt encrypts payload under publicKey with nonce n, seeded by
// seed (mixed into the KDF so distinct purposes never share a keystream).
// session key = hash(K^n); (encKey, macKey) are derived from it; the
// payload is XORed against a KDF keystream and MAC'd with HMAC-SHA-256 over
// (pad || ciphertext).
func HashedEncrypt(payload []byte, n *group.ElementModQ, publicKey *group.ElementModP, seed string) (*HashedCiphertext, error) {
	pad := group.GPowP(n)
	sessionKey := group.PowP(publicKey, n)
	encKey, macKey := hashedKDF(sessionKey, seed)

	ciphertext := xorKeystream(payload, encKey, seed)
	mac := hashedMAC(macKey, pad, ciphertext)

	return &HashedCiphertext{Pad: pad, Ciphertext: ciphertext, MAC: mac}, nil
}

// HashedDecrypt recovers the plaintext payload using the secret key,
// verifying the MAC before returning anything (spec.md §4.4: "decryption
// verifies mac before returning plaintext").
func HashedDecrypt(c *HashedCiphertext, secret *group.ElementModQ, seed string) ([]byte, error) {
	sessionKey := group.PowP(c.Pad, secret)
	encKey, macKey := hashedKDF(sessionKey, seed)

	want := hashedMAC(macKey, c.Pad, c.Ciphertext)
	if !hmac.Equal(want, c.MAC) {
		return nil, ErrMACMismatch
	}
	return xorKeystream(c.Ciphertext, encKey, seed), nil
}

// hashedKDF derives a 32-byte encryption key and a 32-byte MAC key from the
// session key element, zero-padding its big-integer byte representation to
// a fixed length first so that leading zero bytes never shorten the input
// to the hash.
func hashedKDF(sessionKey *group.ElementModP, seed string) (encKey, macKey []byte) {
	padded := zeroPad(sessionKey.Int().Bytes(), sessionKeyLen())

	encH := sha256.New()
	encH.Write([]byte("enc|"))
	encH.Write([]byte(seed))
	encH.Write(padded)
	enc := encH.Sum(nil)

	macH := sha256.New()
	macH.Write([]byte("mac|"))
	macH.Write([]byte(seed))
	macH.Write(padded)
	mac := macH.Sum(nil)

	return enc, mac
}

func hashedMAC(macKey []byte, pad *group.ElementModP, ciphertext []byte) []byte {
	h := hmac.New(sha256.New, macKey)
	h.Write([]byte(pad.ToHex()))
	h.Write(ciphertext)
	return h.Sum(nil)
}

// xorKeystream generates a keystream long enough for data by hashing
// encKey with an incrementing block counter, then XORs it against data.
// The same function both encrypts and decrypts since XOR is its own
// inverse.
func xorKeystream(data, encKey []byte, seed string) []byte {
	out := make([]byte, len(data))
	block := 0
	for offset := 0; offset < len(data); offset += sha256.Size {
		h := sha256.New()
		h.Write(encKey)
		h.Write([]byte(seed))
		h.Write(blockCounter(block))
		stream := h.Sum(nil)

		n := len(data) - offset
		if n > len(stream) {
			n = len(stream)
		}
		for i := 0; i < n; i++ {
			out[offset+i] = data[offset+i] ^ stream[i]
		}
		block++
	}
	return out
}

func blockCounter(n int) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

func zeroPad(b []byte, length int) []byte {
	if len(b) >= length {
		return b
	}
	out := make([]byte, length)
	copy(out[length-len(b):], b)
	return out
}
