package elgamal

import "fmt"

// ErrZeroNonce is returned when Encrypt is called with a nonce of zero; an
// all-zero nonce leaks the plaintext through the pad and is always rejected.
var ErrZeroNonce = fmt.Errorf("elgamal: nonce must be nonzero")

// ErrSecretTooSmall is returned when a keypair is constructed from a secret
// less than 2.
var ErrSecretTooSmall = fmt.Errorf("elgamal: secret key must be >= 2")

// ErrMACMismatch is returned by HashedElGamal decryption when the computed
// MAC does not match the ciphertext's.
var ErrMACMismatch = fmt.Errorf("elgamal: hashed-ElGamal MAC verification failed")
