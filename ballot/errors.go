package ballot

import "fmt"

// ErrOvervote is returned when a voter's affirmative selections for a
// contest exceed number_elected: no valid constant-sum proof can be
// generated, so encryption fails outright (spec.md §4.8's overvote policy).
var ErrOvervote = fmt.Errorf("ballot: overvote: selections exceed number elected")

// ErrUnknownSelection is returned when a plaintext contest marks a
// selection id the manifest doesn't define for that contest.
var ErrUnknownSelection = fmt.Errorf("ballot: selection id not found in contest description")

// ErrProofVerificationFailed is returned by the self-verification step when
// a freshly generated selection, contest, or ballot proof does not check
// out against its own ciphertext (spec.md §4.8: "surfaces as ... encryption
// failed and the result is discarded").
var ErrProofVerificationFailed = fmt.Errorf("ballot: proof verification failed on freshly encrypted ballot")
