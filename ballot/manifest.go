// Package ballot implements the ballot encryption pipeline: selection and
// contest ciphertexts with their disjunctive/constant Chaum-Pedersen
// proofs, placeholder synthesis for n-of-m contests, and the per-device
// ballot code chain (spec.md §4.8-4.9).
package ballot

import "github.com/evoteguard/eg-core/crypto/group"

// SelectionDescription is the immutable manifest entry for one real
// selection (a candidate/option) within a contest.
type SelectionDescription struct {
	SelectionID     string
	SequenceOrder   int
	DescriptionHash *group.ElementModQ
}

// ContestDescription is the immutable manifest entry for one contest: its
// ordered real selections and how many may be marked affirmative.
type ContestDescription struct {
	ContestID       string
	SequenceOrder   int
	DescriptionHash *group.ElementModQ
	NumberElected   int
	Selections      []SelectionDescription
}

// PlaceholderCount is the number of synthetic placeholder selections this
// contest needs: exactly NumberElected, so that real 1s plus placeholder 1s
// can always be made to sum to NumberElected (spec.md §4.8c).
func (c ContestDescription) PlaceholderCount() int {
	return c.NumberElected
}

// Manifest is the ordered list of contests a ballot style covers.
type Manifest struct {
	ManifestHash *group.ElementModQ
	Contests     []ContestDescription
}

// EncryptionContext carries the election-wide parameters needed to encrypt
// a ballot: the joint public key and the extended base hash Q'. The
// selection and contest proof challenges are computed without Q'.
type EncryptionContext struct {
	JointPublicKey   *group.ElementModP
	ExtendedBaseHash *group.ElementModQ
}

// PlaintextContest is the voter's partial representation of a contest: only
// the selection ids actually marked affirmative need to be listed.
type PlaintextContest struct {
	ContestID  string
	Selections []string // selection ids marked affirmative
}

// PlaintextBallot is the voter's partial representation of a ballot: only
// contests the voter made any selection in need to be listed, and within
// each contest only the marked selections.
type PlaintextBallot struct {
	BallotID string
	Contests []PlaintextContest
}
