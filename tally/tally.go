// Package tally implements homomorphic accumulation of CAST ballots into a
// per-selection ciphertext tally, with SPOILED ballots retained verbatim
// for later per-ballot decryption (spec.md §4.10).
package tally

import (
	"fmt"
	"sync"

	"github.com/evoteguard/eg-core/ballot"
	"github.com/evoteguard/eg-core/crypto/elgamal"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/log"
)

// ErrInvalidProof is returned by Accumulate when revalidate is true and the
// ballot's own proofs fail to check out against its recorded ciphertexts
// (spec.md §4.10 step 2).
var ErrInvalidProof = fmt.Errorf("tally: ballot failed proof revalidation")

// ErrNotCast is returned when Accumulate is given a ballot whose state is
// not CAST (spec.md §4.10 step 1).
var ErrNotCast = fmt.Errorf("tally: ballot is not in CAST state")

// ErrAlreadyAccumulated is returned when a ballot id has already been
// folded into the tally; it is not an error worth aborting a batch over,
// but callers that care can check for it.
var ErrAlreadyAccumulated = fmt.Errorf("tally: ballot id already accumulated")

// ContestTally holds, for one contest, each real selection's running
// ciphertext accumulator, starting at the ElGamal identity (1, 1).
type ContestTally struct {
	SelectionCiphertexts map[string]*elgamal.Ciphertext
}

func newContestTally(desc ballot.ContestDescription) *ContestTally {
	ct := &ContestTally{SelectionCiphertexts: make(map[string]*elgamal.Ciphertext, len(desc.Selections))}
	for _, s := range desc.Selections {
		ct.SelectionCiphertexts[s.SelectionID] = elgamal.IdentityCiphertext()
	}
	return ct
}

// Tally accumulates CAST ballots across every contest in a manifest.
// Accumulation is a commutative monoid: concurrent or batched calls to
// Accumulate with disjoint ballot ids produce the same result regardless of
// grouping or order (spec.md §4.10's commutativity invariant).
type Tally struct {
	mu sync.Mutex

	manifest ballot.Manifest
	contests map[string]*ContestTally
	castIDs  map[string]bool

	// spoiled retains SPOILED ballots verbatim, keyed by ballot id, for
	// later per-ballot decryption; they are never folded into contests.
	spoiled map[string]*ballot.SubmittedBallot
}

// New starts a tally at the ElGamal identity for every selection named in
// the manifest.
func New(manifest ballot.Manifest) *Tally {
	t := &Tally{
		manifest: manifest,
		contests: make(map[string]*ContestTally, len(manifest.Contests)),
		castIDs:  make(map[string]bool),
		spoiled:  make(map[string]*ballot.SubmittedBallot),
	}
	for _, desc := range manifest.Contests {
		t.contests[desc.ContestID] = newContestTally(desc)
	}
	return t
}

// Accumulate folds a CAST ballot's real (non-placeholder) selections into
// the running per-contest accumulators. Revalidating each proof before
// accumulating is the caller's choice (spec.md §4.10 step 2: "optional but
// recommended") via revalidate; a submitted ballot has already had its
// proof-bearing nonces stripped, so revalidation only re-checks the proofs
// and crypto hashes already attached, not encryption-time freshness.
func (t *Tally) Accumulate(sb *ballot.SubmittedBallot, publicKey *group.ElementModP, revalidate bool) error {
	if sb.State != ballot.Cast {
		return ErrNotCast
	}
	if revalidate && !sb.IsValidEncryption(publicKey) {
		log.BallotWarnw(sb.BallotID, "tally: rejecting ballot with invalid proofs")
		return ErrInvalidProof
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.castIDs[sb.BallotID] {
		log.BallotWarnw(sb.BallotID, "tally: ignoring duplicate CAST ballot")
		return ErrAlreadyAccumulated
	}

	for _, contest := range sb.Contests {
		ct, ok := t.contests[contest.ContestID]
		if !ok {
			return fmt.Errorf("tally: ballot %s references unknown contest %s", sb.BallotID, contest.ContestID)
		}
		for _, selection := range contest.Selections {
			if selection.IsPlaceholder {
				continue
			}
			current, ok := ct.SelectionCiphertexts[selection.SelectionID]
			if !ok {
				return fmt.Errorf("tally: contest %s references unknown selection %s", contest.ContestID, selection.SelectionID)
			}
			ct.SelectionCiphertexts[selection.SelectionID] = elgamal.Add(current, selection.Ciphertext)
		}
	}
	t.castIDs[sb.BallotID] = true
	return nil
}

// Spoil retains a SPOILED ballot verbatim, keyed by ballot id, without
// touching any contest accumulator (spec.md §4.10: "SPOILED ballots are
// retained verbatim for per-ballot decryption; they are not accumulated").
func (t *Tally) Spoil(sb *ballot.SubmittedBallot) error {
	if sb.State != ballot.Spoiled {
		return fmt.Errorf("tally: ballot %s is not in SPOILED state", sb.BallotID)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spoiled[sb.BallotID] = sb
	return nil
}

// Contest returns the running accumulator for a contest, or nil if unknown.
func (t *Tally) Contest(contestID string) *ContestTally {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.contests[contestID]
}

// SpoiledBallots returns every retained SPOILED ballot.
func (t *Tally) SpoiledBallots() []*ballot.SubmittedBallot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*ballot.SubmittedBallot, 0, len(t.spoiled))
	for _, sb := range t.spoiled {
		out = append(out, sb)
	}
	return out
}

// CastBallotIDs returns the set of ballot ids already folded into the
// tally, for dedup bookkeeping by callers replaying an accumulation log.
func (t *Tally) CastBallotIDs() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]bool, len(t.castIDs))
	for id := range t.castIDs {
		out[id] = true
	}
	return out
}

// Merge combines another tally's accumulators into t, contest by contest
// and selection by selection, with disjoint cast-id bookkeeping. Both
// tallies must share the same manifest. This is the operation batched or
// parallel accumulation reduces to: fold a subset of ballots into each of N
// partial tallies, then Merge them pairwise or tree-wise.
func (t *Tally) Merge(other *Tally) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	for contestID, ct := range other.contests {
		mine, ok := t.contests[contestID]
		if !ok {
			return fmt.Errorf("tally: merge: unknown contest %s", contestID)
		}
		for selectionID, c := range ct.SelectionCiphertexts {
			current, ok := mine.SelectionCiphertexts[selectionID]
			if !ok {
				return fmt.Errorf("tally: merge: unknown selection %s in contest %s", selectionID, contestID)
			}
			mine.SelectionCiphertexts[selectionID] = elgamal.Add(current, c)
		}
	}
	for id := range other.castIDs {
		if t.castIDs[id] {
			return fmt.Errorf("tally: merge: ballot id %s accumulated in both tallies", id)
		}
		t.castIDs[id] = true
	}
	for id, sb := range other.spoiled {
		t.spoiled[id] = sb
	}
	return nil
}
