package decryption

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/evoteguard/eg-core/crypto/elgamal"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/log"
)

// State tracks a decryption ceremony's progress, mirroring the key
// ceremony's per-round state machine (spec.md §4.11).
type State int

const (
	Collecting State = iota
	QuorumReached
	RequestingCompensations
	ReconstructingMissingShares
	Decrypting
	Done
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "Collecting"
	case QuorumReached:
		return "QuorumReached"
	case RequestingCompensations:
		return "RequestingCompensations"
	case ReconstructingMissingShares:
		return "ReconstructingMissingShares"
	case Decrypting:
		return "Decrypting"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// guardianPair keys compensated shares the same way the key ceremony keys
// backups: an available guardian standing in for a missing one.
type guardianPair struct {
	AvailableID string
	MissingID   string
}

// Mediator composes every available (and, if needed, reconstructed)
// guardian's partial decryption shares into a plaintext result for a fixed
// set of ciphertexts, addressed by an arbitrary caller-chosen key (a
// contest/selection pair flattened to a string, or a ballot id, depending
// on what's being decrypted). It never holds a guardian secret, only public
// keys and the shares guardians submit (spec.md §4.11, grounded on
// original_source/src/electionguard/decryption_mediator.py's
// DecryptionMediator).
type Mediator struct {
	mu sync.Mutex

	numberOfGuardians int
	quorum            int
	extendedBaseHash  *group.ElementModQ
	ciphertexts       map[string]*elgamal.Ciphertext

	state State

	availablePublicKeys map[string]*group.ElementModP
	availableSequence   map[string]int
	missingPublicKeys   map[string]*group.ElementModP

	shares            map[string]map[string]SelectionShare         // guardianID -> key -> share
	compensatedShares map[guardianPair]map[string]CompensatedShare // pair -> key -> share
	reconstructedKeys map[string]bool                              // missingGuardianID -> reconstruction done

	plaintext map[string]*Result
}

// Result is one ciphertext key's recovered plaintext integer together with
// every guardian share (direct or reconstructed) that combined to produce
// it, so a published tally can carry its own decryption evidence rather
// than just the bare integer (spec.md §6, matching
// original_source/src/electionguard/tally.py's
// PlaintextTallySelection.shares).
type Result struct {
	Value  int
	Shares []SelectionShare
}

// New starts a decryption mediator over a fixed set of ciphertexts (e.g. a
// tally's per-selection accumulators, or one spoiled ballot's selections).
func New(numberOfGuardians, quorum int, extendedBaseHash *group.ElementModQ, ciphertexts map[string]*elgamal.Ciphertext) *Mediator {
	return &Mediator{
		numberOfGuardians:   numberOfGuardians,
		quorum:              quorum,
		extendedBaseHash:    extendedBaseHash,
		ciphertexts:         ciphertexts,
		state:               Collecting,
		availablePublicKeys: make(map[string]*group.ElementModP),
		availableSequence:   make(map[string]int),
		missingPublicKeys:   make(map[string]*group.ElementModP),
		shares:              make(map[string]map[string]SelectionShare),
		compensatedShares:   make(map[guardianPair]map[string]CompensatedShare),
		reconstructedKeys:   make(map[string]bool),
	}
}

// State returns the ceremony's current progress.
func (m *Mediator) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Announce records a guardian's presence along with its partial decryption
// share for every ciphertext, verifying each share's proof before
// accepting it. Re-announcement by the same guardian is a no-op, matching
// the Python mediator's "only allow a guardian to announce once" rule.
func (m *Mediator) Announce(guardianID string, sequenceOrder int, publicKey *group.ElementModP, shares map[string]SelectionShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.availablePublicKeys[guardianID]; ok {
		log.GuardianInfow(guardianID, "decryption: guardian already announced")
		return nil
	}
	for key, s := range shares {
		ct, ok := m.ciphertexts[key]
		if !ok {
			return fmt.Errorf("decryption: share for unknown ciphertext key %s", key)
		}
		if !VerifyPartialDecrypt(s, publicKey, m.extendedBaseHash, ct) {
			log.GuardianWarnw(guardianID, "decryption: rejecting share with invalid proof", "key", key)
			return fmt.Errorf("decryption: guardian %s submitted an invalid share for %s", guardianID, key)
		}
	}

	m.availablePublicKeys[guardianID] = publicKey
	m.availableSequence[guardianID] = sequenceOrder
	m.shares[guardianID] = shares

	if len(m.availablePublicKeys) >= m.quorum && m.state == Collecting {
		m.state = QuorumReached
	}
	return nil
}

// AnnounceMissing records that a guardian will not participate, by public
// key rather than live secret. A guardian that has already announced as
// available cannot also be marked missing.
func (m *Mediator) AnnounceMissing(guardianID string, publicKey *group.ElementModP) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.availablePublicKeys[guardianID]; ok {
		log.GuardianInfow(guardianID, "decryption: guardian already announced available, ignoring missing report")
		return
	}
	m.missingPublicKeys[guardianID] = publicKey
}

// ValidateMissingGuardians checks that the caller's view of the full
// guardian set is consistent with what this mediator has observed: every
// guardian must be either available or accounted for as missing, with no
// duplicates or omissions. It compares ids only: the public keys recorded
// for missing guardians are not checked, a repeated AnnounceMissing for the
// same id replaces the stored key, and Decrypt does not call it.
func (m *Mediator) ValidateMissingGuardians(allGuardianIDs []string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool, len(allGuardianIDs))
	for _, id := range allGuardianIDs {
		if seen[id] {
			return false
		}
		seen[id] = true
		_, available := m.availablePublicKeys[id]
		_, missing := m.missingPublicKeys[id]
		if !available && !missing {
			return false
		}
	}
	if len(seen) != m.numberOfGuardians {
		return false
	}
	return true
}

// AnnouncementComplete reports whether a quorum has announced and every
// guardian is accounted for as either available or missing.
func (m *Mediator) AnnouncementComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.availablePublicKeys) < m.quorum {
		return false
	}
	return len(m.availablePublicKeys)+len(m.missingPublicKeys) == m.numberOfGuardians
}

// MissingGuardianIDs returns the guardians reported missing.
func (m *Mediator) MissingGuardianIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.missingPublicKeys))
	for id := range m.missingPublicKeys {
		out = append(out, id)
	}
	return out
}

// ReceiveCompensatedShare records one available guardian's stand-in share
// for one missing guardian on one ciphertext key, verifying its proof
// against that ciphertext before accepting it.
func (m *Mediator) ReceiveCompensatedShare(key string, cs CompensatedShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ct, ok := m.ciphertexts[key]
	if !ok {
		return fmt.Errorf("decryption: compensated share for unknown ciphertext key %s", key)
	}
	if !VerifyCompensatedDecrypt(cs, m.extendedBaseHash, ct) {
		log.GuardianWarnw(cs.AvailableGuardianID, "decryption: rejecting compensated share with invalid proof", "key", key, "missing", cs.MissingGuardianID)
		return fmt.Errorf("decryption: invalid compensated share from %s for missing guardian %s", cs.AvailableGuardianID, cs.MissingGuardianID)
	}

	pair := guardianPair{AvailableID: cs.AvailableGuardianID, MissingID: cs.MissingGuardianID}
	if m.compensatedShares[pair] == nil {
		m.compensatedShares[pair] = make(map[string]CompensatedShare)
	}
	m.compensatedShares[pair][key] = cs
	if m.state == QuorumReached {
		m.state = RequestingCompensations
	}
	return nil
}

// ReconstructMissingShares rebuilds, for every missing guardian and every
// ciphertext key, the share that guardian would have contributed, via
// Lagrange recombination of the available guardians' compensated shares
// (spec.md §4.11).
func (m *Mediator) ReconstructMissingShares() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.missingPublicKeys) == 0 {
		return nil
	}
	m.state = ReconstructingMissingShares

	for missingID := range m.missingPublicKeys {
		if m.reconstructedKeys[missingID] {
			continue
		}
		reconstructed := make(map[string]SelectionShare, len(m.ciphertexts))
		for key := range m.ciphertexts {
			var perKey []CompensatedShare
			for pair, shares := range m.compensatedShares {
				if pair.MissingID != missingID {
					continue
				}
				s, ok := shares[key]
				if !ok {
					return fmt.Errorf("decryption: missing compensated share from %s for %s/%s", pair.AvailableID, missingID, key)
				}
				perKey = append(perKey, s)
			}
			if len(perKey) == 0 {
				return fmt.Errorf("decryption: no compensated shares submitted for missing guardian %s", missingID)
			}
			share, err := ReconstructMissingShare(perKey, func(id string) int { return m.availableSequence[id] })
			if err != nil {
				return fmt.Errorf("decryption: reconstruct %s for %s: %w", missingID, key, err)
			}
			reconstructed[key] = SelectionShare{GuardianID: missingID, Share: share}
		}
		m.shares[missingID] = reconstructed
		m.reconstructedKeys[missingID] = true
	}
	return nil
}

func (m *Mediator) readyToDecryptLocked() bool {
	if len(m.availablePublicKeys)+len(m.missingPublicKeys) != m.numberOfGuardians {
		return false
	}
	if len(m.availablePublicKeys) < m.quorum {
		return false
	}
	for id := range m.missingPublicKeys {
		if !m.reconstructedKeys[id] {
			return false
		}
	}
	return true
}

// Decrypt combines every guardian's share (available and reconstructed)
// for each ciphertext and recovers its plaintext integer, keeping the
// contributing shares alongside it in the returned Result. It is a no-op
// returning the cached result if Done has already been reached.
func (m *Mediator) Decrypt() (map[string]*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Done {
		return m.plaintext, nil
	}
	if !m.readyToDecryptLocked() {
		return nil, fmt.Errorf("decryption: not ready to decrypt: quorum or reconstruction incomplete")
	}
	m.state = Decrypting

	// Each ciphertext's combine-and-recover is independent of every other
	// key's, so they run concurrently rather than one at a time (spec.md
	// §5's worker pool for CPU-bound operations, applied here the same way
	// ballot.EncryptBallot parallelizes its per-contest encryption).
	out := make(map[string]*Result, len(m.ciphertexts))
	var mu sync.Mutex
	var g errgroup.Group
	for key, ct := range m.ciphertexts {
		key, ct := key, ct
		g.Go(func() error {
			var perGuardian []*group.ElementModP
			contributing := make([]SelectionShare, 0, len(m.shares))
			for _, guardianShares := range m.shares {
				s, ok := guardianShares[key]
				if !ok {
					return fmt.Errorf("decryption: no share for %s from one of the announced guardians", key)
				}
				perGuardian = append(perGuardian, s.Share)
				contributing = append(contributing, s)
			}
			combined := CombineShares(perGuardian...)
			plain, err := RecoverPlaintext(ct, combined)
			if err != nil {
				return fmt.Errorf("decryption: recover %s: %w", key, err)
			}
			mu.Lock()
			out[key] = &Result{Value: plain, Shares: contributing}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.plaintext = out
	m.state = Done
	return out, nil
}

// GetPlaintextTally returns the decrypted result, or nil if decryption has
// not completed yet (spec.md §4.11: "returns nil until the ceremony is
// complete").
func (m *Mediator) GetPlaintextTally() map[string]*Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Done {
		return nil
	}
	return m.plaintext
}
