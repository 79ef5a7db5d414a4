// Package keyceremony implements the guardian key ceremony state machine: a
// mediator that relays public keys, backups, verifications, and challenges
// between guardians without ever holding a secret itself (spec.md §4.7),
// grounded on original_source/src/electionguard/key_ceremony_mediator.py's
// DataStore-of-announcements structure.
package keyceremony

import (
	"fmt"
	"sync"

	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/elgamal"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/guardian"
	"github.com/evoteguard/eg-core/log"
)

// State is the ceremony's progress, tracked per mediator instance rather
// than per guardian. KeysGenerated, BackupsGenerated and AllBackupsReceived
// are entered on the first submission of their round; the other states are
// entered once the round's full count has arrived.
type State int

const (
	Init State = iota
	KeysGenerated
	AllPublicKeysReceived
	BackupsGenerated
	BackupsDistributed
	AllBackupsReceived
	BackupsVerified
	ChallengesIssued
	ChallengesVerified
	JointKeyPublished
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case KeysGenerated:
		return "KeysGenerated"
	case AllPublicKeysReceived:
		return "AllPublicKeysReceived"
	case BackupsGenerated:
		return "BackupsGenerated"
	case BackupsDistributed:
		return "BackupsDistributed"
	case AllBackupsReceived:
		return "AllBackupsReceived"
	case BackupsVerified:
		return "BackupsVerified"
	case ChallengesIssued:
		return "ChallengesIssued"
	case ChallengesVerified:
		return "ChallengesVerified"
	case JointKeyPublished:
		return "JointKeyPublished"
	default:
		return "Unknown"
	}
}

// guardianPair identifies an ordered owner/designated relationship, used to
// key backups, verifications, and challenges the way a (i, j) edge would in
// an adjacency map.
type guardianPair struct {
	OwnerID      string
	DesignatedID string
}

// Verification is the result of a designated guardian checking a backup
// they received (spec.md §4.7 round 3).
type Verification struct {
	OwnerID      string
	DesignatedID string
	VerifierID   string
	Verified     bool
}

// Challenge is the cleartext-coordinate arbitration record a guardian
// publishes when a designated verifier reports a failed verification
// (spec.md §4.7 round 4).
type Challenge struct {
	OwnerID      string
	DesignatedID string
	Coordinate   *group.ElementModQ
	Commitments  []*group.ElementModP
}

// Mediator relays key-ceremony messages between guardians. It never stores
// a secret key, coefficient, or decrypted backup coordinate — only public
// keys, encrypted backups, verification verdicts, and challenge coordinates
// (which are published in the clear precisely because the owning guardian
// is already under suspicion).
type Mediator struct {
	mu sync.Mutex

	numberOfGuardians int
	quorum            int

	state State

	publicKeys    map[string]*guardian.PublicKey
	backups       map[guardianPair]*guardian.PartialKeyBackup
	verifications map[guardianPair]*Verification
	challenges    map[guardianPair]*Challenge
	disqualified  map[string]string
}

// New creates a mediator for a ceremony of the given size and quorum.
func New(numberOfGuardians, quorum int) *Mediator {
	return &Mediator{
		numberOfGuardians: numberOfGuardians,
		quorum:            quorum,
		state:             Init,
		publicKeys:        make(map[string]*guardian.PublicKey),
		backups:           make(map[guardianPair]*guardian.PartialKeyBackup),
		verifications:     make(map[guardianPair]*Verification),
		challenges:        make(map[guardianPair]*Challenge),
		disqualified:      make(map[string]string),
	}
}

// State returns the ceremony's current progress.
func (m *Mediator) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ReceivePublicKey records a guardian's published key-generation round
// output. Re-announcement by the same owner is a no-op with an info log,
// matching the decryption mediator's announce-at-most-once invariant
// (spec.md §4.11, applied here for symmetry with round 1).
func (m *Mediator) ReceivePublicKey(pk *guardian.PublicKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.publicKeys[pk.OwnerID]; exists {
		log.GuardianInfow(pk.OwnerID, "keyceremony: duplicate public key announcement ignored")
		return nil
	}
	if !pk.VerifyCommitmentProofs() {
		log.GuardianWarnw(pk.OwnerID, "keyceremony: rejected public key with invalid coefficient proof")
		return fmt.Errorf("keyceremony: invalid coefficient proofs from %s", pk.OwnerID)
	}
	m.publicKeys[pk.OwnerID] = pk
	if m.state == Init {
		m.state = KeysGenerated
	}
	if len(m.publicKeys) == m.numberOfGuardians {
		m.state = AllPublicKeysReceived
	}
	return nil
}

// AllPublicKeysReceived reports whether every expected guardian has
// published a verified public key.
func (m *Mediator) AllPublicKeysReceived() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.publicKeys) == m.numberOfGuardians
}

// PublicKeys returns every received public key, for fan-out to guardians
// generating backups.
func (m *Mediator) PublicKeys() []*guardian.PublicKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*guardian.PublicKey, 0, len(m.publicKeys))
	for _, pk := range m.publicKeys {
		out = append(out, pk)
	}
	return out
}

// ReceiveBackup records an encrypted partial key backup addressed from
// owner to designated (spec.md §4.7 round 2). A guardian backing up to
// itself is rejected outright.
func (m *Mediator) ReceiveBackup(backup *guardian.PartialKeyBackup) error {
	if backup.OwnerID == backup.DesignatedID {
		return fmt.Errorf("keyceremony: guardian %s cannot back up to itself", backup.OwnerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	pair := guardianPair{backup.OwnerID, backup.DesignatedID}
	m.backups[pair] = backup
	if m.state == AllPublicKeysReceived {
		m.state = BackupsGenerated
	}
	expected := m.numberOfGuardians * (m.numberOfGuardians - 1)
	if len(m.backups) == expected {
		m.state = BackupsDistributed
	}
	return nil
}

// BackupsFor returns every backup addressed to designatedID, for delivery
// to that guardian.
func (m *Mediator) BackupsFor(designatedID string) []*guardian.PartialKeyBackup {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*guardian.PartialKeyBackup
	for pair, backup := range m.backups {
		if pair.DesignatedID == designatedID {
			out = append(out, backup)
		}
	}
	return out
}

// ReceiveVerification records a designated guardian's verdict on a
// decrypted backup (spec.md §4.7 round 3).
func (m *Mediator) ReceiveVerification(v *Verification) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pair := guardianPair{v.OwnerID, v.DesignatedID}
	m.verifications[pair] = v
	if m.state == BackupsDistributed {
		m.state = AllBackupsReceived
	}
	expected := m.numberOfGuardians * (m.numberOfGuardians - 1)
	if len(m.verifications) != expected {
		return
	}
	if m.allVerified() {
		m.state = BackupsVerified
	} else {
		m.state = ChallengesIssued
		log.Warnw("keyceremony: one or more backup verifications failed, ceremony requires challenges")
	}
}

func (m *Mediator) allVerified() bool {
	for _, v := range m.verifications {
		if !v.Verified {
			return false
		}
	}
	return true
}

// FailedVerifications returns every verification pair that reported
// verified=false, the set that needs a challenge round.
func (m *Mediator) FailedVerifications() []Verification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Verification
	for _, v := range m.verifications {
		if !v.Verified {
			out = append(out, *v)
		}
	}
	return out
}

// ReceiveChallenge records a cleartext-coordinate challenge published by an
// accused owner guardian (spec.md §4.7 round 4).
func (m *Mediator) ReceiveChallenge(ch *Challenge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pair := guardianPair{ch.OwnerID, ch.DesignatedID}
	m.challenges[pair] = ch
}

// ArbitrateChallenge replays verify_polynomial_coordinate against a
// published challenge's cleartext coordinate and commitments and records a
// disqualification: if the challenge itself fails verification, the owner
// is at fault; if it succeeds, the designated verifier who originally
// reported "verified=false" lied, and is disqualified instead (spec.md
// §4.7 round 4 — "the malicious party is externally disqualified").
func (m *Mediator) ArbitrateChallenge(ch *Challenge, designatedSequenceOrder int) {
	ok := guardian.VerifyBackup(ch.Coordinate, designatedSequenceOrder, ch.Commitments)
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.disqualified[ch.DesignatedID] = fmt.Sprintf("false verification claim against %s", ch.OwnerID)
	} else {
		m.disqualified[ch.OwnerID] = fmt.Sprintf("challenge failed verification against %s", ch.DesignatedID)
	}
	if len(m.challenges) > 0 {
		m.state = ChallengesVerified
	}
}

// Disqualified returns the accumulated guardian-id → reason map. The
// ceremony must be restarted with the remaining guardians once any entry is
// present (spec.md §4.7's failure model).
func (m *Mediator) Disqualified() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.disqualified))
	for k, v := range m.disqualified {
		out[k] = v
	}
	return out
}

// PublishJointKey combines every guardian's public key into the joint
// election public key and the commitment hash (spec.md §4.7 round 5). It
// requires every backup to have been verified and refuses otherwise, and
// refuses while any guardian stands disqualified.
func (m *Mediator) PublishJointKey(sequenceOrder func(ownerID string) int) (*group.ElementModP, *group.ElementModQ, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != BackupsVerified && m.state != ChallengesVerified {
		return nil, nil, fmt.Errorf("keyceremony: cannot publish joint key from state %s", m.state)
	}
	if len(m.disqualified) > 0 {
		return nil, nil, fmt.Errorf("keyceremony: cannot publish joint key with %d disqualified guardian(s)", len(m.disqualified))
	}

	ownerIDs := make([]string, 0, len(m.publicKeys))
	for ownerID := range m.publicKeys {
		ownerIDs = append(ownerIDs, ownerID)
	}
	sortBySequenceOrder(ownerIDs, sequenceOrder)

	keys := make([]*group.ElementModP, 0, len(ownerIDs))
	hashInputs := make([]eghash.Element, 0, len(ownerIDs))
	for _, ownerID := range ownerIDs {
		pk := m.publicKeys[ownerID]
		keys = append(keys, pk.Key)
		for _, commitment := range pk.Commitments {
			hashInputs = append(hashInputs, commitment)
		}
	}

	joint := elgamal.CombinePublicKeys(keys...)
	commitmentHash := eghash.HashElems(hashInputs...)
	m.state = JointKeyPublished
	return joint, commitmentHash, nil
}

func sortBySequenceOrder(ids []string, sequenceOrder func(string) int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && sequenceOrder(ids[j-1]) > sequenceOrder(ids[j]); j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
