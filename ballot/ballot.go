package ballot

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/elgamal"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/nonces"
	"github.com/evoteguard/eg-core/crypto/proof"
	"github.com/evoteguard/eg-core/log"
)

// Selection is an encrypted representation of one contest selection,
// carrying its disjunctive Chaum-Pedersen proof that the ciphertext
// encrypts 0 or 1 (spec.md §3's CiphertextBallotSelection).
type Selection struct {
	SelectionID     string
	DescriptionHash *group.ElementModQ
	Ciphertext      *elgamal.Ciphertext
	CryptoHash      *group.ElementModQ
	IsPlaceholder   bool
	Nonce           *group.ElementModQ // retained encryption nonce; nil once stripped for submission
	Proof           *proof.DisjunctiveCPProof
}

func selectionCryptoHash(selectionID string, descriptionHash *group.ElementModQ, ciphertext *elgamal.Ciphertext) *group.ElementModQ {
	return eghash.HashElems(selectionID, descriptionHash, ciphertext.Pad, ciphertext.Data)
}

// IsValidEncryption re-derives the crypto hash and checks the disjunctive
// proof against the recorded ciphertext.
func (s *Selection) IsValidEncryption(publicKey *group.ElementModP) bool {
	if !s.CryptoHash.Equal(selectionCryptoHash(s.SelectionID, s.DescriptionHash, s.Ciphertext)) {
		return false
	}
	return s.Proof.IsValid(s.Ciphertext.Pad, s.Ciphertext.Data, publicKey)
}

// RegenerateProof recomputes a disjunctive CP proof from the selection's
// retained nonce and vote value, independent of the proof stored alongside
// the ciphertext; given the proof seed that encryption drew, it reproduces
// the stored proof exactly.
func (s *Selection) RegenerateProof(vote int, publicKey *group.ElementModP, proofSeed *group.ElementModQ) (*proof.DisjunctiveCPProof, error) {
	if s.Nonce == nil {
		return nil, fmt.Errorf("ballot: cannot regenerate proof without a retained nonce")
	}
	switch vote {
	case 0:
		return proof.MakeDisjunctiveCPProofZero(s.Ciphertext.Pad, s.Ciphertext.Data, s.Nonce, publicKey, proofSeed), nil
	case 1:
		return proof.MakeDisjunctiveCPProofOne(s.Ciphertext.Pad, s.Ciphertext.Data, s.Nonce, publicKey, proofSeed), nil
	default:
		return nil, fmt.Errorf("ballot: vote must be 0 or 1, got %d", vote)
	}
}

func encryptSelection(
	selectionID string,
	desc SelectionDescription,
	vote int,
	isPlaceholder bool,
	publicKey *group.ElementModP,
	contestNonce *group.ElementModQ,
) (*Selection, error) {
	seq := nonces.New(desc.DescriptionHash, contestNonce)
	r := seq.At(desc.SequenceOrder)
	proofSeed := seq.At(0)

	m := group.ElementFromInt64(int64(vote))
	ciphertext, err := elgamal.EncryptWithNonce(m, r, publicKey)
	if err != nil {
		return nil, fmt.Errorf("ballot: encrypt selection %s: %w", selectionID, err)
	}

	var disjProof *proof.DisjunctiveCPProof
	switch vote {
	case 0:
		disjProof = proof.MakeDisjunctiveCPProofZero(ciphertext.Pad, ciphertext.Data, r, publicKey, proofSeed)
	case 1:
		disjProof = proof.MakeDisjunctiveCPProofOne(ciphertext.Pad, ciphertext.Data, r, publicKey, proofSeed)
	default:
		return nil, fmt.Errorf("ballot: vote must be 0 or 1, got %d", vote)
	}

	cryptoHash := selectionCryptoHash(selectionID, desc.DescriptionHash, ciphertext)
	return &Selection{
		SelectionID:     selectionID,
		DescriptionHash: desc.DescriptionHash,
		Ciphertext:      ciphertext,
		CryptoHash:      cryptoHash,
		IsPlaceholder:   isPlaceholder,
		Nonce:           r,
		Proof:           disjProof,
	}, nil
}

// Contest is an encrypted representation of one contest: real selections in
// description order followed by synthesized placeholders, the homomorphic
// accumulation of all of them, and a constant-CP proof binding that
// accumulation to number_elected (spec.md §3's CiphertextBallotContest).
type Contest struct {
	ContestID       string
	DescriptionHash *group.ElementModQ
	Selections      []*Selection
	Accumulation    *elgamal.Ciphertext
	CryptoHash      *group.ElementModQ
	Nonce           *group.ElementModQ
	Proof           *proof.ConstantCPProof
}

func contestCryptoHash(contestID string, descriptionHash *group.ElementModQ, selections []*Selection) *group.ElementModQ {
	args := make([]eghash.Element, 0, len(selections)+2)
	args = append(args, contestID, descriptionHash)
	for _, s := range selections {
		args = append(args, s.CryptoHash)
	}
	return eghash.HashElems(args...)
}

// IsValidEncryption re-derives the contest's crypto hash and checks the
// constant-CP proof against the recorded accumulation. It does not
// re-verify each selection's proof; callers that want full-depth
// re-verification call Selection.IsValidEncryption per selection too.
func (ct *Contest) IsValidEncryption(publicKey *group.ElementModP) bool {
	if !ct.CryptoHash.Equal(contestCryptoHash(ct.ContestID, ct.DescriptionHash, ct.Selections)) {
		return false
	}
	return ct.Proof.IsValid(ct.Accumulation.Pad, ct.Accumulation.Data, publicKey)
}

func encryptContest(plaintext PlaintextContest, desc ContestDescription, publicKey *group.ElementModP, ballotNonceSeed *group.ElementModQ) (*Contest, error) {
	marked := make(map[string]bool, len(plaintext.Selections))
	for _, id := range plaintext.Selections {
		marked[id] = true
	}
	known := make(map[string]bool, len(desc.Selections))
	for _, s := range desc.Selections {
		known[s.SelectionID] = true
	}
	for id := range marked {
		if !known[id] {
			return nil, fmt.Errorf("%w: %s in contest %s", ErrUnknownSelection, id, desc.ContestID)
		}
	}

	seq := nonces.New(desc.DescriptionHash, ballotNonceSeed)
	contestNonce := seq.At(desc.SequenceOrder)
	proofSeed := seq.At(0)

	selections := make([]*Selection, 0, len(desc.Selections)+desc.PlaceholderCount())
	selectionCount := 0
	for _, selDesc := range desc.Selections {
		vote := 0
		if marked[selDesc.SelectionID] {
			vote = 1
			selectionCount++
		}
		if selectionCount > desc.NumberElected {
			return nil, fmt.Errorf("%w: contest %s", ErrOvervote, desc.ContestID)
		}
		enc, err := encryptSelection(selDesc.SelectionID, selDesc, vote, false, publicKey, contestNonce)
		if err != nil {
			return nil, err
		}
		selections = append(selections, enc)
	}

	// Synthesize placeholders so the total 1-count reaches NumberElected
	// exactly, converting any undervote slack into placeholder affirmative
	// selections (spec.md §4.8c).
	placeholderVotesNeeded := desc.NumberElected - selectionCount
	for i := 0; i < desc.PlaceholderCount(); i++ {
		vote := 0
		if placeholderVotesNeeded > 0 {
			vote = 1
			placeholderVotesNeeded--
		}
		placeholderDesc := SelectionDescription{
			SelectionID:     fmt.Sprintf("%s-placeholder-%d", desc.ContestID, i),
			SequenceOrder:   len(desc.Selections) + i,
			DescriptionHash: eghash.HashElems("placeholder", desc.ContestID, i),
		}
		enc, err := encryptSelection(placeholderDesc.SelectionID, placeholderDesc, vote, true, publicKey, contestNonce)
		if err != nil {
			return nil, err
		}
		selections = append(selections, enc)
	}

	ciphertexts := make([]*elgamal.Ciphertext, len(selections))
	aggregateNonce := group.ZeroQ()
	for i, s := range selections {
		ciphertexts[i] = s.Ciphertext
		aggregateNonce = group.AddQ(aggregateNonce, s.Nonce)
	}
	accumulation := elgamal.Add(ciphertexts...)

	cpProof := proof.MakeConstantCPProof(accumulation.Pad, accumulation.Data, aggregateNonce, publicKey, desc.NumberElected, proofSeed)
	cryptoHash := contestCryptoHash(desc.ContestID, desc.DescriptionHash, selections)

	return &Contest{
		ContestID:       desc.ContestID,
		DescriptionHash: desc.DescriptionHash,
		Selections:      selections,
		Accumulation:    accumulation,
		CryptoHash:      cryptoHash,
		Nonce:           aggregateNonce,
		Proof:           cpProof,
	}, nil
}

// State is the submission status of a ballot (spec.md §3's BallotBoxState).
type State int

const (
	Unknown State = iota
	Cast
	Spoiled
)

func (s State) String() string {
	switch s {
	case Cast:
		return "CAST"
	case Spoiled:
		return "SPOILED"
	default:
		return "UNKNOWN"
	}
}

// CiphertextBallot is the fully encrypted form of a ballot, still carrying
// the master nonce and per-selection/per-contest nonces needed to
// regenerate proofs (spec.md §3's CiphertextBallot).
type CiphertextBallot struct {
	BallotID     string
	ManifestHash *group.ElementModQ
	CodeSeed     *group.ElementModQ
	Contests     []*Contest
	Code         *group.ElementModQ
	Timestamp    int64
	CryptoHash   *group.ElementModQ
	MasterNonce  *group.ElementModQ
}

func ballotCryptoHash(ballotID string, manifestHash *group.ElementModQ, contests []*Contest) *group.ElementModQ {
	args := make([]eghash.Element, 0, len(contests)+2)
	args = append(args, ballotID, manifestHash)
	for _, c := range contests {
		args = append(args, c.CryptoHash)
	}
	return eghash.HashElems(args...)
}

// IsValidEncryption re-derives the ballot's crypto hash and its code, and
// checks every contest's constant-CP proof and every selection's
// disjunctive CP proof.
func (b *CiphertextBallot) IsValidEncryption(publicKey *group.ElementModP) bool {
	if !b.CryptoHash.Equal(ballotCryptoHash(b.BallotID, b.ManifestHash, b.Contests)) {
		return false
	}
	if !b.Code.Equal(eghash.HashElems(b.CodeSeed, b.Timestamp, b.CryptoHash)) {
		return false
	}
	for _, c := range b.Contests {
		if !c.IsValidEncryption(publicKey) {
			return false
		}
		for _, s := range c.Selections {
			if !s.IsValidEncryption(publicKey) {
				return false
			}
		}
	}
	return true
}

// EncryptBallot runs the full pipeline of spec.md §4.8: derives the ballot
// nonce seed, encrypts every manifest contest (filling contests the voter
// didn't touch with all-zero real selections and full placeholders),
// computes the crypto hash chain, and the ballot code. Unless
// shouldVerifyProofs is false, it self-verifies before returning and
// discards the result on failure.
func EncryptBallot(
	pb PlaintextBallot,
	manifest Manifest,
	ctx EncryptionContext,
	masterNonce *group.ElementModQ,
	codeSeed *group.ElementModQ,
	timestamp int64,
	shouldVerifyProofs bool,
) (*CiphertextBallot, error) {
	byContestID := make(map[string]PlaintextContest, len(pb.Contests))
	for _, c := range pb.Contests {
		byContestID[c.ContestID] = c
	}

	ballotNonceSeed := eghash.HashElems(manifest.ManifestHash, pb.BallotID, masterNonce)

	// Every contest's nonce stream is independently seeded from
	// ballotNonceSeed and its own description hash, so contests encrypt
	// concurrently with no shared mutable state (spec.md §4.8; the only
	// cross-contest coupling is the shared read-only nonce seed).
	contests := make([]*Contest, len(manifest.Contests))
	var g errgroup.Group
	for i, desc := range manifest.Contests {
		i, desc := i, desc
		plaintext := byContestID[desc.ContestID] // zero value: no selections marked
		g.Go(func() error {
			encrypted, err := encryptContest(plaintext, desc, ctx.JointPublicKey, ballotNonceSeed)
			if err != nil {
				return err
			}
			contests[i] = encrypted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ballot: encrypt ballot %s: %w", pb.BallotID, err)
	}

	cryptoHash := ballotCryptoHash(pb.BallotID, manifest.ManifestHash, contests)
	code := eghash.HashElems(codeSeed, timestamp, cryptoHash)

	encrypted := &CiphertextBallot{
		BallotID:     pb.BallotID,
		ManifestHash: manifest.ManifestHash,
		CodeSeed:     codeSeed,
		Contests:     contests,
		Code:         code,
		Timestamp:    timestamp,
		CryptoHash:   cryptoHash,
		MasterNonce:  masterNonce,
	}

	if !shouldVerifyProofs {
		return encrypted, nil
	}
	if !encrypted.IsValidEncryption(ctx.JointPublicKey) {
		log.BallotWarnw(pb.BallotID, "ballot: mismatching proof on freshly encrypted ballot")
		return nil, ErrProofVerificationFailed
	}
	return encrypted, nil
}

// SubmittedBallot is a CiphertextBallot with every retained nonce stripped
// and a final box state attached (spec.md §3's SubmittedBallot).
type SubmittedBallot struct {
	*CiphertextBallot
	State State
}

// Submit strips retained nonces (the master nonce and every selection's
// encryption nonce) and tags the ballot with its final state, producing the
// form safe to publish (spec.md §3's SubmittedBallot).
func Submit(b *CiphertextBallot, state State) *SubmittedBallot {
	stripped := &CiphertextBallot{
		BallotID:     b.BallotID,
		ManifestHash: b.ManifestHash,
		CodeSeed:     b.CodeSeed,
		Code:         b.Code,
		Timestamp:    b.Timestamp,
		CryptoHash:   b.CryptoHash,
	}
	stripped.Contests = make([]*Contest, len(b.Contests))
	for i, c := range b.Contests {
		strippedSelections := make([]*Selection, len(c.Selections))
		for j, s := range c.Selections {
			strippedSelections[j] = &Selection{
				SelectionID:     s.SelectionID,
				DescriptionHash: s.DescriptionHash,
				Ciphertext:      s.Ciphertext,
				CryptoHash:      s.CryptoHash,
				IsPlaceholder:   s.IsPlaceholder,
				Proof:           s.Proof,
			}
		}
		stripped.Contests[i] = &Contest{
			ContestID:       c.ContestID,
			DescriptionHash: c.DescriptionHash,
			Selections:      strippedSelections,
			Accumulation:    c.Accumulation,
			CryptoHash:      c.CryptoHash,
			Proof:           c.Proof,
		}
	}
	return &SubmittedBallot{CiphertextBallot: stripped, State: state}
}
