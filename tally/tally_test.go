package tally

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/evoteguard/eg-core/ballot"
	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/elgamal"
	"github.com/evoteguard/eg-core/crypto/group"
)

func TestMain_initParams(t *testing.T) {
	group.Init(group.ParamSetTest)
}

func testManifest() ballot.Manifest {
	contestHash := eghash.HashElems("contest-1")
	return ballot.Manifest{
		ManifestHash: eghash.HashElems("manifest"),
		Contests: []ballot.ContestDescription{
			{
				ContestID:       "contest-1",
				SequenceOrder:   0,
				DescriptionHash: contestHash,
				NumberElected:   1,
				Selections: []ballot.SelectionDescription{
					{SelectionID: "alice", SequenceOrder: 0, DescriptionHash: eghash.HashElems("contest-1", "alice")},
					{SelectionID: "bob", SequenceOrder: 1, DescriptionHash: eghash.HashElems("contest-1", "bob")},
				},
			},
		},
	}
}

func castBallot(c *qt.C, manifest ballot.Manifest, publicKey *group.ElementModP, id string, votedFor string) *ballot.SubmittedBallot {
	ctx := ballot.EncryptionContext{JointPublicKey: publicKey, ExtendedBaseHash: eghash.HashElems("ebh")}
	pb := ballot.PlaintextBallot{BallotID: id}
	if votedFor != "" {
		pb.Contests = []ballot.PlaintextContest{{ContestID: "contest-1", Selections: []string{votedFor}}}
	}
	nonce, err := group.RandQ()
	c.Assert(err, qt.IsNil)
	encrypted, err := ballot.EncryptBallot(pb, manifest, ctx, nonce, eghash.HashElems("seed"), 1000, true)
	c.Assert(err, qt.IsNil)
	return ballot.Submit(encrypted, ballot.Cast)
}

func TestAccumulateTwoBallotsCountsSelections(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	manifest := testManifest()
	kp, err := elgamal.GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	tl := New(manifest)
	b1 := castBallot(c, manifest, kp.Public, "b1", "alice")
	b2 := castBallot(c, manifest, kp.Public, "b2", "bob")

	c.Assert(tl.Accumulate(b1, kp.Public, true), qt.IsNil)
	c.Assert(tl.Accumulate(b2, kp.Public, true), qt.IsNil)

	ct := tl.Contest("contest-1")
	aliceCount, err := elgamal.Decrypt(ct.SelectionCiphertexts["alice"], kp.Secret)
	c.Assert(err, qt.IsNil)
	c.Assert(aliceCount, qt.Equals, 1)

	bobCount, err := elgamal.Decrypt(ct.SelectionCiphertexts["bob"], kp.Secret)
	c.Assert(err, qt.IsNil)
	c.Assert(bobCount, qt.Equals, 1)
}

func TestAccumulateRejectsDuplicateBallotID(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	manifest := testManifest()
	kp, err := elgamal.GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	tl := New(manifest)
	b1 := castBallot(c, manifest, kp.Public, "dup", "alice")
	c.Assert(tl.Accumulate(b1, kp.Public, true), qt.IsNil)
	c.Assert(tl.Accumulate(b1, kp.Public, true), qt.Equals, ErrAlreadyAccumulated)
}

func TestAccumulateRejectsNonCastBallot(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	manifest := testManifest()
	kp, err := elgamal.GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	ctx := ballot.EncryptionContext{JointPublicKey: kp.Public, ExtendedBaseHash: eghash.HashElems("ebh")}
	pb := ballot.PlaintextBallot{BallotID: "spoiled-1"}
	nonce, err := group.RandQ()
	c.Assert(err, qt.IsNil)
	encrypted, err := ballot.EncryptBallot(pb, manifest, ctx, nonce, eghash.HashElems("seed"), 1000, true)
	c.Assert(err, qt.IsNil)
	spoiled := ballot.Submit(encrypted, ballot.Spoiled)

	tl := New(manifest)
	c.Assert(tl.Accumulate(spoiled, kp.Public, true), qt.Equals, ErrNotCast)
	c.Assert(tl.Spoil(spoiled), qt.IsNil)
	c.Assert(len(tl.SpoiledBallots()), qt.Equals, 1)
}

func TestMergeProducesSameResultAsSequentialAccumulation(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	manifest := testManifest()
	kp, err := elgamal.GenerateKeyPair()
	c.Assert(err, qt.IsNil)

	b1 := castBallot(c, manifest, kp.Public, "m1", "alice")
	b2 := castBallot(c, manifest, kp.Public, "m2", "alice")
	b3 := castBallot(c, manifest, kp.Public, "m3", "bob")

	sequential := New(manifest)
	c.Assert(sequential.Accumulate(b1, kp.Public, true), qt.IsNil)
	c.Assert(sequential.Accumulate(b2, kp.Public, true), qt.IsNil)
	c.Assert(sequential.Accumulate(b3, kp.Public, true), qt.IsNil)

	partA := New(manifest)
	c.Assert(partA.Accumulate(b1, kp.Public, true), qt.IsNil)
	partB := New(manifest)
	c.Assert(partB.Accumulate(b2, kp.Public, true), qt.IsNil)
	c.Assert(partB.Accumulate(b3, kp.Public, true), qt.IsNil)
	c.Assert(partA.Merge(partB), qt.IsNil)

	seqCt := sequential.Contest("contest-1")
	mergedCt := partA.Contest("contest-1")
	c.Assert(mergedCt.SelectionCiphertexts["alice"].Pad.Equal(seqCt.SelectionCiphertexts["alice"].Pad), qt.IsTrue)
	c.Assert(mergedCt.SelectionCiphertexts["alice"].Data.Equal(seqCt.SelectionCiphertexts["alice"].Data), qt.IsTrue)
	c.Assert(mergedCt.SelectionCiphertexts["bob"].Pad.Equal(seqCt.SelectionCiphertexts["bob"].Pad), qt.IsTrue)
	c.Assert(mergedCt.SelectionCiphertexts["bob"].Data.Equal(seqCt.SelectionCiphertexts["bob"].Data), qt.IsTrue)
}
