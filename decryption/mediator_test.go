package decryption

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/evoteguard/eg-core/crypto/eghash"
	"github.com/evoteguard/eg-core/crypto/elgamal"
	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/guardian"
)

func sharesFor(c *qt.C, tc *threeGuardianCeremony, id string, ebh *group.ElementModQ, ciphertexts map[string]*elgamal.Ciphertext) map[string]SelectionShare {
	kp := tc.keypairs[id]
	out := make(map[string]SelectionShare, len(ciphertexts))
	for key, ct := range ciphertexts {
		seed, err := group.RandQ()
		c.Assert(err, qt.IsNil)
		out[key] = PartialDecrypt(id, kp.ElectionKeyPair.Secret, kp.ElectionKeyPair.Public, ebh, ct, seed)
	}
	return out
}

func TestMediatorFullQuorumDecryptsDirectly(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	tc := newThreeGuardianCeremony(c)
	ebh := eghash.HashElems("extended-base-hash")

	ct, err := elgamal.EncryptWithNonce(group.ElementFromInt64(4), mustNonce(c), tc.jointKey)
	c.Assert(err, qt.IsNil)
	ciphertexts := map[string]*elgamal.Ciphertext{"contest-1.alice": ct}

	m := New(3, 2, ebh, ciphertexts)
	for _, id := range []string{"g1", "g2", "g3"} {
		kp := tc.keypairs[id]
		err := m.Announce(id, tc.sequence[id], kp.ElectionKeyPair.Public, sharesFor(c, tc, id, ebh, ciphertexts))
		c.Assert(err, qt.IsNil)
	}
	c.Assert(m.AnnouncementComplete(), qt.IsTrue)
	c.Assert(m.GetPlaintextTally(), qt.IsNil)

	result, err := m.Decrypt()
	c.Assert(err, qt.IsNil)
	c.Assert(result["contest-1.alice"].Value, qt.Equals, 4)
	c.Assert(result["contest-1.alice"].Shares, qt.HasLen, 3)
	c.Assert(m.State(), qt.Equals, Done)
	c.Assert(m.GetPlaintextTally()["contest-1.alice"].Value, qt.Equals, 4)
}

func TestMediatorRejectsReannouncement(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	tc := newThreeGuardianCeremony(c)
	ebh := eghash.HashElems("extended-base-hash")
	ct, err := elgamal.EncryptWithNonce(group.ElementFromInt64(1), mustNonce(c), tc.jointKey)
	c.Assert(err, qt.IsNil)
	ciphertexts := map[string]*elgamal.Ciphertext{"k": ct}

	m := New(3, 2, ebh, ciphertexts)
	kp1 := tc.keypairs["g1"]
	shares1 := sharesFor(c, tc, "g1", ebh, ciphertexts)
	c.Assert(m.Announce("g1", tc.sequence["g1"], kp1.ElectionKeyPair.Public, shares1), qt.IsNil)

	// Re-announcing with a deliberately broken share must be a silent no-op,
	// not an overwrite.
	broken := map[string]SelectionShare{"k": {GuardianID: "g1", Share: group.One()}}
	c.Assert(m.Announce("g1", tc.sequence["g1"], kp1.ElectionKeyPair.Public, broken), qt.IsNil)

	// The original share still decrypts once the others announce.
	for _, id := range []string{"g2", "g3"} {
		kp := tc.keypairs[id]
		c.Assert(m.Announce(id, tc.sequence[id], kp.ElectionKeyPair.Public, sharesFor(c, tc, id, ebh, ciphertexts)), qt.IsNil)
	}
	result, err := m.Decrypt()
	c.Assert(err, qt.IsNil)
	c.Assert(result["k"].Value, qt.Equals, 1)
}

func TestMediatorCompensatesForMissingGuardian(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	tc := newThreeGuardianCeremony(c)
	ebh := eghash.HashElems("extended-base-hash")
	ct, err := elgamal.EncryptWithNonce(group.ElementFromInt64(9), mustNonce(c), tc.jointKey)
	c.Assert(err, qt.IsNil)
	ciphertexts := map[string]*elgamal.Ciphertext{"k": ct}

	m := New(3, 2, ebh, ciphertexts)
	for _, id := range []string{"g1", "g2"} {
		kp := tc.keypairs[id]
		c.Assert(m.Announce(id, tc.sequence[id], kp.ElectionKeyPair.Public, sharesFor(c, tc, id, ebh, ciphertexts)), qt.IsNil)
	}
	m.AnnounceMissing("g3", tc.public["g3"].Key)

	c.Assert(m.ValidateMissingGuardians([]string{"g1", "g2", "g3"}), qt.IsTrue)
	c.Assert(m.ValidateMissingGuardians([]string{"g1", "g2"}), qt.IsFalse)
	c.Assert(m.AnnouncementComplete(), qt.IsTrue)

	for _, availableID := range []string{"g1", "g2"} {
		recovery := guardian.RecoveryPublicKey(tc.sequence[availableID], tc.public["g3"].Commitments)
		y := tc.coordinateFrom(c, "g3", availableID)
		seed, err := group.RandQ()
		c.Assert(err, qt.IsNil)
		comp := CompensatedDecrypt(availableID, "g3", y, recovery, ebh, ct, seed)
		c.Assert(m.ReceiveCompensatedShare("k", comp), qt.IsNil)
	}
	c.Assert(m.State(), qt.Equals, RequestingCompensations)

	c.Assert(m.ReconstructMissingShares(), qt.IsNil)
	result, err := m.Decrypt()
	c.Assert(err, qt.IsNil)
	c.Assert(result["k"].Value, qt.Equals, 9)
	c.Assert(result["k"].Shares, qt.HasLen, 3)
}

func mustNonce(c *qt.C) *group.ElementModQ {
	n, err := group.RandQ()
	c.Assert(err, qt.IsNil)
	return n
}
