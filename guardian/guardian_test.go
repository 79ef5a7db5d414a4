package guardian

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/crypto/polynomial"
)

func TestMain_initParams(t *testing.T) {
	group.Init(group.ParamSetTest)
}

func TestGenerateKeyPairAndShareVerifies(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	kp, err := GenerateKeyPair("guardian-1", 1, 3, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(kp.Polynomial.Coefficients, qt.HasLen, 3)

	pub := kp.Share()
	c.Assert(pub.OwnerID, qt.Equals, "guardian-1")
	c.Assert(pub.Key.Equal(kp.ElectionKeyPair.Public), qt.IsTrue)
	c.Assert(pub.VerifyCommitmentProofs(), qt.IsTrue)
}

func TestBackupRoundTrip(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	owner, err := GenerateKeyPair("guardian-1", 1, 3, nil)
	c.Assert(err, qt.IsNil)
	designated, err := GenerateKeyPair("guardian-2", 2, 3, nil)
	c.Assert(err, qt.IsNil)

	nonce, err := group.RandQ()
	c.Assert(err, qt.IsNil)
	for nonce.IsZero() {
		nonce, err = group.RandQ()
		c.Assert(err, qt.IsNil)
	}

	backup, err := owner.GenerateBackup(designated.Share(), nonce)
	c.Assert(err, qt.IsNil)
	c.Assert(backup.OwnerID, qt.Equals, "guardian-1")
	c.Assert(backup.DesignatedID, qt.Equals, "guardian-2")

	y, err := designated.DecryptBackup(backup)
	c.Assert(err, qt.IsNil)

	expected := owner.Polynomial
	c.Assert(VerifyBackup(y, designated.SequenceOrder, expected.Commitments), qt.IsTrue)
}

func TestBackupRejectsWrongRecipient(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	owner, err := GenerateKeyPair("guardian-1", 1, 3, nil)
	c.Assert(err, qt.IsNil)
	designated, err := GenerateKeyPair("guardian-2", 2, 3, nil)
	c.Assert(err, qt.IsNil)
	imposter, err := GenerateKeyPair("guardian-3", 3, 3, nil)
	c.Assert(err, qt.IsNil)

	nonce, err := group.RandQ()
	c.Assert(err, qt.IsNil)
	for nonce.IsZero() {
		nonce, err = group.RandQ()
		c.Assert(err, qt.IsNil)
	}

	backup, err := owner.GenerateBackup(designated.Share(), nonce)
	c.Assert(err, qt.IsNil)

	_, err = imposter.DecryptBackup(backup)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestRecoveryPublicKeyMatchesDirectEvaluation(t *testing.T) {
	c := qt.New(t)
	group.Init(group.ParamSetTest)

	missing, err := GenerateKeyPair("guardian-missing", 3, 3, nil)
	c.Assert(err, qt.IsNil)

	for _, x := range []int{1, 2, 4, 5} {
		recovered := RecoveryPublicKey(x, missing.Polynomial.Commitments)
		direct := group.GPowP(polynomial.Coordinate(x, missing.Polynomial))
		c.Assert(recovered.Equal(direct), qt.IsTrue)
	}
}
