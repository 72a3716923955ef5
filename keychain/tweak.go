package keychain

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
)

// SingleTweakBytes computes the tweak used to derive the per-commitment
// variant of a basepoint: SHA256(per_commitment_point || basepoint), per
// BOLT-3.
func SingleTweakBytes(commitPoint, basePoint *btcec.PublicKey) []byte {
	h := sha256.New()
	h.Write(commitPoint.SerializeCompressed())
	h.Write(basePoint.SerializeCompressed())
	return h.Sum(nil)
}

// TweakPubKey derives the commitment-specific public key from a basepoint
// and the relevant per-commitment point: basePoint + SHA256(commitPoint ||
// basePoint)*G.
func TweakPubKey(basePoint, commitPoint *btcec.PublicKey) *btcec.PublicKey {
	tweakBytes := SingleTweakBytes(commitPoint, basePoint)
	return addTweakToPubkey(basePoint, tweakBytes)
}

// TweakPrivKey derives the commitment-specific private key corresponding
// to TweakPubKey: baseSecret + SHA256(commitPoint || basePoint) mod N.
func TweakPrivKey(basePriv *btcec.PrivateKey, tweakBytes []byte) *btcec.PrivateKey {
	var tweakScalar btcec.ModNScalar
	tweakScalar.SetByteSlice(tweakBytes)

	privScalar := basePriv.Key
	privScalar.Add(&tweakScalar)

	return btcec.PrivKeyFromScalar(&privScalar)
}

// DeriveRevocationPubkey derives the revocation public key used in the
// "to-local" output of a commitment transaction, per BOLT-3:
//
//	revocationpubkey = revocation_basepoint*SHA256(revocation_basepoint||P)
//	                  + P*SHA256(P||revocation_basepoint)
//
// where P is the per-commitment point. Knowledge of the corresponding
// per-commitment secret lets the counterparty who learns it derive the
// matching private key and sweep a revoked commitment.
func DeriveRevocationPubkey(revocationBase, commitPoint *btcec.PublicKey) *btcec.PublicKey {
	revocationTweak := SingleTweakBytes(revocationBase, commitPoint)
	commitTweak := SingleTweakBytes(commitPoint, revocationBase)

	p1 := scalarMultPubkey(revocationBase, revocationTweak)
	p2 := scalarMultPubkey(commitPoint, commitTweak)

	var sum btcec.JacobianPoint
	var j1, j2 btcec.JacobianPoint
	p1.AsJacobian(&j1)
	p2.AsJacobian(&j2)
	btcec.AddNonConst(&j1, &j2, &sum)
	sum.ToAffine()

	return btcec.NewPublicKey(&sum.X, &sum.Y)
}

// DeriveRevocationPrivKey derives the private key corresponding to
// DeriveRevocationPubkey, given the revocation basepoint secret and the
// per-commitment secret disclosed for the revoked state.
func DeriveRevocationPrivKey(revocationBasePriv *btcec.PrivateKey,
	commitSecret *btcec.PrivateKey) *btcec.PrivateKey {

	revocationTweak := SingleTweakBytes(
		revocationBasePriv.PubKey(), commitSecret.PubKey(),
	)
	commitTweak := SingleTweakBytes(
		commitSecret.PubKey(), revocationBasePriv.PubKey(),
	)

	var revocationTweakScalar, commitTweakScalar btcec.ModNScalar
	revocationTweakScalar.SetByteSlice(revocationTweak)
	commitTweakScalar.SetByteSlice(commitTweak)

	revocationScalar := revocationBasePriv.Key
	revocationScalar.Mul(&revocationTweakScalar)

	commitScalar := commitSecret.Key
	commitScalar.Mul(&commitTweakScalar)

	revocationScalar.Add(&commitScalar)

	return btcec.PrivKeyFromScalar(&revocationScalar)
}

// addTweakToPubkey returns basePoint + tweak*G.
func addTweakToPubkey(basePoint *btcec.PublicKey, tweak []byte) *btcec.PublicKey {
	tweakPoint := scalarBaseMult(tweak)

	var j1, j2, sum btcec.JacobianPoint
	basePoint.AsJacobian(&j1)
	tweakPoint.AsJacobian(&j2)
	btcec.AddNonConst(&j1, &j2, &sum)
	sum.ToAffine()

	return btcec.NewPublicKey(&sum.X, &sum.Y)
}

// scalarBaseMult returns tweak*G as a public key, reducing tweak mod the
// curve order first.
func scalarBaseMult(tweak []byte) *btcec.PublicKey {
	var scalar btcec.ModNScalar
	scalar.SetByteSlice(tweak)
	priv := btcec.PrivKeyFromScalar(&scalar)
	return priv.PubKey()
}

// scalarMultPubkey returns scalar*point.
func scalarMultPubkey(point *btcec.PublicKey, scalar []byte) *btcec.PublicKey {
	var s btcec.ModNScalar
	s.SetByteSlice(scalar)

	var j, result btcec.JacobianPoint
	point.AsJacobian(&j)
	btcec.ScalarMultNonConst(&s, &j, &result)
	result.ToAffine()

	return btcec.NewPublicKey(&result.X, &result.Y)
}
