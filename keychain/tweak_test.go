package keychain

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T, b byte) *btcec.PrivateKey {
	var buf [32]byte
	buf[31] = b
	var s btcec.ModNScalar
	overflow := s.SetBytes(&buf)
	require.Zero(t, overflow)
	return btcec.PrivKeyFromScalar(&s)
}

func TestTweakPubPrivMatch(t *testing.T) {
	base := genKey(t, 1)
	commit := genKey(t, 2)

	tweakBytes := SingleTweakBytes(commit.PubKey(), base.PubKey())
	tweakedPub := TweakPubKey(base.PubKey(), commit.PubKey())
	tweakedPriv := TweakPrivKey(base, tweakBytes)

	require.True(t, tweakedPub.IsEqual(tweakedPriv.PubKey()))
}

func TestDeriveRevocationKeysMatch(t *testing.T) {
	revocationBase := genKey(t, 3)
	commitSecret := genKey(t, 4)

	pub := DeriveRevocationPubkey(revocationBase.PubKey(), commitSecret.PubKey())
	priv := DeriveRevocationPrivKey(revocationBase, commitSecret)

	require.True(t, pub.IsEqual(priv.PubKey()))
}
