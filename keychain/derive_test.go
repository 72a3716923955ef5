package keychain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveChannelKeysDeterministic(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}

	kr1, err := DeriveChannelKeys(seed)
	require.NoError(t, err)
	kr2, err := DeriveChannelKeys(seed)
	require.NoError(t, err)

	require.True(t, kr1.Points.Funding.IsEqual(kr2.Points.Funding))
	require.True(t, kr1.Points.RevocationBasepoint.IsEqual(kr2.Points.RevocationBasepoint))
	require.True(t, kr1.Points.PaymentBasepoint.IsEqual(kr2.Points.PaymentBasepoint))
	require.True(t, kr1.Points.DelayedPaymentBasepoint.IsEqual(kr2.Points.DelayedPaymentBasepoint))
	require.Equal(t, kr1.ShaSeed, kr2.ShaSeed)
	require.True(t, kr1.FirstPerCommitPoint.IsEqual(kr2.FirstPerCommitPoint))
}

func TestDeriveChannelKeysDifferentSeeds(t *testing.T) {
	var seedA, seedB [32]byte
	seedB[0] = 1

	krA, err := DeriveChannelKeys(seedA)
	require.NoError(t, err)
	krB, err := DeriveChannelKeys(seedB)
	require.NoError(t, err)

	require.False(t, krA.Points.Funding.IsEqual(krB.Points.Funding))
}

func TestFirstPerCommitmentSecretDeterministic(t *testing.T) {
	var shaSeed [32]byte
	for i := range shaSeed {
		shaSeed[i] = byte(255 - i)
	}

	s1, err := FirstPerCommitmentSecret(shaSeed)
	require.NoError(t, err)
	s2, err := FirstPerCommitmentSecret(shaSeed)
	require.NoError(t, err)
	require.Equal(t, s1, s2)
}

func TestPerCommitmentSecretRejectsOutOfRangeIndex(t *testing.T) {
	var shaSeed [32]byte
	_, err := PerCommitmentSecret(shaSeed, FirstCommitmentIndex+1)
	require.Error(t, err)
}
