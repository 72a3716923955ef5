package lnwallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"

	"github.com/lightningnetwork/openingd/lnwire"
)

func TestChanReserveFromFundingAmount(t *testing.T) {
	tests := []struct {
		funding btcutil.Amount
		reserve btcutil.Amount
	}{
		{99, 1},
		{100, 1},
		{101, 2},
		{200, 2},
	}

	for _, tc := range tests {
		require.Equal(t, tc.reserve, ChanReserveFromFundingAmount(tc.funding))
	}
}

func baseBounds() Bounds {
	return Bounds{
		MaxToSelfDelay:               2016,
		MinEffectiveHtlcCapacityMsat: 1,
		MinFeeratePerKw:              253,
		MaxFeeratePerKw:              10_000_000,
		MaxMinimumDepth:              144,
	}
}

func TestValidateRemoteConfig(t *testing.T) {
	fundingAmt := btcutil.Amount(1_000_000)

	local := &ChannelConfig{
		ChanReserve: ChanReserveFromFundingAmount(fundingAmt),
	}

	validRemote := func() *ChannelConfig {
		return &ChannelConfig{
			ToSelfDelay:      144,
			ChanReserve:      ChanReserveFromFundingAmount(fundingAmt),
			MaxPendingAmount: lnwire.NewMSatFromSatoshis(fundingAmt),
			MinHTLC:          1,
			MaxAcceptedHTLCs: 10,
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		err := ValidateRemoteConfig(local, validRemote(), fundingAmt, baseBounds())
		require.NoError(t, err)
	})

	t.Run("to_self_delay too large", func(t *testing.T) {
		remote := validRemote()
		remote.ToSelfDelay = baseBounds().MaxToSelfDelay + 1
		err := ValidateRemoteConfig(local, remote, fundingAmt, baseBounds())
		require.Error(t, err)
	})

	t.Run("max_accepted_htlcs zero", func(t *testing.T) {
		remote := validRemote()
		remote.MaxAcceptedHTLCs = 0
		err := ValidateRemoteConfig(local, remote, fundingAmt, baseBounds())
		require.Error(t, err)
	})

	t.Run("max_accepted_htlcs over protocol max", func(t *testing.T) {
		remote := validRemote()
		remote.MaxAcceptedHTLCs = MaxAcceptedHTLCs + 1
		err := ValidateRemoteConfig(local, remote, fundingAmt, baseBounds())
		require.Error(t, err)
	})

	t.Run("reserve exceeds funding amount", func(t *testing.T) {
		remote := validRemote()
		remote.ChanReserve = fundingAmt + 1
		err := ValidateRemoteConfig(local, remote, fundingAmt, baseBounds())
		require.Error(t, err)
	})
}

func TestValidateFundingParams(t *testing.T) {
	t.Run("funding amount at protocol max is rejected", func(t *testing.T) {
		err := ValidateFundingParams(MaxFundingAmount, 0)
		require.Error(t, err)
	})

	t.Run("funding amount just under max is accepted", func(t *testing.T) {
		err := ValidateFundingParams(MaxFundingAmount-1, 0)
		require.NoError(t, err)
	})

	t.Run("push_msat one over cap is rejected", func(t *testing.T) {
		fundingAmt := btcutil.Amount(1000)
		maxPush := lnwire.NewMSatFromSatoshis(fundingAmt)
		err := ValidateFundingParams(fundingAmt, maxPush+1)
		require.Error(t, err)
	})

	t.Run("push_msat at cap is accepted", func(t *testing.T) {
		fundingAmt := btcutil.Amount(1000)
		maxPush := lnwire.NewMSatFromSatoshis(fundingAmt)
		err := ValidateFundingParams(fundingAmt, maxPush)
		require.NoError(t, err)
	})
}

func TestValidateFundeeFeerate(t *testing.T) {
	require.Error(t, ValidateFundeeFeerate(252, 253, 10_000_000))
	require.NoError(t, ValidateFundeeFeerate(253, 253, 10_000_000))
	require.Error(t, ValidateFundeeFeerate(10_000_001, 253, 10_000_000))
}

func TestValidateFunderMinDepth(t *testing.T) {
	require.NoError(t, ValidateFunderMinDepth(10, 10))
	require.Error(t, ValidateFunderMinDepth(11, 10))
}
