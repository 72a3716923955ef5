package lnwallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/openingd/lnwire"
)

// MaxAcceptedHTLCs is the protocol-wide upper bound on the number of
// concurrent incoming HTLCs a channel config may advertise.
const MaxAcceptedHTLCs = 511

// MaxFundingAmount is the exclusive upper bound on the number of satoshis a
// single-funder channel negotiated by this engine may commit: 2^24. The
// largest accepted funding amount is MaxFundingAmount - 1.
const MaxFundingAmount btcutil.Amount = 1 << 24

// ChannelConfig mirrors one side's channel parameters as exchanged in
// open_channel/accept_channel. Each side of a negotiation holds its own
// instance: one fixed locally before any wire I/O, one populated from
// whatever the remote peer sent.
type ChannelConfig struct {
	DustLimit        btcutil.Amount
	MaxPendingAmount lnwire.MilliSatoshi
	ChanReserve      btcutil.Amount
	MinHTLC          lnwire.MilliSatoshi
	ToSelfDelay      uint16
	MaxAcceptedHTLCs uint16
	MinimumDepth     uint32
}

// ChanReserveFromFundingAmount computes the mandatory 1%-rounded-up
// channel reserve for a given funding amount (spec invariant 2):
// ⌈funding/100⌉.
func ChanReserveFromFundingAmount(funding btcutil.Amount) btcutil.Amount {
	return (funding + 99) / 100
}

// Bounds bundles the policy limits a negotiation is conducted under; these
// arrive from the supervisor at init time and are not negotiable.
type Bounds struct {
	MaxToSelfDelay               uint16
	MinEffectiveHtlcCapacityMsat lnwire.MilliSatoshi
	MinFeeratePerKw              uint32
	MaxFeeratePerKw              uint32
	MaxMinimumDepth              uint32
}

// ValidateRemoteConfig runs the ordered checks of the parameter validator
// against a freshly received remote config, given our own already-fixed
// local config, the negotiated funding amount, and the policy bounds for
// this negotiation. The checks are deliberately run in the order spec'd,
// since later computations (capacity_msat) depend on earlier ones having
// already held.
func ValidateRemoteConfig(local, remote *ChannelConfig, fundingAmt btcutil.Amount,
	bounds Bounds) error {

	if remote.ToSelfDelay > bounds.MaxToSelfDelay {
		return fmt.Errorf("remote to_self_delay %d exceeds our maximum "+
			"of %d", remote.ToSelfDelay, bounds.MaxToSelfDelay)
	}

	if remote.ChanReserve > fundingAmt {
		return fmt.Errorf("remote channel reserve of %v is greater "+
			"than funding amount %v", remote.ChanReserve, fundingAmt)
	}

	reserve := local.ChanReserve
	if remote.ChanReserve > reserve {
		reserve = remote.ChanReserve
	}
	reserveMsat := lnwire.NewMSatFromSatoshis(reserve)

	fundingMsat := lnwire.NewMSatFromSatoshis(fundingAmt)
	if fundingMsat < reserveMsat {
		return fmt.Errorf("funding amount %v msat is below the "+
			"reserve %v msat", fundingMsat, reserveMsat)
	}
	capacityMsat := fundingMsat - reserveMsat
	if remote.MaxPendingAmount < capacityMsat {
		capacityMsat = remote.MaxPendingAmount
	}

	// NOTE: this multiplication by 1000 is preserved from the source
	// this engine's validator was distilled from; htlc_minimum_msat is
	// already denominated in millisatoshis, so comparing it against
	// capacityMsat after a further *1000 looks like a unit error. See
	// SPEC_FULL.md §4.2. Left as-is pending a cross-check against the
	// BOLT text by whoever owns this validator next.
	if remote.MinHTLC*1000 > capacityMsat {
		return fmt.Errorf("remote htlc_minimum_msat %v (x1000) exceeds "+
			"effective capacity %v msat", remote.MinHTLC, capacityMsat)
	}

	if capacityMsat < bounds.MinEffectiveHtlcCapacityMsat {
		return fmt.Errorf("effective capacity %v msat is below the "+
			"minimum of %v msat", capacityMsat,
			bounds.MinEffectiveHtlcCapacityMsat)
	}

	if remote.MaxAcceptedHTLCs < 1 || remote.MaxAcceptedHTLCs > MaxAcceptedHTLCs {
		return fmt.Errorf("remote max_accepted_htlcs %d outside "+
			"[1, %d]", remote.MaxAcceptedHTLCs, MaxAcceptedHTLCs)
	}

	return nil
}

// ValidateFundingParams enforces the locally-set bounds on funding_satoshis
// and push_msat that MUST hold before we ever send our own opening message
// (spec invariant 3).
func ValidateFundingParams(fundingAmt btcutil.Amount, pushMsat lnwire.MilliSatoshi) error {
	if fundingAmt >= MaxFundingAmount {
		return fmt.Errorf("funding_satoshis %v is not less than 2^24",
			fundingAmt)
	}

	maxPush := lnwire.NewMSatFromSatoshis(fundingAmt)
	if pushMsat > maxPush {
		return fmt.Errorf("push_msat %v exceeds 1000x funding_satoshis "+
			"(%v)", pushMsat, maxPush)
	}

	return nil
}

// ValidateFundeeFeerate enforces the fundee-side feerate acceptance window.
func ValidateFundeeFeerate(feeratePerKw, minFeerate, maxFeerate uint32) error {
	if feeratePerKw < minFeerate || feeratePerKw > maxFeerate {
		return fmt.Errorf("feerate_per_kw %d outside acceptable range "+
			"[%d, %d]", feeratePerKw, minFeerate, maxFeerate)
	}
	return nil
}

// ValidateFunderMinDepth enforces the funder-side bound on the fundee's
// requested minimum_depth.
func ValidateFunderMinDepth(remoteMinDepth, maxMinimumDepth uint32) error {
	if remoteMinDepth > maxMinimumDepth {
		return fmt.Errorf("remote minimum_depth %d exceeds our maximum "+
			"of %d", remoteMinDepth, maxMinimumDepth)
	}
	return nil
}
