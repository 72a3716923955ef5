package openingd

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightningnetwork/openingd/lnwallet"
	"github.com/lightningnetwork/openingd/lnwire"
)

// FundeeRequest carries the parameters the supervisor hands down to start
// the fundee path (spec.md §4.5's "accept" request): the feerate
// acceptance window and the already-received open_channel bytes.
type FundeeRequest struct {
	MinFeerate uint32
	MaxFeerate uint32
	OpenMsg    *lnwire.OpenChannel
}

// RunFundee drives states T0 through T2 of spec.md §4.5 to completion,
// returning the terminal Result on success or a NegotiationError
// identifying exactly how and why the dialogue failed.
func RunFundee(n *Negotiation, req FundeeRequest) (*Result, error) {
	open := req.OpenMsg

	// T0 GOT_OPEN.
	if open.ChainHash != n.ChainHash {
		return nil, failf(PeerBadInitialMessage,
			"open_channel chain_hash %x does not match ours %x",
			open.ChainHash, n.ChainHash)
	}
	if open.FundingAmount >= lnwallet.MaxFundingAmount {
		return nil, failf(PeerBadFunding,
			"funding_satoshis %v is not less than 2^24", open.FundingAmount)
	}
	if err := lnwallet.ValidateFundingParams(open.FundingAmount, open.PushAmount); err != nil {
		return nil, failf(PeerBadFunding, "%v", err)
	}
	if err := lnwallet.ValidateFundeeFeerate(
		open.FeePerKiloWeight, req.MinFeerate, req.MaxFeerate,
	); err != nil {
		return nil, failf(PeerBadFunding, "%v", err)
	}

	n.TempChanID = open.TemporaryChanID
	n.FundingAmount = open.FundingAmount
	n.PushAmount = open.PushAmount
	n.FeeratePerKw = open.FeePerKiloWeight

	n.LocalConfig.ChanReserve = lnwallet.ChanReserveFromFundingAmount(n.FundingAmount)

	n.RemoteConfig = lnwallet.ChannelConfig{
		DustLimit:        open.DustLimit,
		MaxPendingAmount: open.MaxValueInFlight,
		ChanReserve:      open.ChannelReserve,
		MinHTLC:          open.HtlcMinimum,
		ToSelfDelay:      open.CsvDelay,
		MaxAcceptedHTLCs: open.MaxAcceptedHTLCs,
	}
	if err := lnwallet.ValidateRemoteConfig(
		&n.LocalConfig, &n.RemoteConfig, n.FundingAmount, n.Bounds,
	); err != nil {
		return nil, failf(PeerBadConfig, "%v", err)
	}

	n.RemoteFundingKey = open.FundingKey
	n.RemoteRevocationBasepoint = open.RevocationPoint
	n.RemotePaymentBasepoint = open.PaymentPoint
	n.RemoteDelayedPaymentBase = open.DelayedPaymentPoint
	n.RemoteFirstPerCommitPoint = open.FirstCommitmentPoint

	log.Infof("fundee: sending accept_channel, temp_chan_id=%x", n.TempChanID)

	accept := &lnwire.AcceptChannel{
		TemporaryChanID:      n.TempChanID,
		DustLimit:            n.LocalConfig.DustLimit,
		MaxValueInFlight:     n.LocalConfig.MaxPendingAmount,
		ChannelReserve:       n.LocalConfig.ChanReserve,
		MinimumDepth:         n.LocalConfig.MinimumDepth,
		HtlcMinimum:          n.LocalConfig.MinHTLC,
		CsvDelay:             n.LocalConfig.ToSelfDelay,
		MaxAcceptedHTLCs:     n.LocalConfig.MaxAcceptedHTLCs,
		FundingKey:           n.Keys.Points.Funding,
		RevocationPoint:      n.Keys.Points.RevocationBasepoint,
		PaymentPoint:         n.Keys.Points.PaymentBasepoint,
		DelayedPaymentPoint:  n.Keys.Points.DelayedPaymentBasepoint,
		FirstCommitmentPoint: n.Keys.FirstPerCommitPoint,
	}
	if err := writeMsg(n.Peer, accept); err != nil {
		return nil, failf(PeerWriteFailed, "unable to send accept_channel: %v", err)
	}

	// T1 SENT_ACCEPT.
	msg, err := readMsg(n.Peer)
	if err != nil {
		return nil, failf(PeerReadFailed, "unable to read funding_created: %v", err)
	}
	created, ok := msg.(*lnwire.FundingCreated)
	if !ok {
		return nil, failf(PeerBadInitialMessage,
			"expected funding_created, got %T", msg)
	}
	if created.TemporaryChanID != n.TempChanID {
		return nil, failf(PeerReadFailed,
			"funding_created echoed wrong temporary_channel_id")
	}

	outpoint := &wire.OutPoint{Index: uint32(created.FundingOutIndex)}
	copy(outpoint.Hash[:], created.FundingTxID[:])
	n.FundingOutpoint = outpoint

	redeemScript, _, err := lnwallet.GenFundingPkScript(
		n.RemoteFundingKey.SerializeCompressed(),
		n.Keys.Points.Funding.SerializeCompressed(),
		int64(n.FundingAmount),
	)
	if err != nil {
		return nil, failf(BadParam, "unable to build funding script: %v", err)
	}

	localKeys := lnwallet.DeriveCommitmentKeys(
		n.Keys.FirstPerCommitPoint, n.Keys.Points.DelayedPaymentBasepoint,
		n.Keys.Points.RevocationBasepoint, n.RemotePaymentBasepoint,
	)
	localOutputs, err := lnwallet.BuildCommitmentOutputs(
		n.LocalConfig.ToSelfDelay, localKeys,
		fundeeLocalToLocalAmt(n), fundeeLocalToRemoteAmt(n),
		n.LocalConfig.DustLimit, n.RemoteConfig.DustLimit,
	)
	if err != nil {
		return nil, failf(BadParam, "unable to build local outputs: %v", err)
	}
	localCommitTx := lnwallet.BuildCommitmentTx(outpoint, 0, localOutputs)

	if err := lnwallet.VerifyCommitmentSignature(
		localCommitTx, redeemScript, n.FundingAmount,
		n.RemoteFundingKey, &created.CommitSig,
	); err != nil {
		return nil, failf(PeerReadFailed, "bad signature in funding_created: %v", err)
	}

	remoteKeys := lnwallet.DeriveCommitmentKeys(
		n.RemoteFirstPerCommitPoint, n.RemoteDelayedPaymentBase,
		n.RemoteRevocationBasepoint, n.Keys.Points.PaymentBasepoint,
	)
	remoteOutputs, err := lnwallet.BuildCommitmentOutputs(
		n.RemoteConfig.ToSelfDelay, remoteKeys,
		fundeeRemoteToLocalAmt(n), fundeeRemoteToRemoteAmt(n),
		n.RemoteConfig.DustLimit, n.LocalConfig.DustLimit,
	)
	if err != nil {
		return nil, failf(BadParam, "unable to build remote outputs: %v", err)
	}
	remoteCommitTx := lnwallet.BuildCommitmentTx(outpoint, 0, remoteOutputs)

	sigForThem, err := lnwallet.SignCommitmentTx(
		remoteCommitTx, redeemScript, n.FundingAmount, n.Keys.Secrets.Funding,
	)
	if err != nil {
		return nil, failf(BadParam, "unable to sign remote commitment: %v", err)
	}

	log.Infof("fundee: sending funding_signed for outpoint %v", outpoint)

	signed := &lnwire.FundingSigned{
		ChanID:    n.TempChanID,
		CommitSig: *sigForThem,
	}
	if err := writeMsg(n.Peer, signed); err != nil {
		return nil, failf(PeerWriteFailed, "unable to send funding_signed: %v", err)
	}

	// T2 DONE.
	return &Result{
		RemoteConfig:              n.RemoteConfig,
		SigForLocalCommit:         created.CommitSig,
		RemoteRevocationBasepoint: n.RemoteRevocationBasepoint,
		RemotePaymentBasepoint:    n.RemotePaymentBasepoint,
		RemoteDelayedPaymentBase:  n.RemoteDelayedPaymentBase,
		NextPerCommitRemote:       n.RemoteFirstPerCommitPoint,
		FundingOutpoint:           *outpoint,
	}, nil
}

// fundeeLocalToLocalAmt is the fundee's own balance on its own commitment:
// the pushed amount, since it contributed no funding.
func fundeeLocalToLocalAmt(n *Negotiation) btcutil.Amount {
	return n.PushAmount.ToSatoshis()
}

// fundeeLocalToRemoteAmt is the funder's balance as it appears on the
// fundee's own commitment, net of the commitment fee the funder pays.
func fundeeLocalToRemoteAmt(n *Negotiation) btcutil.Amount {
	fee := btcutil.Amount(lnwallet.CalcFee(lnwallet.CommitWeight, n.FeeratePerKw))
	return n.FundingAmount - n.PushAmount.ToSatoshis() - fee
}

// fundeeRemoteToLocalAmt is the funder's balance on the commitment it will
// sign for the funder, net of that commitment's fee.
func fundeeRemoteToLocalAmt(n *Negotiation) btcutil.Amount {
	fee := btcutil.Amount(lnwallet.CalcFee(lnwallet.CommitWeight, n.FeeratePerKw))
	return n.FundingAmount - n.PushAmount.ToSatoshis() - fee
}

// fundeeRemoteToRemoteAmt is the fundee's own balance as it appears on the
// funder's commitment.
func fundeeRemoteToRemoteAmt(n *Negotiation) btcutil.Amount {
	return n.PushAmount.ToSatoshis()
}
