package openingd

import (
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightningnetwork/openingd/lnwallet"
	"github.com/lightningnetwork/openingd/lnwire"
)

// FunderRequest carries the parameters the supervisor hands down to start
// the funder path (spec.md §4.4's "open" request).
type FunderRequest struct {
	FundingAmount   btcutil.Amount
	PushAmount      lnwire.MilliSatoshi
	FeeratePerKw    uint32
	MaxMinimumDepth uint32
}

// OutpointSource is consulted by RunFunder at state S2 to learn the
// funding transaction's outpoint once the supervisor has assembled it.
// Decoupling this from PeerStream lets RunFunder be driven by a fake in
// tests without wiring up the real control-wire codec.
type OutpointSource interface {
	AwaitFundingOutpoint() (*wire.OutPoint, error)
}

// RunFunder drives states S0 through S4 of spec.md §4.4 to completion,
// returning the terminal Result on success or a NegotiationError
// identifying exactly how and why the dialogue failed.
func RunFunder(n *Negotiation, req FunderRequest, outpoints OutpointSource) (*Result, error) {
	// S0 INIT.
	n.FundingAmount = req.FundingAmount
	n.PushAmount = req.PushAmount
	n.FeeratePerKw = req.FeeratePerKw

	n.LocalConfig.ChanReserve = lnwallet.ChanReserveFromFundingAmount(n.FundingAmount)

	if err := lnwallet.ValidateFundingParams(n.FundingAmount, n.PushAmount); err != nil {
		return nil, failf(BadParam, "%v", err)
	}

	for i := range n.TempChanID {
		n.TempChanID[i] = 0xff
	}

	log.Infof("funder: sending open_channel, temp_chan_id=%x, amt=%v",
		n.TempChanID, n.FundingAmount)

	openMsg := &lnwire.OpenChannel{
		ChainHash:            n.ChainHash,
		TemporaryChanID:      n.TempChanID,
		FundingAmount:        n.FundingAmount,
		PushAmount:           n.PushAmount,
		DustLimit:            n.LocalConfig.DustLimit,
		MaxValueInFlight:     n.LocalConfig.MaxPendingAmount,
		ChannelReserve:       n.LocalConfig.ChanReserve,
		HtlcMinimum:          n.LocalConfig.MinHTLC,
		FeePerKiloWeight:     n.FeeratePerKw,
		CsvDelay:             n.LocalConfig.ToSelfDelay,
		MaxAcceptedHTLCs:     n.LocalConfig.MaxAcceptedHTLCs,
		FundingKey:           n.Keys.Points.Funding,
		RevocationPoint:      n.Keys.Points.RevocationBasepoint,
		PaymentPoint:         n.Keys.Points.PaymentBasepoint,
		DelayedPaymentPoint:  n.Keys.Points.DelayedPaymentBasepoint,
		FirstCommitmentPoint: n.Keys.FirstPerCommitPoint,
	}
	if err := writeMsg(n.Peer, openMsg); err != nil {
		return nil, failf(PeerWriteFailed, "unable to send open_channel: %v", err)
	}

	// S1 SENT_OPEN.
	msg, err := readMsg(n.Peer)
	if err != nil {
		return nil, failf(PeerReadFailed, "unable to read accept_channel: %v", err)
	}
	accept, ok := msg.(*lnwire.AcceptChannel)
	if !ok {
		return nil, failf(PeerBadInitialMessage,
			"expected accept_channel, got %T", msg)
	}

	if accept.TemporaryChanID != n.TempChanID {
		return nil, failf(PeerReadFailed,
			"accept_channel echoed wrong temporary_channel_id")
	}

	if err := lnwallet.ValidateFunderMinDepth(accept.MinimumDepth, req.MaxMinimumDepth); err != nil {
		return nil, failf(PeerBadFunding, "%v", err)
	}

	n.RemoteConfig = lnwallet.ChannelConfig{
		DustLimit:        accept.DustLimit,
		MaxPendingAmount: accept.MaxValueInFlight,
		ChanReserve:      accept.ChannelReserve,
		MinHTLC:          accept.HtlcMinimum,
		ToSelfDelay:      accept.CsvDelay,
		MaxAcceptedHTLCs: accept.MaxAcceptedHTLCs,
		MinimumDepth:     accept.MinimumDepth,
	}
	if err := lnwallet.ValidateRemoteConfig(
		&n.LocalConfig, &n.RemoteConfig, n.FundingAmount, n.Bounds,
	); err != nil {
		return nil, failf(PeerBadConfig, "%v", err)
	}

	n.RemoteFundingKey = accept.FundingKey
	n.RemoteRevocationBasepoint = accept.RevocationPoint
	n.RemotePaymentBasepoint = accept.PaymentPoint
	n.RemoteDelayedPaymentBase = accept.DelayedPaymentPoint
	n.RemoteFirstPerCommitPoint = accept.FirstCommitmentPoint

	// S2 AWAIT_OUTPOINT.
	outpoint, err := outpoints.AwaitFundingOutpoint()
	if err != nil {
		return nil, failf(BadCommand, "unable to obtain funding outpoint: %v", err)
	}
	n.FundingOutpoint = outpoint

	redeemScript, _, err := lnwallet.GenFundingPkScript(
		n.Keys.Points.Funding.SerializeCompressed(),
		n.RemoteFundingKey.SerializeCompressed(),
		int64(n.FundingAmount),
	)
	if err != nil {
		return nil, failf(BadParam, "unable to build funding script: %v", err)
	}

	remoteKeys := lnwallet.DeriveCommitmentKeys(
		n.RemoteFirstPerCommitPoint, n.RemoteDelayedPaymentBase,
		n.RemoteRevocationBasepoint, n.Keys.Points.PaymentBasepoint,
	)
	remoteOutputs, err := lnwallet.BuildCommitmentOutputs(
		n.RemoteConfig.ToSelfDelay, remoteKeys,
		remoteToLocalAmt(n), remoteToRemoteAmt(n),
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

	log.Infof("funder: sending funding_created for outpoint %v", outpoint)

	fundingCreated := &lnwire.FundingCreated{
		TemporaryChanID: n.TempChanID,
		FundingOutIndex: uint16(outpoint.Index),
		CommitSig:       *sigForThem,
	}
	copy(fundingCreated.FundingTxID[:], outpoint.Hash[:])
	if err := writeMsg(n.Peer, fundingCreated); err != nil {
		return nil, failf(PeerWriteFailed, "unable to send funding_created: %v", err)
	}

	// S3 SENT_FUNDING_CREATED.
	msg, err = readMsg(n.Peer)
	if err != nil {
		return nil, failf(PeerReadFailed, "unable to read funding_signed: %v", err)
	}
	signed, ok := msg.(*lnwire.FundingSigned)
	if !ok {
		return nil, failf(PeerBadInitialMessage,
			"expected funding_signed, got %T", msg)
	}
	if signed.ChanID != n.TempChanID {
		return nil, failf(PeerReadFailed,
			"funding_signed echoed wrong channel id")
	}

	localKeys := lnwallet.DeriveCommitmentKeys(
		n.Keys.FirstPerCommitPoint, n.Keys.Points.DelayedPaymentBasepoint,
		n.Keys.Points.RevocationBasepoint, n.RemotePaymentBasepoint,
	)
	localOutputs, err := lnwallet.BuildCommitmentOutputs(
		n.LocalConfig.ToSelfDelay, localKeys,
		localToLocalAmt(n), localToRemoteAmt(n),
		n.LocalConfig.DustLimit, n.RemoteConfig.DustLimit,
	)
	if err != nil {
		return nil, failf(BadParam, "unable to build local outputs: %v", err)
	}
	localCommitTx := lnwallet.BuildCommitmentTx(outpoint, 0, localOutputs)

	if err := lnwallet.VerifyCommitmentSignature(
		localCommitTx, redeemScript, n.FundingAmount,
		n.RemoteFundingKey, &signed.CommitSig,
	); err != nil {
		return nil, failf(PeerReadFailed, "bad signature in funding_signed: %v", err)
	}

	// S4 DONE.
	return &Result{
		RemoteConfig:              n.RemoteConfig,
		SigForLocalCommit:         signed.CommitSig,
		RemoteRevocationBasepoint: n.RemoteRevocationBasepoint,
		RemotePaymentBasepoint:    n.RemotePaymentBasepoint,
		RemoteDelayedPaymentBase:  n.RemoteDelayedPaymentBase,
		NextPerCommitRemote:       n.RemoteFirstPerCommitPoint,
		FundingOutpoint:           *outpoint,
	}, nil
}

// remoteToLocalAmt is the counterparty's balance on a commitment they sign:
// push_msat plus whatever they're owed, net of nothing since the funder
// pays the commitment fee entirely out of its own balance.
func remoteToLocalAmt(n *Negotiation) btcutil.Amount {
	return n.PushAmount.ToSatoshis()
}

// remoteToRemoteAmt is the funder's balance as it appears on the
// commitment transaction it hands to the remote party (their "to_remote"
// output), net of the commitment transaction fee.
func remoteToRemoteAmt(n *Negotiation) btcutil.Amount {
	fee := btcutil.Amount(lnwallet.CalcFee(lnwallet.CommitWeight, n.FeeratePerKw))
	return n.FundingAmount - n.PushAmount.ToSatoshis() - fee
}

// localToLocalAmt is the funder's own balance on its own commitment,
// net of the fee it pays for that commitment.
func localToLocalAmt(n *Negotiation) btcutil.Amount {
	fee := btcutil.Amount(lnwallet.CalcFee(lnwallet.CommitWeight, n.FeeratePerKw))
	return n.FundingAmount - n.PushAmount.ToSatoshis() - fee
}

// localToRemoteAmt is the counterparty's balance as it appears on the
// funder's own commitment transaction.
func localToRemoteAmt(n *Negotiation) btcutil.Amount {
	return n.PushAmount.ToSatoshis()
}

// writeMsg is a small wrapper over lnwire.WriteMessage fixing the protocol
// version this engine always uses.
func writeMsg(w io.Writer, msg lnwire.Message) error {
	_, err := lnwire.WriteMessage(w, msg, 0)
	return err
}

// readMsg is a small wrapper over lnwire.ReadMessage fixing the protocol
// version this engine always uses.
func readMsg(r io.Reader) (lnwire.Message, error) {
	return lnwire.ReadMessage(r, 0)
}
