package openingd

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightningnetwork/openingd/lnwallet"
	"github.com/lightningnetwork/openingd/lnwire"
)

// ControlMsgType discriminates frames on the supervisor control wire
// (spec.md §4.6). Like the peer wire's lnwire.WriteMessage framing, frames
// here are length-prefixed rather than relying on the underlying stream
// being itself message-framed, since stdin/stdout carry no framing of their
// own.
type ControlMsgType uint8

const (
	CtrlInit            ControlMsgType = 0
	CtrlOpen            ControlMsgType = 1
	CtrlAccept          ControlMsgType = 2
	CtrlOpenResp        ControlMsgType = 3
	CtrlOpenFunding     ControlMsgType = 4
	CtrlOpenFundingResp ControlMsgType = 5
	CtrlAcceptResp      ControlMsgType = 6
	CtrlExitReq         ControlMsgType = 7
	CtrlFailure         ControlMsgType = 8
)

// maxControlFrame bounds a single control-wire frame; every payload this
// protocol ever sends is well under this, so a generous fixed cap catches
// a corrupt length prefix outright rather than trying to allocate it.
const maxControlFrame = 1 << 20

// WriteControlFrame writes a length-prefixed, type-tagged frame to w:
// 4-byte big-endian length (of type byte + payload), 1-byte type,
// payload.
func WriteControlFrame(w io.Writer, msgType ControlMsgType, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)+1))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(msgType)}); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// ReadControlFrame reads one frame written by WriteControlFrame.
func ReadControlFrame(r io.Reader) (ControlMsgType, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 || length > maxControlFrame {
		return 0, nil, fmt.Errorf("control frame length %d out of range", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, err
	}

	return ControlMsgType(buf[0]), buf[1:], nil
}

// InitRequest is the supervisor's first message: the policy bounds this
// negotiation is conducted under plus the 256-bit seed to derive channel
// keys from. The peer stream itself arrives out of band on fd 3, not in
// this payload.
type InitRequest struct {
	LocalConfig lnwallet.ChannelConfig
	Bounds      lnwallet.Bounds
	ChainHash   [32]byte
	Seed        [32]byte
}

// Encode serializes an InitRequest for the control wire.
func (i *InitRequest) Encode(w io.Writer) error {
	return writeCtrlElements(w,
		uint64(i.LocalConfig.DustLimit), uint64(i.LocalConfig.MaxPendingAmount),
		uint64(i.LocalConfig.ChanReserve), uint64(i.LocalConfig.MinHTLC),
		i.LocalConfig.ToSelfDelay, i.LocalConfig.MaxAcceptedHTLCs,
		i.LocalConfig.MinimumDepth,
		i.Bounds.MaxToSelfDelay, uint64(i.Bounds.MinEffectiveHtlcCapacityMsat),
		i.Bounds.MinFeeratePerKw, i.Bounds.MaxFeeratePerKw, i.Bounds.MaxMinimumDepth,
		i.ChainHash, i.Seed,
	)
}

// Decode deserializes an InitRequest from the control wire.
func (i *InitRequest) Decode(r io.Reader) error {
	var dustLimit, maxPending, chanReserve, minHtlc, minEffCap uint64
	if err := readCtrlElements(r,
		&dustLimit, &maxPending, &chanReserve, &minHtlc,
		&i.LocalConfig.ToSelfDelay, &i.LocalConfig.MaxAcceptedHTLCs,
		&i.LocalConfig.MinimumDepth,
		&i.Bounds.MaxToSelfDelay, &minEffCap,
		&i.Bounds.MinFeeratePerKw, &i.Bounds.MaxFeeratePerKw, &i.Bounds.MaxMinimumDepth,
		&i.ChainHash, &i.Seed,
	); err != nil {
		return err
	}
	i.LocalConfig.DustLimit = btcutil.Amount(dustLimit)
	i.LocalConfig.MaxPendingAmount = lnwire.MilliSatoshi(maxPending)
	i.LocalConfig.ChanReserve = btcutil.Amount(chanReserve)
	i.LocalConfig.MinHTLC = lnwire.MilliSatoshi(minHtlc)
	i.Bounds.MinEffectiveHtlcCapacityMsat = lnwire.MilliSatoshi(minEffCap)
	return nil
}

// Encode serializes a FunderRequest (the "open" control message) for the
// control wire.
func (req *FunderRequest) Encode(w io.Writer) error {
	return writeCtrlElements(w,
		uint64(req.FundingAmount), uint64(req.PushAmount),
		req.FeeratePerKw, req.MaxMinimumDepth,
	)
}

// Decode deserializes a FunderRequest from the control wire.
func (req *FunderRequest) Decode(r io.Reader) error {
	var fundingAmt, pushAmt uint64
	if err := readCtrlElements(r,
		&fundingAmt, &pushAmt, &req.FeeratePerKw, &req.MaxMinimumDepth,
	); err != nil {
		return err
	}
	req.FundingAmount = btcutil.Amount(fundingAmt)
	req.PushAmount = lnwire.MilliSatoshi(pushAmt)
	return nil
}

// AcceptRequestHeader is the fixed-width prefix of the "accept" control
// message; the variable-length open_channel bytes that follow it are
// parsed separately with lnwire.ReadMessage.
type AcceptRequestHeader struct {
	MinFeerate uint32
	MaxFeerate uint32
}

func (h *AcceptRequestHeader) Encode(w io.Writer) error {
	return writeCtrlElements(w, h.MinFeerate, h.MaxFeerate)
}

func (h *AcceptRequestHeader) Decode(r io.Reader) error {
	return readCtrlElements(r, &h.MinFeerate, &h.MaxFeerate)
}

// OpenResp is the mid-flow funder-only message reporting both funding
// pubkeys to the supervisor once accept_channel has been validated.
type OpenResp struct {
	OurFundingKey   *btcec.PublicKey
	TheirFundingKey *btcec.PublicKey
}

func (o *OpenResp) Encode(w io.Writer) error {
	return writeCtrlElements(w, o.OurFundingKey, o.TheirFundingKey)
}

func (o *OpenResp) Decode(r io.Reader) error {
	return readCtrlElements(r, &o.OurFundingKey, &o.TheirFundingKey)
}

// OpenFundingRequest is the mid-flow funder-only response carrying the
// funding transaction's outpoint once the supervisor has assembled it.
type OpenFundingRequest struct {
	FundingTxID     [32]byte
	FundingOutIndex uint16
}

func (o *OpenFundingRequest) Encode(w io.Writer) error {
	return writeCtrlElements(w, o.FundingTxID, o.FundingOutIndex)
}

func (o *OpenFundingRequest) Decode(r io.Reader) error {
	return readCtrlElements(r, &o.FundingTxID, &o.FundingOutIndex)
}

// ResultPayload is the terminal success payload shared by open_funding_resp
// and accept_resp (spec.md §3.4 / §4.6).
type ResultPayload struct {
	Result
}

func (rp *ResultPayload) Encode(w io.Writer) error {
	return writeCtrlElements(w,
		uint64(rp.RemoteConfig.DustLimit), uint64(rp.RemoteConfig.MaxPendingAmount),
		uint64(rp.RemoteConfig.ChanReserve), uint64(rp.RemoteConfig.MinHTLC),
		rp.RemoteConfig.ToSelfDelay, rp.RemoteConfig.MaxAcceptedHTLCs,
		rp.RemoteConfig.MinimumDepth,
		rp.SigForLocalCommit,
		rp.RemoteRevocationBasepoint, rp.RemotePaymentBasepoint, rp.RemoteDelayedPaymentBase,
		rp.NextPerCommitRemote,
		rp.FundingOutpoint.Hash, uint16(rp.FundingOutpoint.Index),
	)
}

func (rp *ResultPayload) Decode(r io.Reader) error {
	var dustLimit, maxPending, chanReserve, minHtlc uint64
	var outIdx uint16
	var txid wire.OutPoint
	if err := readCtrlElements(r,
		&dustLimit, &maxPending, &chanReserve, &minHtlc,
		&rp.RemoteConfig.ToSelfDelay, &rp.RemoteConfig.MaxAcceptedHTLCs,
		&rp.RemoteConfig.MinimumDepth,
		&rp.SigForLocalCommit,
		&rp.RemoteRevocationBasepoint, &rp.RemotePaymentBasepoint, &rp.RemoteDelayedPaymentBase,
		&rp.NextPerCommitRemote,
		&txid.Hash, &outIdx,
	); err != nil {
		return err
	}
	rp.RemoteConfig.DustLimit = btcutil.Amount(dustLimit)
	rp.RemoteConfig.MaxPendingAmount = lnwire.MilliSatoshi(maxPending)
	rp.RemoteConfig.ChanReserve = btcutil.Amount(chanReserve)
	rp.RemoteConfig.MinHTLC = lnwire.MilliSatoshi(minHtlc)
	rp.FundingOutpoint = wire.OutPoint{Hash: txid.Hash, Index: uint32(outIdx)}
	return nil
}

// FailurePayload reports a NegotiationError (or local failure) back to the
// supervisor as a structured status, per spec.md §7.
type FailurePayload struct {
	Code    FailureCode
	Message string
}

func (f *FailurePayload) Encode(w io.Writer) error {
	msg := []byte(f.Message)
	return writeCtrlElements(w, uint8(f.Code), uint16(len(msg)), msg)
}

func (f *FailurePayload) Decode(r io.Reader) error {
	var code uint8
	var msgLen uint16
	if err := readCtrlElements(r, &code, &msgLen); err != nil {
		return err
	}
	f.Code = FailureCode(code)
	buf := make([]byte, msgLen)
	if msgLen > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
	}
	f.Message = string(buf)
	return nil
}
