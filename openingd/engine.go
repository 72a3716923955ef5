package openingd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"

	"github.com/lightningnetwork/openingd/keychain"
	"github.com/lightningnetwork/openingd/lnwire"
)

// Engine ties the supervisor control wire (ctrlIn/ctrlOut) to the peer
// stream and drives exactly one negotiation end to end, per spec.md §2's
// control flow: init -> derive keys -> read role selector -> run Funder or
// Fundee -> emit result -> hand peer stream back -> wait for exit.
type Engine struct {
	ctrlIn  io.Reader
	ctrlOut io.Writer
	peer    PeerStream
}

// New constructs an Engine wired to the process's three I/O endpoints
// (spec.md §6): control-in, control-out, and the peer stream.
func New(ctrlIn io.Reader, ctrlOut io.Writer, peer PeerStream) *Engine {
	return &Engine{ctrlIn: ctrlIn, ctrlOut: ctrlOut, peer: peer}
}

// Run executes the engine's full lifecycle and returns the process exit
// code: 0 on a clean success-then-exit_req sequence, nonzero on any
// fatal. It never panics on a protocol or local failure; those are
// reported to the supervisor and translated into this return value.
func (e *Engine) Run() int {
	n, role, err := e.init()
	if err != nil {
		e.reportFailure(err)
		return 1
	}

	var result *Result
	switch role.msgType {
	case CtrlOpen:
		result, err = RunFunder(n, role.funderReq, &supervisorOutpointSource{e: e, n: n})
	case CtrlAccept:
		result, err = RunFundee(n, role.fundeeReq)
	default:
		err = localFailf(BadCommand, "unexpected role selector message type %d", role.msgType)
	}

	if err != nil {
		e.reportFailure(err)
		e.sendPeerError(n, err)
		return 1
	}

	respType := CtrlOpenFundingResp
	if role.msgType == CtrlAccept {
		respType = CtrlAcceptResp
	}
	if err := e.sendResult(respType, result); err != nil {
		log.Errorf("unable to report terminal result: %v", err)
		return 1
	}

	// The peer descriptor handback itself happens at the process level
	// (fd 3 stays open and is inherited by the supervisor); this engine's
	// remaining job is to block for exit_req before terminating, per
	// spec.md §4.6's sequencing guarantee.
	if err := e.awaitExit(); err != nil {
		log.Errorf("did not receive clean exit_req: %v", err)
		return 1
	}

	return 0
}

// roleSelection bundles the parsed role-dispatch message: either a
// FunderRequest (CtrlOpen) or a FundeeRequest (CtrlAccept).
type roleSelection struct {
	msgType   ControlMsgType
	funderReq FunderRequest
	fundeeReq FundeeRequest
}

// init consumes the mandatory init frame, derives channel keys from its
// seed, and reads the role-dispatch frame that follows it.
func (e *Engine) init() (*Negotiation, *roleSelection, error) {
	msgType, payload, err := ReadControlFrame(e.ctrlIn)
	if err != nil {
		return nil, nil, localFailf(BadCommand, "unable to read init frame: %v", err)
	}
	if msgType != CtrlInit {
		return nil, nil, localFailf(BadCommand,
			"expected init frame, got type %d", msgType)
	}

	var initReq InitRequest
	if err := initReq.Decode(bytes.NewReader(payload)); err != nil {
		return nil, nil, localFailf(BadCommand, "malformed init frame: %v", err)
	}

	keys, err := keychain.DeriveChannelKeys(initReq.Seed)
	if err != nil {
		return nil, nil, localFailf(KeyDerivationFailed, "%v", err)
	}

	n := &Negotiation{
		Peer:        e.peer,
		Keys:        keys,
		LocalConfig: initReq.LocalConfig,
		Bounds:      initReq.Bounds,
		ChainHash:   initReq.ChainHash,
	}

	msgType, payload, err = ReadControlFrame(e.ctrlIn)
	if err != nil {
		return nil, nil, localFailf(BadCommand, "unable to read role frame: %v", err)
	}

	sel := &roleSelection{msgType: msgType}
	switch msgType {
	case CtrlOpen:
		if err := sel.funderReq.Decode(bytes.NewReader(payload)); err != nil {
			return nil, nil, localFailf(BadCommand, "malformed open frame: %v", err)
		}
	case CtrlAccept:
		buf := bytes.NewReader(payload)
		var hdr AcceptRequestHeader
		if err := hdr.Decode(buf); err != nil {
			return nil, nil, localFailf(BadCommand, "malformed accept frame: %v", err)
		}
		msg, err := lnwire.ReadMessage(buf, 0)
		if err != nil {
			return nil, nil, localFailf(BadCommand,
				"malformed open_channel bytes in accept frame: %v", err)
		}
		openMsg, ok := msg.(*lnwire.OpenChannel)
		if !ok {
			return nil, nil, localFailf(BadCommand,
				"accept frame does not carry an open_channel")
		}
		sel.fundeeReq = FundeeRequest{
			MinFeerate: hdr.MinFeerate,
			MaxFeerate: hdr.MaxFeerate,
			OpenMsg:    openMsg,
		}
	default:
		return nil, nil, localFailf(BadCommand,
			"expected open or accept frame, got type %d", msgType)
	}

	return n, sel, nil
}

// supervisorOutpointSource implements OutpointSource over the real
// control wire: it reports our and their funding pubkeys (open_resp), then
// blocks for the supervisor's open_funding response.
type supervisorOutpointSource struct {
	e *Engine
	n *Negotiation
}

func (s *supervisorOutpointSource) AwaitFundingOutpoint() (*wire.OutPoint, error) {
	var buf bytes.Buffer
	resp := OpenResp{
		OurFundingKey:   s.n.Keys.Points.Funding,
		TheirFundingKey: s.n.RemoteFundingKey,
	}
	if err := resp.Encode(&buf); err != nil {
		return nil, err
	}
	if err := WriteControlFrame(s.e.ctrlOut, CtrlOpenResp, buf.Bytes()); err != nil {
		return nil, err
	}

	msgType, payload, err := ReadControlFrame(s.e.ctrlIn)
	if err != nil {
		return nil, err
	}
	if msgType != CtrlOpenFunding {
		return nil, fmt.Errorf("expected open_funding frame, got type %d", msgType)
	}

	var req OpenFundingRequest
	if err := req.Decode(bytes.NewReader(payload)); err != nil {
		return nil, err
	}

	outpoint := &wire.OutPoint{Index: uint32(req.FundingOutIndex)}
	copy(outpoint.Hash[:], req.FundingTxID[:])
	return outpoint, nil
}

// reportFailure sends a FailurePayload to the supervisor, best-effort.
func (e *Engine) reportFailure(err error) {
	negErr, ok := err.(*NegotiationError)
	if !ok {
		negErr = &NegotiationError{Code: BadCommand, Err: err}
	}

	var buf bytes.Buffer
	fp := FailurePayload{Code: negErr.Code, Message: negErr.Error()}
	if encErr := fp.Encode(&buf); encErr != nil {
		log.Errorf("unable to encode failure payload: %v", encErr)
		return
	}
	if writeErr := WriteControlFrame(e.ctrlOut, CtrlFailure, buf.Bytes()); writeErr != nil {
		log.Errorf("unable to report failure to supervisor: %v", writeErr)
	}
}

// sendPeerError best-effort writes a wire-level error frame to the peer
// when the failure is a protocol failure, per spec.md §7.
func (e *Engine) sendPeerError(n *Negotiation, err error) {
	negErr, ok := err.(*NegotiationError)
	if !ok || !negErr.Code.IsProtocolFailure() || n == nil || n.Peer == nil {
		return
	}

	errMsg := &lnwire.Error{
		ChanID: n.TempChanID,
		Data:   []byte(negErr.Error()),
	}
	if werr := writeMsg(n.Peer, errMsg); werr != nil {
		log.Warnf("unable to send peer error frame: %v", werr)
	}
}

func (e *Engine) sendResult(respType ControlMsgType, result *Result) error {
	var buf bytes.Buffer
	rp := ResultPayload{Result: *result}
	if err := rp.Encode(&buf); err != nil {
		return err
	}
	return WriteControlFrame(e.ctrlOut, respType, buf.Bytes())
}

func (e *Engine) awaitExit() error {
	msgType, _, err := ReadControlFrame(e.ctrlIn)
	if err != nil {
		return err
	}
	if msgType != CtrlExitReq {
		return fmt.Errorf("expected exit_req, got type %d", msgType)
	}
	return nil
}
