package openingd

import (
	"fmt"

	"github.com/go-errors/errors"
)

// FailureCode taxonomizes why a negotiation ended. Codes prefixed PEER_
// and BAD_PARAM are protocol failures: the peer violated a MUST, or the
// locally-proposed parameters would. Codes prefixed BAD_COMMAND/
// KEY_DERIVATION are local failures: something about this process's own
// environment or inputs is broken.
type FailureCode int

const (
	// PeerBadInitialMessage means the peer sent a message of a type
	// other than the one the current state expects (accept_channel,
	// funding_created or funding_signed), or an open_channel whose
	// chain_hash does not match ours.
	PeerBadInitialMessage FailureCode = iota

	// PeerBadFunding means a funding-related parameter (funding_satoshis,
	// push_msat, feerate_per_kw, minimum_depth) violated a bound.
	PeerBadFunding

	// PeerBadConfig means a remote ChannelConfig field violated a bound
	// enforced by the parameter validator.
	PeerBadConfig

	// PeerReadFailed means a read from the peer stream failed, timed
	// out, or produced a message that fails a structural check (temp-id
	// mismatch, bad signature).
	PeerReadFailed

	// PeerWriteFailed means a write to the peer stream failed.
	PeerWriteFailed

	// BadParam means a local parameter failed validation before any
	// peer I/O occurred.
	BadParam

	// BadCommand means the supervisor sent something unparseable or out
	// of sequence.
	BadCommand

	// KeyDerivationFailed means DeriveChannelKeys failed on the seed
	// handed down by the supervisor.
	KeyDerivationFailed
)

// String gives the taxonomized name used in status reports to the
// supervisor and in log lines.
func (f FailureCode) String() string {
	switch f {
	case PeerBadInitialMessage:
		return "PEER_BAD_INITIAL_MESSAGE"
	case PeerBadFunding:
		return "PEER_BAD_FUNDING"
	case PeerBadConfig:
		return "PEER_BAD_CONFIG"
	case PeerReadFailed:
		return "PEER_READ_FAILED"
	case PeerWriteFailed:
		return "PEER_WRITE_FAILED"
	case BadParam:
		return "BAD_PARAM"
	case BadCommand:
		return "BAD_COMMAND"
	case KeyDerivationFailed:
		return "KEY_DERIVATION_FAILED"
	default:
		return "UNKNOWN_FAILURE"
	}
}

// IsProtocolFailure reports whether this code represents a protocol
// failure — one that warrants a best-effort wire error frame to the peer
// before the process exits — as opposed to a local failure.
func (f FailureCode) IsProtocolFailure() bool {
	switch f {
	case PeerBadInitialMessage, PeerBadFunding, PeerBadConfig,
		PeerReadFailed, PeerWriteFailed, BadParam:
		return true
	default:
		return false
	}
}

// NegotiationError pairs a FailureCode with the underlying cause. It is
// the only error type the funder/fundee state machines return; the
// supervisor-facing report and the optional peer error frame are both
// derived from it.
type NegotiationError struct {
	Code FailureCode
	Err  error
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *NegotiationError) Unwrap() error {
	return e.Err
}

// failf builds a NegotiationError from a FailureCode and a format string,
// the common case at every validation call site in the state machines.
// Protocol failures are expected, taxonomized outcomes rather than bugs,
// so they get a plain wrapped error with no stack trace.
func failf(code FailureCode, format string, args ...interface{}) *NegotiationError {
	return &NegotiationError{Code: code, Err: fmt.Errorf(format, args...)}
}

// localFailf builds a NegotiationError for a local/programming failure
// (BadCommand, KeyDerivationFailed): something about this process's own
// environment or inputs is broken, so the underlying error carries a
// stack trace for whoever reads the supervisor's crash report.
func localFailf(code FailureCode, format string, args ...interface{}) *NegotiationError {
	return &NegotiationError{Code: code, Err: errors.Errorf(format, args...)}
}
