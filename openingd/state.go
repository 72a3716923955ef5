package openingd

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightningnetwork/openingd/keychain"
	"github.com/lightningnetwork/openingd/lnwallet"
	"github.com/lightningnetwork/openingd/lnwire"
)

// PeerStream is the minimal contract this engine needs from the encrypted
// transport underlying the peer connection: a framed, ordered, bidirectional
// byte stream. The supervisor is responsible for handing the engine
// something that already satisfies this; the engine never sees raw
// unencrypted bytes off the wire.
type PeerStream interface {
	io.Reader
	io.Writer
}

// Negotiation holds everything a single channel-opening dialogue needs for
// its entire lifetime. Exactly one of RunFunder or RunFundee consumes it;
// nothing outside this package mutates it concurrently.
type Negotiation struct {
	Peer PeerStream

	Keys *keychain.KeyRing

	LocalConfig  lnwallet.ChannelConfig
	RemoteConfig lnwallet.ChannelConfig
	Bounds       lnwallet.Bounds

	ChainHash [32]byte

	TempChanID lnwire.ChannelID

	FundingAmount btcutil.Amount
	PushAmount    lnwire.MilliSatoshi
	FeeratePerKw  uint32

	FundingOutpoint *wire.OutPoint

	RemoteFundingKey            *btcec.PublicKey
	RemoteRevocationBasepoint   *btcec.PublicKey
	RemotePaymentBasepoint      *btcec.PublicKey
	RemoteDelayedPaymentBase    *btcec.PublicKey
	RemoteFirstPerCommitPoint   *btcec.PublicKey
}

// Result is the terminal success payload reported to the supervisor,
// mirroring spec.md §3.4's list verbatim: the remote's config, the peer's
// signature on our first commitment, and the remote's non-funding
// basepoints plus its next (first) per-commitment point.
type Result struct {
	RemoteConfig lnwallet.ChannelConfig

	SigForLocalCommit lnwire.Sig

	RemoteRevocationBasepoint *btcec.PublicKey
	RemotePaymentBasepoint    *btcec.PublicKey
	RemoteDelayedPaymentBase  *btcec.PublicKey

	NextPerCommitRemote *btcec.PublicKey

	FundingOutpoint wire.OutPoint
}
