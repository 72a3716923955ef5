package openingd

import (
	"io"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/lightningnetwork/openingd/keychain"
	"github.com/lightningnetwork/openingd/lnwallet"
	"github.com/lightningnetwork/openingd/lnwire"
)

// duplex adapts a pair of unidirectional io.Pipe halves into a single
// PeerStream, the same way a real encrypted TCP connection would present
// one bidirectional stream to each side of the negotiation.
type duplex struct {
	r io.Reader
	w io.Writer
}

func (d *duplex) Read(p []byte) (int, error)  { return d.r.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.w.Write(p) }

// fixedOutpointSource stands in for the supervisor's open_resp/open_funding
// round trip; the test drives the peer wire directly and doesn't exercise
// the control wire, so the funder's outpoint arrives immediately.
type fixedOutpointSource struct {
	outpoint *wire.OutPoint
}

func (f *fixedOutpointSource) AwaitFundingOutpoint() (*wire.OutPoint, error) {
	return f.outpoint, nil
}

func testBounds() lnwallet.Bounds {
	return lnwallet.Bounds{
		MaxToSelfDelay:               2016,
		MinEffectiveHtlcCapacityMsat: 1,
		MinFeeratePerKw:              253,
		MaxFeeratePerKw:              10_000_000,
		MaxMinimumDepth:              144,
	}
}

func TestFunderFundeeHappyPath(t *testing.T) {
	fundingAmt := btcutil.Amount(1_000_000)

	fundeeReadsFunder, funderToFundee := io.Pipe()
	funderReadsFundee, fundeeToFunder := io.Pipe()

	funderConn := &duplex{r: funderReadsFundee, w: funderToFundee}
	fundeeConn := &duplex{r: fundeeReadsFunder, w: fundeeToFunder}

	var funderSeed, fundeeSeed [32]byte
	funderSeed[0] = 1
	fundeeSeed[0] = 2

	funderKeys, err := keychain.DeriveChannelKeys(funderSeed)
	require.NoError(t, err)
	fundeeKeys, err := keychain.DeriveChannelKeys(fundeeSeed)
	require.NoError(t, err)

	nFunder := &Negotiation{
		Peer:   funderConn,
		Keys:   funderKeys,
		Bounds: testBounds(),
		LocalConfig: lnwallet.ChannelConfig{
			DustLimit:        354,
			MaxPendingAmount: lnwire.NewMSatFromSatoshis(fundingAmt),
			MinHTLC:          1,
			ToSelfDelay:      144,
			MaxAcceptedHTLCs: 30,
		},
	}
	nFundee := &Negotiation{
		Peer:   fundeeConn,
		Keys:   fundeeKeys,
		Bounds: testBounds(),
		LocalConfig: lnwallet.ChannelConfig{
			DustLimit:        354,
			MaxPendingAmount: lnwire.NewMSatFromSatoshis(fundingAmt),
			MinHTLC:          1,
			ToSelfDelay:      144,
			MaxAcceptedHTLCs: 30,
			MinimumDepth:     3,
		},
	}

	outpoint := &wire.OutPoint{Index: 0}
	outpoint.Hash[0] = 0x42

	type funderOutcome struct {
		result *Result
		err    error
	}
	type fundeeOutcome struct {
		result *Result
		err    error
	}

	funderCh := make(chan funderOutcome, 1)
	fundeeCh := make(chan fundeeOutcome, 1)

	go func() {
		result, err := RunFunder(nFunder, FunderRequest{
			FundingAmount:   fundingAmt,
			PushAmount:      0,
			FeeratePerKw:    15000,
			MaxMinimumDepth: 144,
		}, &fixedOutpointSource{outpoint: outpoint})
		funderCh <- funderOutcome{result, err}
	}()

	go func() {
		msg, err := lnwire.ReadMessage(fundeeConn, 0)
		if err != nil {
			fundeeCh <- fundeeOutcome{nil, err}
			return
		}
		openMsg, ok := msg.(*lnwire.OpenChannel)
		if !ok {
			fundeeCh <- fundeeOutcome{nil, io.ErrUnexpectedEOF}
			return
		}

		result, err := RunFundee(nFundee, FundeeRequest{
			MinFeerate: 253,
			MaxFeerate: 10_000_000,
			OpenMsg:    openMsg,
		})
		fundeeCh <- fundeeOutcome{result, err}
	}()

	funderOut := <-funderCh
	fundeeOut := <-fundeeCh

	require.NoError(t, funderOut.err)
	require.NoError(t, fundeeOut.err)

	require.Equal(t, outpoint.Hash, funderOut.result.FundingOutpoint.Hash)
	require.Equal(t, outpoint.Hash, fundeeOut.result.FundingOutpoint.Hash)
}

func TestFundeeRejectsOversizedFunding(t *testing.T) {
	var seed [32]byte
	keys, err := keychain.DeriveChannelKeys(seed)
	require.NoError(t, err)

	n := &Negotiation{Keys: keys, Bounds: testBounds()}

	openMsg := &lnwire.OpenChannel{
		FundingAmount:    lnwallet.MaxFundingAmount,
		FeePerKiloWeight: 15000,
	}

	_, err = RunFundee(n, FundeeRequest{
		MinFeerate: 253,
		MaxFeerate: 10_000_000,
		OpenMsg:    openMsg,
	})
	require.Error(t, err)

	negErr, ok := err.(*NegotiationError)
	require.True(t, ok)
	require.Equal(t, PeerBadFunding, negErr.Code)
}
