package lnwire

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func randPubKey(t *testing.T, b byte) *btcec.PublicKey {
	var buf [32]byte
	buf[31] = b
	var s btcec.ModNScalar
	s.SetBytes(&buf)
	priv := btcec.PrivKeyFromScalar(&s)
	return priv.PubKey()
}

func TestOpenChannelRoundTrip(t *testing.T) {
	open := &OpenChannel{
		TemporaryChanID:      ChannelID{0xff},
		FundingAmount:        1_000_000,
		PushAmount:           0,
		DustLimit:            354,
		MaxValueInFlight:     990_000_000,
		ChannelReserve:       10_000,
		HtlcMinimum:          1,
		FeePerKiloWeight:     15000,
		CsvDelay:             144,
		MaxAcceptedHTLCs:     30,
		FundingKey:           randPubKey(t, 1),
		RevocationPoint:      randPubKey(t, 2),
		PaymentPoint:         randPubKey(t, 3),
		DelayedPaymentPoint:  randPubKey(t, 4),
		FirstCommitmentPoint: randPubKey(t, 5),
	}

	var buf bytes.Buffer
	require.NoError(t, open.Encode(&buf, 0))

	var decoded OpenChannel
	require.NoError(t, decoded.Decode(&buf, 0))

	require.Equal(t, open.TemporaryChanID, decoded.TemporaryChanID)
	require.Equal(t, open.FundingAmount, decoded.FundingAmount)
	require.Equal(t, open.CsvDelay, decoded.CsvDelay)
	require.True(t, open.FundingKey.IsEqual(decoded.FundingKey))
	require.True(t, open.FirstCommitmentPoint.IsEqual(decoded.FirstCommitmentPoint))
}

func TestAcceptChannelRoundTrip(t *testing.T) {
	accept := &AcceptChannel{
		TemporaryChanID:      ChannelID{0xff},
		DustLimit:            354,
		MaxValueInFlight:     990_000_000,
		ChannelReserve:       10_000,
		MinimumDepth:         3,
		HtlcMinimum:          1,
		CsvDelay:             144,
		MaxAcceptedHTLCs:     30,
		FundingKey:           randPubKey(t, 6),
		RevocationPoint:      randPubKey(t, 7),
		PaymentPoint:         randPubKey(t, 8),
		DelayedPaymentPoint:  randPubKey(t, 9),
		FirstCommitmentPoint: randPubKey(t, 10),
	}

	var buf bytes.Buffer
	require.NoError(t, accept.Encode(&buf, 0))

	var decoded AcceptChannel
	require.NoError(t, decoded.Decode(&buf, 0))

	require.Equal(t, accept.TemporaryChanID, decoded.TemporaryChanID)
	require.Equal(t, accept.MinimumDepth, decoded.MinimumDepth)
	require.True(t, accept.FundingKey.IsEqual(decoded.FundingKey))
}

func TestFundingCreatedRoundTrip(t *testing.T) {
	fc := &FundingCreated{
		TemporaryChanID: ChannelID{0xff},
		FundingOutIndex: 1,
	}
	fc.FundingTxID[0] = 0xaa
	fc.CommitSig[0] = 0xbb

	var buf bytes.Buffer
	require.NoError(t, fc.Encode(&buf, 0))

	var decoded FundingCreated
	require.NoError(t, decoded.Decode(&buf, 0))
	require.Equal(t, *fc, decoded)
}

func TestFundingSignedRoundTrip(t *testing.T) {
	fs := &FundingSigned{ChanID: ChannelID{0xaa}}
	fs.CommitSig[0] = 0xcc

	var buf bytes.Buffer
	require.NoError(t, fs.Encode(&buf, 0))

	var decoded FundingSigned
	require.NoError(t, decoded.Decode(&buf, 0))
	require.Equal(t, *fs, decoded)
}

func TestWriteReadMessage(t *testing.T) {
	fs := &FundingSigned{ChanID: ChannelID{0x01}}

	var buf bytes.Buffer
	n, err := WriteMessage(&buf, fs, 0)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)

	msg, err := ReadMessage(&buf, 0)
	require.NoError(t, err)

	decoded, ok := msg.(*FundingSigned)
	require.True(t, ok)
	require.Equal(t, fs.ChanID, decoded.ChanID)
}

func TestErrorRoundTrip(t *testing.T) {
	e := &Error{ChanID: ChannelID{0x01}, Data: []byte("bad config")}

	var buf bytes.Buffer
	require.NoError(t, e.Encode(&buf, 0))

	var decoded Error
	require.NoError(t, decoded.Decode(&buf, 0))
	require.Equal(t, e.ChanID, decoded.ChanID)
	require.Equal(t, e.Data, decoded.Data)
}
