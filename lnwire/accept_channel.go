package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// AcceptChannel is the fundee's response to OpenChannel, carrying its own
// channel config and basepoints.
type AcceptChannel struct {
	TemporaryChanID ChannelID

	DustLimit        btcutil.Amount
	MaxValueInFlight MilliSatoshi
	ChannelReserve   btcutil.Amount
	MinimumDepth     uint32
	HtlcMinimum      MilliSatoshi
	CsvDelay         uint16
	MaxAcceptedHTLCs uint16

	FundingKey           *btcec.PublicKey
	RevocationPoint      *btcec.PublicKey
	PaymentPoint         *btcec.PublicKey
	DelayedPaymentPoint  *btcec.PublicKey
	FirstCommitmentPoint *btcec.PublicKey

	ExtraFields ExtraFields
}

// Decode deserializes a serialized AcceptChannel message stored in the
// passed io.Reader observing the specified protocol version.
//
// This is part of the lnwire.Message interface.
func (a *AcceptChannel) Decode(r io.Reader, pver uint32) error {
	var dustLimit, reserve uint64
	var maxInFlight uint64

	if err := readElements(r,
		&a.TemporaryChanID,
		&dustLimit,
		&maxInFlight,
		&reserve,
		&a.MinimumDepth,
	); err != nil {
		return err
	}

	// htlc_minimum_msat is a 4-byte field, unlike the other msat/satoshi
	// fields on this message, so it's read separately rather than through
	// the generic 8-byte MilliSatoshi codec path.
	var htlcMin uint32
	if err := readElement(r, &htlcMin); err != nil {
		return err
	}

	if err := readElements(r,
		&a.CsvDelay,
		&a.MaxAcceptedHTLCs,
		&a.FundingKey,
		&a.RevocationPoint,
		&a.PaymentPoint,
		&a.DelayedPaymentPoint,
		&a.FirstCommitmentPoint,
	); err != nil {
		return err
	}

	a.DustLimit = btcutil.Amount(dustLimit)
	a.MaxValueInFlight = MilliSatoshi(maxInFlight)
	a.ChannelReserve = btcutil.Amount(reserve)
	a.HtlcMinimum = MilliSatoshi(htlcMin)

	return a.ExtraFields.Decode(r)
}

// Encode serializes the target AcceptChannel into the passed io.Writer
// observing the protocol version specified.
//
// This is part of the lnwire.Message interface.
func (a *AcceptChannel) Encode(w io.Writer, pver uint32) error {
	if err := writeElements(w,
		a.TemporaryChanID,
		uint64(a.DustLimit),
		uint64(a.MaxValueInFlight),
		uint64(a.ChannelReserve),
		a.MinimumDepth,
	); err != nil {
		return err
	}

	// htlc_minimum_msat is a 4-byte field on the wire; see the matching
	// note in Decode.
	if err := writeElement(w, uint32(a.HtlcMinimum)); err != nil {
		return err
	}

	if err := writeElements(w,
		a.CsvDelay,
		a.MaxAcceptedHTLCs,
		a.FundingKey,
		a.RevocationPoint,
		a.PaymentPoint,
		a.DelayedPaymentPoint,
		a.FirstCommitmentPoint,
	); err != nil {
		return err
	}

	return a.ExtraFields.Encode(w)
}

// MsgType returns the integer uniquely identifying this message type on
// the wire.
//
// This is part of the lnwire.Message interface.
func (a *AcceptChannel) MsgType() MessageType {
	return MsgAcceptChannel
}

// MaxPayloadLength returns the maximum allowed payload size for this
// message.
//
// This is part of the lnwire.Message interface.
func (a *AcceptChannel) MaxPayloadLength(uint32) uint32 {
	return MaxMessagePayload
}
