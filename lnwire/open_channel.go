package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// OpenChannel is the first message of the channel-opening handshake, sent
// by the funder to propose a new channel.
type OpenChannel struct {
	ChainHash [32]byte

	TemporaryChanID ChannelID

	FundingAmount btcutil.Amount
	PushAmount    MilliSatoshi

	DustLimit            btcutil.Amount
	MaxValueInFlight     MilliSatoshi
	ChannelReserve       btcutil.Amount
	HtlcMinimum          MilliSatoshi
	FeePerKiloWeight     uint32
	CsvDelay             uint16
	MaxAcceptedHTLCs     uint16

	FundingKey            *btcec.PublicKey
	RevocationPoint       *btcec.PublicKey
	PaymentPoint          *btcec.PublicKey
	DelayedPaymentPoint   *btcec.PublicKey
	FirstCommitmentPoint  *btcec.PublicKey

	ExtraFields ExtraFields
}

// Decode deserializes a serialized OpenChannel message stored in the
// passed io.Reader observing the specified protocol version.
//
// This is part of the lnwire.Message interface.
func (o *OpenChannel) Decode(r io.Reader, pver uint32) error {
	var fundingAmt, pushAmt, dustLimit, reserve uint64
	var maxInFlight uint64

	if err := readElements(r,
		&o.ChainHash,
		&o.TemporaryChanID,
		&fundingAmt,
		&pushAmt,
		&dustLimit,
		&maxInFlight,
		&reserve,
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
		&o.FeePerKiloWeight,
		&o.CsvDelay,
		&o.MaxAcceptedHTLCs,
		&o.FundingKey,
		&o.RevocationPoint,
		&o.PaymentPoint,
		&o.DelayedPaymentPoint,
		&o.FirstCommitmentPoint,
	); err != nil {
		return err
	}

	o.FundingAmount = btcutil.Amount(fundingAmt)
	o.PushAmount = MilliSatoshi(pushAmt)
	o.DustLimit = btcutil.Amount(dustLimit)
	o.MaxValueInFlight = MilliSatoshi(maxInFlight)
	o.ChannelReserve = btcutil.Amount(reserve)
	o.HtlcMinimum = MilliSatoshi(htlcMin)

	return o.ExtraFields.Decode(r)
}

// Encode serializes the target OpenChannel into the passed io.Writer
// observing the protocol version specified.
//
// This is part of the lnwire.Message interface.
func (o *OpenChannel) Encode(w io.Writer, pver uint32) error {
	if err := writeElements(w,
		o.ChainHash,
		o.TemporaryChanID,
		uint64(o.FundingAmount),
		uint64(o.PushAmount),
		uint64(o.DustLimit),
		uint64(o.MaxValueInFlight),
		uint64(o.ChannelReserve),
	); err != nil {
		return err
	}

	// htlc_minimum_msat is a 4-byte field on the wire; see the matching
	// note in Decode.
	if err := writeElement(w, uint32(o.HtlcMinimum)); err != nil {
		return err
	}

	if err := writeElements(w,
		o.FeePerKiloWeight,
		o.CsvDelay,
		o.MaxAcceptedHTLCs,
		o.FundingKey,
		o.RevocationPoint,
		o.PaymentPoint,
		o.DelayedPaymentPoint,
		o.FirstCommitmentPoint,
	); err != nil {
		return err
	}

	return o.ExtraFields.Encode(w)
}

// MsgType returns the integer uniquely identifying this message type on
// the wire.
//
// This is part of the lnwire.Message interface.
func (o *OpenChannel) MsgType() MessageType {
	return MsgOpenChannel
}

// MaxPayloadLength returns the maximum allowed payload size for this
// message, accounting for the fixed fields plus the optional TLV
// extension stream.
//
// This is part of the lnwire.Message interface.
func (o *OpenChannel) MaxPayloadLength(uint32) uint32 {
	return MaxMessagePayload
}
