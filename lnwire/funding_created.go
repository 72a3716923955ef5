package lnwire

import "io"

// FundingCreated is sent by the funder once the funding transaction has
// been assembled (though not yet broadcast), carrying its outpoint and the
// funder's signature on the fundee's first commitment transaction.
type FundingCreated struct {
	TemporaryChanID ChannelID
	FundingTxID     [32]byte
	FundingOutIndex uint16
	CommitSig       Sig
}

// Decode deserializes a serialized FundingCreated message stored in the
// passed io.Reader observing the specified protocol version.
//
// This is part of the lnwire.Message interface.
func (f *FundingCreated) Decode(r io.Reader, pver uint32) error {
	return readElements(r,
		&f.TemporaryChanID,
		&f.FundingTxID,
		&f.FundingOutIndex,
		&f.CommitSig,
	)
}

// Encode serializes the target FundingCreated into the passed io.Writer
// observing the protocol version specified.
//
// This is part of the lnwire.Message interface.
func (f *FundingCreated) Encode(w io.Writer, pver uint32) error {
	return writeElements(w,
		f.TemporaryChanID,
		f.FundingTxID,
		f.FundingOutIndex,
		f.CommitSig,
	)
}

// MsgType returns the integer uniquely identifying this message type on
// the wire.
//
// This is part of the lnwire.Message interface.
func (f *FundingCreated) MsgType() MessageType {
	return MsgFundingCreated
}

// MaxPayloadLength returns the maximum allowed payload size for this
// message: it's entirely fixed-width.
//
// This is part of the lnwire.Message interface.
func (f *FundingCreated) MaxPayloadLength(uint32) uint32 {
	return 32 + 32 + 2 + 64
}
