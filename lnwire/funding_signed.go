package lnwire

import "io"

// FundingSigned is sent by the fundee in response to FundingCreated,
// carrying the fundee's signature on the funder's first commitment
// transaction. ChanID is the temporary channel ID at this point in the
// handshake; neither side switches to the permanent, outpoint-derived
// channel ID until this message has been exchanged.
type FundingSigned struct {
	ChanID    ChannelID
	CommitSig Sig
}

// Decode deserializes a serialized FundingSigned message stored in the
// passed io.Reader observing the specified protocol version.
//
// This is part of the lnwire.Message interface.
func (f *FundingSigned) Decode(r io.Reader, pver uint32) error {
	return readElements(r, &f.ChanID, &f.CommitSig)
}

// Encode serializes the target FundingSigned into the passed io.Writer
// observing the protocol version specified.
//
// This is part of the lnwire.Message interface.
func (f *FundingSigned) Encode(w io.Writer, pver uint32) error {
	return writeElements(w, f.ChanID, f.CommitSig)
}

// MsgType returns the integer uniquely identifying this message type on
// the wire.
//
// This is part of the lnwire.Message interface.
func (f *FundingSigned) MsgType() MessageType {
	return MsgFundingSigned
}

// MaxPayloadLength returns the maximum allowed payload size for this
// message: it's entirely fixed-width.
//
// This is part of the lnwire.Message interface.
func (f *FundingSigned) MaxPayloadLength(uint32) uint32 {
	return 32 + 64
}
