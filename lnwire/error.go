package lnwire

import "io"

// Error is sent by either side of a channel negotiation to abort it. If
// ChanID is the all-zero ChannelID, the error applies to no specific
// channel and the connection itself should be torn down; otherwise it
// names the temporary or permanent channel ID the failure pertains to.
type Error struct {
	ChanID ChannelID
	Data   []byte
}

// Decode deserializes a serialized Error message stored in the passed
// io.Reader observing the specified protocol version.
//
// This is part of the lnwire.Message interface.
func (e *Error) Decode(r io.Reader, pver uint32) error {
	if err := readElement(r, &e.ChanID); err != nil {
		return err
	}

	var length uint16
	if err := readElement(r, &length); err != nil {
		return err
	}

	e.Data = make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, e.Data); err != nil {
			return err
		}
	}

	return nil
}

// Encode serializes the target Error into the passed io.Writer observing
// the protocol version specified.
//
// This is part of the lnwire.Message interface.
func (e *Error) Encode(w io.Writer, pver uint32) error {
	if err := writeElement(w, e.ChanID); err != nil {
		return err
	}
	if err := writeElement(w, uint16(len(e.Data))); err != nil {
		return err
	}
	if len(e.Data) > 0 {
		if _, err := w.Write(e.Data); err != nil {
			return err
		}
	}
	return nil
}

// MsgType returns the integer uniquely identifying this message type on
// the wire.
//
// This is part of the lnwire.Message interface.
func (e *Error) MsgType() MessageType {
	return MsgError
}

// MaxPayloadLength returns the maximum allowed payload size for an Error
// message, dominated by the free-form error data field.
//
// This is part of the lnwire.Message interface.
func (e *Error) MaxPayloadLength(uint32) uint32 {
	return MaxMessagePayload
}
