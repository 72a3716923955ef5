package lnwire

// code derived from https://github .com/btcsuite/btcd/blob/master/wire/message.go

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxMessagePayload is the maximum bytes a message can be regardless of other
// individual limits imposed by messages themselves.
const MaxMessagePayload = 65535 // 65KB

// MessageType is the unique 2 byte big-endian integer that indicates the type
// of message on the wire. All messages have a very simple header which
// consists simply of 2-byte message type. We omit a checksum, as the
// Lighting Protocol is intended to be encapsulated within a
// confidential+authenticated cryptographic messaging protocol. A 4-byte
// length prefix precedes the type so that a reader can bound each message
// to its own bytes before decoding it, the way the transport's send(msg)/
// recv() abstraction is assumed to behave: one message in, one message out,
// never a partial read bleeding into the next.
type MessageType uint16

// The message types this engine ever needs to read or write: the generic
// error message, and the four messages of the channel-opening handshake.
const (
	MsgError          MessageType = 17
	MsgOpenChannel    MessageType = 32
	MsgAcceptChannel  MessageType = 33
	MsgFundingCreated MessageType = 34
	MsgFundingSigned  MessageType = 35
)

// UnknownMessage is an implementation of the error interface that allows the
// creation of an error in response to an unknown message.
type UnknownMessage struct {
	messageType MessageType
}

// Error returns a human readable string describing the error.
//
// This is part of the error interface.
func (u *UnknownMessage) Error() string {
	return fmt.Sprintf("unable to parse message of unknown type: %v",
		u.messageType)
}

// Message is an interface that defines a lightning wire protocol message. The
// interface is general in order to allow implementing types full control over
// the representation of its data.
type Message interface {
	Decode(io.Reader, uint32) error
	Encode(io.Writer, uint32) error
	MsgType() MessageType
	MaxPayloadLength(uint32) uint32
}

// makeEmptyMessage creates a new empty message of the proper concrete type
// based on the passed message type.
func makeEmptyMessage(msgType MessageType) (Message, error) {
	var msg Message

	switch msgType {
	case MsgError:
		msg = &Error{}
	case MsgOpenChannel:
		msg = &OpenChannel{}
	case MsgAcceptChannel:
		msg = &AcceptChannel{}
	case MsgFundingCreated:
		msg = &FundingCreated{}
	case MsgFundingSigned:
		msg = &FundingSigned{}
	default:
		return nil, &UnknownMessage{messageType: msgType}
	}

	return msg, nil
}

// WriteMessage writes a lightning Message to w including the necessary header
// information and returns the number of bytes written.
func WriteMessage(w io.Writer, msg Message, pver uint32) (int, error) {
	totalBytes := 0

	// Encode the message payload itself into a temporary buffer.
	var bw bytes.Buffer
	if err := msg.Encode(&bw, pver); err != nil {
		return totalBytes, err
	}
	payload := bw.Bytes()
	lenp := len(payload)

	// Enforce maximum overall message payload.
	if lenp > MaxMessagePayload {
		return totalBytes, fmt.Errorf("message payload is too large - "+
			"encoded %d bytes, but maximum message payload is %d bytes",
			lenp, MaxMessagePayload)
	}

	// Enforce maximum message payload on the message type.
	mpl := msg.MaxPayloadLength(pver)
	if uint32(lenp) > mpl {
		return totalBytes, fmt.Errorf("message payload is too large - "+
			"encoded %d bytes, but maximum message payload of "+
			"type %x is %d bytes", lenp, msg.MsgType(), mpl)
	}

	// Write the 4-byte length prefix covering the 2-byte type plus the
	// payload, so the reader on the other end can bound its read to
	// exactly this message before decoding it.
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(lenp+2))
	n, err := w.Write(lenBuf[:])
	totalBytes += n
	if err != nil {
		return totalBytes, err
	}

	// With the length written, we'll now write out the message type
	// itself.
	var mType [2]byte
	binary.BigEndian.PutUint16(mType[:], uint16(msg.MsgType()))
	n, err = w.Write(mType[:])
	totalBytes += n
	if err != nil {
		return totalBytes, err
	}

	// With the message type written, we'll now write out the raw payload
	// itself.
	n, err = w.Write(payload)
	totalBytes += n

	return totalBytes, err
}

// ReadMessage reads, validates, and parses the next Lightning message from r
// for the provided protocol version. The message is read length-delimited
// into an in-memory buffer before anything is decoded from it, so a
// message's Decode (and in particular ExtraFields.Decode's TLV stream) only
// ever sees a reader bounded to this one message — never bytes belonging to
// whatever is sent next.
func ReadMessage(r io.Reader, pver uint32) (Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length < 2 || length > MaxMessagePayload+2 {
		return nil, fmt.Errorf("message length %d out of range", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	msgType := MessageType(binary.BigEndian.Uint16(body[:2]))

	// Now that we know the target message type, we can create the proper
	// empty message type and decode the message into it.
	msg, err := makeEmptyMessage(msgType)
	if err != nil {
		return nil, err
	}
	if err := msg.Decode(bytes.NewReader(body[2:]), pver); err != nil {
		return nil, err
	}

	return msg, nil
}
