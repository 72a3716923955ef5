package lnwire

import (
	"io"

	"github.com/lightningnetwork/lnd/tlv"
)

// TLV types for the optional extension stream appended to open_channel and
// accept_channel, mirroring modern BOLT-2's TLV suffix. Older peers omit
// this stream entirely; this engine treats both fields as optional on
// decode and omits the whole stream on encode when neither is set.
const (
	typeChannelType          tlv.Type = 1
	typeUpfrontShutdownScript tlv.Type = 0
)

// ExtraFields holds the optional TLV-encoded fields this engine knows
// about. Any other TLV records present on the wire are parsed and ignored;
// this engine never fails a negotiation over an unrecognized odd or even
// TLV type it doesn't itself depend on.
type ExtraFields struct {
	UpfrontShutdownScript []byte
	ChannelType           []byte
}

// Empty reports whether there are no optional fields to encode, letting
// callers omit the TLV stream entirely for the common case.
func (e *ExtraFields) Empty() bool {
	return len(e.UpfrontShutdownScript) == 0 && len(e.ChannelType) == 0
}

// Encode writes the TLV extension stream for the set fields, in ascending
// type order as BOLT-1 requires.
func (e *ExtraFields) Encode(w io.Writer) error {
	if e.Empty() {
		return nil
	}

	var records []tlv.Record
	if len(e.UpfrontShutdownScript) != 0 {
		records = append(records, tlv.MakeDynamicRecord(
			typeUpfrontShutdownScript, &e.UpfrontShutdownScript,
			func() uint64 { return uint64(len(e.UpfrontShutdownScript)) },
			tlv.EVarBytes, tlv.DVarBytes,
		))
	}
	if len(e.ChannelType) != 0 {
		records = append(records, tlv.MakeDynamicRecord(
			typeChannelType, &e.ChannelType,
			func() uint64 { return uint64(len(e.ChannelType)) },
			tlv.EVarBytes, tlv.DVarBytes,
		))
	}

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}
	return stream.Encode(w)
}

// Decode reads a (possibly empty, possibly absent) TLV extension stream
// from the remainder of r. Absence of any bytes to read is not an error:
// legacy peers simply don't send one.
func (e *ExtraFields) Decode(r io.Reader) error {
	records := []tlv.Record{
		tlv.MakeDynamicRecord(
			typeUpfrontShutdownScript, &e.UpfrontShutdownScript,
			func() uint64 { return uint64(len(e.UpfrontShutdownScript)) },
			tlv.EVarBytes, tlv.DVarBytes,
		),
		tlv.MakeDynamicRecord(
			typeChannelType, &e.ChannelType,
			func() uint64 { return uint64(len(e.ChannelType)) },
			tlv.EVarBytes, tlv.DVarBytes,
		),
	}

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}

	if err := stream.Decode(r); err != nil && err != io.EOF {
		return err
	}
	return nil
}
