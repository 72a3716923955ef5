package openingd

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/lightningnetwork/openingd/lnwire"
)

// writeCtrlElement and readCtrlElement mirror lnwire's wire codec for the
// fixed set of field types the supervisor control protocol's messages are
// built from. Kept separate from lnwire's codec since the two wire formats
// are independent framings with no shared message set.
func writeCtrlElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		_, err := w.Write([]byte{e})
		return err
	case uint16:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], e)
		_, err := w.Write(b[:])
		return err
	case uint32:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], e)
		_, err := w.Write(b[:])
		return err
	case uint64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], e)
		_, err := w.Write(b[:])
		return err
	case [32]byte:
		_, err := w.Write(e[:])
		return err
	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	case lnwire.Sig:
		_, err := w.Write(e[:])
		return err
	case *btcec.PublicKey:
		if e == nil {
			return fmt.Errorf("cannot write nil public key")
		}
		_, err := w.Write(e.SerializeCompressed())
		return err
	case []byte:
		_, err := w.Write(e)
		return err
	default:
		return fmt.Errorf("unknown type %T in writeCtrlElement", e)
	}
}

func writeCtrlElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := writeCtrlElement(w, element); err != nil {
			return err
		}
	}
	return nil
}

func readCtrlElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = b[0]
	case *uint16:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint16(b[:])
	case *uint32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint32(b[:])
	case *uint64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint64(b[:])
	case *[32]byte:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}
	case *chainhash.Hash:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}
	case *lnwire.Sig:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}
	case **btcec.PublicKey:
		var buf [33]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		pub, err := btcec.ParsePubKey(buf[:])
		if err != nil {
			return err
		}
		*e = pub
	default:
		return fmt.Errorf("unknown type %T in readCtrlElement", e)
	}

	return nil
}

func readCtrlElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		if err := readCtrlElement(r, element); err != nil {
			return err
		}
	}
	return nil
}
