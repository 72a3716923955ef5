// Package keychain derives the per-channel key material used by the
// opening engine from a single 256-bit root seed handed down by the
// supervisor at init time.
package keychain

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo is the fixed label mixed into the HKDF expansion step. It has
// no cryptographic significance beyond domain separation; it is preserved
// verbatim from the source this engine's key schedule was distilled from.
const hkdfInfo = "c-lightning"

// SeedSize is the expected length in bytes of the root seed handed to
// DeriveChannelKeys.
const SeedSize = 32

// Secrets holds the four private scalars derived from a channel's root
// seed. None of these, nor the seed they came from, may ever be
// serialized outside of this process.
type Secrets struct {
	Funding                *btcec.PrivateKey
	RevocationBasepoint     *btcec.PrivateKey
	PaymentBasepoint        *btcec.PrivateKey
	DelayedPaymentBasepoint *btcec.PrivateKey
}

// Points holds the compressed secp256k1 public keys corresponding to the
// four scalars in Secrets. These, unlike Secrets, are safe to place on
// the wire.
type Points struct {
	Funding                 *btcec.PublicKey
	RevocationBasepoint     *btcec.PublicKey
	PaymentBasepoint        *btcec.PublicKey
	DelayedPaymentBasepoint *btcec.PublicKey
}

// KeyRing bundles everything DeriveChannelKeys produces: the four base
// keypairs, the shachain seed used to produce per-commitment secrets, and
// the first per-commitment point computed from it.
type KeyRing struct {
	Secrets Secrets
	Points  Points

	// ShaSeed is the root of this channel's shachain (BOLT-3). It MUST
	// NOT leave this process; only points derived from it do.
	ShaSeed [32]byte

	// FirstPerCommitPoint is G * FirstPerCommitSecret, i.e. the point
	// this side will use for its first commitment transaction.
	FirstPerCommitPoint *btcec.PublicKey
}

// DeriveChannelKeys runs the seed through HKDF-SHA-256 with an empty salt
// and the fixed info label, producing five 32-byte fields interpreted
// positionally as (funding, revocation, payment, delayed_payment,
// shaseed). Each of the four scalars is validated as a usable secp256k1
// private key; any failure here is a local, fatal KEY_DERIVATION_FAILED
// condition, not a retryable error, per spec.
func DeriveChannelKeys(seed [SeedSize]byte) (*KeyRing, error) {
	reader := hkdf.New(sha256.New, seed[:], nil, []byte(hkdfInfo))

	var raw [5][32]byte
	for i := range raw {
		if _, err := io.ReadFull(reader, raw[i][:]); err != nil {
			return nil, fmt.Errorf("hkdf expansion failed: %w", err)
		}
	}

	scalars := raw[:4]
	fields := make([]*btcec.PrivateKey, 4)
	for i, s := range scalars {
		priv, err := validScalar(s)
		if err != nil {
			return nil, fmt.Errorf("derived scalar %d is not a valid "+
				"secp256k1 private key: %w", i, err)
		}
		fields[i] = priv
	}

	kr := &KeyRing{
		Secrets: Secrets{
			Funding:                 fields[0],
			RevocationBasepoint:     fields[1],
			PaymentBasepoint:        fields[2],
			DelayedPaymentBasepoint: fields[3],
		},
		Points: Points{
			Funding:                 fields[0].PubKey(),
			RevocationBasepoint:     fields[1].PubKey(),
			PaymentBasepoint:        fields[2].PubKey(),
			DelayedPaymentBasepoint: fields[3].PubKey(),
		},
	}
	copy(kr.ShaSeed[:], raw[4][:])

	secret, err := FirstPerCommitmentSecret(kr.ShaSeed)
	if err != nil {
		return nil, fmt.Errorf("unable to derive first per-commitment "+
			"secret: %w", err)
	}
	firstPriv, err := validScalar(secret)
	if err != nil {
		return nil, fmt.Errorf("first per-commitment secret is not a "+
			"valid scalar: %w", err)
	}
	kr.FirstPerCommitPoint = firstPriv.PubKey()

	return kr, nil
}

// validScalar parses a 32-byte field as a secp256k1 private scalar,
// rejecting the zero scalar and any value which does not survive a
// round trip through the curve's canonical reduced form. This guards
// against the vanishingly unlikely case of an HKDF output landing outside
// the usable key space, per spec.
func validScalar(b [32]byte) (*btcec.PrivateKey, error) {
	var s btcec.ModNScalar
	overflow := s.SetBytes(&b)
	if overflow != 0 {
		return nil, fmt.Errorf("scalar overflows curve order")
	}
	if s.IsZero() {
		return nil, fmt.Errorf("scalar is zero")
	}
	return btcec.PrivKeyFromScalar(&s), nil
}
