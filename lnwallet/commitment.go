package lnwallet

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightningnetwork/openingd/keychain"
	"github.com/lightningnetwork/openingd/lnwire"
)

// CommitmentKeyRing holds the three keys needed to build one side's
// view of the very first commitment transaction: the owner's "to local"
// delayed-payment key, the revocation key the counterparty will learn the
// private half of if this state is ever revoked, and the counterparty's
// plain "to remote" payment key. The first two are derived from the
// relevant basepoints and the owner's first per-commitment point, the same
// way the channel-operation subsystem derives every subsequent commitment's
// keys; the "to remote" key is the counterparty's payment basepoint as is.
type CommitmentKeyRing struct {
	ToLocalKey  *btcec.PublicKey
	ToRemoteKey *btcec.PublicKey
	RevocationKey *btcec.PublicKey
}

// DeriveCommitmentKeys computes the key ring for one party's view of a
// commitment transaction at the given per-commitment point, given the
// local delayed-payment basepoint, the local revocation basepoint, and the
// remote party's plain payment basepoint.
func DeriveCommitmentKeys(commitPoint *btcec.PublicKey, delayedPaymentBase,
	revocationBase, remotePaymentBase *btcec.PublicKey) *CommitmentKeyRing {

	return &CommitmentKeyRing{
		ToLocalKey:    keychain.TweakPubKey(delayedPaymentBase, commitPoint),
		RevocationKey: keychain.DeriveRevocationPubkey(revocationBase, commitPoint),
		ToRemoteKey:   remotePaymentBase,
	}
}

// CommitmentOutputs bundles the two outputs of a freshly opened channel's
// initial commitment transaction: the funder's (or fundee's) delayed
// to-local balance and the counterparty's unencumbered to-remote balance.
// Either may be omitted (dust-trimmed) per spec invariant 6.
type CommitmentOutputs struct {
	ToLocal  *wire.TxOut
	ToRemote *wire.TxOut
}

// BuildCommitmentOutputs constructs the to-local and to-remote outputs of
// the initial commitment transaction for the party identified by
// toSelfDelay/keys, trimming either side below its owner's dust limit per
// spec invariant 6. toLocalAmt and toRemoteAmt are already net of the
// commitment transaction fee, which is charged entirely to the funder's
// to-local balance by the caller before this function is reached.
func BuildCommitmentOutputs(toSelfDelay uint16, keys *CommitmentKeyRing,
	toLocalAmt, toRemoteAmt btcutil.Amount, localDustLimit,
	remoteDustLimit btcutil.Amount) (*CommitmentOutputs, error) {

	outputs := &CommitmentOutputs{}

	if toLocalAmt >= localDustLimit {
		script, err := commitScriptToSelf(
			uint32(toSelfDelay), keys.ToLocalKey, keys.RevocationKey,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to build to_local script: %w", err)
		}
		pkScript, err := witnessScriptHash(script)
		if err != nil {
			return nil, err
		}
		outputs.ToLocal = wire.NewTxOut(int64(toLocalAmt), pkScript)
	}

	if toRemoteAmt >= remoteDustLimit {
		script, err := commitScriptUnencumbered(keys.ToRemoteKey)
		if err != nil {
			return nil, fmt.Errorf("unable to build to_remote script: %w", err)
		}
		outputs.ToRemote = wire.NewTxOut(int64(toRemoteAmt), script)
	}

	return outputs, nil
}

// BuildCommitmentTx assembles the unsigned initial commitment transaction
// spending the funding output, with the to-local and to-remote outputs
// attached in the canonical BOLT-3 output order (outputs are sorted by
// value then script; since this engine only ever builds an HTLC-free
// initial commitment, the two-output case is handled directly).
func BuildCommitmentTx(fundingOutpoint *wire.OutPoint, obscuredCommitNum uint64,
	outputs *CommitmentOutputs) *wire.MsgTx {

	tx := wire.NewMsgTx(2)
	tx.LockTime = uint32(obscuredCommitNum&0xffffff) | (0x20 << 24)

	txIn := wire.NewTxIn(fundingOutpoint, nil, nil)
	txIn.Sequence = uint32(0x80000000) | uint32((obscuredCommitNum>>24)&0xffffff)
	tx.AddTxIn(txIn)

	if outputs.ToLocal != nil && outputs.ToRemote != nil {
		localFirst := outputs.ToLocal.Value < outputs.ToRemote.Value ||
			(outputs.ToLocal.Value == outputs.ToRemote.Value &&
				bytes.Compare(outputs.ToLocal.PkScript, outputs.ToRemote.PkScript) < 0)
		if localFirst {
			tx.AddTxOut(outputs.ToLocal)
			tx.AddTxOut(outputs.ToRemote)
		} else {
			tx.AddTxOut(outputs.ToRemote)
			tx.AddTxOut(outputs.ToLocal)
		}
	} else if outputs.ToLocal != nil {
		tx.AddTxOut(outputs.ToLocal)
	} else if outputs.ToRemote != nil {
		tx.AddTxOut(outputs.ToRemote)
	}

	return tx
}

// SignCommitmentTx produces this party's half of the 2-of-2 signature over
// the funding input of a commitment transaction.
func SignCommitmentTx(commitTx *wire.MsgTx, redeemScript []byte,
	fundingAmt btcutil.Amount, signingKey *btcec.PrivateKey) (*lnwire.Sig, error) {

	sigHashes := txscript.NewTxSigHashes(commitTx, txscript.NewCannedPrevOutputFetcher(
		redeemScript, int64(fundingAmt),
	))

	rawSig, err := txscript.RawTxInWitnessSignature(
		commitTx, sigHashes, 0, int64(fundingAmt), redeemScript,
		txscript.SigHashAll, signingKey,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to sign commitment: %w", err)
	}

	signature, err := ecdsa.ParseDERSignature(rawSig[:len(rawSig)-1])
	if err != nil {
		return nil, fmt.Errorf("unable to parse commitment "+
			"signature: %w", err)
	}

	return lnwire.NewSigFromECDSARawSignature(signature)
}

// VerifyCommitmentSignature checks the counterparty's signature over the
// funding input of a commitment transaction against their funding pubkey.
func VerifyCommitmentSignature(commitTx *wire.MsgTx, redeemScript []byte,
	fundingAmt btcutil.Amount, signerKey *btcec.PublicKey, sig *lnwire.Sig) error {

	signature, err := sig.ToSignature()
	if err != nil {
		return fmt.Errorf("malformed commitment signature: %w", err)
	}

	sigHashes := txscript.NewTxSigHashes(commitTx, txscript.NewCannedPrevOutputFetcher(
		redeemScript, int64(fundingAmt),
	))
	hash, err := txscript.CalcWitnessSigHash(
		redeemScript, sigHashes, txscript.SigHashAll, commitTx, 0, int64(fundingAmt),
	)
	if err != nil {
		return fmt.Errorf("unable to compute sighash: %w", err)
	}

	if !signature.Verify(hash, signerKey) {
		return fmt.Errorf("invalid commitment signature")
	}

	return nil
}
