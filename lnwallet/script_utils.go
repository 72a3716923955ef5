package lnwallet

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// witnessScriptHash generates a pay-to-witness-script-hash public key
// script paying to a version 0 witness program wrapping the passed redeem
// script.
func witnessScriptHash(redeemScript []byte) ([]byte, error) {
	bldr := txscript.NewScriptBuilder()
	bldr.AddOp(txscript.OP_0)

	scriptHash := sha256.Sum256(redeemScript)
	bldr.AddData(scriptHash[:])
	return bldr.Script()
}

// genMultiSigScript generates the non-P2SH'd 2-of-2 multisig redeem
// script for the funding output. Per BOLT-3, the two pubkeys are ordered
// lexicographically before being placed in the script; the signatures
// supplied when spending MUST appear in the same order.
func genMultiSigScript(aPub, bPub []byte) ([]byte, error) {
	if len(aPub) != 33 || len(bPub) != 33 {
		return nil, fmt.Errorf("pubkey size error: compressed pubkeys only")
	}

	if bytes.Compare(aPub, bPub) == 1 {
		aPub, bPub = bPub, aPub
	}

	bldr := txscript.NewScriptBuilder()
	bldr.AddOp(txscript.OP_2)
	bldr.AddData(aPub)
	bldr.AddData(bPub)
	bldr.AddOp(txscript.OP_2)
	bldr.AddOp(txscript.OP_CHECKMULTISIG)
	return bldr.Script()
}

// GenFundingPkScript creates the 2-of-2 funding redeem script and its
// matching P2WSH output for the funding transaction, given the two
// parties' compressed funding pubkeys and the channel capacity.
func GenFundingPkScript(aPub, bPub []byte, amt int64) ([]byte, *wire.TxOut, error) {
	if amt <= 0 {
		return nil, nil, fmt.Errorf("can't create funding script with " +
			"zero or negative capacity")
	}

	redeemScript, err := genMultiSigScript(aPub, bPub)
	if err != nil {
		return nil, nil, err
	}
	pkScript, err := witnessScriptHash(redeemScript)
	if err != nil {
		return nil, nil, err
	}

	return redeemScript, wire.NewTxOut(amt, pkScript), nil
}

// SpendMultiSig generates the witness stack required to redeem the 2-of-2
// P2WSH funding output, ordering the two signatures to match the
// lexicographic key order baked into the redeem script.
func SpendMultiSig(redeemScript, pubA, sigA, pubB, sigB []byte) [][]byte {
	witness := make([][]byte, 4)

	// A P2WSH multisig spend needs a leading nil element to eat the
	// extra OP_CHECKMULTISIG pop.
	witness[0] = nil

	if bytes.Compare(pubA, pubB) == 1 {
		witness[1] = sigB
		witness[2] = sigA
	} else {
		witness[1] = sigA
		witness[2] = sigB
	}

	witness[3] = redeemScript
	return witness
}

// commitScriptToSelf constructs the public key script for the CSV-delayed
// "to local" output of a commitment transaction. It is spendable either
// immediately by the revocation key (if the commitment was revoked) or,
// after csvTimeout blocks, by the owner's delayed payment key.
func commitScriptToSelf(csvTimeout uint32, selfKey, revokeKey *btcec.PublicKey) ([]byte, error) {
	builder := txscript.NewScriptBuilder()

	builder.AddOp(txscript.OP_IF)
	builder.AddData(revokeKey.SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddInt64(int64(csvTimeout))
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddData(selfKey.SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ENDIF)

	return builder.Script()
}

// commitScriptUnencumbered constructs the public key script for the
// counterparty's "to remote" output on a commitment transaction: a plain
// P2WKH output, spendable immediately with no contestation period.
func commitScriptUnencumbered(key *btcec.PublicKey) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_0)
	builder.AddData(btcutil.Hash160(key.SerializeCompressed()))

	return builder.Script()
}
