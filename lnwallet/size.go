package lnwallet

// Weight estimates for the two commitment-transaction outputs this engine
// ever needs to size a funding transaction or confirm fee affordability for,
// expressed in the same base-size-plus-witness weight units as btcd's
// blockchain.GetTransactionWeight. CommitWeight sizes the commitment fee the
// funder pays on the initial commitment. HTLC outputs do not exist on a
// freshly opened channel's initial commitment, and nothing in this engine
// uses HtlcWeight; the parameter validator performs no fee affordability
// check.
const (
	// CommitWeight is the weight of a commitment transaction with no
	// HTLC outputs: version, locktime, txin count/spend of the funding
	// output, and the two P2WSH/P2WKH outputs plus their witnesses.
	CommitWeight int64 = 724

	// HtlcWeight is the marginal weight added by each pending HTLC
	// output on a commitment transaction.
	HtlcWeight int64 = 172

	// WitnessScaleFactor mirrors Bitcoin Core's discount applied to
	// witness data when computing transaction weight.
	WitnessScaleFactor = 4
)

// CalcFee converts a feerate expressed in satoshis-per-kilo-weight and a
// transaction weight into an absolute fee in satoshis, rounding down.
func CalcFee(weight int64, feePerKw uint32) int64 {
	return weight * int64(feePerKw) / 1000
}
