package lnwire

import "github.com/btcsuite/btcd/btcutil"

// MilliSatoshi is a thousandth of a satoshi. It is the unit used for
// HTLC values, push amounts, and the various flow-control fields carried
// in open_channel/accept_channel.
type MilliSatoshi uint64

// NewMSatFromSatoshis creates a MilliSatoshi from a regular satoshi
// amount.
func NewMSatFromSatoshis(amt btcutil.Amount) MilliSatoshi {
	return MilliSatoshi(amt * 1000)
}

// ToSatoshis truncates the MilliSatoshi amount down to the nearest whole
// satoshi.
func (m MilliSatoshi) ToSatoshis() btcutil.Amount {
	return btcutil.Amount(m / 1000)
}
