package keychain

import "github.com/btcsuite/btclog"

var log btclog.Logger

func init() {
	UseLogger(btclog.Disabled)
}

// UseLogger sets the package-wide logger used for key-derivation
// diagnostics. No secret material is ever passed to a log call in this
// package; only derived public points and indices are.
func UseLogger(logger btclog.Logger) {
	log = logger
}
