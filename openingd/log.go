package openingd

import "github.com/btcsuite/btclog"

// log is the package-level logger, defaulting to disabled until the
// supervisor-facing entry point installs a real one via UseLogger.
var log btclog.Logger

func init() {
	UseLogger(btclog.Disabled)
}

// UseLogger sets the package-wide logger used by the funder/fundee state
// machines and the supervisor protocol codec.
func UseLogger(logger btclog.Logger) {
	log = logger
}
