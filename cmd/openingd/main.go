package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/lightningnetwork/openingd/openingd"
)

// appVersion is stamped at build time in a faithful build pipeline; hardcoded
// here since this engine carries no other build metadata.
const appVersion = "0.1.0"

type options struct {
	Version bool `long:"version" description:"display version information and exit"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	if opts.Version {
		fmt.Println("openingd version", appVersion)
		return 0
	}

	// File descriptor 3 carries the already-encrypted, already-framed
	// peer byte stream (spec.md §6); stdin/stdout carry the supervisor
	// control protocol.
	peerFd := os.NewFile(3, "peer")
	if peerFd == nil {
		fmt.Fprintln(os.Stderr, "openingd: fd 3 (peer stream) is not open")
		return 1
	}

	engine := openingd.New(os.Stdin, os.Stdout, peerFd)
	return engine.Run()
}
