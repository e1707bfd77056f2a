// Command antislop scans source trees for AI slop: placeholders,
// deferrals, hedging, and stubs left behind by a code-generation
// process or a hurried human.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/skew202/antislop/pkg/scan"
)

// Exit codes are part of the external contract.
const (
	exitClean    = 0 // no findings
	exitFindings = 1 // findings present
	exitError    = 2 // configuration or I/O error preventing the scan
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		// Findings travel through the errFindings sentinel so the
		// common dirty-scan exit stays free of error noise.
		if errors.Is(err, errFindings) {
			return exitFindings
		}
		// Cancellation was already reported by the scan command.
		if !errors.Is(err, scan.ErrCancelled) {
			fmt.Fprintf(os.Stderr, "antislop: %v\n", err)
		}
		return exitError
	}
	return exitClean
}
