// Command ltimer-probe inspects the logical timer on a Linux host: which
// backend the selector picks, what it needs, and what time it reports.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
