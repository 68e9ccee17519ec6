//go:build unix

package interrupt

import (
	"os"

	"golang.org/x/sys/unix"
)

var (
	stopSignals = []os.Signal{unix.SIGINT, unix.SIGTERM}

	// SIGQUIT (Ctrl+\) prints the statistics and keeps pinging
	displaySignals = []os.Signal{unix.SIGQUIT}
)
