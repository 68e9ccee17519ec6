//go:build !unix

package interrupt

import "os"

var (
	stopSignals    = []os.Signal{os.Interrupt}
	displaySignals = []os.Signal{}
)
