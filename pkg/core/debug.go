package core

import (
	"fmt"
	"io"
	"os"
)

// DebugMode enables diagnostics for conditions the runtime tolerates, such
// as updates that reach a component whose state has moved on.
var DebugMode = false

// DebugOutput receives debug diagnostics.
var DebugOutput io.Writer = os.Stderr

// SetDebugMode enables or disables debug mode for the runtime.
func SetDebugMode(debug bool) {
	DebugMode = debug
}

func debugf(format string, args ...any) {
	if !DebugMode {
		return
	}
	fmt.Fprintf(DebugOutput, "[patchwork debug] "+format+"\n", args...)
}
