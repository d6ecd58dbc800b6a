package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// LogHandler is an ErrorHandler that logs errors to a writer (stderr by default).
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Out receives the log lines. Nil means os.Stderr.
	Out io.Writer
}

func (h *LogHandler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stderr
}

// prefix returns the tag for a log line, highlighted when writing to a terminal.
func (h *LogHandler) prefix(tag string) string {
	if f, ok := h.out().(*os.File); ok && isTerminal(f) {
		return "\x1b[1;31m[" + tag + "]\x1b[0m"
	}
	return "[" + tag + "]"
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	w := h.out()
	if h.Verbose {
		fmt.Fprintf(w, "%s %s [%s]", h.prefix("patchwork error"), err.Op, err.Kind)
		if err.Scope != 0 {
			fmt.Fprintf(w, " scope=%d", err.Scope)
		}
		fmt.Fprintf(w, ": %v\n", err.Err)
		if err.StackTrace != "" {
			fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
		}
	} else {
		fmt.Fprintf(w, "%s %s: %v\n", h.prefix("patchwork error"), err.Op, err.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	w := h.out()
	if err.Op != "" {
		fmt.Fprintf(w, "%s %s: %v\n", h.prefix("patchwork panic"), err.Op, err.Value)
	} else {
		fmt.Fprintf(w, "%s %v\n", h.prefix("patchwork panic"), err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandleRenderError logs a RenderError.
func (h *LogHandler) HandleRenderError(err *RenderError) {
	if err == nil {
		return
	}
	w := h.out()
	fmt.Fprintf(w, "%s %s\n", h.prefix("patchwork render error"), err.Error())
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}
