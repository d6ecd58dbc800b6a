// Package errors provides structured error handling for the patchwork runtime.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Sentinel errors wrapped by the structured error types below.
var (
	// ErrOutsideRender is raised when a hook is claimed without an active render.
	ErrOutsideRender = stderrors.New("hook called outside of an active render")
	// ErrMissingID is returned when a node that must be addressable has no id.
	ErrMissingID = stderrors.New("node has no external id")
	// ErrAlreadyMounted is returned when a node is inserted twice.
	ErrAlreadyMounted = stderrors.New("node is already mounted")
	// ErrFrozen is raised when a frozen node is mutated.
	ErrFrozen = stderrors.New("node is frozen")
	// ErrNotMounted is returned when an operation needs a mounted tree.
	ErrNotMounted = stderrors.New("session has no mounted root")
	// ErrSettleTimeout is returned when a flush does not settle.
	ErrSettleTimeout = stderrors.New("session did not settle")
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindRender indicates a render function failure.
	KindRender
	// KindHook indicates hook misuse or hook-order drift.
	KindHook
	// KindReconcile indicates a failure while computing patch commands.
	KindReconcile
	// KindEffect indicates a failure inside an effect or its cleanup.
	KindEffect
	// KindConfig indicates an invalid configuration.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindHook:
		return "hook"
	case KindReconcile:
		return "reconcile"
	case KindEffect:
		return "effect"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error represents a structured error in the runtime.
type Error struct {
	// Op is the operation that failed (e.g., "patch.Reconcile").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Scope is the external id of the node being processed, if any.
	Scope int64
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Scope != 0 {
		return fmt.Sprintf("%s [%s] scope=%d: %v", e.Op, e.Kind, e.Scope, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "session.runEffect").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// RenderError represents a failure while invoking a component's render function.
type RenderError struct {
	// Component is the name of the render function that failed.
	Component string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RenderError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s render: %v", e.Component, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s render: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("unknown error in %s render", e.Component)
}

func (e *RenderError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}

// HookError reports a hook slot claimed with a different kind than on a
// previous render of the same component.
type HookError struct {
	Component string
	Position  int
	Previous  string
	Current   string
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %d of %s changed kind: was %s, now %s", e.Position, e.Component, e.Previous, e.Current)
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleRenderError is called when a render function fails.
	HandleRenderError(err *RenderError)
}
