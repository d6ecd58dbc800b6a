package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorString(t *testing.T) {
	err := &Error{
		Op:   "patch.Reconcile",
		Kind: KindReconcile,
		Err:  ErrMissingID,
	}
	got := err.Error()
	want := "patch.Reconcile [reconcile]: node has no external id"
	if got != want {
		t.Errorf("Error.Error() = %q, want %q", got, want)
	}
}

func TestErrorWithScope(t *testing.T) {
	err := &Error{
		Op:    "core.Update",
		Kind:  KindRender,
		Scope: 42,
		Err:   ErrFrozen,
	}
	if got := err.Error(); !strings.Contains(got, "scope=42") {
		t.Errorf("error string %q should contain scope", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Op: "x", Kind: KindReconcile, Err: ErrAlreadyMounted})
	if !Is(err, ErrAlreadyMounted) {
		t.Error("expected Is to find ErrAlreadyMounted through Error")
	}
	var structured *Error
	if !As(err, &structured) {
		t.Fatal("expected As to find *Error")
	}
	if structured.Kind != KindReconcile {
		t.Errorf("Kind = %v, want %v", structured.Kind, KindReconcile)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindRender, "render"},
		{KindHook, "hook"},
		{KindReconcile, "reconcile"},
		{KindEffect, "effect"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "session.runEffect"
	if got, want := err.Error(), "panic in session.runEffect: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestRenderErrorString(t *testing.T) {
	err := &RenderError{Component: "Counter", Recovered: "nil map"}
	if got, want := err.Error(), "panic in Counter render: nil map"; got != want {
		t.Errorf("RenderError.Error() = %q, want %q", got, want)
	}

	err2 := &RenderError{Component: "Counter", Err: ErrFrozen}
	if got := err2.Error(); !strings.Contains(got, "error in Counter render") {
		t.Errorf("RenderError.Error() = %q, should contain 'error in'", got)
	}
	if !Is(err2, ErrFrozen) {
		t.Error("RenderError should unwrap to its Err")
	}

	err3 := &RenderError{Component: "Counter", Recovered: fmt.Errorf("boom: %w", ErrOutsideRender)}
	if !Is(err3, ErrOutsideRender) {
		t.Error("RenderError should unwrap a recovered error value")
	}

	err4 := &RenderError{Component: "Counter"}
	if got, want := err4.Error(), "unknown error in Counter render"; got != want {
		t.Errorf("RenderError.Error() = %q, want %q", got, want)
	}
}

func TestHookErrorString(t *testing.T) {
	err := &HookError{Component: "Form", Position: 1, Previous: "*core.StateHook[int]", Current: "*core.RefHook[int]"}
	want := "hook 1 of Form changed kind: was *core.StateHook[int], now *core.RefHook[int]"
	if got := err.Error(); got != want {
		t.Errorf("HookError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *Error
	handler := &testHandler{onError: func(err *Error) { captured = err }}

	SetHandler(handler)
	defer SetHandler(nil)

	Report(&Error{Op: "test.op", Kind: KindConfig, Err: ErrNotMounted})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportRenderError(t *testing.T) {
	var captured *RenderError
	handler := &testHandler{onRenderError: func(err *RenderError) { captured = err }}

	SetHandler(handler)
	defer SetHandler(nil)

	ReportRenderError(&RenderError{Component: "Test", Recovered: "test panic"})

	if captured == nil {
		t.Fatal("expected render error to be captured")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{onPanic: func(err *PanicError) { captured = err }}

	SetHandler(handler)
	defer SetHandler(nil)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	SetHandler(&testHandler{})
	defer SetHandler(nil)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(7)
	}()
	if got != 7 {
		t.Errorf("callback got %v, want 7", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf}

	h.HandleError(&Error{Op: "patch.Reconcile", Kind: KindReconcile, Err: ErrMissingID})
	h.HandlePanic(&PanicError{Op: "effect", Value: "boom"})
	h.HandleRenderError(&RenderError{Component: "App", Recovered: "bad"})

	out := buf.String()
	for _, want := range []string{
		"[patchwork error] patch.Reconcile: node has no external id",
		"[patchwork panic] effect: boom",
		"[patchwork render error] panic in App render: bad",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHandler_Verbose(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf, Verbose: true}

	h.HandleError(&Error{Op: "op", Kind: KindHook, Scope: 3, Err: ErrFrozen, StackTrace: "frame"})

	out := buf.String()
	if !strings.Contains(out, "op [hook] scope=3") {
		t.Errorf("verbose output missing kind and scope:\n%s", out)
	}
	if !strings.Contains(out, "Stack trace:\nframe") {
		t.Errorf("verbose output missing stack trace:\n%s", out)
	}
}

type testHandler struct {
	onError       func(*Error)
	onPanic       func(*PanicError)
	onRenderError func(*RenderError)
}

func (h *testHandler) HandleError(err *Error) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func (h *testHandler) HandleRenderError(err *RenderError) {
	if h.onRenderError != nil {
		h.onRenderError(err)
	}
}
