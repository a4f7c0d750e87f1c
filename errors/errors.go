// This package implements functions which manipulate errors and provide stack
// trace information.
//
// NOTE: This package intentionally mirrors the standard "errors" module.
// All gobag code should use this.
package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"runtime"
	"sync"
)

// This interface exposes additional information about the error.
type TracedError interface {
	// This returns the error message without the stack trace.
	GetMessage() string

	// This returns the wrapped error.  This returns nil if this does not wrap
	// another error.
	GetInner() error

	// Implements the built-in error interface.
	Error() string

	// Implements the standard library unwrap convention so that
	// errors.Is / errors.As traverse the chain.
	Unwrap() error

	// Returns stack frames captured at construction time.
	StackFrames() []StackFrame

	// Returns a string representation of the captured stack.  It is
	// discouraged to parse this output; use StackFrames() for metadata.
	GetStack() string
}

// Represents a single stack frame.
type StackFrame struct {
	PC         uintptr
	FuncName   string
	File       string
	LineNumber int
}

// Standard struct for general types of errors.
type baseError struct {
	msg   string
	inner error

	stack       []uintptr
	framesOnce  sync.Once
	stackFrames []StackFrame
}

// This returns a new baseError initialized with the given message and
// the current stack trace.
func New(msg string) TracedError {
	return newError(nil, msg)
}

// Same as New, but with fmt.Printf-style parameters.
func Newf(format string, args ...interface{}) TracedError {
	return newError(nil, fmt.Sprintf(format, args...))
}

// Wraps another error in a new baseError.
func Wrap(err error, msg string) TracedError {
	return newError(err, msg)
}

// Same as Wrap, but with fmt.Printf-style parameters.
func Wrapf(err error, format string, args ...interface{}) TracedError {
	return newError(err, fmt.Sprintf(format, args...))
}

// Internal helper function to create new baseError objects.  Note that if
// there is more than one level of redirection to call this function, stack
// frame information will include that level too.
func newError(inner error, msg string) *baseError {
	stack := make([]uintptr, 64)
	stackLength := runtime.Callers(3, stack)
	return &baseError{
		msg:   msg,
		inner: inner,
		stack: stack[:stackLength],
	}
}

// This returns the full error message, including messages of inner errors
// that are wrapped by this error.  The stack trace is not included; use
// GetStack for that.
func (e *baseError) Error() string {
	errMsg := bytes.NewBuffer(make([]byte, 0, 128))
	errMsg.WriteString(e.msg)

	inner := e.inner
	for inner != nil {
		errMsg.WriteString(": ")
		if traced, ok := inner.(TracedError); ok {
			errMsg.WriteString(traced.GetMessage())
			inner = traced.GetInner()
		} else {
			errMsg.WriteString(inner.Error())
			break
		}
	}
	return errMsg.String()
}

// Implements TracedError interface.
func (e *baseError) GetMessage() string {
	return e.msg
}

// Implements TracedError interface.
func (e *baseError) GetInner() error {
	return e.inner
}

// Implements TracedError interface.
func (e *baseError) Unwrap() error {
	return e.inner
}

// Implements TracedError interface.
func (e *baseError) StackFrames() []StackFrame {
	e.framesOnce.Do(func() {
		e.stackFrames = make([]StackFrame, 0, len(e.stack))
		frames := runtime.CallersFrames(e.stack)
		for {
			frame, more := frames.Next()
			e.stackFrames = append(e.stackFrames, StackFrame{
				PC:         frame.PC,
				FuncName:   frame.Function,
				File:       frame.File,
				LineNumber: frame.Line,
			})
			if !more {
				break
			}
		}
	})
	return e.stackFrames
}

// Implements TracedError interface.
func (e *baseError) GetStack() string {
	buf := bytes.NewBuffer(make([]byte, 0, 256))
	for _, frame := range e.StackFrames() {
		_, _ = buf.WriteString(frame.FuncName)
		_, _ = buf.WriteString("\n")
		fmt.Fprintf(buf, "\t%s:%d\n", frame.File, frame.LineNumber)
	}
	return buf.String()
}

// Keep peeling away layers of context until a primitive error is revealed.
func RootError(ierr error) error {
	nerr := ierr
	for i := 0; i < 20; i++ {
		terr := stderrors.Unwrap(nerr)
		if terr == nil {
			return nerr
		}
		nerr = terr
	}
	return fmt.Errorf("too many iterations: %T", nerr)
}

// Perform a deep check, unwrapping errors as much as possible and
// comparing the string version of the error.
func IsError(err, errConst error) bool {
	if err == errConst {
		return true
	}
	if err != nil && errConst != nil && stderrors.Is(err, errConst) {
		return true
	}
	// Must rely on string equivalence, otherwise a value is not equal
	// to its pointer value.
	rootErrStr := ""
	rootErr := RootError(err)
	if rootErr != nil {
		rootErrStr = rootErr.Error()
	}
	errConstStr := ""
	if errConst != nil {
		errConstStr = errConst.Error()
	}
	return rootErrStr == errConstStr
}
