package yl

import "fmt"

// ErrorKind distinguishes the exception classes §7 requires the
// runtime to be able to raise, independent of any user-defined class
// hierarchy.
type ErrorKind int

const (
	AttributeError ErrorKind = iota
	CompileError
	ImportError
	IndexError
	NameError
	RuntimeError
	TypeError
	ValueError
)

func (k ErrorKind) String() string {
	return [...]string{
		"AttributeError",
		"CompileError",
		"ImportError",
		"IndexError",
		"NameError",
		"RuntimeError",
		"TypeError",
		"ValueError",
	}[k]
}

// LangError is the Go-side representation of an exception raised
// either by the VM itself or by `throw` in user code. It implements
// error so host code (cmd/yl) can report it the ordinary Go way, and
// carries the fields the VM needs to turn it into a catchable runtime
// Value when a handler is active.
type LangError struct {
	Kind    ErrorKind
	Message string
	Line    int
	// Value is set when the error originated from a user `throw expr;`
	// rather than from the VM; catch blocks see this Value directly
	// instead of a synthesized instance of a built-in error class.
	Value    Value
	HasValue bool
}

func (e *LangError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind ErrorKind, line int, format string, args ...interface{}) *LangError {
	return &LangError{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line}
}

func ThrownValue(v Value, line int) *LangError {
	return &LangError{Kind: RuntimeError, Value: v, HasValue: true, Line: line}
}

// CompileErrors accumulates every syntax/semantic error found during a
// single compile, matching the single-pass compiler's "keep going
// after an error to report as many as possible" behavior (§5).
type CompileErrors struct {
	Errors []*LangError
}

func (e *CompileErrors) Add(line int, format string, args ...interface{}) {
	e.Errors = append(e.Errors, NewError(CompileError, line, format, args...))
}

func (e *CompileErrors) HasErrors() bool { return len(e.Errors) > 0 }

func (e *CompileErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	msg := e.Errors[0].Error()
	if len(e.Errors) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(e.Errors)-1)
	}
	return msg
}
