package module

import (
	"errors"
	"fmt"
)

// ErrKind classifies why a module failed.
type ErrKind int

const (
	ErrUnknown ErrKind = iota
	ErrToolMissing
	ErrDependencyMissing
	ErrNonZeroExit
	ErrTimeout
	ErrExec
	ErrPostProcess
	ErrNoResults
)

func (k ErrKind) String() string {
	switch k {
	case ErrToolMissing:
		return "tool_missing"
	case ErrDependencyMissing:
		return "dependency_missing"
	case ErrNonZeroExit:
		return "non_zero_exit"
	case ErrTimeout:
		return "timeout"
	case ErrExec:
		return "exec"
	case ErrPostProcess:
		return "post_process"
	case ErrNoResults:
		return "no_results"
	}
	return "unknown"
}

// Error is the failure value every module and the command runner return.
type Error struct {
	Kind   ErrKind
	Module string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Module != "" {
		return fmt.Sprintf("%s: %s: %s", e.Module, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, &Error{Kind: ErrTimeout}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Module == "" || t.Module == e.Module)
}

func newError(kind ErrKind, module, msg string, err error) *Error {
	return &Error{Kind: kind, Module: module, Msg: msg, Err: err}
}

// Errorf builds a module error of the given kind.
func Errorf(kind ErrKind, module, format string, args ...interface{}) *Error {
	return newError(kind, module, fmt.Sprintf(format, args...), nil)
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind ErrKind, module string, err error) *Error {
	return newError(kind, module, "", err)
}

// KindOf returns the failure kind carried by err, or ErrUnknown.
func KindOf(err error) ErrKind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return ErrUnknown
}
