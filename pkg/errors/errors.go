package errors

import (
	"errors"
	"fmt"
)

var (
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUnsupported        = errors.New("unsupported")
	ErrNoAPIKeys          = errors.New("no api keys configured")
)

// Pipeline stage a failure belongs to.
const (
	CodeSourceFetch = "source_fetch"
	CodeAI          = "ai"
	CodePublish     = "publish"
	CodeEngagement  = "engagement"
)

// Error tags a failure with the stage that produced it.
type Error struct {
	Code string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(msg string) error { return &Error{Op: msg} }

// Wrap annotates err with op. A nil err stays nil.
func Wrap(err error, op string) error {
	return WrapWithCode(err, "", op)
}

// WrapWithCode annotates err with op and a stage code. A nil err stays nil.
func WrapWithCode(err error, code, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Err: err}
}

func Is(err, target error) bool { return errors.Is(err, target) }

// GetCode returns the first stage code found on err's chain, or "".
func GetCode(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Code != "" {
			return e.Code
		}
		err = e.Err
	}
	return ""
}

// Transient reports whether the remote side is expected to recover soon.
func Transient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServiceUnavailable)
}
