package entities

import (
	"errors"
	"fmt"
)

// ErrorKind separates bad input from upstream failures so callers can react
// without parsing messages.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindProvider   ErrorKind = "provider"
)

var (
	// ErrValidation matches every validation Error via errors.Is.
	ErrValidation = errors.New("validation error")
	// ErrProvider matches every provider Error via errors.Is.
	ErrProvider = errors.New("provider error")
	// ErrNoLiquidity is wrapped by provider errors raised when no pool or
	// route exists, as opposed to an upstream failure.
	ErrNoLiquidity = errors.New("no liquidity")
)

// Error is the tagged error returned by the routing engine.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrProvider:
		return e.Kind == KindProvider
	}
	return false
}

func NewValidationError(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NewProviderError wraps a collaborator failure. err may be nil for
// engine-detected conditions such as "no valid route".
func NewProviderError(err error, op, format string, args ...any) *Error {
	return &Error{Kind: KindProvider, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider)
}

func IsNoLiquidity(err error) bool {
	return errors.Is(err, ErrNoLiquidity)
}
