package kinerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies a failure returned by the ledger client or an account.
type Code int

const (
	CodeUnknown Code = iota
	CodePassphrase
	CodeInsufficientBalance
	CodeOperationFailed
	CodeKeyStore
	CodeInvalidArgument
)

func (c Code) String() string {
	switch c {
	case CodePassphrase:
		return "PassphraseError"
	case CodeInsufficientBalance:
		return "InsufficientBalanceError"
	case CodeOperationFailed:
		return "OperationFailedError"
	case CodeKeyStore:
		return "KeyStoreError"
	case CodeInvalidArgument:
		return "InvalidArgumentError"
	default:
		return "UnknownError"
	}
}

// Error holds an error code, message and the underlying cause
type Error struct {
	Code     Code
	Message  string
	Internal error
}

func NewError(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) SetInternal(err error) *Error {
	e.Internal = err
	return e
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the internal cause to the standard errors package.
func (e *Error) Unwrap() error {
	return e.Internal
}

func Passphrase(err error) *Error {
	return NewError(CodePassphrase, "invalid passphrase").SetInternal(err)
}

func InsufficientBalance(message string) *Error {
	return NewError(CodeInsufficientBalance, message)
}

func OperationFailed(err error, message string) *Error {
	return NewError(CodeOperationFailed, message).SetInternal(err)
}

func KeyStore(err error, message string) *Error {
	return NewError(CodeKeyStore, message).SetInternal(err)
}

func InvalidArgument(message string) *Error {
	return NewError(CodeInvalidArgument, message)
}

// CodeOf returns the code of the first *Error in the chain built with
// errors.Wrap, or CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Code
	}
	return CodeUnknown
}

func IsPassphrase(err error) bool          { return CodeOf(err) == CodePassphrase }
func IsInsufficientBalance(err error) bool { return CodeOf(err) == CodeInsufficientBalance }
func IsOperationFailed(err error) bool     { return CodeOf(err) == CodeOperationFailed }
func IsKeyStore(err error) bool            { return CodeOf(err) == CodeKeyStore }
func IsInvalidArgument(err error) bool     { return CodeOf(err) == CodeInvalidArgument }
