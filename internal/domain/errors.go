package domain

import (
	"errors"
	"fmt"
)

// Code classifies an Error
type Code string

const (
	CodeValidation Code = "VALIDATION"
	CodeNotFound   Code = "NOT_FOUND"
	CodeConflict   Code = "CONFLICT"
	CodeInUse      Code = "IN_USE"
	CodeStoreRead  Code = "STORE_READ"
	CodeStoreWrite Code = "STORE_WRITE"
	CodeFileIO     Code = "FILE_IO"
	CodeDecode     Code = "DECODE"
)

// Error is the typed failure returned by the journal, stats and archive layers
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is
var (
	ErrValidation = &Error{Code: CodeValidation}
	ErrNotFound   = &Error{Code: CodeNotFound}
	ErrConflict   = &Error{Code: CodeConflict}
	ErrInUse      = &Error{Code: CodeInUse}
	ErrStoreRead  = &Error{Code: CodeStoreRead}
	ErrStoreWrite = &Error{Code: CodeStoreWrite}
	ErrFileIO     = &Error{Code: CodeFileIO}
	ErrDecode     = &Error{Code: CodeDecode}
)

func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NewValidationError(message string) *Error {
	return NewError(CodeValidation, message, nil)
}

func NewNotFoundError(message string, err error) *Error {
	return NewError(CodeNotFound, message, err)
}

func NewStoreReadError(message string, err error) *Error {
	return NewError(CodeStoreRead, message, err)
}

func NewStoreWriteError(message string, err error) *Error {
	return NewError(CodeStoreWrite, message, err)
}

func NewFileIOError(message string, err error) *Error {
	return NewError(CodeFileIO, message, err)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
