package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindStorage
	KindAuth
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// ErrorCode represents a unique error code
type ErrorCode string

const (
	// Authentication Errors (1xxx)
	ErrCodeInvalidCredentials ErrorCode = "AUTH_1001"
	ErrCodeInvalidToken       ErrorCode = "AUTH_1003"
	ErrCodeTokenExpired       ErrorCode = "AUTH_1004"
	ErrCodeMissingToken       ErrorCode = "AUTH_1009"
	ErrCodeForbidden          ErrorCode = "AUTH_1010"

	// Validation Errors (2xxx)
	ErrCodeInvalidRequest   ErrorCode = "VALID_2005"
	ErrCodeImmutableField   ErrorCode = "VALID_2006"
	ErrCodeUnsupportedFile  ErrorCode = "VALID_2007"
	ErrCodeTooManyFiles     ErrorCode = "VALID_2008"
	ErrCodeInvalidReference ErrorCode = "VALID_2009"

	// Rate Limiting Errors (3xxx)
	ErrCodeTooManyAttempts ErrorCode = "RATE_3004"

	// Not Found Errors (4xxx)
	ErrCodeResourceNotFound ErrorCode = "NOTFOUND_4001"

	// Database / storage Errors (5xxx)
	ErrCodeDatabaseError ErrorCode = "DB_5001"
	ErrCodeDuplicate     ErrorCode = "DB_5005"
	ErrCodeFileStorage   ErrorCode = "STORAGE_5101"
)

// Error is the tagged application error returned across layers.
type Error struct {
	Kind    Kind              `json:"-"`
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Cause   error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithField attaches a field-level detail and returns the same error.
func (e *Error) WithField(field, detail string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = detail
	return e
}

func New(kind Kind, code ErrorCode, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

func Validation(message string) *Error {
	return New(KindValidation, ErrCodeInvalidRequest, message, nil)
}

func ValidationFields(message string, fields map[string]string) *Error {
	e := Validation(message)
	e.Fields = fields
	return e
}

func NotFound(resource, id string) *Error {
	return New(KindNotFound, ErrCodeResourceNotFound, fmt.Sprintf("%s not found", resource), nil).WithField("id", id)
}

func Storage(message string, cause error) *Error {
	return New(KindStorage, ErrCodeDatabaseError, message, cause)
}

func FileStorage(message string, cause error) *Error {
	return New(KindStorage, ErrCodeFileStorage, message, cause)
}

func Auth(code ErrorCode, message string) *Error {
	return New(KindAuth, code, message, nil)
}

func InvalidCredentials() *Error {
	return Auth(ErrCodeInvalidCredentials, "Invalid email or password")
}

func Forbidden(message string) *Error {
	return New(KindForbidden, ErrCodeForbidden, message, nil)
}

func Conflict(message string) *Error {
	return New(KindConflict, ErrCodeDuplicate, message, nil)
}

func TooManyAttempts(message string) *Error {
	return New(KindForbidden, ErrCodeTooManyAttempts, message, nil)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return 0
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
