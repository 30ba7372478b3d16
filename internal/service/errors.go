package service

import (
	"github.com/pkg/errors"
	"github.com/yakoovad/groupmatch/internal/repository"
)

type ErrorCode string

const (
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	ErrorCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"
	ErrorCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrorCodeInvalidCriteria  ErrorCode = "INVALID_CRITERIA"
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrorCodeUnspecified      ErrorCode = "UNSPECIFIED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}

// repoError translates a repository failure. ErrNotFound becomes NOT_FOUND with notFound as
// the message; every other error is a store failure reported with failed.
func repoError(err error, notFound, failed string) *Error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return NewError(ErrorCodeNotFound, notFound)
	case errors.Is(err, repository.ErrAlreadyExists):
		return NewError(ErrorCodeAlreadyExists, failed)
	default:
		return NewError(ErrorCodeStoreUnavailable, failed)
	}
}

// asError extracts the *Error a transaction function returned. Failures of the transaction
// itself (begin, commit) are reported as store failures.
func asError(err error) *Error {
	if err == nil {
		return nil
	}
	var res *Error
	if errors.As(err, &res) {
		return res
	}
	return NewError(ErrorCodeStoreUnavailable, "storage transaction failed")
}
