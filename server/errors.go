package server

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code      int
	Message   string
	Err       error
	RequestID string
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func NewError(code int, message string, err error) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var (
	ErrNotFound   = NewError(http.StatusNotFound, "resource not found", nil)
	ErrBadRequest = NewError(http.StatusBadRequest, "bad request", nil)
	ErrInternal   = NewError(http.StatusInternalServerError, "internal server error", nil)
)

// WrapError attaches a request ID to an error for response correlation.
func WrapError(err *APIError, requestID string) *APIError {
	if err == nil {
		return nil
	}
	return &APIError{
		Code:      err.Code,
		Message:   err.Message,
		Err:       err.Err,
		RequestID: requestID,
	}
}
