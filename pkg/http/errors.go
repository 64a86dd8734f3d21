package http

import (
	"fmt"
	"net/http"
)

// AppError is an error the API reports to the client: a stable code, a readable
// message and optional params (for example the supported pairs on a missing model).
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError keeps the cause for logs; it is never sent to the client.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundError(code, message string) *AppError {
	return NewAppError(http.StatusNotFound, code, message)
}

func BadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "ERR_BAD_REQUEST", message)
}

// UnprocessableError is for valid requests the loaded data cannot answer.
func UnprocessableError(code, message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, code, message)
}

func ServiceUnavailableError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, "ERR_SERVICE_UNAVAILABLE", message)
}

// InternalError hides err behind a generic message.
func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "ERR_INTERNAL", "Something went wrong").WithError(err)
}
