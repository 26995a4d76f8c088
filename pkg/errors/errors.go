package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a failed request.
type Kind string

const (
	KindConnectivity Kind = "connectivity"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindValidation   Kind = "validation"
)

// User-facing messages.
const (
	MsgConnectivity  = "Unable to connect to server. Please check your internet connection."
	MsgUnauthorized  = "Unauthorized access. Please login again."
	MsgForbidden     = "Access forbidden. You do not have permission."
	MsgNotFound      = "Resource not found."
	MsgServer        = "Server error. Please try again later."
	MsgUnexpected    = "An unexpected error occurred"
	MsgInvalidUserID = "Invalid user ID"
)

// Common application errors
var (
	ErrInvalidUserID = NewValidationError(MsgInvalidUserID)
)

// RequestError is a failure already translated into a message fit for display.
// Err keeps the underlying cause for logs.
type RequestError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// NewConnectivityError creates an error for a request that got no response.
func NewConnectivityError(err error) *RequestError {
	return &RequestError{Kind: KindConnectivity, Message: MsgConnectivity, Err: err}
}

// NewValidationError creates an error for input rejected before any request is sent.
func NewValidationError(message string) *RequestError {
	return &RequestError{Kind: KindValidation, Message: message}
}

// NewDecodeError creates an error for a successful response whose body could not be decoded.
func NewDecodeError(statusCode int, err error) *RequestError {
	return &RequestError{
		Kind:    KindServer,
		Status:  statusCode,
		Message: fmt.Sprintf("Server error (%d): Http failure during parsing", statusCode),
		Err:     err,
	}
}

// FromStatus translates an HTTP error response into a RequestError.
// statusLine is the full status line ("502 Bad Gateway"); its text part is
// embedded in the message for codes without a dedicated message.
func FromStatus(statusCode int, statusLine string) *RequestError {
	e := &RequestError{Status: statusCode}

	switch statusCode {
	case 0:
		e.Kind, e.Message = KindConnectivity, MsgConnectivity
	case http.StatusUnauthorized:
		e.Kind, e.Message = KindUnauthorized, MsgUnauthorized
	case http.StatusForbidden:
		e.Kind, e.Message = KindForbidden, MsgForbidden
	case http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, MsgNotFound
	case http.StatusInternalServerError:
		e.Kind, e.Message = KindServer, MsgServer
	default:
		text := strings.TrimSpace(strings.TrimPrefix(statusLine, strconv.Itoa(statusCode)))
		if text == "" {
			text = "Unknown error"
		}
		e.Kind = KindServer
		e.Message = fmt.Sprintf("Server error (%d): %s", statusCode, text)
	}

	return e
}

// Error implements the error interface and returns the user-facing message
func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *RequestError) GRPCStatus() *status.Status {
	return status.New(e.Code(), e.Message)
}

// Code maps the error kind to a gRPC code.
func (e *RequestError) Code() codes.Code {
	switch e.Kind {
	case KindConnectivity:
		return codes.Unavailable
	case KindUnauthorized:
		return codes.Unauthenticated
	case KindForbidden:
		return codes.PermissionDenied
	case KindNotFound:
		return codes.NotFound
	case KindValidation:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// GRPCStatuser interface for errors that can provide gRPC status
type GRPCStatuser interface {
	GRPCStatus() *status.Status
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return MsgUnexpected
}

// KindOf returns the kind of err, or KindServer for untranslated errors.
func KindOf(err error) Kind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return KindServer
}

// HTTPStatus returns the HTTP status a handler should answer with for err.
func HTTPStatus(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return runtime.HTTPStatusFromCode(reqErr.Code())
	}
	return http.StatusInternalServerError
}
