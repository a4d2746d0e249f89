// Package errors provides the structured error codes used across the
// VietSaga chat service.
//
// Error code format: AABBCCC
//
//	AA  service code (20 = chat service, 00 = common)
//	BB  category (04 not-found, 05 conflict, 07 internal, 10 upstream)
//	CCC sequence within the category
//
// An Errno carries the HTTP status to surface and a stable machine-readable
// reason string; wrap underlying causes with WithCause so errors.Is still
// matches the registered Errno.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Errno represents a structured error with code and message.
type Errno struct {
	// Code is the unique numeric error code.
	Code int `json:"code"`

	// HTTP is the HTTP status code to return.
	HTTP int `json:"-"`

	// Reason is a stable machine-readable identifier (e.g. "conversation_not_found").
	Reason string `json:"reason"`

	// Message is the human-readable message.
	Message string `json:"message"`

	// cause is the wrapped underlying error, if any.
	cause error
}

// Error implements the error interface.
func (e *Errno) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Reason, e.cause)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Reason, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Errno) Unwrap() error { return e.cause }

// Is matches two Errnos by code, so errors.Is(err, ErrConversationNotFound)
// works on derived copies produced by WithMessage/WithCause.
func (e *Errno) Is(target error) bool {
	var t *Errno
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithMessage returns a copy with a replaced human-readable message.
func (e *Errno) WithMessage(format string, args ...any) *Errno {
	clone := *e
	clone.Message = fmt.Sprintf(format, args...)
	return &clone
}

// WithCause returns a copy wrapping the given underlying error.
func (e *Errno) WithCause(err error) *Errno {
	clone := *e
	clone.cause = err
	return &clone
}

// MakeCode builds an error code from service, category and sequence parts.
func MakeCode(service, category, seq int) int {
	return service*100000 + category*1000 + seq
}

var (
	registryMu sync.RWMutex
	registry   = make(map[int]*Errno)
)

// Register records an Errno in the global registry and returns it.
// Registering a duplicate code panics: codes are part of the API contract.
func Register(e *Errno) *Errno {
	registryMu.Lock()
	defer registryMu.Unlock()
	if prev, ok := registry[e.Code]; ok {
		panic(fmt.Sprintf("errors: code %d already registered as %q", e.Code, prev.Reason))
	}
	registry[e.Code] = e
	return e
}

// FromError extracts the Errno from err, or wraps it as ErrInternal.
func FromError(err error) *Errno {
	if err == nil {
		return OK
	}
	var e *Errno
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}

const (
	serviceCommon = 0
	serviceChat   = 20
)

// Common errors.
var (
	// OK represents a successful operation.
	OK = Register(&Errno{Code: 0, HTTP: http.StatusOK, Reason: "ok", Message: "success"})

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(&Errno{
		Code: MakeCode(serviceCommon, 1, 0), HTTP: http.StatusBadRequest,
		Reason: "bad_request", Message: "bad request",
	})

	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = Register(&Errno{
		Code: MakeCode(serviceCommon, 2, 0), HTTP: http.StatusUnauthorized,
		Reason: "invalid_token", Message: "missing or invalid credential",
	})

	// ErrInternal indicates an unclassified internal failure.
	ErrInternal = Register(&Errno{
		Code: MakeCode(serviceCommon, 7, 0), HTTP: http.StatusInternalServerError,
		Reason: "internal_error", Message: "internal error",
	})
)

// Chat service errors. Only the not-found/conflict/generation entries are
// user-visible; upstream errors are absorbed by the pipeline and exist so
// call sites can classify what they degrade on.
var (
	// ErrAgentNotFound indicates the requested agent id is not a known choice.
	ErrAgentNotFound = Register(&Errno{
		Code: MakeCode(serviceChat, 4, 1), HTTP: http.StatusNotFound,
		Reason: "agent_not_found", Message: "unknown agent id",
	})

	// ErrConversationNotFound indicates the conversation does not exist or
	// does not belong to the caller.
	ErrConversationNotFound = Register(&Errno{
		Code: MakeCode(serviceChat, 4, 2), HTTP: http.StatusNotFound,
		Reason: "conversation_not_found", Message: "conversation does not exist",
	})

	// ErrAgentMismatch indicates a chat call named a different agent than the
	// one the conversation was created with.
	ErrAgentMismatch = Register(&Errno{
		Code: MakeCode(serviceChat, 5, 1), HTTP: http.StatusConflict,
		Reason: "agent_mismatch", Message: "conversation belongs to a different agent",
	})

	// ErrEmptyQuestion indicates the request carried no user question.
	ErrEmptyQuestion = Register(&Errno{
		Code: MakeCode(serviceChat, 1, 1), HTTP: http.StatusBadRequest,
		Reason: "empty_question", Message: "no user question in request",
	})

	// ErrUpstreamUnavailable indicates a retrieval/graph collaborator is down
	// or its index is not built. Never surfaced to callers.
	ErrUpstreamUnavailable = Register(&Errno{
		Code: MakeCode(serviceChat, 10, 1), HTTP: http.StatusServiceUnavailable,
		Reason: "upstream_unavailable", Message: "knowledge backend unavailable",
	})

	// ErrGenerationFailure indicates the primary streaming generation call
	// failed; surfaced as a terminal error frame on the stream.
	ErrGenerationFailure = Register(&Errno{
		Code: MakeCode(serviceChat, 10, 2), HTTP: http.StatusBadGateway,
		Reason: "generation_failure", Message: "answer generation failed",
	})
)
