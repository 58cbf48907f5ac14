// Package errclass defines the closed error taxonomy used across fxpulse and
// the classification rules that map arbitrary failures onto it. Downstream
// retry and fallback decisions are total functions of the resulting Kind, so
// behaviour never depends on ad hoc string checks scattered through callers.
package errclass

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind is the failure category of a classified error.
type Kind string

const (
	// Network is a transport-level failure reaching the remote source.
	Network Kind = "network"

	// Timeout is a deadline exceeded or an explicit cancellation.
	Timeout Kind = "timeout"

	// Parsing is a malformed response shape.
	Parsing Kind = "parsing"

	// Api is a remote response with a non-success status.
	Api Kind = "api"

	// Storage is a failed read or write on a cache tier.
	Storage Kind = "storage"

	// Unknown is any failure the rules below do not recognize.
	Unknown Kind = "unknown"
)

// Error is a classified error. It wraps the original cause (when there is
// one) so errors.Is/As keep working through it.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

// Unwrap exposes the original cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// New builds a classified error. Kind defaults to Unknown when empty and
// details may be nil; New never fails.
func New(message string, kind Kind, details map[string]any) *Error {
	if kind == "" {
		kind = Unknown
	}
	return &Error{Kind: kind, Message: message, Details: details}
}

// Wrap classifies err and returns it as an *Error. An err that is already
// classified is returned unchanged; nil stays nil.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Kind: Classify(err), Message: err.Error(), cause: err}
}

// Classify maps an arbitrary error onto the taxonomy. Rules are checked in
// order: cancellation, network, parsing, api, storage, then Unknown.
func Classify(err error) Kind {
	if err == nil {
		return Unknown
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Timeout
	}

	// gRPC transports surface status codes rather than sentinel errors.
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		return fromGRPCCode(st.Code())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Timeout
		}
		return Network
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return Parsing
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "connection refused", "no such host", "network is unreachable", "fetch failed", "broken pipe", "connection reset"):
		return Network
	case containsAny(msg, "deadline exceeded", "timed out", "timeout", "canceled", "cancelled"):
		return Timeout
	case containsAny(msg, "unexpected end of json", "invalid character", "cannot unmarshal", "parse error", "malformed"):
		return Parsing
	case containsAny(msg, "status code", "status 4", "status 5", "http error", "too many requests"):
		return Api
	case containsAny(msg, "sqlite", "redis", "storage", "database"):
		return Storage
	default:
		return Unknown
	}
}

func fromGRPCCode(code codes.Code) Kind {
	switch code {
	case codes.DeadlineExceeded, codes.Canceled:
		return Timeout
	case codes.Unavailable, codes.Aborted:
		return Network
	case codes.InvalidArgument, codes.NotFound, codes.PermissionDenied,
		codes.Unauthenticated, codes.ResourceExhausted, codes.Unimplemented,
		codes.FailedPrecondition, codes.OutOfRange:
		return Api
	case codes.DataLoss:
		return Storage
	default:
		return Unknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
