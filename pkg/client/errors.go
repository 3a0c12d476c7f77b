package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed catalog request.
type ErrorKind string

const (
	// KindTransport covers network failures, timeouts, throttling and 5xx
	// responses from the catalog.
	KindTransport ErrorKind = "transport_failure"

	// KindProtocol covers responses that are not a listing, a detail list
	// or a queued-message envelope.
	KindProtocol ErrorKind = "protocol_violation"
)

// Common errors returned by the client.
var (
	// ErrTransportFailure matches any FetchError of KindTransport via errors.Is.
	ErrTransportFailure = errors.New("transport failure")

	// ErrProtocolViolation matches any FetchError of KindProtocol via errors.Is.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrInvalidBatch is returned when FetchThings is called with no ids or
	// more ids than the catalog accepts in one request.
	ErrInvalidBatch = errors.New("invalid id batch")
)

// FetchError is a classified catalog failure.
type FetchError struct {
	Kind       ErrorKind
	Op         string // "collection", "thing", "year_series"
	StatusCode int    // 0 when no HTTP response was received
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	prefix := fmt.Sprintf("bgg %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("%s (status %d)", prefix, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransportFailure:
		return e.Kind == KindTransport
	case ErrProtocolViolation:
		return e.Kind == KindProtocol
	default:
		return false
	}
}

// KindOf returns the kind of the first FetchError in err's chain, or ""
// if there is none.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// NewProtocolError builds a KindProtocol FetchError.
func NewProtocolError(op, message string, err error) *FetchError {
	return &FetchError{Kind: KindProtocol, Op: op, Message: message, Err: err}
}

func newTransportError(op, message string, err error) *FetchError {
	return &FetchError{Kind: KindTransport, Op: op, Message: message, Err: err}
}
