package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *FetchError
		expected string
	}{
		{
			name: "with status and wrapped error",
			err: &FetchError{
				Kind:       KindTransport,
				Op:         "thing",
				StatusCode: 503,
				Message:    "503 Service Unavailable",
				Err:        errors.New("upstream"),
			},
			expected: "bgg thing: transport_failure (status 503): 503 Service Unavailable: upstream",
		},
		{
			name: "without status",
			err: &FetchError{
				Kind:    KindProtocol,
				Op:      "collection",
				Message: "unexpected response document",
			},
			expected: "bgg collection: protocol_violation: unexpected response document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFetchError_Is(t *testing.T) {
	transport := newTransportError("thing", "request failed", errors.New("dial tcp"))
	protocol := NewProtocolError("collection", "bad shape", nil)

	if !errors.Is(transport, ErrTransportFailure) {
		t.Error("transport error does not match ErrTransportFailure")
	}
	if errors.Is(transport, ErrProtocolViolation) {
		t.Error("transport error matches ErrProtocolViolation")
	}
	if !errors.Is(protocol, ErrProtocolViolation) {
		t.Error("protocol error does not match ErrProtocolViolation")
	}
	if errors.Is(protocol, ErrTransportFailure) {
		t.Error("protocol error matches ErrTransportFailure")
	}

	wrapped := fmt.Errorf("fetch alice: %w", transport)
	if !errors.Is(wrapped, ErrTransportFailure) {
		t.Error("wrapped transport error does not match ErrTransportFailure")
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := newTransportError("thing", "request failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("x"), want: ""},
		{name: "invalid batch", err: fmt.Errorf("%w: 0 ids", ErrInvalidBatch), want: ""},
		{name: "transport", err: newTransportError("thing", "x", nil), want: KindTransport},
		{name: "wrapped protocol", err: fmt.Errorf("ctx: %w", NewProtocolError("year_series", "x", nil)), want: KindProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
