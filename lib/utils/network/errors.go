package network

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind classifies transport-level failures so callers can decide between
// retrying, surfacing a friendly message, or escalating.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindConnection Kind = "connection"
	KindUnknown    Kind = "unknown"
)

// Classify reports which transport failure err represents. Anything that is
// not clearly a network condition comes back as KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded") {
		return KindTimeout
	}
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"no such host",
		"broken pipe",
		"network is unreachable",
	} {
		if strings.Contains(s, marker) {
			return KindConnection
		}
	}
	return KindUnknown
}

// Message returns the user-facing description for a classified failure, or
// an empty string when the failure is not a recognized network condition.
func Message(kind Kind) string {
	switch kind {
	case KindTimeout:
		return "The request timed out."
	case KindConnection:
		return "Could not reach the remote service."
	default:
		return ""
	}
}

// Retryable reports whether a fresh attempt could plausibly succeed.
func Retryable(err error) bool {
	switch Classify(err) {
	case KindTimeout, KindConnection:
		return true
	default:
		return false
	}
}
