package sync

import (
	"fmt"
	"net/http"
)

// httpErrorMessage maps a non-success response status to the single
// human-readable message a pass surfaces via its completion event.
func httpErrorMessage(statusCode int) string {
	switch statusCode {
	case http.StatusAccepted:
		return "The request was queued remotely; try again shortly."
	case http.StatusUnauthorized, http.StatusForbidden:
		return "The remote service rejected the account credentials."
	case http.StatusNotFound:
		return "The requested resource does not exist remotely."
	case http.StatusTooManyRequests:
		return "The remote service is throttling requests."
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "The remote service is unavailable."
	default:
		return fmt.Sprintf("Unexpected response status %d.", statusCode)
	}
}
