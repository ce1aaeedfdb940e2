package client

import (
	"fmt"
	"net/http"
)

// RemoteError reports a non-2xx answer from the order endpoint.
type RemoteError struct {
	StatusCode int
	Message    string
	Body       []byte
	RequestID  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("client: order rejected (%d): %s", e.StatusCode, e.Message)
}

// Display returns the message meant for the failure banner.
func (e *RemoteError) Display() string {
	return e.Message
}

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "client: post order: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Display returns the message meant for the failure banner.
func (e *TransportError) Display() string {
	return "order service unreachable: " + e.Err.Error()
}

func statusMessage(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return fmt.Sprintf("%d", code)
	}
	return fmt.Sprintf("%d %s", code, text)
}
