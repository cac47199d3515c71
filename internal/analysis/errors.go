package analysis

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed call. Every error returned by Client is
// exactly one of these kinds.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindHTTP
	KindEmptyResponse
	KindMalformedResponse
	KindNetwork
	KindUnexpectedContentType
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindHTTP:
		return "http error"
	case KindEmptyResponse:
		return "empty response"
	case KindMalformedResponse:
		return "malformed response"
	case KindNetwork:
		return "network error"
	case KindUnexpectedContentType:
		return "unexpected content type"
	}
	return "unknown"
}

// HTTPError is a non-2xx response. Body is whatever text could be read, possibly empty.
type HTTPError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *HTTPError) Error() string {
	details := e.Body
	if details == "" {
		details = "no details"
	}
	return fmt.Sprintf("Error: %d %s - %s", e.Status, e.StatusText, details)
}

// EmptyResponseError is a 2xx response without a body.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string {
	return "Empty response from server"
}

// MalformedResponseError is a 2xx body that is not valid JSON for the expected shape.
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("Malformed response from server: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// NetworkError is a transport-level failure: no HTTP response was obtained.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return "Network or server error: " + e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UnexpectedContentTypeError is returned by the batch endpoint for anything
// other than application/json or text/csv.
type UnexpectedContentTypeError struct {
	ContentType string
}

func (e *UnexpectedContentTypeError) Error() string {
	if e.ContentType == "" {
		return "Unexpected response."
	}
	return fmt.Sprintf("Unexpected response. (content type %q)", e.ContentType)
}

// Kind reports which failure kind err is, or KindNone for nil.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		httpErr  *HTTPError
		emptyErr *EmptyResponseError
		malErr   *MalformedResponseError
		netErr   *NetworkError
		ctErr    *UnexpectedContentTypeError
	)
	switch {
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &emptyErr):
		return KindEmptyResponse
	case errors.As(err, &malErr):
		return KindMalformedResponse
	case errors.As(err, &ctErr):
		return KindUnexpectedContentType
	case errors.As(err, &netErr):
		return KindNetwork
	}
	return KindNetwork
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
