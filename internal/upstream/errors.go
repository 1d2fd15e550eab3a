package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrRateLimited is returned for a 429 response. It is only surfaced to
	// callers wrapped in ErrRetriesExhausted.
	ErrRateLimited = errors.New("upstream rate limited the request")

	// ErrRetriesExhausted means every attempt failed with a retryable error.
	ErrRetriesExhausted = errors.New("failed to complete the API request after retries")

	// ErrTimedOut means polling gave up before a query reached DONE.
	ErrTimedOut = errors.New("timed out waiting for query to complete")
)

// RejectedError is returned when the upstream answers with a non-success,
// non-429 status. It is never retried.
type RejectedError struct {
	// Body is the decoded error payload, or the raw text when it is not JSON.
	Body       any
	Status     string
	StatusCode int
}

func (e *RejectedError) Error() string {
	body, err := json.Marshal(e.Body)
	if err != nil {
		body = []byte(fmt.Sprint(e.Body))
	}
	return fmt.Sprintf("API responded with error (status %d): %s", e.StatusCode, body)
}

// IsRejected reports whether err is an upstream rejection and returns it.
func IsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

func newRejectedError(statusCode int, status string, body []byte) *RejectedError {
	e := &RejectedError{StatusCode: statusCode, Status: status}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		e.Body = decoded
	} else {
		e.Body = string(body)
	}
	return e
}
