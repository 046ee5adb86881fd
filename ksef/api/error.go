package api

import "fmt"

// RequestError carries a non-2xx platform response for diagnostics. Body is
// the raw response text, ErrorDetails its JSON decoding when the platform
// returned a structured error.
type RequestError struct {
	StatusCode   int
	Body         string
	ErrorDetails map[string]any
}

func (r *RequestError) Error() string {
	if r.Body == "" {
		return fmt.Sprintf("platform returned status %d", r.StatusCode)
	}
	return fmt.Sprintf("platform returned status %d: %s", r.StatusCode, r.Body)
}

// Detail returns a top-level field of the decoded error body, nil when the
// body was empty or not JSON.
func (r *RequestError) Detail(key string) any {
	if r.ErrorDetails == nil {
		return nil
	}
	return r.ErrorDetails[key]
}
