package diagency

import (
	"errors"
	"fmt"
)

// StatusError is returned when the agency answers with another status code
// than the caller expected.
type StatusError struct {
	Method string
	URL    string
	Want   int
	Got    int
	Body   string
}

func (e *StatusError) Error() string {
	want := fmt.Sprint(e.Want)
	if e.Want == AnySuccess {
		want = "2xx"
	}
	return fmt.Sprintf("%s %s: unexpected status %d, want %s: %s",
		e.Method, e.URL, e.Got, want, e.Body)
}

// ContentTypeError is returned when a non-JSON response didn't have the
// content type we asked for.
type ContentTypeError struct {
	URL  string
	Want string
	Got  string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("%s: content type %q, want %q", e.URL, e.Got, e.Want)
}

// IsStatusError tells if err or any error it wraps is a StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
