package strava

import (
	"errors"
	"fmt"
)

// ErrUnauthorized reports that Strava rejected the bearer token.
var ErrUnauthorized = errors.New("strava rejected the access token")

// APIError is returned when an API call answers with a non-200 status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("strava %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("strava %s returned %d", e.Endpoint, e.StatusCode)
}

// Unwrap exposes ErrUnauthorized for 401 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == 401 {
		return ErrUnauthorized
	}
	return nil
}

// ExportStatusError is returned when the GPX export endpoint answers with a
// non-200 status. It only affects the one activity.
type ExportStatusError struct {
	ActivityID int64
	StatusCode int
}

func (e *ExportStatusError) Error() string {
	return fmt.Sprintf("gpx export of activity %d returned %d", e.ActivityID, e.StatusCode)
}
