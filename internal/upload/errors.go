package upload

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("upload configuration error")

// ErrRunInProgress is returned when PublishEligible is called while another
// run is still going.
var ErrRunInProgress = &ConfigurationError{Reason: "an upload run is already in progress"}

// ConfigurationError reports a caller mistake detected before any network
// call was made.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// BlobPublishError is a phase 1 failure.
type BlobPublishError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *BlobPublishError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return "blob publish failed: " + e.Err.Error()
	}
	return fmt.Sprintf("blob publish failed: %d %s", e.StatusCode, e.Status)
}

func (e *BlobPublishError) Unwrap() error { return e.Err }

// RegistrationError is a phase 2 failure.
type RegistrationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RegistrationError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return "catalog registration failed: " + e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("catalog registration failed: %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("catalog registration failed: %d %s", e.StatusCode, e.Body)
	}
}

func (e *RegistrationError) Unwrap() error { return e.Err }
