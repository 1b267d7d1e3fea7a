package upload

import (
	"strconv"
	"strings"
)

// Identity is the uploading user and the catalog folder receiving the files.
type Identity struct {
	UserID   string
	ParentID string
}

// Validate checks that both fields are set and returns ParentID as an
// integer, the form the catalog expects.
func (id Identity) Validate() (int64, error) {
	if strings.TrimSpace(id.UserID) == "" {
		return 0, &ConfigurationError{Reason: "user id is not set"}
	}
	p := strings.TrimSpace(id.ParentID)
	if p == "" {
		return 0, &ConfigurationError{Reason: "parent id is not set"}
	}
	parentID, err := strconv.ParseInt(p, 10, 64)
	if err != nil {
		return 0, &ConfigurationError{Reason: "parent id must be an integer", Err: err}
	}
	return parentID, nil
}
