package catalog

import "errors"

var (
	// ErrNoContent is returned by Entry.Content when the entry has no provider.
	ErrNoContent = errors.New("entry content unavailable")
)
