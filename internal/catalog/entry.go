package catalog

import "maps"

// Source is a lazy (path, bytes) pair produced by an archive decoder.
type Source struct {
	Path string
	Open func() ([]byte, error)
}

// Entry is one archive member as tracked by the Catalog.
//
// RemoteKey is set only once the blob has been published. Reason carries the
// failure description for StateFailed; Response holds the catalog's reply for
// StateSucceeded.
type Entry struct {
	Path        string
	Size        int64
	Fingerprint string
	Noise       bool
	Eligible    bool
	State       State
	Reason      string
	RemoteKey   string
	Response    map[string]any

	open func() ([]byte, error)
}

// Content materializes the entry's raw bytes.
func (e Entry) Content() ([]byte, error) {
	if e.open == nil {
		return nil, ErrNoContent
	}
	return e.open()
}

func (e Entry) clone() Entry {
	e.Response = maps.Clone(e.Response)
	return e
}

// Update is a state-change event applied to the Catalog.
//
// Generation ties the event to the archive load it was produced for; events
// from an older load are dropped.
type Update struct {
	Generation uint64
	Path       string
	State      State
	RemoteKey  string
	Reason     string
	Response   map[string]any
}

// Stats summarizes the catalog for display.
type Stats struct {
	Total    int
	Hidden   int
	Eligible int
	Uploaded int
	Failed   int
	InFlight int
}
