// Package catalog holds the in-memory table of archive entries and their
// upload state.
//
// A Catalog is loaded once per archive and replaced wholesale on the next
// load. Upload progress reaches it as Update events; updates that would move
// an entry backwards, or that belong to a previous load, are dropped.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/kbloader/internal/archive"
	"golang.org/x/sync/errgroup"
)

// Catalog is the single source of truth for loaded entries. It is safe for
// concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	generation uint64
	entries    []*Entry
	byPath     map[string]*Entry
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{byPath: map[string]*Entry{}}
}

// Load classifies and fingerprints every source, then replaces the catalog
// contents. All sources are processed concurrently and the table is swapped
// only after every one of them completed, so readers never observe a
// partially loaded archive. On error the catalog is left empty.
func (c *Catalog) Load(ctx context.Context, sources []Source) error {
	loaded := make([]*Entry, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := newEntry(src)
			if err != nil {
				return err
			}
			loaded[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.Reset()
		return err
	}

	// Duplicate paths: the later source wins.
	byPath := make(map[string]*Entry, len(loaded))
	for _, e := range loaded {
		byPath[e.Path] = e
	}
	entries := make([]*Entry, 0, len(byPath))
	for _, e := range byPath {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b *Entry) int {
		return strings.Compare(a.Path, b.Path)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries = entries
	c.byPath = byPath
	return nil
}

func newEntry(src Source) (*Entry, error) {
	if src.Open == nil {
		return nil, fmt.Errorf("%s: %w", src.Path, ErrNoContent)
	}
	data, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Path, err)
	}

	class := archive.Classify(src.Path)
	state := StateNotEligible
	if class.Eligible {
		state = StatePending
	}

	return &Entry{
		Path:        src.Path,
		Size:        int64(len(data)),
		Fingerprint: archive.Digest(data),
		Noise:       class.Noise,
		Eligible:    class.Eligible,
		State:       state,
		open:        src.Open,
	}, nil
}

// Reset drops every entry. Updates issued for the previous contents are
// ignored afterwards.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries = nil
	c.byPath = map[string]*Entry{}
}

// Generation identifies the current load. It changes on every Load and Reset.
func (c *Catalog) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// ListVisible returns entries in path order. Noise entries are included only
// when showNoise is true.
func (c *Catalog) ListVisible(showNoise bool) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Noise && !showNoise {
			continue
		}
		out = append(out, e.clone())
	}
	return out
}

// Get returns a copy of the entry stored under path.
func (c *Catalog) Get(path string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.byPath[path]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Pending returns the current generation together with every entry still
// waiting for upload, in path order.
func (c *Catalog) Pending() (uint64, []Entry) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Entry
	for _, e := range c.entries {
		if e.State == StatePending {
			out = append(out, e.clone())
		}
	}
	return c.generation, out
}

// Apply records a state change. It returns false, leaving the catalog
// untouched, when the update belongs to another generation, names an unknown
// path, or is not a forward transition. Re-applying an entry's current state
// is a no-op that returns true.
func (c *Catalog) Apply(u Update) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.Generation != c.generation {
		return false
	}
	e, ok := c.byPath[u.Path]
	if !ok {
		return false
	}
	if e.State == u.State {
		return true
	}
	if !CanTransition(e.State, u.State) {
		return false
	}

	e.State = u.State
	if u.State.holdsRemoteKey() && u.RemoteKey != "" {
		e.RemoteKey = u.RemoteKey
	}
	if u.State == StateFailed {
		e.Reason = u.Reason
	}
	if u.State == StateSucceeded {
		e.Response = u.Response
	}
	return true
}

// UpdateState moves the entry at path to state within the current
// generation. Unknown paths are ignored.
func (c *Catalog) UpdateState(path string, state State) bool {
	return c.Apply(Update{Generation: c.Generation(), Path: path, State: state})
}

// Stats returns the counters shown above the entry listing.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s Stats
	for _, e := range c.entries {
		s.Total++
		if e.Noise {
			s.Hidden++
		}
		if e.Eligible {
			s.Eligible++
		}
		if e.RemoteKey != "" {
			s.Uploaded++
		}
		if e.State == StateFailed {
			s.Failed++
		}
		if e.State.InProgress() {
			s.InFlight++
		}
	}
	return s
}
