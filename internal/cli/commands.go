package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/kbloader/internal/archive"
	"github.com/dmitrijs2005/kbloader/internal/catalog"
	"github.com/dmitrijs2005/kbloader/internal/upload"
)

var errNoArchive = errors.New("no archive loaded, use 'load <zip>' first")

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

// Load opens the archive at path and replaces the catalog with its members.
// Any failure leaves the catalog empty.
func (a *App) Load(ctx context.Context, path string) error {
	r, err := archive.Open(path)
	if err != nil {
		a.replaceArchive(nil, "")
		return err
	}

	members := r.Members()
	sources := make([]catalog.Source, len(members))
	for i, m := range members {
		sources[i] = catalog.Source{Path: m.Path, Open: m.Open}
	}

	if err := a.catalog.Load(ctx, sources); err != nil {
		_ = r.Close()
		a.replaceArchive(nil, "")
		return fmt.Errorf("%w: %v", archive.ErrArchiveDecode, err)
	}
	a.replaceArchive(r, path)

	a.logger.Info(ctx, "archive loaded", "path", path, "members", len(members))
	a.println(fmt.Sprintf("Loaded %d files from %s", len(members), path))
	return a.List(ctx, false)
}

// replaceArchive closes the previous archive and keeps r open for lazy reads.
// A nil r also empties the catalog.
func (a *App) replaceArchive(r *archive.Reader, path string) {
	if r == nil {
		a.catalog.Reset()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.archive != nil {
		_ = a.archive.Close()
	}
	a.archive = r
	a.source = path
}

// List prints the loaded entries. System files are included when all is set
// or noise display is switched on.
func (a *App) List(ctx context.Context, all bool) error {
	a.mu.Lock()
	showNoise := all || a.showNoise
	source := a.source
	a.mu.Unlock()

	if source == "" {
		return errNoArchive
	}

	entries := a.catalog.ListVisible(showNoise)
	renderListing(a.out, a.catalog.Stats(), entries, showNoise, a.colorize)
	return nil
}

func (a *App) SetNoise(on bool) {
	a.mu.Lock()
	a.showNoise = on
	a.mu.Unlock()

	if on {
		a.println("System files are shown")
	} else {
		a.println("System files are hidden")
	}
}

// Env prints the active profile when name is empty, otherwise re-reads the
// profiles file and switches to name.
func (a *App) Env(ctx context.Context, name string) error {
	if name == "" {
		a.mu.Lock()
		active := a.envName
		a.mu.Unlock()

		a.println("Environment:", active)
		if names := a.resolver.Names(); len(names) > 0 {
			a.println("Available:", strings.Join(names, ", "))
		}
		return nil
	}

	if src := a.resolver.Source(); src != "" {
		if err := a.resolver.Load(src); err != nil {
			return err
		}
	}
	if _, err := a.resolver.Resolve(name); err != nil {
		return err
	}

	a.mu.Lock()
	a.envName = name
	a.mu.Unlock()

	a.logger.Info(ctx, "environment switched", "environment", name)
	a.println("Environment:", name)
	return nil
}

func (a *App) SetUser(id string) {
	a.mu.Lock()
	a.identity.UserID = id
	a.mu.Unlock()
	a.println("User ID:", id)
}

func (a *App) SetParent(id string) {
	a.mu.Lock()
	a.identity.ParentID = id
	a.mu.Unlock()
	a.println("Parent ID:", id)
}

// Upload publishes every pending entry of the loaded archive to the active
// environment.
func (a *App) Upload(ctx context.Context) error {
	a.mu.Lock()
	envName, id, source := a.envName, a.identity, a.source
	a.mu.Unlock()

	if source == "" {
		return errNoArchive
	}

	e, err := a.resolver.Resolve(envName)
	if err != nil {
		return &upload.ConfigurationError{Reason: fmt.Sprintf("environment %q: %v", envName, err), Err: err}
	}

	sum, err := a.uploader.PublishEligible(ctx, id, e)
	if err != nil {
		return err
	}
	if sum.Selected == 0 {
		a.println("No PDF files pending upload")
		return nil
	}

	a.println(fmt.Sprintf("Uploaded %d of %d files (%d failed)", sum.Succeeded, sum.Selected, sum.Failed))
	return nil
}

// progress prints one line per state change of a running upload, followed by
// the number of entries the run still has to finish.
func (a *App) progress(u catalog.Update) {
	line := fmt.Sprintf("  %s %s", statusText(u.State, u.Reason), u.Path)
	if u.RemoteKey != "" && u.State != catalog.StateFailed {
		line += " -> " + u.RemoteKey
	}
	line += fmt.Sprintf(" [%d left]", a.uploader.InFlight())
	a.println(line)
}

func (a *App) History(ctx context.Context, n int) error {
	if a.history == nil {
		a.println("Upload history is disabled")
		return nil
	}

	recs, err := a.history.List(ctx, n)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.println("Upload history is empty")
		return nil
	}
	renderHistory(a.out, recs)
	return nil
}

// HistoryOf prints every recorded upload of the file with the given MD5
// fingerprint, newest first.
func (a *App) HistoryOf(ctx context.Context, fingerprint string) error {
	if a.history == nil {
		a.println("Upload history is disabled")
		return nil
	}

	recs, err := a.history.ListByFingerprint(ctx, fingerprint)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.println("No uploads recorded for", fingerprint)
		return nil
	}
	renderHistory(a.out, recs)
	return nil
}

func (a *App) ClearHistory(ctx context.Context) error {
	if a.history == nil {
		a.println("Upload history is disabled")
		return nil
	}
	if err := a.history.Clear(ctx); err != nil {
		return err
	}
	a.println("Upload history cleared")
	return nil
}
