package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/kbloader/internal/archive"
	"github.com/dmitrijs2005/kbloader/internal/catalog"
	"github.com/dmitrijs2005/kbloader/internal/config"
	"github.com/dmitrijs2005/kbloader/internal/env"
	"github.com/dmitrijs2005/kbloader/internal/ledger"
	"github.com/dmitrijs2005/kbloader/internal/logging"
	"github.com/dmitrijs2005/kbloader/internal/upload"
)

// App is the state of one interactive session.
type App struct {
	config   *config.Config
	logger   logging.Logger
	out      io.Writer
	colorize bool

	catalog  *catalog.Catalog
	resolver *env.Resolver
	uploader *upload.Orchestrator
	history  *ledger.Store

	mu        sync.Mutex
	archive   *archive.Reader
	source    string
	envName   string
	identity  upload.Identity
	showNoise bool
}

// NewApp builds an App from c. A missing profiles file is not fatal: the
// session starts without environments and uploads are refused until one is
// available.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	resolver, err := env.LoadResolver(c.ProfilesFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logger.Warn(ctx, "environment profiles file not found", "path", c.ProfilesFile)
		resolver = env.NewResolver(nil)
	}

	var history *ledger.Store
	if c.LedgerDSN != "" {
		history, err = ledger.Open(ctx, c.LedgerDSN)
		if err != nil {
			return nil, err
		}
	}

	return newApp(c, logger, os.Stdout, colorEnabled(os.Stdout), resolver, history, &http.Client{}), nil
}

func newApp(c *config.Config, logger logging.Logger, out io.Writer, colorize bool,
	resolver *env.Resolver, history *ledger.Store, client *http.Client, opts ...upload.Option) *App {
	a := &App{
		config:    c,
		logger:    logger,
		out:       out,
		colorize:  colorize,
		catalog:   catalog.New(),
		resolver:  resolver,
		history:   history,
		envName:   c.Environment,
		identity:  upload.Identity{UserID: c.UserID, ParentID: c.ParentID},
		showNoise: c.ShowNoise,
	}

	base := []upload.Option{
		upload.WithHTTPClient(client),
		upload.WithLogger(logger),
		upload.WithPhaseTimeout(c.PhaseTimeout),
		upload.WithObserver(a.progress),
	}
	if history != nil {
		base = append(base, upload.WithRecorder(history))
	}
	a.uploader = upload.New(a.catalog, append(base, opts...)...)

	return a
}

// Run starts the REPL on in and releases resources when it returns.
func (a *App) Run(ctx context.Context, in io.Reader) {
	defer a.Close()

	a.println("kbloader (type 'help' for commands)")
	runREPL(ctx, a, a.prompt, newScanner(in))
}

// Close releases the open archive and the history database.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.archive != nil {
		_ = a.archive.Close()
		a.archive = nil
	}
	if a.history != nil {
		_ = a.history.Close()
		a.history = nil
	}
}

func (a *App) prompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.envName
	if a.identity.UserID != "" {
		s = a.identity.UserID + "@" + s
	}
	return s
}
