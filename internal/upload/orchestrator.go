package upload

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/kbloader/internal/archive"
	"github.com/dmitrijs2005/kbloader/internal/catalog"
	"github.com/dmitrijs2005/kbloader/internal/env"
	"github.com/dmitrijs2005/kbloader/internal/logging"
)

// Summary counts the outcome of one PublishEligible run.
type Summary struct {
	Selected  int
	Succeeded int
	Failed    int
}

// Orchestrator drives pending catalog entries through the two upload phases.
// At most one run is active at a time.
type Orchestrator struct {
	catalog      *catalog.Catalog
	client       *http.Client
	logger       logging.Logger
	phaseTimeout time.Duration
	recorder     Recorder
	observer     func(catalog.Update)
	newPublisher PublisherFactory
	registrar    Registrar
	now          func() time.Time

	running  atomic.Bool
	inFlight atomic.Int64
}

func New(c *catalog.Catalog, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:      c,
		client:       http.DefaultClient,
		logger:       logging.Nop{},
		phaseTimeout: DefaultPhaseTimeout,
		newPublisher: NewBlobPublisher,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registrar == nil {
		o.registrar = NewHTTPRegistrar(o.client)
	}
	return o
}

// InFlight returns the number of entries of the current run that have not
// reached a terminal state yet. Zero when idle.
func (o *Orchestrator) InFlight() int64 {
	return o.inFlight.Load()
}

// run carries the per-invocation values shared by every entry.
type run struct {
	generation uint64
	userID     string
	parentID   int64
	env        *env.EnvironmentConfig
	publisher  BlobPublisher
}

// PublishEligible uploads every entry that is pending at the time of the
// call. Entries are processed sequentially in catalog order; entries that
// become pending later are left for the next run.
//
// Only precondition failures are returned as errors, always before any
// network call or state change. Per-entry failures end up in the catalog and
// in the Summary. Cancelling ctx does not stop a run once it started.
func (o *Orchestrator) PublishEligible(ctx context.Context, id Identity, e *env.EnvironmentConfig) (Summary, error) {
	if e == nil {
		return Summary{}, &ConfigurationError{Reason: "no environment selected"}
	}
	if err := e.Validate(); err != nil {
		return Summary{}, &ConfigurationError{Reason: err.Error(), Err: err}
	}
	parentID, err := id.Validate()
	if err != nil {
		return Summary{}, err
	}

	if !o.running.CompareAndSwap(false, true) {
		return Summary{}, ErrRunInProgress
	}
	defer o.running.Store(false)

	publisher, err := o.newPublisher(ctx, e.Blob, o.client)
	if err != nil {
		return Summary{}, &ConfigurationError{Reason: "blob publisher: " + err.Error(), Err: err}
	}

	ctx = context.WithoutCancel(ctx)
	o.checkToken(ctx, e.Catalog.Token)

	gen, pending := o.catalog.Pending()
	r := &run{
		generation: gen,
		userID:     id.UserID,
		parentID:   parentID,
		env:        e,
		publisher:  publisher,
	}

	summary := Summary{Selected: len(pending)}
	o.inFlight.Store(int64(len(pending)))
	defer o.inFlight.Store(0)

	o.logger.Info(ctx, "upload run started", "environment", e.Name, "selected", len(pending))

	for _, entry := range pending {
		switch o.publishOne(ctx, r, entry) {
		case catalog.StateSucceeded:
			summary.Succeeded++
		default:
			summary.Failed++
		}
	}

	o.logger.Info(ctx, "upload run finished",
		"environment", e.Name,
		"selected", summary.Selected,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)

	return summary, nil
}

// publishOne runs both phases for a single entry and returns its terminal
// state. A panic is turned into a failure of this entry only, unless the
// entry already reached a terminal state.
func (o *Orchestrator) publishOne(ctx context.Context, r *run, entry catalog.Entry) (final catalog.State) {
	log := o.logger.With("path", entry.Path)
	var published string
	reached := catalog.StatePending

	defer func() {
		if rec := recover(); rec != nil {
			if reached.Terminal() {
				log.Error(ctx, "upload panicked after completion", "panic", rec, "state", reached)
				final = reached
				return
			}
			log.Error(ctx, "upload panicked", "panic", rec)
			final = o.fail(ctx, r, entry, published, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	o.emit(catalog.Update{Generation: r.generation, Path: entry.Path, State: catalog.StatePublishingBlob})

	body, err := entry.Content()
	if err != nil {
		reached = catalog.StateFailed
		return o.fail(ctx, r, entry, "", fmt.Sprintf("read entry: %v", err))
	}

	key := NewRemoteKey(entry.Path)
	err = o.withPhaseTimeout(ctx, func(ctx context.Context) error {
		return r.publisher.Publish(ctx, key, body)
	})
	if err != nil {
		log.Warn(ctx, "blob publish failed", "remote_key", key, "error", err)
		reached = catalog.StateFailed
		return o.fail(ctx, r, entry, "", err.Error())
	}
	published = key
	log.Debug(ctx, "blob published", "remote_key", key)

	o.emit(catalog.Update{
		Generation: r.generation,
		Path:       entry.Path,
		State:      catalog.StateRegisteringMetadata,
		RemoteKey:  key,
	})

	req := Registration{
		URL:      key,
		FileName: archive.Base(entry.Path),
		ParentID: r.parentID,
		Size:     entry.Size,
		MD5:      entry.Fingerprint,
	}
	var resp map[string]any
	err = o.withPhaseTimeout(ctx, func(ctx context.Context) error {
		var err error
		resp, err = o.registrar.Register(ctx, r.env.Catalog, r.userID, req)
		return err
	})
	if err != nil {
		log.Warn(ctx, "catalog registration failed, blob left orphaned", "remote_key", key, "error", err)
		reached = catalog.StateFailed
		return o.fail(ctx, r, entry, key, err.Error())
	}

	reached = catalog.StateSucceeded
	o.emit(catalog.Update{
		Generation: r.generation,
		Path:       entry.Path,
		State:      catalog.StateSucceeded,
		RemoteKey:  key,
		Response:   resp,
	})
	log.Info(ctx, "entry uploaded", "remote_key", key, "state", catalog.StateSucceeded)
	o.record(ctx, r, entry, catalog.StateSucceeded, key, "")

	return catalog.StateSucceeded
}

func (o *Orchestrator) fail(ctx context.Context, r *run, entry catalog.Entry, key, reason string) catalog.State {
	o.emit(catalog.Update{
		Generation: r.generation,
		Path:       entry.Path,
		State:      catalog.StateFailed,
		RemoteKey:  key,
		Reason:     reason,
	})
	o.record(ctx, r, entry, catalog.StateFailed, key, reason)
	return catalog.StateFailed
}

// emit applies u and notifies the observer. A terminal update leaves the
// in-flight count first, so the observer sees what is still left.
func (o *Orchestrator) emit(u catalog.Update) {
	if u.State.Terminal() {
		o.inFlight.Add(-1)
	}
	if !o.catalog.Apply(u) {
		o.logger.Debug(context.Background(), "update not applied", "path", u.Path, "state", u.State, "generation", u.Generation)
	}
	if o.observer != nil {
		o.observer(u)
	}
}

func (o *Orchestrator) record(ctx context.Context, r *run, entry catalog.Entry, state catalog.State, key, reason string) {
	if o.recorder == nil {
		return
	}
	err := o.recorder.RecordResult(ctx, Result{
		Environment: r.env.Name,
		Path:        entry.Path,
		FileName:    archive.Base(entry.Path),
		Fingerprint: entry.Fingerprint,
		Size:        entry.Size,
		RemoteKey:   key,
		State:       state,
		Reason:      reason,
		At:          o.now(),
	})
	if err != nil {
		o.logger.Error(ctx, "failed to record upload result", "path", entry.Path, "error", err)
	}
}

func (o *Orchestrator) withPhaseTimeout(ctx context.Context, fn func(context.Context) error) error {
	if o.phaseTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, o.phaseTimeout)
	defer cancel()
	return fn(ctx)
}

// checkToken warns about a bearer token that is already expired. The run is
// not stopped: the catalog has the final word.
func (o *Orchestrator) checkToken(ctx context.Context, token string) {
	exp, ok := tokenExpiry(token)
	if ok && exp.Before(o.now()) {
		o.logger.Warn(ctx, "catalog token is expired", "expired_at", exp)
	}
}
