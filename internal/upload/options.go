package upload

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/kbloader/internal/catalog"
	"github.com/dmitrijs2005/kbloader/internal/logging"
)

// DefaultPhaseTimeout bounds each network phase of a single entry.
const DefaultPhaseTimeout = 60 * time.Second

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) { o.client = c }
}

func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithPhaseTimeout sets the deadline of each phase. Zero or negative disables
// the deadline.
func WithPhaseTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.phaseTimeout = d }
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithObserver registers fn to receive every update the run emits, in order.
func WithObserver(fn func(catalog.Update)) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

func WithPublisherFactory(f PublisherFactory) Option {
	return func(o *Orchestrator) { o.newPublisher = f }
}

func WithRegistrar(r Registrar) Option {
	return func(o *Orchestrator) { o.registrar = r }
}
