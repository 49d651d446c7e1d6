// Package loader fetches the repeater dataset over HTTP and keeps the
// current dataset, loading flag and last error.
package loader

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dbehnke/relaisblick/internal/logger"
	"github.com/dbehnke/relaisblick/internal/metrics"
	"github.com/dbehnke/relaisblick/internal/relais"
)

const (
	// DefaultURL is where the dataset is served next to the web front-end
	DefaultURL = "http://localhost:8080/data/relais.json"

	// RequestTimeout for HTTP requests
	RequestTimeout = 30 * time.Second

	// DefaultUserAgent identifies the loader to the data host
	DefaultUserAgent = "relaisblick/1.0"

	// UpdateGrace is waited after the scheduled regeneration before
	// fetching, so the new file is in place.
	UpdateGrace = 5 * time.Minute
)

// Config holds configuration for the loader
type Config struct {
	URL        string        // Dataset URL, http(s) or file
	Timeout    time.Duration // HTTP request timeout (default: 30 seconds)
	UserAgent  string
	HTTPClient *http.Client // Overrides Timeout when set
}

// State is a snapshot of the loader.
type State struct {
	Dataset   *relais.Dataset // nil until the first successful load
	Loading   bool
	Err       error // user facing error of the last fetch, nil on success
	FetchedAt time.Time
}

// Loader fetches the dataset. All methods are safe for concurrent use.
type Loader struct {
	url       string
	userAgent string
	client    *http.Client
	log       *logger.Logger
	now       func() time.Time

	mu         sync.Mutex
	dataset    *relais.Dataset
	loading    bool
	err        error
	fetchedAt  time.Time
	generation uint64
	cancel     context.CancelFunc
	listeners  []func(*relais.Dataset)

	// serialises listener calls; notified is the newest generation handed out
	notifyMu sync.Mutex
	notified uint64
}

// New creates a loader. A nil logger disables logging.
func New(config Config, log *logger.Logger) *Loader {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Timeout <= 0 {
		config.Timeout = RequestTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	client := config.HTTPClient
	if client == nil {
		client = NewHTTPClient(config.Timeout)
	}

	return &Loader{
		url:       config.URL,
		userAgent: config.UserAgent,
		client:    client,
		log:       logger.OrNop(log).Named("loader"),
		now:       time.Now,
	}
}

// NewHTTPClient returns a client with the given timeout (RequestTimeout
// when not positive) that also serves file:// URLs from the local filesystem.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = RequestTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// URL returns the dataset URL.
func (l *Loader) URL() string { return l.url }

// OnDataset registers fn to be called with every successfully loaded
// dataset. fn runs on the loading goroutine after the state is updated.
// Calls never overlap and never go back to an older dataset.
func (l *Loader) OnDataset(fn func(*relais.Dataset)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// State returns a snapshot of the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return State{
		Dataset:   l.dataset,
		Loading:   l.loading,
		Err:       l.err,
		FetchedAt: l.fetchedAt,
	}
}

// Load fetches the dataset once. A fetch that is still running is
// cancelled first and returns ErrSuperseded. On success the dataset is
// replaced and the error cleared; on failure the error is recorded as a
// *LoadError and the previous dataset stays.
func (l *Loader) Load(ctx context.Context) error {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	gen := l.generation
	l.cancel = cancel
	l.loading = true
	l.err = nil
	l.mu.Unlock()

	log := l.log.With("fetch", uuid.NewString(), "url", l.url)
	log.Debugw("Fetching dataset")

	start := time.Now()
	ds, err := l.fetch(fetchCtx)
	metrics.DatasetFetchDuration.Observe(time.Since(start).Seconds())

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		metrics.DatasetFetches.WithLabelValues("superseded").Inc()
		log.Debugw("Fetch superseded")
		return ErrSuperseded
	}
	l.loading = false
	l.cancel = nil

	if err != nil {
		// shutdown is not a data error
		if ctx.Err() != nil {
			l.mu.Unlock()
			return ctx.Err()
		}

		l.err = err
		l.mu.Unlock()

		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			metrics.DatasetFetches.WithLabelValues(loadErr.Kind.String()).Inc()
		}
		log.Warnw("Dataset fetch failed", "error", err)
		return err
	}

	l.dataset = ds
	l.fetchedAt = l.now()
	l.mu.Unlock()

	metrics.DatasetFetches.WithLabelValues("success").Inc()
	metrics.DatasetRecords.Set(float64(ds.Len()))
	metrics.DatasetLastLoad.SetToCurrentTime()
	log.Infow("Dataset loaded", "records", ds.Len(), "version", ds.Version,
		"lastUpdate", ds.LastUpdate, "duration", time.Since(start))

	l.notify(gen, ds)
	return nil
}

// notify passes ds to the listeners unless a newer dataset already went out.
func (l *Loader) notify(gen uint64, ds *relais.Dataset) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	if gen <= l.notified {
		return
	}
	l.notified = gen

	l.mu.Lock()
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(ds)
	}
}

// Retry re-runs the fetch. It behaves exactly like Load.
func (l *Loader) Retry(ctx context.Context) error {
	return l.Load(ctx)
}

func (l *Loader) fetch(ctx context.Context) (*relais.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, &LoadError{Kind: KindNetwork, Err: err}
	}

	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoadError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(resp.StatusCode)
	}

	ds, err := relais.Decode(resp.Body)
	if err != nil {
		return nil, &LoadError{Kind: KindParse, Err: err}
	}
	return ds, nil
}

// Watch loads the dataset, then reloads it after every scheduled weekly
// regeneration until ctx is done. Failures are logged and recovered by
// the next scheduled run or a manual Retry.
func (l *Loader) Watch(ctx context.Context) {
	l.log.Infow("Dataset watcher starting", "url", l.url)

	if err := l.Load(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		l.log.Warnw("Initial dataset load failed", "error", err)
	}

	for {
		next := NextScheduledUpdate(l.now()).Add(UpdateGrace)
		l.log.Debugw("Next dataset reload scheduled", "at", next)

		timer := time.NewTimer(next.Sub(l.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			l.log.Infow("Dataset watcher stopping")
			return

		case <-timer.C:
			if err := l.Load(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
				l.log.Warnw("Scheduled dataset reload failed", "error", err)
			}
		}
	}
}
