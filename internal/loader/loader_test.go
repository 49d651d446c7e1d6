package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbehnke/relaisblick/internal/relais"
)

func datasetJSON(version string) string {
	return fmt.Sprintf(`{
  "relais": [
    {
      "id": "oe5xol-2m",
      "rufzeichen": "OE5XOL",
      "standort": "Linz Lichtenberg",
      "bundesland": "Oberösterreich",
      "koordinaten": {"lat": 48.3667, "lng": 14.2667},
      "typ": "FM",
      "band": "2m",
      "txFrequenz": 145.725,
      "rxFrequenz": 145.125,
      "shift": -600,
      "status": "aktiv",
      "lastUpdate": "2024-06-02T03:00:00Z"
    }
  ],
  "lastUpdate": "2024-06-02T03:00:00Z",
  "version": %q
}`, version)
}

func TestLoadSuccess(t *testing.T) {
	var userAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.UserAgent())
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, datasetJSON("1.0.0"))
	}))
	defer srv.Close()

	l := New(Config{URL: srv.URL, UserAgent: "relaisblick-test"}, nil)

	var notified *relais.Dataset
	l.OnDataset(func(ds *relais.Dataset) { notified = ds })

	require.NoError(t, l.Load(context.Background()))

	st := l.State()
	require.NotNil(t, st.Dataset)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
	assert.Equal(t, 1, st.Dataset.Len())
	assert.Equal(t, "1.0.0", st.Dataset.Version)
	assert.False(t, st.FetchedAt.IsZero())
	assert.Same(t, st.Dataset, notified)
	assert.Equal(t, "relaisblick-test", userAgent.Load())
}

func TestLoadHTTPErrorThenRetry(t *testing.T) {
	var available atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !available.Load() {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, datasetJSON("2.0.0"))
	}))
	defer srv.Close()

	l := New(Config{URL: srv.URL}, nil)

	err := l.Load(context.Background())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, KindHTTP, loadErr.Kind)
	assert.Equal(t, http.StatusNotFound, loadErr.StatusCode)
	assert.Equal(t, "Fehler beim Laden der Relaisdaten: HTTP Error: 404", err.Error())

	st := l.State()
	assert.Nil(t, st.Dataset)
	assert.False(t, st.Loading)
	assert.Equal(t, err, st.Err)

	available.Store(true)
	require.NoError(t, l.Retry(context.Background()))

	st = l.State()
	require.NotNil(t, st.Dataset)
	assert.NoError(t, st.Err)
	assert.Equal(t, "2.0.0", st.Dataset.Version)
}

func TestFailureKeepsPreviousDataset(t *testing.T) {
	var broken atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, datasetJSON("1.0.0"))
	}))
	defer srv.Close()

	l := New(Config{URL: srv.URL}, nil)
	require.NoError(t, l.Load(context.Background()))
	first := l.State().Dataset

	broken.Store(true)
	err := l.Retry(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP Error: 500")

	st := l.State()
	assert.Same(t, first, st.Dataset)
	assert.Equal(t, err, st.Err)
}

func TestLoadMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>oops</html>")
	}))
	defer srv.Close()

	l := New(Config{URL: srv.URL}, nil)
	err := l.Load(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, KindParse, loadErr.Kind)
	assert.ErrorIs(t, err, relais.ErrMalformedDataset)
	assert.Contains(t, err.Error(), "Fehler beim Laden der Relaisdaten: ")
}

func TestLoadNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	l := New(Config{URL: url, Timeout: time.Second}, nil)
	err := l.Load(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, KindNetwork, loadErr.Kind)
}

func TestRetryAbortsInFlightFetch(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
			select {
			case <-r.Context().Done():
			case <-release:
			}
			fmt.Fprint(w, datasetJSON("stale"))
			return
		}
		fmt.Fprint(w, datasetJSON("fresh"))
	}))
	defer srv.Close()
	defer close(release)

	l := New(Config{URL: srv.URL}, nil)

	firstErr := make(chan error, 1)
	go func() { firstErr <- l.Load(context.Background()) }()

	<-started
	assert.True(t, l.State().Loading)

	require.NoError(t, l.Retry(context.Background()))

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded fetch did not return")
	}

	st := l.State()
	require.NotNil(t, st.Dataset)
	assert.Equal(t, "fresh", st.Dataset.Version)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestListenersFollowLoadOrder(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, datasetJSON(fmt.Sprint(calls.Add(1))))
	}))
	defer srv.Close()

	l := New(Config{URL: srv.URL}, nil)

	var (
		mu   sync.Mutex
		seen []string
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	l.OnDataset(func(ds *relais.Dataset) {
		mu.Lock()
		seen = append(seen, ds.Version)
		first := len(seen) == 1
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
	})

	errs := make(chan error, 2)
	go func() { errs <- l.Load(context.Background()) }()
	<-entered

	// the second load stores its dataset while the first is still notifying
	go func() { errs <- l.Load(context.Background()) }()
	require.Eventually(t, func() bool {
		st := l.State()
		return st.Dataset != nil && st.Dataset.Version == "2"
	}, 5*time.Second, 5*time.Millisecond)
	close(release)

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2"}, seen)
}

func TestNotifySkipsOlderDatasets(t *testing.T) {
	l := New(Config{URL: "http://localhost/unused"}, nil)

	var seen []string
	l.OnDataset(func(ds *relais.Dataset) { seen = append(seen, ds.Version) })

	l.notify(2, &relais.Dataset{Version: "newer"})
	l.notify(1, &relais.Dataset{Version: "older"})
	l.notify(3, &relais.Dataset{Version: "newest"})

	assert.Equal(t, []string{"newer", "newest"}, seen)
}

func TestNewHTTPClientDefaultsTimeout(t *testing.T) {
	assert.Equal(t, RequestTimeout, NewHTTPClient(0).Timeout)
	assert.Equal(t, 5*time.Second, NewHTTPClient(5*time.Second).Timeout)
}

func TestLoadCancelledContextIsNotRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, datasetJSON("1.0.0"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(Config{URL: srv.URL}, nil)
	err := l.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	st := l.State()
	assert.NoError(t, st.Err)
	assert.False(t, st.Loading)
}

func TestLoadFromFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relais.json")
	require.NoError(t, os.WriteFile(path, []byte(datasetJSON("file")), 0o644))

	l := New(Config{URL: "file://" + path}, nil)
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, "file", l.State().Dataset.Version)

	missing := New(Config{URL: "file://" + path + ".missing"}, nil)
	var loadErr *LoadError
	require.ErrorAs(t, missing.Load(context.Background()), &loadErr)
	assert.Equal(t, KindHTTP, loadErr.Kind)
}

func TestWatchLoadsAndStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, datasetJSON("watched"))
	}))
	defer srv.Close()

	l := New(Config{URL: srv.URL}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Watch(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return l.State().Dataset != nil }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "network_error", KindNetwork.String())
	assert.Equal(t, "http_error", KindHTTP.String())
	assert.Equal(t, "parse_error", KindParse.String())
	assert.Equal(t, "unknown_error", Kind(42).String())
}

func TestNextScheduledUpdate(t *testing.T) {
	vienna, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		vienna = time.FixedZone("CEST", 2*60*60)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "sunday before three is today",
			now:  time.Date(2026, 10, 18, 2, 59, 0, 0, time.UTC),
			want: time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday at three is next week",
			now:  time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC),
			want: time.Date(2026, 10, 25, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "thursday",
			now:  time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday across month end",
			now:  time.Date(2026, 10, 31, 23, 0, 0, 0, time.UTC),
			want: time.Date(2026, 11, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			name: "local sunday morning is still saturday in UTC",
			now:  time.Date(2026, 10, 18, 1, 30, 0, 0, vienna),
			want: time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(NextScheduledUpdate(tt.now)), "got %v", NextScheduledUpdate(tt.now))
		})
	}
}
