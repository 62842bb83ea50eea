package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentTypeGeoJSON = "application/geo+json"

func serveFile(t *testing.T, path string) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentTypeGeoJSON)
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(earthquakeURL, platesURL string, metrics *observability.Metrics) *Client {
	return &Client{
		earthquakeURL: earthquakeURL,
		platesURL:     platesURL,
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		clock:         clockwork.NewFakeClock(),
		metrics:       metrics,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchEarthquakes_Success(t *testing.T) {
	srv := serveFile(t, "testdata/all_day.geojson")
	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, "", metrics)

	features, err := c.FetchEarthquakes(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 3)

	assert.Equal(t, "ci40789999", features[0].ID)
	assert.Equal(t, "10 km SSW of Idyllwild, CA", features[0].Place)
	assert.Equal(t, 6.1, features[2].Magnitude)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FeedFetches.WithLabelValues(FeedEarthquakes, "success")))
}

func TestClient_FetchEarthquakes_FreshRequestEachCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "", observability.NewMetricsForTesting())
	_, err := c.FetchEarthquakes(context.Background())
	require.NoError(t, err)
	_, err = c.FetchEarthquakes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load(), "feed data is never cached")
}

func TestClient_FetchPlates_Success(t *testing.T) {
	srv := serveFile(t, "testdata/plates.json")
	metrics := observability.NewMetricsForTesting()
	c := testClient("", srv.URL, metrics)

	features, err := c.FetchPlates(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "NA-PA", features[1].Properties.MustString("Name"))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FeedFetches.WithLabelValues(FeedPlates, "success")))
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, srv.URL, metrics)

	_, err := c.FetchEarthquakes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "earthquakes feed error")

	_, err = c.FetchPlates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plates feed error")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FeedFetches.WithLabelValues(FeedEarthquakes, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FeedFetches.WithLabelValues(FeedPlates, "error")))
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "", observability.NewMetricsForTesting())
	_, err := c.FetchEarthquakes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse earthquake feed")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "", observability.NewMetricsForTesting())
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.FetchEarthquakes(context.Background())
	require.Error(t, err)
}

func TestFuture_Await(t *testing.T) {
	f := Go(context.Background(), func(_ context.Context) (int, error) {
		return 42, nil
	})

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("future should be resolved")
	}
}

func TestFuture_Error(t *testing.T) {
	boom := errors.New("boom")
	f := Go(context.Background(), func(_ context.Context) (string, error) {
		return "", boom
	})

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFuture_AwaitContextEnds(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := Go(context.Background(), func(_ context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_IndependentResolution(t *testing.T) {
	slow := make(chan struct{})
	defer close(slow)

	blocked := Go(context.Background(), func(_ context.Context) (int, error) {
		<-slow
		return 1, nil
	})
	quick := Go(context.Background(), func(_ context.Context) (int, error) {
		return 2, nil
	})

	v, err := quick.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	select {
	case <-blocked.Done():
		t.Fatal("blocked future should still be pending")
	default:
	}
}
