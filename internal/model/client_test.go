package model

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/tracing"
)

func testClientConfig(origin string) ClientConfig {
	cfg := DefaultClientConfig(origin)
	cfg.RetryMax = 2
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 0
	return cfg
}

func TestClientGet(t *testing.T) {
	hash := ContentHash([]byte(sampleDocument))

	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path != "/resources/"+hash {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDocument))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL+"/"), nil)
	assert.Equal(t, srv.URL+"/resources/"+hash, client.URL(hash))

	body, err := client.Get(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, sampleDocument, string(body))

	_, err = client.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"/resources/" + hash, "/resources/missing"}, paths)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleDocument))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), nil)
	body, err := client.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, sampleDocument, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientNotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), nil)
	for i := 0; i < 10; i++ {
		_, err := client.Get(context.Background(), "abc")
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, resilience.StateClosed, client.BreakerState())
}

func TestClientBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testClientConfig(srv.URL)
	cfg.RetryMax = 0
	client := NewClient(cfg, nil)

	for i := 0; i < 5; i++ {
		_, err := client.Get(context.Background(), "abc")
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, client.BreakerState())

	before := calls.Load()
	_, err := client.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, before, calls.Load())
}

func TestClientRejectsUnsafeHash(t *testing.T) {
	client := NewClient(testClientConfig("http://127.0.0.1:1"), nil)
	_, err := client.Get(context.Background(), "../secrets")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestClientPropagatesTrace(t *testing.T) {
	var traceID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = r.Header.Get(tracing.HeaderTraceID)
		_, _ = w.Write([]byte(sampleDocument))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), nil)
	ctx := tracing.WithTraceContext(context.Background(), "trace-42", "span-1")

	_, err := client.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "trace-42", traceID)
}
