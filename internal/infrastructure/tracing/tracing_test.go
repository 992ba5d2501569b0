package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New("uiclient", zap.New(core)), logs
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer, _ := newObserved()
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	require.NotEmpty(t, root.TraceID)
	assert.Empty(t, root.ParentID)

	child, childCtx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.NotEqual(t, root.SpanID, child.SpanID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
}

func TestInjectExtract(t *testing.T) {
	ctx := WithTraceContext(context.Background(), "trace-1", "span-1")

	h := http.Header{}
	InjectTraceContext(ctx, h)
	assert.Equal(t, "trace-1", h.Get(HeaderTraceID))
	assert.Equal(t, "span-1", h.Get(HeaderSpanID))

	traceID, spanID := ExtractTraceContext(h)
	assert.Equal(t, TraceID("trace-1"), traceID)
	assert.Equal(t, SpanID("span-1"), spanID)

	empty := http.Header{}
	InjectTraceContext(context.Background(), empty)
	assert.Empty(t, empty)
}

func TestSpansAreLogged(t *testing.T) {
	tracer, logs := newObserved()

	span, _ := tracer.StartSpan(context.Background(), "model.fetch")
	span.SetTag("hash", "abc")
	tracer.End(span)

	failed, _ := tracer.StartSpan(context.Background(), "model.fetch")
	failed.SetError(errors.New("boom"))
	tracer.End(failed)

	tracer.Close()

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "span completed", entries[0].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["hash"])
	assert.Equal(t, "span completed with error", entries[1].Message)
	assert.EqualValues(t, http.StatusInternalServerError, entries[1].ContextMap()["status"])
}

func TestSubmitAfterClose(t *testing.T) {
	tracer, logs := newObserved()
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	assert.NotPanics(t, func() { tracer.End(span) })
	assert.Equal(t, 0, logs.Len())
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer
	span, ctx := tracer.StartSpan(context.Background(), "noop")
	assert.Nil(t, span)
	assert.Equal(t, context.Background(), ctx)

	assert.NotPanics(t, func() {
		span.SetTag("k", "v")
		span.SetStatus(200)
		tracer.End(span)
		tracer.Close()
	})
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObserved()

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/state", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/state", nil)
	req.Header.Set(HeaderTraceID, "upstream-trace")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, TraceID("upstream-trace"), seen)
	assert.Equal(t, "upstream-trace", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	tracer.Close()
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "GET /state", logs.All()[0].ContextMap()["operation"])
}
