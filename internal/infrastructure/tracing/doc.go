/*
Package tracing provides lightweight request tracing for debugging.

# Overview

A span covers one operation: a view API request or a model download.
Spans share a trace id carried in the request context and propagated in
HTTP headers, so the API request that triggered a model fetch and the
resource server's own logs can be correlated.

# Usage

	tracer := tracing.New("uiclient", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "model.fetch")
	defer tracer.End(span)
	span.SetTag("hash", hash)

	tracing.InjectTraceContext(ctx, req.Header)

# Trace Format

- X-Trace-ID: identifier for the entire request flow
- X-Span-ID: identifier for the current operation

Completed spans are logged through zap by a single collector goroutine. A
full buffer drops spans instead of blocking the caller. All Tracer
methods accept a nil receiver and do nothing.
*/
package tracing
