// Package middleware provides the gin middleware of the view-layer API:
// CORS for browser front-ends and per-client rate limiting.
package middleware
