// Package server wires the UI client together.
//
// This package orchestrates all components:
//   - Event loop that serializes session callbacks
//   - Model client and fetcher with memory and disk caches
//   - State mirror and session controller over a websocket dialer
//   - View-layer HTTP adapter with Gin (optional)
//   - Prometheus metrics shared by every component
//
// Server Lifecycle:
//  1. Load configuration from environment, file and flags
//  2. Initialize logger (production or development)
//  3. Build the model fetcher, mirror and session controller
//  4. Setup HTTP routes and middleware
//  5. Start the loop, open the session, serve HTTP
//  6. Graceful shutdown when the context is cancelled
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
