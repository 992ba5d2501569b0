// Package api is the local view-layer adapter. It exposes the mirrored UI
// state of a session as JSON and turns HTTP requests into session
// commands: component actions, control activations, view changes and the
// host visibility signal.
package api
