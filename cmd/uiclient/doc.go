// Command uiclient connects to a UI server, mirrors its component state
// and serves the mirrored view over a local HTTP API.
//
// Configuration comes from environment variables, an optional YAML or
// TOML file given with -config, then command-line flags.
package main
