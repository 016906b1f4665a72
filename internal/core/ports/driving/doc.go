// Package driving provides interfaces for external actors (primary/inbound ports).
//
// The CLI and TUI adapters drive the engine exclusively through these
// interfaces.
package driving
