// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
//
// The engine in internal/core/services talks to the corpus store, the two
// indexes, and the embedding model exclusively through these interfaces.
// Adapters live under internal/adapters/driven.
package driven
