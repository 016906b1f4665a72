// Package services implements the driving port interfaces.
// The engine here contains the core retrieval logic and orchestrates
// calls to driven ports (adapters).
package services
