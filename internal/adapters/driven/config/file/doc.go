// Package file provides TOML file-backed configuration for quarry.
package file
