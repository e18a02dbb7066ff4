// Package config loads, normalizes, and validates batchenc configuration.
//
// It supplies defaults matching the stock encoding profile (VBR and CBR
// modes, five CRF steps, four named video filters), expands user paths
// (including tilde shortcuts), and reads TOML files. Validation failures are
// tagged with services.ErrConfiguration so the CLI can report them
// uniformly.
//
// Default stream indices stay strings here; they can only be checked once a
// source has been probed, which happens in the source package.
package config
