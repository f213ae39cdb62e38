// Package config defines configuration structures for the beerscape CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (BEERSCAPE_ prefix)
//   - YAML configuration file
//
// Precedence is flags over environment over file over built-in defaults.
// The defaults mirror the tool's original fixed constants: a goal of
// 10000 resources probed out of the identifier range [1, 4000000], ten
// requests per batch, a 10s request timeout, and a 100ms pause between
// batches.
package config
