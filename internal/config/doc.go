// Package config defines configuration structures for the sfdump CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (SFDUMP_ prefix, .env files supported)
//   - YAML configuration file
//
// Precedence is flags over environment over file over defaults.
//
// Partition (chunk) values are deliberately carried as raw strings: an
// invalid chunk spec disables partitioning rather than failing the run,
// so a bad deployment produces a complete-but-possibly-duplicated export
// instead of a silently incomplete one.
package config
