// Package config provides configuration for the userauth command-line client.
//
// Values come from built-in defaults, an optional JSON file given with
// -c/-config, and short command-line flags, in that order of precedence.
package config
