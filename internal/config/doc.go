// SPDX-License-Identifier: MPL-2.0

// Package config loads stylebuild settings with Viper, using CUE as the file
// format.
//
// Settings are read from the --config file when given, otherwise from
// stylebuild.cue in the project base directory, otherwise from config.cue in
// the user configuration directory ($XDG_CONFIG_HOME/stylebuild on Linux,
// ~/Library/Application Support/stylebuild on macOS, %APPDATA%\stylebuild on
// Windows). Files are validated against the embedded config_schema.cue.
// STYLEBUILD_* environment variables, optionally supplied through a .env
// file, override file values.
package config
