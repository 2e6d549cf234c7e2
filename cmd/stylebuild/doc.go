// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for stylebuild.
//
// This package implements the Cobra command hierarchy: build compiles a
// project into an output directory, resolve explains how a single import is
// found, graph prints the import graph of a project and config inspects the
// effective configuration. Commands share an App composition root that owns
// the configuration provider, the compiler and the output streams.
package cmd
