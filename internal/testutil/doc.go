// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover environment isolation (MustSetenv, SetHomeDir) and stylesheet fixture
// trees (MustMkdirAll, MustWriteFile, MustReadFile, WriteTree).
package testutil
