// SPDX-License-Identifier: MPL-2.0

// Command stylebuild compiles SCSS stylesheets.
package main

import "github.com/invowk/stylebuild/cmd/stylebuild"

func main() {
	cmd.Execute()
}
