// SPDX-License-Identifier: MPL-2.0

// Command distpush uploads Python distributions to a package index.
package main

import cmd "github.com/distpush/distpush/cmd/distpush"

func main() {
	cmd.Execute()
}
