// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// texelprettify detects and prettifies structured content in terminal
// output: run a command under a pty and prettify what it prints, or feed
// captured text through detection directly.
package main

func main() {
	Execute()
}
