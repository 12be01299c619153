// nudge - reminders and deadlines from the command line
//
// This software is a derivative work based on Humantime
// (https://github.com/manav03panchal/humantime), itself based on Zeit
// (https://github.com/mrusme/zeit).
// Original work copyright (c) マリウス (mrusme), Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.

package main

import (
	"os"

	"github.com/nudge-cli/nudge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
