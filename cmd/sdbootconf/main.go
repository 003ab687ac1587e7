// sdbootconf reads and edits systemd-boot's loader.conf and boot loader entries.
package main

import (
	"fmt"
	"os"

	"sdbootconf/internal/cmd"
)

var (
	run    = func() error { return cmd.Execute() }
	osExit = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}
