// Command rframe inspects and converts tabular files with the rframe engine.
package main

import (
	"fmt"
	"os"

	"github.com/paveg/rframe/internal/logging"
)

func main() {
	root := newRootCmd()
	err := root.Execute()
	_ = logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
