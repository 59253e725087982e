// Command memchat runs memory-augmented chat turns from the terminal and
// manages the stored memories.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(newCoreClient).Execute(); err != nil {
		os.Exit(1)
	}
}
