// Command nanodraw generates images with the nano-banana draw service and
// relays generations to browsers.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewApp().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}
