// Command verifyctl verifies acceptance documents locally.
package main

import (
	"fmt"
	"os"

	"github.com/kirillkom/acceptance-verifier/internal/cli"
)

func main() {
	if err := cli.Execute(os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "verifyctl:", err)
		os.Exit(1)
	}
}
