// colorwatch streams a base16 palette file to a browser native-messaging
// consumer every time the file is saved.
package main

import (
	"os"

	"github.com/hupe1980/colorwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
