// Command geocoder is the CLI surface named in §6: a download subcommand
// that refreshes reference data and a geocode subcommand that runs the
// pipeline over a batch of addresses, plus a serve subcommand exposing the
// optional HTTP lookup API. Built with github.com/spf13/cobra bound to
// github.com/spf13/viper.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
