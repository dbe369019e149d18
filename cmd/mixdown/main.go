// Package main is the entry point for the mixdown service and its command line tools.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
