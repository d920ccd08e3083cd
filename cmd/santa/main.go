// Package main provides the entry point for the santa CLI.
package main

import "os"

func main() {
	os.Exit(Execute())
}
