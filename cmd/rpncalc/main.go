// Package main provides the entry point for the rpncalc CLI.
package main

import "yqhp/rpncalc/cmd"

func main() {
	cmd.Execute()
}
