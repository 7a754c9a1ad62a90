// Package main is the entry point for the devac CLI tool.
package main

import (
	"github.com/anthropics/devac/internal/cmd"
)

func main() {
	cmd.Execute()
}
