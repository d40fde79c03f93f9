// Package main provides the keepsake CLI.
package main

import "github.com/mesh-intelligence/keepsake/internal/cli"

func main() {
	cli.Main()
}
