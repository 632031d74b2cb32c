// Package main is the entry point for the canalgrab application.
package main

import (
	"github.com/canalgrab-cli/canalgrab/cmd"
	"github.com/canalgrab-cli/canalgrab/config"
	"github.com/canalgrab-cli/canalgrab/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
