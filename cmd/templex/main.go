package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/shibukawa/templex"
	"github.com/shibukawa/templex/cli"
)

// CLI represents the command-line interface
var CLI struct {
	Verbose bool          `help:"Enable verbose output" short:"v"`
	Quiet   bool          `help:"Suppress output" short:"q"`
	Parse   cli.ParseCmd  `cmd:"" help:"Parse an expression fragment into a tree"`
	Tokens  cli.TokensCmd `cmd:"" help:"Dump the token stream of an expression fragment"`
	Version VersionCmd    `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("templex v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &cli.Context{
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		// Diagnostics were already printed; avoid repeating them.
		if !errors.Is(err, templex.ErrParseFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}
