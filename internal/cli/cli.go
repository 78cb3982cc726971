// Package cli implements the prominence command-line interface: the
// region, merge, and parents drivers, wired to cobra subcommands.
//
// Grounded on internal/cli/{cli.go,root.go,log.go,parse.go}: a CLI
// struct carrying a shared logger, a RootCommand assembling
// subcommands, and a context-carried logger set up by
// PersistentPreRun.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kirmse-prom/prominence/pkg/buildinfo"
)

// CLI holds state shared by every subcommand.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// RootCommand builds the "prominence" root command with every
// subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "prominence",
		Short:        "Compute topographic prominence and divide trees from elevation tiles",
		Long:         "prominence computes the topographic prominence of every peak in a region from digital elevation rasters, producing a divide tree of peaks, saddles, and the divides between them.",
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			c.Logger.SetLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.regionCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.parentsCommand())

	return root
}

// Execute runs the CLI to completion under ctx.
func (c *CLI) Execute(ctx context.Context) error {
	return c.RootCommand().ExecuteContext(ctx)
}

// isInteractive reports whether stdout is an attached terminal, used to
// decide whether the bubbletea progress view should render at all.
func isInteractive(fd uintptr) bool {
	return isatty.IsTerminal(fd)
}
