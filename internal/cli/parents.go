package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirmse-prom/prominence/pkg/driver"
	"github.com/kirmse-prom/prominence/pkg/dvt"
	"github.com/kirmse-prom/prominence/pkg/geo"
)

type parentsOpts struct {
	minProminence float64
	bathymetry    bool
	output        string
}

func (c *CLI) parentsCommand() *cobra.Command {
	o := parentsOpts{}

	cmd := &cobra.Command{
		Use:   "parents <finalized-dvt-file>",
		Short: "Emit the prominence/line-parent table for a finalized divide tree",
		Long: `parents consumes one finalized .dvt file (produced by "prominence merge
--finalize") and writes a table of peaks with their prominence-parent and
line-parent peaks. Landmass high points (prominence == elevation) have no
well-defined parent and are omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParents(cmd, &o, args[0])
		},
	}

	f := cmd.Flags()
	f.Float64Var(&o.minProminence, "min-prominence", 0, "minimum prominence a peak must have to appear in the table")
	f.BoolVar(&o.bathymetry, "bathymetry", false, "treat sea level as the minimum saddle elevation rather than zero")
	f.StringVar(&o.output, "output", "", "output file path (stdout if empty)")

	return cmd
}

func runParents(cmd *cobra.Command, o *parentsOpts, path string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("parents: opening %s: %w", path, err)
	}
	tree, err := dvt.Read(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parents: reading %s: %w", path, err)
	}

	out := os.Stdout
	if o.output != "" {
		out, err = os.Create(o.output)
		if err != nil {
			return err
		}
		defer out.Close()
	}

	prog := newProgress(logger)
	err = driver.RunParents(tree, driver.ParentsOptions{
		MinProminence: geo.Elevation(o.minProminence),
		IsBathymetry:  o.bathymetry,
		CommandLine:   "prominence parents " + path,
		Logger:        logger,
	}, out)
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("parents run complete: %d peaks", len(tree.Peaks())))
	return nil
}
