package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kirmse-prom/prominence/pkg/dividetree"
	"github.com/kirmse-prom/prominence/pkg/driver"
	"github.com/kirmse-prom/prominence/pkg/dvt"
	"github.com/kirmse-prom/prominence/pkg/export"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/report"
)

type mergeOpts struct {
	outPrefix     string
	finalize      bool
	bathymetry    bool
	minProminence float64
	threads       int
	debugDot      string
	noProgress    bool
}

func (c *CLI) mergeCommand() *cobra.Command {
	o := mergeOpts{}

	cmd := &cobra.Command{
		Use:   "merge <dvt-file> [dvt-file...]",
		Short: "Merge per-tile .dvt divide trees into one, pairwise",
		Long: `merge reduces N .dvt files into a single divide tree via pairwise binary
reduction, then rebuilds the IslandTree for final prominence values. With
--finalize, it additionally deletes all runoffs and re-prunes against a
freshly built LineTree before emitting output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, &o, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.outPrefix, "out", "merged", "output prefix; writes <prefix>.dvt and <prefix>.txt")
	f.BoolVar(&o.finalize, "finalize", false, "delete runoffs and re-prune before emitting")
	f.BoolVar(&o.bathymetry, "bathymetry", false, "treat sea level as the minimum saddle elevation rather than zero")
	f.Float64Var(&o.minProminence, "min-prominence", 0, "minimum prominence to retain when --finalize is set")
	f.IntVar(&o.threads, "threads", 0, "worker pool size for the pairwise merge rounds (default: GOMAXPROCS)")
	f.StringVar(&o.debugDot, "debug-dot", "", "write a Graphviz DOT export of the merged tree to this path")
	f.BoolVar(&o.noProgress, "no-progress", false, "disable the terminal progress view")

	return cmd
}

func runMerge(cmd *cobra.Command, o *mergeOpts, paths []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	jobID := uuid.NewString()

	trees := make([]*dividetree.Tree, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("merge: opening %s: %w", p, err)
		}
		tree, err := dvt.Read(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("merge: reading %s: %w", p, err)
		}
		trees = append(trees, tree)
	}
	logger.Info("merge run starting", "job", jobID, "trees", len(trees))
	prog := newProgress(logger)

	var tui *TUIProgress
	var progress driver.ProgressFunc
	if !o.noProgress && isInteractive(os.Stdout.Fd()) {
		tui = NewTUIProgress()
		go tui.Run() //nolint:errcheck // best-effort terminal view
		progress = tui.Func()
	}

	res, err := driver.RunMerge(ctx, trees, driver.MergeOptions{
		Threads:       o.threads,
		MinProminence: geo.Elevation(o.minProminence),
		Finalize:      o.finalize,
		IsBathymetry:  o.bathymetry,
		Logger:        logger,
		Progress:      progress,
		JobID:         jobID,
	})
	if tui != nil {
		tui.Finish()
	}
	if err != nil {
		return err
	}

	dvtPath := o.outPrefix + ".dvt"
	dvtFile, err := os.Create(dvtPath)
	if err != nil {
		return err
	}
	writeErr := dvt.Write(dvtFile, res.Tree, time.Now())
	dvtFile.Close()
	if writeErr != nil {
		return fmt.Errorf("merge: writing %s: %w", dvtPath, writeErr)
	}

	txtPath := o.outPrefix + ".txt"
	txtFile, err := os.Create(txtPath)
	if err != nil {
		return err
	}
	writeErr = report.WriteProminence(txtFile, res.Tree, res.IslandTree, geo.Elevation(o.minProminence))
	txtFile.Close()
	if writeErr != nil {
		return fmt.Errorf("merge: writing %s: %w", txtPath, writeErr)
	}

	if o.debugDot != "" {
		if err := export.WriteDOT(res.Tree, o.debugDot); err != nil {
			return fmt.Errorf("merge: writing %s: %w", o.debugDot, err)
		}
	}

	prog.done(fmt.Sprintf("merge run complete: %d peaks", len(res.Tree.Peaks())))
	return nil
}
