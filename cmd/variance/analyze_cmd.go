package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/M4dhxv/Financial-Analysis/internal/artifact"
	"github.com/M4dhxv/Financial-Analysis/internal/core"
	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/store"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		outDir    string
		workers   int
		topMovers int
		asJSON    bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run the full analysis and write its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := opts.loadThresholds()
			if err != nil {
				return err
			}
			tbl, err := dataset.Open(args[0], opts.sheet)
			if err != nil {
				return err
			}

			runTimeout := timeout
			if runTimeout <= 0 {
				runTimeout = -1
			}
			svc := core.NewService(store.NewMemory(1), core.ServiceOptions{
				Pipeline:      core.PipelineOptions{Thresholds: th, Workers: workers},
				MaxConcurrent: 1,
				RunTimeout:    runTimeout,
				TopMovers:     topMovers,
			}, nil)

			run, err := svc.Analyze(cmd.Context(), tbl)
			if err != nil {
				return describe(err)
			}

			paths, err := artifact.Write(outDir, run)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return artifact.WriteJSON(out, artifact.AnalysisDocument{
					AnalysisSummary: run.Analysis,
					RunID:           run.ID.String(),
					Quality:         run.Quality,
				})
			}
			return printRun(out, run, paths)
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "output", "Directory for the generated artifacts")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent metric workers in the variance engine")
	cmd.Flags().IntVar(&topMovers, "top", 10, "Number of top movers to report")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis summary as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the analysis after this long (0 means no limit)")

	return cmd
}

// describe attaches the support code and guidance to known failures.
func describe(err error) error {
	if errors.Is(err, context.Canceled) || !core.IsUserFacing(err) {
		return err
	}
	msg := core.MapError(err)
	return fmt.Errorf("%w\n%s (Code: %s). %s", err, msg.Message, msg.Code, msg.Action)
}

func printRun(w io.Writer, run *core.Run, paths []string) error {
	m := run.Analysis.Schema
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", run.ID)
	fmt.Fprintf(tw, "Input:\t%s (%d rows, %d columns)\n", run.Source, run.Rows, run.Columns)
	fmt.Fprintf(tw, "Time column:\t%s (%s)\n", m.TimeColumn, m.TimeGranularity)
	fmt.Fprintf(tw, "Entities:\t%s\n", joinOrNone(m.EntityColumns))
	fmt.Fprintf(tw, "Measures:\t%s\n", joinOrNone(m.MeasureColumns))
	fmt.Fprintf(tw, "Decomposable:\t%s\n", joinOrNone(run.Analysis.Metrics.Decomposable))
	fmt.Fprintf(tw, "Latest period:\t%s\n", run.Summary.LatestPeriod)
	fmt.Fprintf(tw, "Variance records:\t%d\n", run.Summary.TotalRecords)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(run.Summary.TopMovers) > 0 {
		fmt.Fprintln(w, "\nTop movers:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ENTITY\tMETRIC\tABS DELTA\tPCT DELTA")
		for _, mv := range run.Summary.TopMovers {
			fmt.Fprintf(tw, "%s\t%s\t%g\t%s\n", mv.Entity, mv.Metric, mv.AbsDelta, mv.PctDelta)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "\nArtifacts:")
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
