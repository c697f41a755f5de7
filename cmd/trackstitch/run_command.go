package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trackstitch/internal/replay"
	"github.com/banshee-data/trackstitch/internal/report"
	"github.com/banshee-data/trackstitch/internal/stitch"
	"github.com/banshee-data/trackstitch/internal/storage/sqlite"
)

func newRunCommand(opts *cliOptions) *cobra.Command {
	var (
		inputPath  string
		dbPath     string
		reportPath string
		plotPath   string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a fixture through the stitcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.SearchWorkers = &workers
			}

			stitcher, err := stitch.NewStitcher(cfg)
			if err != nil {
				return err
			}
			fx, err := replay.LoadFixture(inputPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var sink replay.Sink
			var sequenceID string
			if dbPath != "" {
				db, err := sqlite.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()

				seq := &sqlite.Sequence{
					Source:     inputPath,
					FrameCount: int64(len(fx.Frames)),
					Params:     stitcher.Params(),
				}
				if err := db.InsertSequence(ctx, seq); err != nil {
					return err
				}
				sequenceID = seq.SequenceID
				sink = &sqlite.EventRecorder{DB: db, SequenceID: sequenceID}
			}

			sum, err := replay.Run(ctx, fx, stitcher, sink)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sequence: %s (%d frames)\n", sum.Name, sum.Frames)
			if sequenceID != "" {
				fmt.Fprintf(out, "Sequence ID: %s\n", sequenceID)
			}
			fmt.Fprintf(out, "Search attempts: %d, stitches: %d, live tracks: %d\n",
				sum.Attempts, len(sum.Stitches), sum.Result.Size())

			if len(sum.Stitches) > 0 {
				tw := newTable(table.Row{"Frame", "Shot start", "Matched", "Matches", "Merged"}, rightAligned(1, 2, 3, 4, 5)...)
				for _, o := range sum.Stitches {
					tw.AppendRow(table.Row{o.Frame, o.ShotStart, o.MatchedFrame, o.MatchCount, len(o.Retired)})
				}
				fmt.Fprintln(out, tw.Render())
			}

			if reportPath != "" {
				if err := writeHTMLReport(reportPath, sum, stitcher.Params()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote report to %s\n", reportPath)
			}
			if plotPath != "" {
				if err := report.SavePNG(plotPath, sum, stitcher.Params()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote plot to %s\n", plotPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Fixture file with per-frame observations (JSON)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for stitch events")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write an HTML continuity report")
	cmd.Flags().StringVar(&plotPath, "plot", "", "Write a PNG continuity plot")
	cmd.Flags().IntVar(&workers, "workers", 1, "Candidate frames matched concurrently (overrides search_workers)")
	return cmd
}

func writeHTMLReport(path string, sum *replay.Summary, p stitch.Params) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteHTML(f, sum, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
