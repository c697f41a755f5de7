package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trackstitch/internal/storage/sqlite"
)

func newEventsCommand() *cobra.Command {
	var (
		dbPath     string
		sequenceID string
		sequences  bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded stitch events",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			db, err := sqlite.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if sequences {
				seqs, err := db.ListSequences(cmd.Context())
				if err != nil {
					return err
				}
				if len(seqs) == 0 {
					fmt.Fprintln(out, "No sequences recorded")
					return nil
				}
				tw := newTable(table.Row{"Sequence", "Source", "Frames", "Match req", "Created"}, rightAligned(3, 4)...)
				for _, s := range seqs {
					tw.AppendRow(table.Row{
						s.SequenceID,
						s.Source,
						s.FrameCount,
						s.Params.PercentMatchReq,
						time.Unix(0, s.CreatedUnixNanos).UTC().Format(time.RFC3339),
					})
				}
				fmt.Fprintln(out, tw.Render())
				return nil
			}

			events, err := db.ListEvents(cmd.Context(), sequenceID)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No stitch events recorded")
				return nil
			}
			tw := newTable(table.Row{"Sequence", "Frame", "Phase", "Shot start", "Matched", "Matches", "Probes", "Retired"},
				rightAligned(2, 4, 5, 6, 7)...)
			for _, ev := range events {
				tw.AppendRow(table.Row{
					shortID(ev.SequenceID),
					ev.Frame,
					ev.Phase,
					ev.ShotStart,
					ev.MatchedFrame,
					ev.MatchCount,
					len(ev.Probes),
					formatIDs(ev.Retired),
				})
			}
			fmt.Fprintln(out, tw.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database written by run --db")
	cmd.Flags().StringVar(&sequenceID, "sequence", "", "Only show events of this sequence")
	cmd.Flags().BoolVar(&sequences, "sequences", false, "List sequences instead of events")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
