package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modtrack/internal/history"
	"modtrack/internal/model"
)

var (
	historyFormat  string
	historyBackend string
	historyCompare bool
	historyTrend   string
	historyLast    int
)

var historyCmd = &cobra.Command{
	Use:   "history [root]",
	Short: "Show recorded snapshots, comparisons and trends",
	Long: `Show the stored history snapshots.

With --compare, print the deltas between the last two snapshots for the built-in
counters and every field shown in comparisons. With --trend, fit a linear trend
through one metric key.

Examples:
  modtrack history
  modtrack history --last 5
  modtrack history --compare
  modtrack history --trend legacy_count
  modtrack history --trend language_swift_count --history-backend sqlite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (human, json)")
	historyCmd.Flags().StringVar(&historyBackend, "history-backend", "", "History store: json or sqlite (default from config)")
	historyCmd.Flags().BoolVar(&historyCompare, "compare", false, "Compare the last two snapshots")
	historyCmd.Flags().StringVar(&historyTrend, "trend", "", "Metric key to compute a trend for")
	historyCmd.Flags().IntVar(&historyLast, "last", 10, "Number of most recent snapshots to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

// HistoryResponseCLI is the history view.
type HistoryResponseCLI struct {
	Total      int                 `json:"total"`
	Snapshots  []history.Snapshot  `json:"snapshots"`
	Comparison *history.Comparison `json:"comparison,omitempty"`
	Trend      *history.Trend      `json:"trend,omitempty"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(rootArg(args))
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.historyStore(historyBackend, "")
	if err != nil {
		return err
	}
	manager := history.NewManager(store, a.rules.AllFieldsMetadata(), a.logger)
	resp := buildHistoryResponse(manager.Load(), a.rules.AllFieldsMetadata(), historyOptions{
		compare: historyCompare,
		trend:   historyTrend,
		last:    historyLast,
	})

	out, err := FormatResponse(resp, OutputFormat(historyFormat))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

type historyOptions struct {
	compare bool
	trend   string
	last    int
}

// buildHistoryResponse lists the most recent snapshots, oldest first, and adds
// the requested comparison and trend. The trend always uses every snapshot.
func buildHistoryResponse(h *history.History, fields []model.FieldMetadata, opts historyOptions) *HistoryResponseCLI {
	snapshots := h.Snapshots
	resp := &HistoryResponseCLI{Total: len(snapshots), Snapshots: snapshots}
	if opts.last > 0 && len(snapshots) > opts.last {
		resp.Snapshots = snapshots[len(snapshots)-opts.last:]
	}

	if opts.compare && len(snapshots) >= 2 {
		c := history.Compare(snapshots[len(snapshots)-2], snapshots[len(snapshots)-1], fields)
		resp.Comparison = &c
	}
	if opts.trend != "" {
		t := history.CalculateTrend(snapshots, opts.trend)
		resp.Trend = &t
	}
	return resp
}
