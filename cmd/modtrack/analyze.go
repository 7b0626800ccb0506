package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"modtrack/internal/analysis"
	trackerrors "modtrack/internal/errors"
	"modtrack/internal/export"
	"modtrack/internal/history"
)

var (
	analyzeOutput         string
	analyzeHistoryBackend string
	analyzeNoHistory      bool
	analyzeFormat         string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [root]",
	Short: "Scan, measure and export the repository's modules",
	Long: `Run the full pipeline: discover modules with the enabled scanners, apply every
registered rule, record a history snapshot when the metrics changed, then write the
JSON report and the HTML dashboard.

Examples:
  modtrack analyze
  modtrack analyze ~/src/app --output build/modules
  modtrack analyze --history-backend sqlite
  modtrack analyze --no-history --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output directory (default from config: .modtrack/output)")
	analyzeCmd.Flags().StringVar(&analyzeHistoryBackend, "history-backend", "", "History store: json or sqlite (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false, "Do not record or load history")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(analyzeCmd)
}

// AnalyzeResponseCLI is the result of one analyze run.
type AnalyzeResponseCLI struct {
	RunID            string         `json:"run_id"`
	Root             string         `json:"root"`
	GeneratedAt      string         `json:"generated_at"`
	ModulesCount     int            `json:"modules_count"`
	ModularizedCount int            `json:"modularized_count"`
	LegacyCount      int            `json:"legacy_count"`
	TotalTargets     int            `json:"total_targets"`
	Duplicates       []string       `json:"duplicates"`
	HistoryRecorded  bool           `json:"history_recorded"`
	HistoryLength    int            `json:"history_length"`
	JSONPath         string         `json:"json_path,omitempty"`
	HTMLPath         string         `json:"html_path,omitempty"`
	ArchivePath      string         `json:"archive_path,omitempty"`
	Summary          export.Summary `json:"summary"`
	Errors           []string       `json:"errors,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(rootArg(args))
	if err != nil {
		return err
	}
	defer a.Close()

	resp, runErr := a.analyze(time.Now().UTC(), analyzeOptions{
		output:         analyzeOutput,
		historyBackend: analyzeHistoryBackend,
		noHistory:      analyzeNoHistory,
	})

	out, err := FormatResponse(resp, OutputFormat(analyzeFormat))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return runErr
}

type analyzeOptions struct {
	output         string
	historyBackend string
	noHistory      bool
}

// analyze runs one pass of the pipeline. Export failures abort only the
// export step; a recorded snapshot is kept.
func (a *app) analyze(now time.Time, opts analyzeOptions) (*AnalyzeResponseCLI, error) {
	runID := uuid.New().String()
	logger := a.logger.With("run", runID)

	entities := a.scanners.ScanAll(a.root)
	logger.Info("Scanned repository", "root", a.root, "entities", len(entities), "scanners", a.scanners.Count())

	records := analysis.NewEngine(a.rules, logger).AnalyzeAll(entities)
	duplicates := analysis.DuplicateKeys(records)
	for _, key := range duplicates {
		logger.Warn("Duplicate module identity", "key", key)
	}

	resp := &AnalyzeResponseCLI{
		RunID:       runID,
		Root:        a.root,
		GeneratedAt: now.Format(time.RFC3339),
		Duplicates:  duplicates,
	}
	if resp.Duplicates == nil {
		resp.Duplicates = []string{}
	}

	var errs []error
	clock := history.WithClock(func() time.Time { return now })
	hist := &history.History{Snapshots: []history.Snapshot{}}
	if !opts.noHistory {
		store, err := a.historyStore(opts.historyBackend, opts.output)
		if err != nil {
			errs = append(errs, err)
		} else {
			manager := history.NewManager(store, a.rules.AllFieldsMetadata(), logger,
				history.WithLimit(a.cfg.History.Limit), clock)
			recorded, err := manager.RecordSnapshot(records)
			if err != nil {
				logger.Error("Failed to record history", "error", err.Error())
				errs = append(errs, err)
			}
			resp.HistoryRecorded = recorded
			hist = manager.Load()
		}
	}
	resp.HistoryLength = len(hist.Snapshots)

	resp.ModulesCount = len(records)
	for _, r := range records {
		if r.IsModularized {
			resp.ModularizedCount++
			resp.TotalTargets += len(r.Targets)
		} else {
			resp.LegacyCount++
		}
	}

	bundle := export.NewBundle(records, a.rules.FieldsMetadataDict(), now)
	resp.Summary = export.Summarize(bundle)

	if err := a.writeReports(bundle, hist, a.outputDir(opts.output), runID, resp); err != nil {
		logger.Error("Export failed", "error", err.Error())
		errs = append(errs, err)
	}

	for _, err := range errs {
		resp.Errors = append(resp.Errors, err.Error())
	}
	return resp, errors.Join(errs...)
}

func (a *app) writeReports(bundle export.Bundle, hist *history.History, outDir, runID string, resp *AnalyzeResponseCLI) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return trackerrors.New(trackerrors.OutputUnwritable, "cannot create output directory "+outDir, err)
	}
	exporter := export.NewExporter(a.logger)

	jsonPath := filepath.Join(outDir, a.cfg.Output.JSONFile)
	if err := exporter.WriteJSON(bundle, jsonPath); err != nil {
		return err
	}
	resp.JSONPath = jsonPath

	htmlPath := filepath.Join(outDir, a.cfg.Output.HTMLFile)
	if err := exporter.WriteHTML(bundle, hist, htmlPath); err != nil {
		return err
	}
	resp.HTMLPath = htmlPath

	if a.cfg.Output.Archive {
		archivePath, err := exporter.Archive(bundle, filepath.Join(outDir, "archive"), runID)
		if err != nil {
			return err
		}
		resp.ArchivePath = archivePath
	}
	return nil
}
