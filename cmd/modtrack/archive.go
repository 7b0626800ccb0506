package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modtrack/internal/export"
)

var archiveFormat string

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect archived reports",
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <file.json.zst>",
	Short: "Summarize an archived report",
	Long: `Decode a report archived by "modtrack analyze" with output.archive enabled and
print its per-source counts and field distributions.

Examples:
  modtrack archive show .modtrack/output/archive/5f0c...json.zst
  modtrack archive show old.json.zst --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runArchiveShow,
}

func init() {
	archiveShowCmd.Flags().StringVar(&archiveFormat, "format", "human", "Output format (human, json)")
	archiveCmd.AddCommand(archiveShowCmd)
	rootCmd.AddCommand(archiveCmd)
}

// ArchiveResponseCLI summarizes an archived bundle.
type ArchiveResponseCLI struct {
	Path         string         `json:"path"`
	GeneratedAt  string         `json:"generated_at"`
	RulesVersion string         `json:"rules_version"`
	ModulesCount int            `json:"modules_count"`
	Summary      export.Summary `json:"summary"`
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	bundle, err := export.ReadArchive(args[0])
	if err != nil {
		return fmt.Errorf("cannot read archive: %w", err)
	}

	resp := &ArchiveResponseCLI{
		Path:         args[0],
		GeneratedAt:  bundle.GeneratedAt,
		RulesVersion: bundle.RulesVersion,
		ModulesCount: bundle.ModulesCount,
		Summary:      export.Summarize(bundle),
	}
	out, err := FormatResponse(resp, OutputFormat(archiveFormat))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
