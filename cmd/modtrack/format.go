package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"modtrack/internal/export"
	"modtrack/internal/history"
	"modtrack/internal/jsonutil"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	titleColor  = color.New(color.FgYellow).SprintFunc()
	goodColor   = color.New(color.FgGreen).SprintFunc()
	badColor    = color.New(color.FgRed).SprintFunc()
	mutedColor  = color.New(color.FgHiBlack).SprintFunc()
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON renders sorted-key, indented JSON with a trailing newline
func formatJSON(resp interface{}) (string, error) {
	data, err := jsonutil.Sorted(resp, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *AnalyzeResponseCLI:
		return formatAnalyzeHuman(v), nil
	case *FieldsResponseCLI:
		return formatFieldsHuman(v), nil
	case *ScannersResponseCLI:
		return formatScannersHuman(v), nil
	case *HistoryResponseCLI:
		return formatHistoryHuman(v), nil
	case *ArchiveResponseCLI:
		return formatArchiveHuman(v), nil
	default:
		return formatJSON(resp)
	}
}

func formatAnalyzeHuman(resp *AnalyzeResponseCLI) string {
	var b strings.Builder

	b.WriteString(headerColor("modtrack analyze") + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Root:    %s\n", resp.Root)
	fmt.Fprintf(&b, "Run:     %s\n", mutedColor(resp.RunID))
	fmt.Fprintf(&b, "Date:    %s\n\n", resp.GeneratedAt)

	fmt.Fprintf(&b, "%s\n", titleColor("Modules:"))
	fmt.Fprintf(&b, "  Total:       %d\n", resp.ModulesCount)
	fmt.Fprintf(&b, "  Modularized: %s (%s)\n", goodColor(resp.ModularizedCount), percent(resp.ModularizedCount, resp.ModulesCount))
	fmt.Fprintf(&b, "  Legacy:      %s\n", legacyCount(resp.LegacyCount))
	fmt.Fprintf(&b, "  Targets:     %d\n\n", resp.TotalTargets)

	writeSummary(&b, resp.Summary)

	if len(resp.Duplicates) > 0 {
		fmt.Fprintf(&b, "%s\n", titleColor("Duplicate identities:"))
		for _, key := range resp.Duplicates {
			fmt.Fprintf(&b, "  %s %s\n", badColor("!"), key)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\n", titleColor("History:"))
	switch {
	case resp.HistoryRecorded:
		fmt.Fprintf(&b, "  %s snapshot recorded (%d stored)\n", goodColor("✓"), resp.HistoryLength)
	case resp.HistoryLength > 0:
		fmt.Fprintf(&b, "  %s no changes since last snapshot (%d stored)\n", mutedColor("○"), resp.HistoryLength)
	default:
		fmt.Fprintf(&b, "  %s\n", mutedColor("disabled or empty"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s\n", titleColor("Output:"))
	for _, p := range []string{resp.JSONPath, resp.HTMLPath, resp.ArchivePath} {
		if p != "" {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	for _, e := range resp.Errors {
		fmt.Fprintf(&b, "  %s %s\n", badColor("✗"), e)
	}
	return b.String()
}

func legacyCount(n int) string {
	if n == 0 {
		return goodColor(n)
	}
	return badColor(n)
}

func percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(n)*100/float64(total))
}

func writeSummary(b *strings.Builder, s export.Summary) {
	if len(s.Sources) > 0 {
		fmt.Fprintf(b, "%s\n", titleColor("Sources:"))
		for _, src := range s.Sources {
			fmt.Fprintf(b, "  %-10s %4d modules, %4d modularized, %5d targets\n",
				src.Source, src.Modules, src.Modularized, src.Targets)
		}
		b.WriteString("\n")
	}

	for _, f := range s.Fields {
		if len(f.Values) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s %s\n", titleColor(f.Label+":"), mutedColor("("+string(f.Level)+")"))
		for _, v := range f.Values {
			label := v.Label
			if label == "" {
				label = v.Token
			}
			fmt.Fprintf(b, "  %-20s %d\n", label, v.Count)
		}
		b.WriteString("\n")
	}
}

func formatFieldsHuman(resp *FieldsResponseCLI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", headerColor(fmt.Sprintf("Fields (%d)", len(resp.Fields))))

	for _, f := range resp.Fields {
		fmt.Fprintf(&b, "%s %s %s\n", titleColor(f.ID), f.Label, mutedColor("["+string(f.Level)+"]"))
		if f.Description != "" {
			fmt.Fprintf(&b, "  %s\n", f.Description)
		}

		var flags []string
		for _, fl := range []struct {
			on   bool
			name string
		}{
			{f.IsFilterable, "filterable"},
			{f.ShowInTable, "table"},
			{f.ShowInChart, "chart"},
			{f.ShowInComparison, "comparison"},
			{f.InvertedComparison, "inverted"},
		} {
			if fl.on {
				flags = append(flags, fl.name)
			}
		}
		if len(flags) > 0 {
			fmt.Fprintf(&b, "  flags:  %s\n", strings.Join(flags, ", "))
		}

		if len(f.Values) > 0 {
			tokens := make([]string, 0, len(f.Values))
			for token := range f.Values {
				tokens = append(tokens, token)
			}
			sort.Strings(tokens)
			fmt.Fprintf(&b, "  values: %s\n", strings.Join(tokens, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatScannersHuman(resp *ScannersResponseCLI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", headerColor("modtrack pipeline"))
	fmt.Fprintf(&b, "Root: %s\n\n", resp.Root)

	fmt.Fprintf(&b, "%s\n", titleColor(fmt.Sprintf("Scanners (%d):", len(resp.Scanners))))
	for i, name := range resp.Scanners {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, name)
	}
	if len(resp.Scanners) == 0 {
		fmt.Fprintf(&b, "  %s\n", mutedColor("none"))
	}

	fmt.Fprintf(&b, "\n%s\n", titleColor(fmt.Sprintf("Rules (%d):", resp.RuleCount)))
	fmt.Fprintf(&b, "  fields: %s\n", strings.Join(resp.Fields, ", "))
	return b.String()
}

func formatHistoryHuman(resp *HistoryResponseCLI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", headerColor(fmt.Sprintf("History (%d snapshots)", resp.Total)))

	if resp.Total == 0 {
		fmt.Fprintf(&b, "  %s\n", mutedColor("No snapshots recorded yet. Run: modtrack analyze"))
	}
	for _, s := range resp.Snapshots {
		fmt.Fprintf(&b, "  %s  modules %4d  modularized %4d  legacy %4d  targets %5d\n",
			s.Date, s.ModulesCount, s.ModularizedCount, s.LegacyCount, s.TotalTargets)
	}

	if c := resp.Comparison; c != nil {
		fmt.Fprintf(&b, "\n%s %s → %s\n", titleColor("Comparison:"), c.From, c.To)
		changed := c.Changed()
		if len(changed) == 0 {
			fmt.Fprintf(&b, "  %s\n", mutedColor("no changes"))
		}
		for _, d := range changed {
			mark := goodColor("▲")
			if d.Direction == history.Regressed {
				mark = badColor("▼")
			}
			fmt.Fprintf(&b, "  %s %-32s %d → %d (%+d)\n", mark, d.Label, d.Before, d.After, d.Change)
		}
	}

	if t := resp.Trend; t != nil {
		fmt.Fprintf(&b, "\n%s %s\n", titleColor("Trend:"), t.Key)
		if t.DataPoints == 0 {
			fmt.Fprintf(&b, "  %s\n", mutedColor("no data for this key"))
		} else {
			fmt.Fprintf(&b, "  direction:  %s\n", t.Direction)
			fmt.Fprintf(&b, "  velocity:   %+.2f per day\n", t.Velocity)
			fmt.Fprintf(&b, "  in 30 days: %.1f\n", t.Projection30d)
			fmt.Fprintf(&b, "  points:     %d\n", t.DataPoints)
		}
	}
	return b.String()
}

func formatArchiveHuman(resp *ArchiveResponseCLI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", headerColor("Archived report"))
	fmt.Fprintf(&b, "File:    %s\n", resp.Path)
	fmt.Fprintf(&b, "Date:    %s\n", resp.GeneratedAt)
	fmt.Fprintf(&b, "Rules:   %s\n", resp.RulesVersion)
	fmt.Fprintf(&b, "Modules: %d\n\n", resp.ModulesCount)
	writeSummary(&b, resp.Summary)
	return b.String()
}
