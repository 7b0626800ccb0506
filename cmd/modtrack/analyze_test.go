package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"modtrack/internal/config"
	trackerrors "modtrack/internal/errors"
	"modtrack/internal/export"
	"modtrack/internal/testutil"
)

func newTestApp(t *testing.T, root string) *app {
	t.Helper()
	quiet = true
	t.Cleanup(func() { quiet = false })

	a, err := newApp(root)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func readJSON(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

var swiftRepo = map[string]string{
	"Packages/Core/Package.swift":               `let package = Package(name: "Core")`,
	"Packages/Core/README.md":                   "# Core",
	"Packages/Core/Sources/CoreImpl/Core.swift": "struct Core {}",
	"App/Legacy/Home/HomeViewController.m":      "",
	".modtrack/config.json":                     `{"scanners": {"legacyRoots": ["App/Legacy"]}}`,
}

func TestAnalyzeEndToEnd(t *testing.T) {
	root := testutil.NewRepo(t, swiftRepo)
	a := newTestApp(t, root)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	resp, err := a.analyze(now, analyzeOptions{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if resp.ModulesCount != 2 || resp.ModularizedCount != 1 || resp.LegacyCount != 1 || resp.TotalTargets != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 2/1/1/1",
			resp.ModulesCount, resp.ModularizedCount, resp.LegacyCount, resp.TotalTargets)
	}
	if !resp.HistoryRecorded || resp.HistoryLength != 1 {
		t.Errorf("history recorded=%v length=%d", resp.HistoryRecorded, resp.HistoryLength)
	}
	if resp.RunID == "" {
		t.Error("RunID should be set")
	}

	report := readJSON(t, resp.JSONPath)
	if got := gjson.Get(report, "modules_count").Int(); got != 2 {
		t.Errorf("modules_count = %d", got)
	}
	if got := gjson.Get(report, `modules.#(name=="Core").targets.0.custom_fields.language`).String(); got != "swift" {
		t.Errorf("Core language = %q, want swift", got)
	}
	if got := gjson.Get(report, `modules.#(name=="Core").custom_fields.has_readme`).Bool(); !got {
		t.Error("Core should have a README")
	}
	if got := gjson.Get(report, `modules.#(name=="Home").source`).String(); got != "legacy" {
		t.Errorf("Home source = %q", got)
	}
	if !gjson.Get(report, "fields_meta.language.show_in_chart").Bool() {
		t.Error("fields_meta should carry the language metadata")
	}

	hist := readJSON(t, a.cfg.History.StorePath(config.BackendJSON, a.cfg.OutputDir(root)))
	if got := gjson.Get(hist, "snapshots.0.custom_metrics.language_swift_count").Int(); got != 1 {
		t.Errorf("language_swift_count = %d, want 1", got)
	}
	if got := gjson.Get(hist, "snapshots.0.date").String(); got != "2026-03-01T12:00:00Z" {
		t.Errorf("date = %q", got)
	}

	html := readJSON(t, resp.HTMLPath)
	if !strings.Contains(html, `"modules_count":2`) {
		t.Error("dashboard should embed the compact report")
	}

	again, err := a.analyze(now.Add(time.Hour), analyzeOptions{})
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if again.HistoryRecorded || again.HistoryLength != 1 {
		t.Errorf("unchanged repo: recorded=%v length=%d, want false and 1", again.HistoryRecorded, again.HistoryLength)
	}
}

func TestAnalyzeSQLiteAndArchive(t *testing.T) {
	root := testutil.NewRepo(t, swiftRepo)
	a := newTestApp(t, root)
	a.cfg.Output.Archive = true

	out := filepath.Join(t.TempDir(), "reports")
	resp, err := a.analyze(time.Now().UTC(), analyzeOptions{output: out, historyBackend: "sqlite"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if filepath.Dir(resp.JSONPath) != out {
		t.Errorf("JSONPath = %q, want under %q", resp.JSONPath, out)
	}
	if _, err := os.Stat(filepath.Join(out, "history.db")); err != nil {
		t.Errorf("sqlite history should live next to the reports: %v", err)
	}

	bundle, err := export.ReadArchive(resp.ArchivePath)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if bundle.ModulesCount != 2 {
		t.Errorf("archived ModulesCount = %d", bundle.ModulesCount)
	}
	if !strings.HasSuffix(resp.ArchivePath, resp.RunID+".json.zst") {
		t.Errorf("ArchivePath = %q, want named after run %s", resp.ArchivePath, resp.RunID)
	}
}

func TestAnalyzeNoHistory(t *testing.T) {
	root := testutil.NewRepo(t, swiftRepo)
	a := newTestApp(t, root)

	resp, err := a.analyze(time.Now().UTC(), analyzeOptions{noHistory: true})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if resp.HistoryRecorded || resp.HistoryLength != 0 {
		t.Errorf("no-history run touched history: %+v", resp)
	}
	if _, err := os.Stat(a.cfg.History.StorePath(config.BackendJSON, a.cfg.OutputDir(root))); !os.IsNotExist(err) {
		t.Errorf("history file should not exist, stat err = %v", err)
	}
}

func TestAnalyzeEmptyRepo(t *testing.T) {
	a := newTestApp(t, t.TempDir())

	resp, err := a.analyze(time.Now().UTC(), analyzeOptions{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if resp.ModulesCount != 0 || len(resp.Duplicates) != 0 {
		t.Errorf("empty repo = %+v", resp)
	}
	report := readJSON(t, resp.JSONPath)
	if !gjson.Get(report, "modules").IsArray() || len(gjson.Get(report, "modules").Array()) != 0 {
		t.Errorf("modules should be an empty array: %s", report)
	}
}

func TestAnalyzeUnwritableOutput(t *testing.T) {
	root := testutil.NewRepo(t, swiftRepo)
	a := newTestApp(t, root)

	// A directory where the report file should go makes the rename fail.
	if err := os.MkdirAll(filepath.Join(a.cfg.OutputDir(root), a.cfg.Output.JSONFile), 0755); err != nil {
		t.Fatal(err)
	}

	resp, err := a.analyze(time.Now().UTC(), analyzeOptions{})
	if err == nil {
		t.Fatal("analyze should fail when the report cannot be written")
	}
	if !trackerrors.Is(err, trackerrors.OutputUnwritable) {
		t.Errorf("err = %v, want OUTPUT_UNWRITABLE", err)
	}
	if !resp.HistoryRecorded {
		t.Error("history is recorded before export and is not rolled back")
	}
	if len(resp.Errors) != 1 || resp.HTMLPath != "" {
		t.Errorf("export should stop at the failing step: errors=%v html=%q", resp.Errors, resp.HTMLPath)
	}
}

func TestHistoryResponse(t *testing.T) {
	root := testutil.NewRepo(t, swiftRepo)
	a := newTestApp(t, root)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := a.analyze(start, analyzeOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "App/Legacy/Settings"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := a.analyze(start.Add(48*time.Hour), analyzeOptions{}); err != nil {
		t.Fatal(err)
	}

	store, err := a.historyStore("", "")
	if err != nil {
		t.Fatal(err)
	}
	h, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}

	resp := buildHistoryResponse(h, a.rules.AllFieldsMetadata(), historyOptions{compare: true, trend: "legacy_count", last: 1})
	if resp.Total != 2 || len(resp.Snapshots) != 1 {
		t.Fatalf("Total=%d listed=%d, want 2 and 1", resp.Total, len(resp.Snapshots))
	}
	if resp.Comparison == nil {
		t.Fatal("comparison missing")
	}
	var legacy bool
	for _, d := range resp.Comparison.Changed() {
		if d.Key == "legacy_count" {
			legacy = true
			if d.Change != 1 || d.Direction != "regressed" {
				t.Errorf("legacy delta = %+v", d)
			}
		}
	}
	if !legacy {
		t.Error("legacy_count should have changed")
	}
	if resp.Trend == nil || resp.Trend.DataPoints != 2 || resp.Trend.Direction != "increasing" {
		t.Errorf("Trend = %+v", resp.Trend)
	}
}
