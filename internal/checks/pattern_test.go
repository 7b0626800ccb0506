package checks

import (
	"path/filepath"
	"strings"
	"testing"

	"modtrack/internal/model"
	"modtrack/internal/testutil"
)

const uiRules = `
rules:
  - id: ui_framework
    label: UI framework
    filterable: true
    chart: true
    chart_type: bar
    files: "**/*.swift"
    detect:
      - value: swiftui
        pattern: 'import\s+SwiftUI'
      - value: uikit
        pattern: 'import\s+UIKit'
    default: none
    values:
      swiftui: {label: SwiftUI, color: green}
      uikit: {label: UIKit, color: orange}
      none: {label: None, color: gray}
  - id: owners
    level: module
    table: false
    files: "CODEOWNERS"
    detect:
      - value: team
        pattern: '@'
`

func TestPatternRules(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		".modtrack/rules.yaml":       uiRules,
		"App/Sources/Mixed/A.swift":  "import UIKit\n",
		"App/Sources/Mixed/B.swift":  "import SwiftUI\n",
		"App/Sources/Legacy/C.swift": "import   UIKit\nclass C {}\n",
		"App/Sources/Plain/D.swift":  "struct D {}\n",
		"App/Sources/NoSwift/E.m":    "#import <UIKit/UIKit.h>\n",
		"App/CODEOWNERS":             "* @mobile\n",
	})
	reg := newRegistry(t, root, nil, ".modtrack/rules.yaml")

	tests := []struct {
		target string
		want   string
	}{
		// swiftui is the first detect entry, so it wins even though A.swift
		// sorts first and matches uikit.
		{"Mixed", "swiftui"},
		{"Legacy", "uikit"},
		{"Plain", "none"},
		{"NoSwift", "none"},
	}
	for _, tt := range tests {
		fields := reg.ApplyToTarget(model.Target{Name: tt.target, Path: "Sources/" + tt.target}, "App")
		if got := fields["ui_framework"].Canonical(); got != tt.want {
			t.Errorf("%s: ui_framework = %q, want %q", tt.target, got, tt.want)
		}
	}

	app := reg.ApplyToModule(model.NewEntity("App", "App", "declared"))
	if got := app["owners"].Canonical(); got != "team" {
		t.Errorf("owners = %q, want team", got)
	}
	other := reg.ApplyToModule(model.NewEntity("Other", "Other", "declared"))
	if _, ok := other["owners"]; ok {
		t.Error("a rule without default should omit the field when nothing matches")
	}

	meta := reg.FieldsMetadataDict()
	if m := meta["ui_framework"]; m.Level != model.LevelTarget || !m.ShowInTable || !m.ShowInChart || len(m.Values) != 3 {
		t.Errorf("ui_framework metadata = %+v", m)
	}
	if m := meta["owners"]; m.Level != model.LevelModule || m.ShowInTable {
		t.Errorf("owners metadata = %+v", m)
	}
}

func TestLoadRulesFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"yaml", "rules: [", "failed to parse"},
		{"no id", "rules:\n  - files: '*'\n", "without id"},
		{"no glob", "rules:\n  - id: x\n", "missing files glob"},
		{"bad glob", "rules:\n  - id: x\n    files: '[a'\n", "bad pattern"},
		{"bad regexp", "rules:\n  - id: x\n    files: '*'\n    detect:\n      - {value: a, pattern: '('}\n", "detect entry 1"},
		{"bad level", "rules:\n  - id: x\n    level: repo\n    files: '*'\n", "unknown level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteTree(t, dir, map[string]string{"rules.yaml": tt.content})
			_, err := LoadRulesFile(filepath.Join(dir, "rules.yaml"))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestInvalidRulesFileIsSkipped(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"rules.yaml": "rules: ["})

	reg := newRegistry(t, root, []string{RuleSourceFiles}, "rules.yaml")
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want only the built-in rule", reg.Count())
	}

	missing := newRegistry(t, root, nil, "absent.yaml")
	if missing.Count() != 0 {
		t.Errorf("Count = %d, want 0 for a missing rules file", missing.Count())
	}
}

func TestPatternRuleFlatTarget(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		".modtrack/rules.yaml":   "rules:\n  - id: uses_sql\n    files: '**/*.go'\n    detect:\n      - {value: 'yes', pattern: 'database/sql'}\n    default: 'no'\n",
		"svc/store/store.go":     "package store\n",
		"svc/store/sqlite/db.go": "package sqlite\n\nimport \"database/sql\"\n",
	})
	reg := newRegistry(t, root, nil, ".modtrack/rules.yaml")

	flat := reg.ApplyToTarget(model.Target{Name: "store", Path: "store", Flat: true}, "svc")
	if got := flat["uses_sql"].Canonical(); got != "no" {
		t.Errorf("flat store: uses_sql = %q, want no", got)
	}
	tree := reg.ApplyToTarget(model.Target{Name: "store", Path: "store"}, "svc")
	if got := tree["uses_sql"].Canonical(); got != "yes" {
		t.Errorf("store tree: uses_sql = %q, want yes", got)
	}
}

func TestNewPatternRuleRejectsInvalidRule(t *testing.T) {
	fs := &files{root: t.TempDir()}
	bad := PatternRule{ID: "x", Files: "*", Detect: []DetectEntry{{Value: "a", Pattern: "("}}}
	if _, err := newPatternRule(fs, bad); err == nil || !strings.Contains(err.Error(), "detect entry 1") {
		t.Errorf("err = %v, want detect entry error", err)
	}

	ok := PatternRule{ID: "x", Files: "*", Detect: []DetectEntry{{Value: "a", Pattern: "a+"}}}
	p, err := newPatternRule(fs, ok)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.detects) != 1 {
		t.Errorf("detects = %d, want 1", len(p.detects))
	}
}
