package modules

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"modtrack/internal/model"
	"modtrack/internal/slogutil"
	"modtrack/internal/testutil"
)

func TestLegacyScanner(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"App/Legacy/Onboarding/View.m":      "",
		"App/Legacy/Profile/":               "",
		"App/Legacy/.cache/":                "",
		"App/Legacy/Migrated/Package.swift": `let package = Package(name: "Migrated")`,
		"App/Legacy/notes.txt":              "",
		"Old/Search/":                       "",
	})

	s := NewLegacyScanner([]string{"App/Legacy", "Old", "Missing"}, newTestLister(t), slogutil.NewDiscardLogger())
	got := s.Scan(root)

	want := []model.Entity{
		model.NewEntity("Onboarding", "App/Legacy/Onboarding", SourceLegacy),
		model.NewEntity("Profile", "App/Legacy/Profile", SourceLegacy),
		model.NewEntity("Search", "Old/Search", SourceLegacy),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan (-want +got):\n%s", diff)
	}
	for _, e := range got {
		if e.IsModularized() {
			t.Errorf("%s should not be modularized", e.Name)
		}
	}
}

func TestLegacyScannerNoRoots(t *testing.T) {
	s := NewLegacyScanner(nil, newTestLister(t), slogutil.NewDiscardLogger())
	if got := s.Scan(t.TempDir()); len(got) != 0 {
		t.Errorf("Scan = %v, want empty", got)
	}
}
