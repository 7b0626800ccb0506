package testutil

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// updateGolden rewrites golden files instead of comparing against them.
// Use: go test ./internal/export -run Golden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// CompareGolden compares got against testdata/golden/<name>, failing with a
// line diff on mismatch. With -update the golden file is rewritten instead.
func CompareGolden(t *testing.T, name string, got []byte) {
	t.Helper()

	goldenPath := TestdataPath(t, filepath.Join("golden", name))

	if *updateGolden {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("Failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, got, 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create it", goldenPath, got)
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	// Checkouts with autocrlf must not fail the comparison.
	expected = bytes.ReplaceAll(expected, []byte("\r\n"), []byte("\n"))
	if !bytes.Equal(got, expected) {
		diff := cmp.Diff(strings.Split(string(expected), "\n"), strings.Split(string(got), "\n"))
		t.Fatalf("Golden mismatch for %s (-want +got):\n%s\nRun with -update to refresh", name, diff)
	}
}
