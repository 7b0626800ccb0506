package walk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Sources/App/main.swift",
		"Sources/App/View.swift",
		"README.md",
		".git/HEAD",
		"node_modules/pkg/index.js",
		"Sources/.hidden/secret.swift",
	)

	l, err := NewLister(8, DefaultIgnore)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"README.md", "Sources/App/View.swift", "Sources/App/main.swift"}
	if diff := cmp.Diff(want, l.Files(root)); diff != "" {
		t.Errorf("Files (-want +got):\n%s", diff)
	}

	// cached: new files are not seen until the cache is rebuilt
	writeTree(t, root, "later.txt")
	if diff := cmp.Diff(want, l.Files(root+string(filepath.Separator))); diff != "" {
		t.Errorf("cached Files (-want +got):\n%s", diff)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestFilesMissingDir(t *testing.T) {
	l, _ := NewLister(0, nil)
	if got := l.Files(filepath.Join(t.TempDir(), "missing")); len(got) != 0 {
		t.Errorf("Files(missing) = %v", got)
	}
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a/b/c.swift", "a/d.m", "a/d.h", "e.swift")

	l, _ := NewLister(8, nil)
	tests := []struct {
		pattern string
		want    []string
	}{
		{"**/*.swift", []string{"a/b/c.swift", "e.swift"}},
		{"*.swift", []string{"e.swift"}},
		{"a/*.{h,m}", []string{"a/d.h", "a/d.m"}},
		{"nothing/**", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := l.Glob(root, tt.pattern)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Glob(%q) (-want +got):\n%s", tt.pattern, diff)
			}
		})
	}

	if err := ValidatePattern("src/[unclosed"); err == nil {
		t.Error("expected error for malformed pattern")
	}
	if err := ValidatePattern("**/*.go"); err != nil {
		t.Errorf("ValidatePattern: %v", err)
	}
}

func TestSkipDir(t *testing.T) {
	l, _ := NewLister(1, []string{"vendor"})
	for name, want := range map[string]bool{"vendor": true, ".git": true, "src": false} {
		if got := l.SkipDir(name); got != want {
			t.Errorf("SkipDir(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFilesStopsAtBoundaries(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"go.mod",
		"main.go",
		"a/a.go",
		"a/b/b.go",
		"tools/go.mod",
		"tools/gen.go",
	)

	l, err := NewLister(8, nil, WithBoundaries("go.mod", "package.json"))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a/a.go", "a/b/b.go", "go.mod", "main.go"}
	if diff := cmp.Diff(want, l.Files(root)); diff != "" {
		t.Errorf("Files (-want +got):\n%s", diff)
	}

	// the nested module is still listed when asked for directly
	want = []string{"gen.go", "go.mod"}
	if diff := cmp.Diff(want, l.Files(filepath.Join(root, "tools"))); diff != "" {
		t.Errorf("Files(tools) (-want +got):\n%s", diff)
	}
}

func TestDirFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "main.go", "util.go", "a/a.go", "a/b/b.go")

	l, _ := NewLister(8, nil)
	want := []string{"main.go", "util.go"}
	if diff := cmp.Diff(want, l.DirFiles(root)); diff != "" {
		t.Errorf("DirFiles (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.go"}, l.DirFiles(filepath.Join(root, "a"))); diff != "" {
		t.Errorf("DirFiles(a) (-want +got):\n%s", diff)
	}
}
