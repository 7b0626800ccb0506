// Package walk lists the files of a directory tree once per run and matches
// them against doublestar globs. Several rules look at the same target
// directory; the cache keeps them from walking it again.
package walk

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of directories whose listing is kept.
const DefaultCacheSize = 512

// DefaultIgnore lists directory names never descended into.
var DefaultIgnore = []string{"node_modules", "build", ".build", "vendor", "Pods", "DerivedData"}

// Lister walks directories, skipping hidden and ignored ones, and caches
// the result per directory.
type Lister struct {
	cache      *lru.Cache[string, []string]
	ignore     map[string]bool
	boundaries []string
}

// Option configures a Lister.
type Option func(*Lister)

// WithBoundaries stops walks at subdirectories holding any of the named
// files. Such a directory is a module of its own and is only listed when
// asked for directly.
func WithBoundaries(names ...string) Option {
	return func(l *Lister) {
		l.boundaries = append(l.boundaries, names...)
	}
}

// NewLister creates a lister caching up to size directory listings.
func NewLister(size int, ignore []string, opts ...Option) (*Lister, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("create listing cache: %w", err)
	}
	ignoreMap := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		ignoreMap[name] = true
	}
	l := &Lister{cache: cache, ignore: ignoreMap}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// SkipDir reports whether a directory with this base name is excluded from
// walks: hidden directories and configured ignore names.
func (l *Lister) SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || l.ignore[name]
}

// Files returns the regular files below dir as sorted slash-separated paths
// relative to dir. A missing or unreadable dir yields no files; unreadable
// subdirectories are skipped.
func (l *Lister) Files(dir string) []string {
	key := filepath.Clean(dir)
	if files, ok := l.cache.Get(key); ok {
		return files
	}

	files := []string{}
	_ = filepath.WalkDir(key, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != key {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != key && (l.SkipDir(d.Name()) || l.isBoundary(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(key, path)
		if relErr != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)

	l.cache.Add(key, files)
	return files
}

// DirFiles returns the regular files directly inside dir, without
// descending into subdirectories.
func (l *Lister) DirFiles(dir string) []string {
	var out []string
	for _, f := range l.Files(dir) {
		if !strings.Contains(f, "/") {
			out = append(out, f)
		}
	}
	return out
}

func (l *Lister) isBoundary(dir string) bool {
	for _, name := range l.boundaries {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// Glob returns the files below dir whose relative path matches pattern.
// Patterns use doublestar syntax: "**/*.swift", "Sources/**", "*.{h,m}".
func (l *Lister) Glob(dir, pattern string) ([]string, error) {
	var matched []string
	for _, f := range l.Files(dir) {
		ok, err := doublestar.Match(pattern, f)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// ValidatePattern reports whether pattern is a well-formed glob. Matching
// the pattern against itself forces every component to be parsed.
func ValidatePattern(pattern string) error {
	if _, err := doublestar.Match(pattern, pattern); err != nil {
		return fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	return nil
}

// Len returns the number of cached listings.
func (l *Lister) Len() int {
	return l.cache.Len()
}
