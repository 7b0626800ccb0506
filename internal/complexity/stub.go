//go:build !cgo

package complexity

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when the binary was built without tree-sitter.
var ErrNoCGO = errors.New("complexity analysis requires CGO (tree-sitter)")

// Analyzer is a placeholder for non-CGO builds.
type Analyzer struct{}

// NewAnalyzer returns nil when CGO is disabled.
func NewAnalyzer() *Analyzer {
	return nil
}

// AnalyzeFile always fails without CGO.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*FileComplexity, error) {
	return nil, ErrNoCGO
}

// AnalyzeSource always fails without CGO.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte, lang Language) (*FileComplexity, error) {
	return nil, ErrNoCGO
}

// MaxCyclomatic reports nothing without CGO.
func (a *Analyzer) MaxCyclomatic(ctx context.Context, files []string) int {
	return 0
}

// IsAvailable reports whether tree-sitter is compiled in.
func IsAvailable() bool {
	return false
}
