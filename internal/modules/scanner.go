package modules

import (
	"fmt"
	"log/slog"

	"modtrack/internal/scanner"
	"modtrack/internal/walk"
)

// Options configures the built-in scanners
type Options struct {
	// DeclarationFile is the MODULES.toml path relative to the root
	DeclarationFile string

	// LegacyRoots are folders whose children are legacy modules
	LegacyRoots []string

	// Lister decides which directories scanners skip
	Lister *walk.Lister
}

// Names lists the built-in scanners in their default order
var Names = []string{SourceDeclared, SourceManifest, SourceLegacy}

// NewLister creates a lister whose walks stop at directories holding their
// own manifest, so files of a nested module are never counted for its parent.
func NewLister(size int, ignore []string) (*walk.Lister, error) {
	return walk.NewLister(size, ignore, walk.WithBoundaries(ManifestNames()...))
}

// Register adds the enabled built-in scanners to registry in the given
// order. Unknown names are an error.
func Register(registry *scanner.Registry, enabled []string, opts Options, logger *slog.Logger) error {
	if opts.Lister == nil {
		lister, err := NewLister(walk.DefaultCacheSize, walk.DefaultIgnore)
		if err != nil {
			return err
		}
		opts.Lister = lister
	}
	for _, name := range enabled {
		switch name {
		case SourceDeclared:
			registry.RegisterScanner(NewDeclaredScanner(opts.DeclarationFile, logger))
		case SourceManifest:
			registry.RegisterScanner(NewManifestScanner(opts.Lister, logger))
		case SourceLegacy:
			registry.RegisterScanner(NewLegacyScanner(opts.LegacyRoots, opts.Lister, logger))
		default:
			return fmt.Errorf("unknown scanner %q (available: %v)", name, Names)
		}
	}
	return nil
}
