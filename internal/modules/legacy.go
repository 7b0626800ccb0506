package modules

import (
	"log/slog"
	"os"
	"path/filepath"

	"modtrack/internal/model"
	"modtrack/internal/paths"
	"modtrack/internal/walk"
)

// LegacyScanner turns every direct child folder of the configured legacy
// roots into a target-less entity, unless the folder has its own manifest.
type LegacyScanner struct {
	roots  []string
	lister *walk.Lister
	logger *slog.Logger
}

// NewLegacyScanner creates a scanner over roots, given relative to the
// scanned root.
func NewLegacyScanner(roots []string, lister *walk.Lister, logger *slog.Logger) *LegacyScanner {
	return &LegacyScanner{roots: roots, lister: lister, logger: logger}
}

// Name implements scanner.Scanner.
func (s *LegacyScanner) Name() string { return SourceLegacy }

// Scan lists the legacy roots.
func (s *LegacyScanner) Scan(root string) []model.Entity {
	var entities []model.Entity
	for _, legacyRoot := range s.roots {
		dir := paths.Resolve(root, legacyRoot)
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Debug("Legacy root not readable", "root", legacyRoot, "error", err.Error())
			continue
		}

		for _, e := range entries {
			if !e.IsDir() || s.lister.SkipDir(e.Name()) {
				continue
			}
			abs := filepath.Join(dir, e.Name())
			if manifest, _ := DetectManifestInDir(abs); manifest != ManifestNone {
				continue
			}
			rel, err := paths.CanonicalizePath(abs, root)
			if err != nil {
				continue
			}
			entities = append(entities, model.NewEntity(e.Name(), rel, SourceLegacy))
		}
	}
	return entities
}
