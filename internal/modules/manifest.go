package modules

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"modtrack/internal/model"
	"modtrack/internal/paths"
	"modtrack/internal/walk"
)

// ManifestScanner finds every directory holding a build manifest. Nested
// manifests become their own modules.
type ManifestScanner struct {
	lister *walk.Lister
	logger *slog.Logger
}

// NewManifestScanner creates a manifest scanner; lister decides which
// directories are skipped.
func NewManifestScanner(lister *walk.Lister, logger *slog.Logger) *ManifestScanner {
	return &ManifestScanner{lister: lister, logger: logger}
}

// Name implements scanner.Scanner.
func (s *ManifestScanner) Name() string { return SourceManifest }

// Scan walks root for manifests.
func (s *ManifestScanner) Scan(root string) []model.Entity {
	var entities []model.Entity

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				s.logger.Debug("Skipping unreadable directory", "path", path, "error", err.Error())
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && s.lister.SkipDir(d.Name()) {
			return filepath.SkipDir
		}

		manifest, language := DetectManifestInDir(path)
		if manifest == ManifestNone {
			return nil
		}

		relPath, err := paths.CanonicalizePath(path, root)
		if err != nil {
			return nil
		}
		entity := model.NewEntity(
			extractModuleName(path, manifest),
			relPath,
			SourceManifest,
			s.targets(path, manifest)...,
		)
		entities = append(entities, entity)

		s.logger.Debug("Detected manifest module",
			"name", entity.Name,
			"path", relPath,
			"manifest", manifest,
			"language", language,
			"targets", len(entity.Targets),
		)
		return nil
	})
	if err != nil {
		s.logger.Debug("Manifest scan stopped", "root", root, "error", err.Error())
	}

	return entities
}

func (s *ManifestScanner) targets(dir, manifest string) []model.Target {
	switch manifest {
	case ManifestPackageSwift:
		return subdirTargets(dir, "Sources", s.lister)
	case ManifestGoMod:
		return s.goPackageTargets(dir)
	default:
		var targets []model.Target
		for _, conv := range ConventionDirectories {
			if isDir(filepath.Join(dir, conv)) {
				targets = append(targets, model.Target{Name: conv, Path: conv})
			}
		}
		return targets
	}
}

// subdirTargets returns one target per visible directory under dir/parent.
func subdirTargets(dir, parent string, lister *walk.Lister) []model.Target {
	entries, err := os.ReadDir(filepath.Join(dir, parent))
	if err != nil {
		return nil
	}
	var targets []model.Target
	for _, e := range entries {
		if !e.IsDir() || lister.SkipDir(e.Name()) {
			continue
		}
		targets = append(targets, model.Target{Name: e.Name(), Path: parent + "/" + e.Name()})
	}
	return targets
}

// goPackageTargets returns one flat target per directory with .go files,
// stopping at nested modules and testdata.
func (s *ManifestScanner) goPackageTargets(dir string) []model.Target {
	var targets []model.Target
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir {
			if s.lister.SkipDir(d.Name()) || d.Name() == "testdata" {
				return filepath.SkipDir
			}
			if fileExists(filepath.Join(path, ManifestGoMod)) {
				return filepath.SkipDir
			}
		}
		if !hasGoFiles(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := rel
		if rel == "." {
			name = filepath.Base(dir)
		}
		targets = append(targets, model.Target{Name: name, Path: rel, Flat: true})
		return nil
	})
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].Path < targets[j].Path })
	return targets
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".go" {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
