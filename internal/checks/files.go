package checks

import (
	"path/filepath"

	"modtrack/internal/model"
	"modtrack/internal/modules"
	"modtrack/internal/paths"
	"modtrack/internal/walk"
)

// files resolves entity and target directories against the root and lists
// them through the shared lister.
type files struct {
	root   string
	lister *walk.Lister
}

func (f *files) targetDir(target model.Target, parentPath string) string {
	return paths.JoinRepoPath(f.root, parentPath, target.Path)
}

func (f *files) entityDir(entity model.Entity) string {
	return paths.JoinRepoPath(f.root, entity.Path)
}

// targetFiles returns the target directory and the files the target owns,
// relative to that directory.
func (f *files) targetFiles(target model.Target, parentPath string) (string, []string) {
	dir := f.targetDir(target, parentPath)
	if target.Flat {
		return dir, f.lister.DirFiles(dir)
	}
	return dir, f.lister.Files(dir)
}

// sources returns the target's files with a known source language.
func (f *files) sources(target model.Target, parentPath string) []string {
	_, names := f.targetFiles(target, parentPath)
	var out []string
	for _, name := range names {
		if modules.LanguageForFile(filepath.Base(name)) != modules.LanguageUnknown {
			out = append(out, name)
		}
	}
	return out
}
