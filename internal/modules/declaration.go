package modules

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	trackerrors "modtrack/internal/errors"
	"modtrack/internal/model"
	"modtrack/internal/paths"
)

// ModulesDeclarationFile is the default filename for module declarations
const ModulesDeclarationFile = "MODULES.toml"

// ModuleDeclaration represents a declared module in MODULES.toml
type ModuleDeclaration struct {
	// Name is the human-readable name of the module (defaults to the last path element)
	Name string `toml:"name"`

	// Path is the repo-relative path to the module root
	Path string `toml:"path"`

	// Targets are the module's sub-units; none means the module is legacy
	Targets []TargetDeclaration `toml:"target"`
}

// TargetDeclaration is a [[module.target]] entry
type TargetDeclaration struct {
	Name string `toml:"name"`
	// Path is relative to the module path (defaults to the name)
	Path string `toml:"path"`
}

// ModulesFile represents the root structure of MODULES.toml
type ModulesFile struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Modules is the list of declared modules
	Modules []ModuleDeclaration `toml:"module"`
}

// ParseModulesFile parses a MODULES.toml file from the given path
func ParseModulesFile(filePath string) (*ModulesFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(filePath), err)
	}

	var modulesFile ModulesFile
	if err := toml.Unmarshal(data, &modulesFile); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(filePath), err)
	}

	if modulesFile.Version < 1 {
		modulesFile.Version = 1 // Default to version 1
	}

	for i, decl := range modulesFile.Modules {
		if decl.Path == "" {
			return nil, fmt.Errorf("module declaration %d missing required 'path' field", i+1)
		}
		for _, t := range decl.Targets {
			if t.Name == "" {
				return nil, fmt.Errorf("module %q: target declaration missing required 'name' field", decl.Path)
			}
		}
	}

	return &modulesFile, nil
}

// DeclaredScanner yields the modules listed in the declaration file.
type DeclaredScanner struct {
	file   string
	logger *slog.Logger
}

// NewDeclaredScanner creates a scanner reading file relative to the scanned
// root. An empty file selects MODULES.toml.
func NewDeclaredScanner(file string, logger *slog.Logger) *DeclaredScanner {
	if file == "" {
		file = ModulesDeclarationFile
	}
	return &DeclaredScanner{file: file, logger: logger}
}

// Name implements scanner.Scanner.
func (s *DeclaredScanner) Name() string { return SourceDeclared }

// Scan reads the declaration file. A missing file yields nothing; an invalid
// one is reported and yields nothing.
func (s *DeclaredScanner) Scan(root string) []model.Entity {
	filePath := paths.Resolve(root, s.file)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	modulesFile, err := ParseModulesFile(filePath)
	if err != nil {
		tracked := trackerrors.New(trackerrors.DeclarationInvalid, "invalid module declarations", err)
		s.logger.Warn("Ignoring module declarations", "file", filePath, "error", tracked.Error())
		return nil
	}

	var entities []model.Entity
	for _, decl := range modulesFile.Modules {
		absPath := paths.JoinRepoPath(root, decl.Path)
		if !paths.IsWithinRepo(absPath, root) {
			s.logger.Warn("Declared module is outside the root", "path", decl.Path)
			continue
		}

		name := decl.Name
		if name == "" {
			parts := strings.Split(strings.TrimRight(decl.Path, "/"), "/")
			name = parts[len(parts)-1]
		}

		targets := make([]model.Target, 0, len(decl.Targets))
		for _, t := range decl.Targets {
			path := t.Path
			if path == "" {
				path = t.Name
			}
			targets = append(targets, model.Target{Name: t.Name, Path: path})
		}

		entities = append(entities, model.NewEntity(name, filepath.ToSlash(filepath.Clean(decl.Path)), SourceDeclared, targets...))
		s.logger.Debug("Loaded declared module", "name", name, "path", decl.Path, "targets", len(targets))
	}
	return entities
}
