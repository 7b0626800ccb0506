// Package paths resolves the analysis root and the files modtrack reads and
// writes underneath it. Entity paths in reports are root-relative with
// forward slashes; these helpers convert between that form and the OS form.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// RootEnvVar overrides the working directory as the analysis root.
	RootEnvVar = "MODULE_TRACKER_ROOT"

	// StateDirName is the per-root directory holding config, rules and output.
	StateDirName = ".modtrack"

	// ConfigFileName is the config file inside StateDirName.
	ConfigFileName = "config.json"
)

// ResolveRoot picks the analysis root: an explicit argument, then
// $MODULE_TRACKER_ROOT, then the working directory. The result is absolute.
func ResolveRoot(arg string) (string, error) {
	root := arg
	if root == "" {
		root = os.Getenv(RootEnvVar)
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	return filepath.Abs(root)
}

// StateDir returns <root>/.modtrack.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName)
}

// ConfigPath returns <root>/.modtrack/config.json.
func ConfigPath(root string) string {
	return filepath.Join(StateDir(root), ConfigFileName)
}

// Resolve returns p unchanged when absolute, otherwise joined onto root.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	repoRootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			repoRootResolved = repoRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(repoRootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// JoinRepoPath joins a repo root with canonical path segments
func JoinRepoPath(repoRoot string, canonicalPaths ...string) string {
	parts := []string{repoRoot}
	for _, p := range canonicalPaths {
		normalized := strings.ReplaceAll(p, "\\", "/")
		parts = append(parts, strings.Split(normalized, "/")...)
	}
	return filepath.Join(parts...)
}

// WriteFileAtomic writes data to a sibling temp file and renames it over
// path, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
