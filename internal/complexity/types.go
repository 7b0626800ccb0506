// Package complexity computes cyclomatic complexity of source files with
// tree-sitter and buckets it into coarse levels.
package complexity

import "strings"

// Language is a grammar the analyzer can parse.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
	LangSwift      Language = "swift"
)

// Function is the cyclomatic complexity of one function or method.
type Function struct {
	Name       string `json:"name"`
	StartLine  int    `json:"startLine"`
	EndLine    int    `json:"endLine"`
	Cyclomatic int    `json:"cyclomatic"`
}

// FileComplexity holds per-function results for a file.
type FileComplexity struct {
	Path      string     `json:"path"`
	Language  Language   `json:"language"`
	Functions []Function `json:"functions"`

	// MaxCyclomatic is the highest function complexity in the file
	MaxCyclomatic int `json:"maxCyclomatic"`

	// TotalCyclomatic is the sum over all functions
	TotalCyclomatic int `json:"totalCyclomatic"`
}

// Aggregate recomputes the file totals from Functions.
func (fc *FileComplexity) Aggregate() {
	fc.MaxCyclomatic, fc.TotalCyclomatic = 0, 0
	for _, f := range fc.Functions {
		fc.TotalCyclomatic += f.Cyclomatic
		if f.Cyclomatic > fc.MaxCyclomatic {
			fc.MaxCyclomatic = f.Cyclomatic
		}
	}
}

// LanguageFromExtension maps a file extension (with the dot) to a grammar.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return LangGo, true
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".py", ".pyw":
		return LangPython, true
	case ".rs":
		return LangRust, true
	case ".java":
		return LangJava, true
	case ".kt", ".kts":
		return LangKotlin, true
	case ".swift":
		return LangSwift, true
	default:
		return "", false
	}
}
