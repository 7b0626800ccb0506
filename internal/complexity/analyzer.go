//go:build cgo

package complexity

import (
	"context"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
)

// Analyzer computes cyclomatic complexity for source files.
type Analyzer struct {
	parser *Parser
}

// NewAnalyzer creates an analyzer with its own parser.
func NewAnalyzer() *Analyzer {
	return &Analyzer{parser: NewParser()}
}

// AnalyzeFile reads and analyzes path. Unsupported extensions yield an empty
// result, not an error.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*FileComplexity, error) {
	lang, ok := LanguageFromExtension(filepath.Ext(path))
	if !ok {
		return &FileComplexity{Path: path}, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSource(ctx, path, source, lang)
}

// AnalyzeSource analyzes source as lang.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte, lang Language) (*FileComplexity, error) {
	root, err := a.parser.Parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}
	g := grammars[lang]

	fc := &FileComplexity{Path: path, Language: lang, Functions: []Function{}}
	visit(root, func(n *sitter.Node) bool {
		if g.functions[n.Type()] {
			fc.Functions = append(fc.Functions, Function{
				Name:       functionName(n, source, g),
				StartLine:  int(n.StartPoint().Row) + 1,
				EndLine:    int(n.EndPoint().Row) + 1,
				Cyclomatic: cyclomatic(n, source, g),
			})
		}
		return true
	})

	fc.Aggregate()
	return fc, nil
}

// MaxCyclomatic returns the highest function complexity over files, or 0 when
// none of them could be analyzed.
func (a *Analyzer) MaxCyclomatic(ctx context.Context, files []string) int {
	max := 0
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		fc, err := a.AnalyzeFile(ctx, f)
		if err != nil {
			continue
		}
		if fc.MaxCyclomatic > max {
			max = fc.MaxCyclomatic
		}
	}
	return max
}

// cyclomatic counts decision points plus one. Nested functions are counted
// on their own and skipped here.
func cyclomatic(fn *sitter.Node, source []byte, g grammar) int {
	count := 1
	visit(fn, func(n *sitter.Node) bool {
		if n != fn && g.functions[n.Type()] {
			return false
		}
		switch {
		case g.decisions[n.Type()]:
			count++
		case g.logical[n.Type()] && isLogicalOperator(n, source):
			count++
		}
		return true
	})
	return count
}

func functionName(n *sitter.Node, source []byte, g grammar) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil && g.nameKind != "" {
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil && c.Type() == g.nameKind {
				nameNode = c
				break
			}
		}
	}
	if nameNode != nil {
		return string(source[nameNode.StartByte():nameNode.EndByte()])
	}
	return "<anonymous>"
}

// visit walks the tree depth-first; returning false skips a node's children.
func visit(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		visit(n.Child(i), fn)
	}
}

// IsAvailable reports whether tree-sitter is compiled in.
func IsAvailable() bool {
	return true
}
