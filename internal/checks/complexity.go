package checks

import (
	"context"
	"log/slog"
	"path/filepath"

	"modtrack/internal/complexity"
	"modtrack/internal/model"
)

// ComplexityField describes the bucketed cyclomatic complexity of a target.
func ComplexityField() model.FieldMetadata {
	f := model.NewField(RuleComplexity, "Complexity", model.LevelTarget)
	f.Description = "Highest function cyclomatic complexity, bucketed"
	f.IsFilterable = true
	f.ShowInChart = true
	f.ShowInComparison = true
	f.InvertedComparison = true
	f.ChartType = model.ChartArea
	return f.
		WithValue(string(complexity.BucketLow), "Low", model.ColorGreen).
		WithValue(string(complexity.BucketMedium), "Medium", model.ColorYellow).
		WithValue(string(complexity.BucketHigh), "High", model.ColorRed).
		WithValue(string(complexity.BucketUnknown), "Unknown", model.ColorGray)
}

func newComplexityRule(fs *files, logger *slog.Logger) func(model.Target, string) model.Fields {
	analyzer := complexity.NewAnalyzer()
	if !complexity.IsAvailable() {
		logger.Warn("Complexity analysis unavailable, reporting unknown", "reason", "built without cgo")
	}

	return func(target model.Target, parentPath string) model.Fields {
		if !complexity.IsAvailable() {
			return model.Fields{RuleComplexity: model.String(string(complexity.BucketUnknown))}
		}

		dir, names := fs.targetFiles(target, parentPath)
		var paths []string
		for _, name := range names {
			if _, ok := complexity.LanguageFromExtension(filepath.Ext(name)); ok {
				paths = append(paths, filepath.Join(dir, filepath.FromSlash(name)))
			}
		}
		bucket := complexity.Classify(analyzer.MaxCyclomatic(context.Background(), paths))
		return model.Fields{RuleComplexity: model.String(string(bucket))}
	}
}
