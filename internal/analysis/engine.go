// Package analysis applies registered rules to discovered entities.
package analysis

import (
	"log/slog"

	"modtrack/internal/model"
	"modtrack/internal/rules"
)

// Engine turns entities into metrics records. It holds no state besides the
// rule registry it reads from.
type Engine struct {
	rules  *rules.Registry
	logger *slog.Logger
}

// NewEngine creates an engine over registry.
func NewEngine(registry *rules.Registry, logger *slog.Logger) *Engine {
	return &Engine{rules: registry, logger: logger}
}

// Analyze runs target rules for every target, with the entity path as the
// parent path, then module rules for the entity itself.
func (e *Engine) Analyze(entity model.Entity) model.MetricsRecord {
	targets := make([]model.TargetMetrics, 0, len(entity.Targets))
	for _, t := range entity.Targets {
		targets = append(targets, model.TargetMetrics{
			Name:         t.Name,
			CustomFields: e.rules.ApplyToTarget(t, entity.Path),
		})
	}

	return model.MetricsRecord{
		Name:          entity.Name,
		Path:          entity.Path,
		Source:        entity.Source,
		IsModularized: entity.IsModularized(),
		Targets:       targets,
		CustomFields:  e.rules.ApplyToModule(entity),
	}
}

// AnalyzeAll analyzes entities sequentially, preserving input order.
func (e *Engine) AnalyzeAll(entities []model.Entity) []model.MetricsRecord {
	records := make([]model.MetricsRecord, 0, len(entities))
	for _, entity := range entities {
		record := e.Analyze(entity)
		e.logger.Debug("Analyzed module",
			"name", record.Name,
			"source", record.Source,
			"targets", len(record.Targets),
		)
		records = append(records, record)
	}
	return records
}

// DuplicateKeys returns the (source, name) keys that occur more than once,
// in order of their second occurrence.
func DuplicateKeys(records []model.MetricsRecord) []string {
	counts := make(map[string]int, len(records))
	var dups []string
	for _, r := range records {
		key := r.Key()
		counts[key]++
		if counts[key] == 2 {
			dups = append(dups, key)
		}
	}
	return dups
}
