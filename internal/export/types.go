// Package export writes analysis results to disk: the machine-readable
// report, the self-contained HTML dashboard and compressed per-run archives.
package export

import (
	"time"

	"modtrack/internal/model"
	"modtrack/internal/version"
)

// Bundle is the report document. Field metadata travels with the data so
// consumers can render any field without knowing the rules that produced it.
type Bundle struct {
	GeneratedAt  string                         `json:"generated_at"` // RFC 3339, UTC
	RulesVersion string                         `json:"rules_version"`
	ModulesCount int                            `json:"modules_count"`
	FieldsMeta   map[string]model.FieldMetadata `json:"fields_meta"` // keyed by field id
	Modules      []model.MetricsRecord          `json:"modules"`
}

// NewBundle assembles a report from analysis output.
func NewBundle(records []model.MetricsRecord, fields map[string]model.FieldMetadata, generatedAt time.Time) Bundle {
	if records == nil {
		records = []model.MetricsRecord{}
	}
	if fields == nil {
		fields = map[string]model.FieldMetadata{}
	}
	return Bundle{
		GeneratedAt:  generatedAt.UTC().Format(time.RFC3339),
		RulesVersion: version.RulesVersion,
		ModulesCount: len(records),
		FieldsMeta:   fields,
		Modules:      records,
	}
}
