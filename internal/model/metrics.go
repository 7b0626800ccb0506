package model

// TargetMetrics holds the rule output for one target.
type TargetMetrics struct {
	Name         string `json:"name"`
	CustomFields Fields `json:"custom_fields"`
}

// MetricsRecord is the analysis result for one entity. Records are never
// mutated after the engine produces them.
type MetricsRecord struct {
	Name          string          `json:"name"`
	Path          string          `json:"path"`
	Source        string          `json:"source"`
	IsModularized bool            `json:"is_modularized"`
	Targets       []TargetMetrics `json:"targets"`
	CustomFields  Fields          `json:"custom_fields"`
}

// Key identifies the record by (source, name).
func (m MetricsRecord) Key() string {
	return m.Source + "/" + m.Name
}
