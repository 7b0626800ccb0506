// Package history records aggregate snapshots of analysis runs and compares
// them over time.
package history

import "maps"

// Built-in counter keys, usable wherever a metric key is accepted.
const (
	KeyModulesCount     = "modules_count"
	KeyModularizedCount = "modularized_count"
	KeyLegacyCount      = "legacy_count"
	KeyTotalTargets     = "total_targets"
)

// Snapshot is one aggregate over a full set of metrics records.
type Snapshot struct {
	// Date is the creation instant, RFC 3339 in UTC
	Date string `json:"date"`

	ModulesCount     int `json:"modules_count"`
	ModularizedCount int `json:"modularized_count"`
	LegacyCount      int `json:"legacy_count"`
	// TotalTargets sums targets of modularized entities only
	TotalTargets int `json:"total_targets"`

	// CustomMetrics maps "<fieldId>_<value>_count" to a count
	CustomMetrics map[string]int `json:"custom_metrics"`
}

// SameMetrics reports whether s and o are equal ignoring Date. A nil and an
// empty CustomMetrics map are equal.
func (s Snapshot) SameMetrics(o Snapshot) bool {
	return s.ModulesCount == o.ModulesCount &&
		s.ModularizedCount == o.ModularizedCount &&
		s.LegacyCount == o.LegacyCount &&
		s.TotalTargets == o.TotalTargets &&
		maps.Equal(s.CustomMetrics, o.CustomMetrics)
}

// Metric returns a counter by key: a built-in counter or a custom metric.
func (s Snapshot) Metric(key string) (int, bool) {
	switch key {
	case KeyModulesCount:
		return s.ModulesCount, true
	case KeyModularizedCount:
		return s.ModularizedCount, true
	case KeyLegacyCount:
		return s.LegacyCount, true
	case KeyTotalTargets:
		return s.TotalTargets, true
	}
	v, ok := s.CustomMetrics[key]
	return v, ok
}

// History is the persisted, creation-ordered sequence of snapshots.
type History struct {
	Snapshots []Snapshot `json:"snapshots"`
}

// Last returns the most recent snapshot.
func (h *History) Last() (Snapshot, bool) {
	if h == nil || len(h.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return h.Snapshots[len(h.Snapshots)-1], true
}
