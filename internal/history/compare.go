package history

import (
	"modtrack/internal/model"
)

// Direction classifies a change between two snapshots.
type Direction string

const (
	Improved  Direction = "improved"
	Regressed Direction = "regressed"
	Unchanged Direction = "unchanged"
)

// Delta is the change of one counter between two snapshots.
type Delta struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
	Change    int       `json:"change"`
	Direction Direction `json:"direction"`
}

// Comparison lists the deltas between two snapshots.
type Comparison struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Deltas []Delta `json:"deltas"`
}

// Compare computes deltas for the built-in counters and for every custom
// metric of fields shown in comparisons. Higher is better except for
// legacy_count and inverted fields.
func Compare(before, after Snapshot, fields []model.FieldMetadata) Comparison {
	c := Comparison{From: before.Date, To: after.Date, Deltas: []Delta{}}

	builtins := []struct {
		key         string
		label       string
		lowerBetter bool
	}{
		{KeyModulesCount, "Modules", false},
		{KeyModularizedCount, "Modularized", false},
		{KeyLegacyCount, "Legacy", true},
		{KeyTotalTargets, "Targets", false},
	}
	for _, b := range builtins {
		c.Deltas = append(c.Deltas, delta(before, after, b.key, b.label, b.lowerBetter))
	}

	for _, field := range fields {
		if !field.ShowInComparison {
			continue
		}
		for _, token := range sortedTokens(field) {
			label := field.Label + ": " + field.Values[token].Label
			c.Deltas = append(c.Deltas, delta(before, after, model.MetricKey(field.ID, token), label, field.InvertedComparison))
		}
	}
	return c
}

func delta(before, after Snapshot, key, label string, lowerBetter bool) Delta {
	b, _ := before.Metric(key)
	a, _ := after.Metric(key)
	d := Delta{Key: key, Label: label, Before: b, After: a, Change: a - b, Direction: Unchanged}
	switch {
	case d.Change == 0:
	case (d.Change > 0) != lowerBetter:
		d.Direction = Improved
	default:
		d.Direction = Regressed
	}
	return d
}

// Changed returns only the deltas whose value moved.
func (c Comparison) Changed() []Delta {
	var out []Delta
	for _, d := range c.Deltas {
		if d.Direction != Unchanged {
			out = append(out, d)
		}
	}
	return out
}
