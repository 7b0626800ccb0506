package export

import (
	"sort"

	"modtrack/internal/model"
)

// Summary is a compact overview of a bundle for terminal output: a module
// map per source and the value distribution of every filterable or charted
// field.
type Summary struct {
	Sources []SourceSummary `json:"sources"`
	Fields  []FieldSummary  `json:"fields"`
}

// SourceSummary counts the modules one scanner produced.
type SourceSummary struct {
	Source      string `json:"source"`
	Modules     int    `json:"modules"`
	Modularized int    `json:"modularized"`
	Targets     int    `json:"targets"`
}

// FieldSummary is the distribution of one field's values.
type FieldSummary struct {
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Level  model.Level  `json:"level"`
	Values []ValueCount `json:"values"`
}

// ValueCount is how often one canonical value occurs.
type ValueCount struct {
	Token string `json:"token"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summarize builds the overview. Sources and fields are sorted by name,
// values by descending count then token.
func Summarize(b Bundle) Summary {
	bySource := make(map[string]*SourceSummary)
	for _, m := range b.Modules {
		s, ok := bySource[m.Source]
		if !ok {
			s = &SourceSummary{Source: m.Source}
			bySource[m.Source] = s
		}
		s.Modules++
		if m.IsModularized {
			s.Modularized++
			s.Targets += len(m.Targets)
		}
	}

	summary := Summary{Sources: []SourceSummary{}, Fields: []FieldSummary{}}
	for _, s := range bySource {
		summary.Sources = append(summary.Sources, *s)
	}
	sort.Slice(summary.Sources, func(i, j int) bool {
		return summary.Sources[i].Source < summary.Sources[j].Source
	})

	ids := make([]string, 0, len(b.FieldsMeta))
	for id, f := range b.FieldsMeta {
		if f.IsFilterable || f.ShowInChart {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		summary.Fields = append(summary.Fields, distribution(b.FieldsMeta[id], b.Modules))
	}
	return summary
}

func distribution(field model.FieldMetadata, records []model.MetricsRecord) FieldSummary {
	counts := make(map[string]int)
	add := func(fields model.Fields) {
		if v, ok := fields[field.ID]; ok && v.IsValid() {
			counts[v.Canonical()]++
		}
	}
	for _, r := range records {
		if field.Level == model.LevelModule {
			add(r.CustomFields)
			continue
		}
		for _, t := range r.Targets {
			add(t.CustomFields)
		}
	}

	fs := FieldSummary{ID: field.ID, Label: field.Label, Level: field.Level, Values: []ValueCount{}}
	for token, n := range counts {
		label := token
		if meta, ok := field.Values[token]; ok {
			label = meta.Label
		}
		fs.Values = append(fs.Values, ValueCount{Token: token, Label: label, Count: n})
	}
	sort.Slice(fs.Values, func(i, j int) bool {
		if fs.Values[i].Count != fs.Values[j].Count {
			return fs.Values[i].Count > fs.Values[j].Count
		}
		return fs.Values[i].Token < fs.Values[j].Token
	})
	return fs
}
