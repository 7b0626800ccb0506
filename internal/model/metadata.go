package model

import "fmt"

// Level tells history aggregation where a field's value lives.
type Level string

const (
	LevelModule Level = "module"
	LevelTarget Level = "target"
)

// ChartType selects how the dashboard charts a field over time.
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
	ChartArea ChartType = "area"
)

// Badge colour tokens understood by the dashboard.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"
	ColorBlue   = "blue"
	ColorGray   = "gray"
	ColorPurple = "purple"
)

// ValueMeta describes one enumerated value of a field: its badge label,
// colour and an optional explanation.
type ValueMeta struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// FieldMetadata is the self-describing schema of a measurable property. It is
// declared once per rule and consumed generically by the dashboard (filters,
// tables, charts, comparisons) and by history aggregation.
type FieldMetadata struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`

	Level Level `json:"level"`

	IsFilterable     bool `json:"is_filterable"`
	ShowInTable      bool `json:"show_in_table"`
	ShowInChart      bool `json:"show_in_chart"`
	ShowInComparison bool `json:"show_in_comparison"`
	// InvertedComparison means lower is better.
	InvertedComparison bool `json:"inverted_comparison"`

	ChartType  ChartType `json:"chart_type,omitempty"`
	ChartColor string    `json:"chart_color,omitempty"`

	// Values enumerates the known value tokens; history aggregation builds one
	// counter per token for charted fields.
	Values map[string]ValueMeta `json:"values"`
}

// NewField returns metadata with the dashboard defaults: shown in the table,
// everything else off.
func NewField(id, label string, level Level) FieldMetadata {
	return FieldMetadata{
		ID:          id,
		Label:       label,
		Level:       level,
		ShowInTable: true,
		Values:      map[string]ValueMeta{},
	}
}

// WithValue adds an enumerated value and returns the metadata for chaining.
func (f FieldMetadata) WithValue(token, label, color string) FieldMetadata {
	values := make(map[string]ValueMeta, len(f.Values)+1)
	for k, v := range f.Values {
		values[k] = v
	}
	values[token] = ValueMeta{Label: label, Color: color}
	f.Values = values
	return f
}

// Validate checks the metadata's closed enums and required fields.
func (f FieldMetadata) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("field metadata: empty id")
	}
	switch f.Level {
	case LevelModule, LevelTarget:
	default:
		return fmt.Errorf("field %q: unknown level %q", f.ID, f.Level)
	}
	switch f.ChartType {
	case "", ChartLine, ChartBar, ChartArea:
	default:
		return fmt.Errorf("field %q: unknown chart type %q", f.ID, f.ChartType)
	}
	return nil
}

// MetricKey is the history counter key for one value token of a field. Ids
// and tokens containing "_" can map to the same key.
func MetricKey(fieldID, token string) string {
	return fieldID + "_" + token + "_count"
}
