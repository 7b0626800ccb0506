package history

import (
	"log/slog"
	"sort"
	"time"

	"modtrack/internal/model"
)

// DefaultLimit is the number of snapshots kept when no limit is configured.
const DefaultLimit = 100

// Manager builds snapshots from metrics records and appends them to a store,
// skipping runs whose metrics did not change.
type Manager struct {
	store  Store
	fields []model.FieldMetadata
	logger *slog.Logger
	limit  int
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the stored sequence; non-positive values keep the default.
func WithLimit(limit int) Option {
	return func(m *Manager) {
		if limit > 0 {
			m.limit = limit
		}
	}
}

// WithClock replaces time.Now as the snapshot date source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager. fields is the deduplicated field metadata of
// the rule registry; only fields shown in charts produce custom metrics.
func NewManager(store Store, fields []model.FieldMetadata, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		fields: fields,
		logger: logger,
		limit:  DefaultLimit,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateSnapshot aggregates records into a snapshot dated now. For every
// charted field and every declared value token it counts the modules (module
// level) or targets (target level) whose value has that canonical form.
func (m *Manager) CreateSnapshot(records []model.MetricsRecord) Snapshot {
	snap := Snapshot{
		Date:          m.now().UTC().Format(time.RFC3339),
		ModulesCount:  len(records),
		CustomMetrics: map[string]int{},
	}

	for _, r := range records {
		if r.IsModularized {
			snap.ModularizedCount++
			snap.TotalTargets += len(r.Targets)
		} else {
			snap.LegacyCount++
		}
	}

	// field ids and tokens may contain "_", so two pairs can share a key;
	// the first field in registry order keeps it
	owners := map[string]string{}
	for _, field := range m.fields {
		if !field.ShowInChart {
			continue
		}
		tokens := make([]string, 0, len(field.Values))
		for token := range field.Values {
			tokens = append(tokens, token)
		}
		sort.Strings(tokens)

		for _, token := range tokens {
			key := model.MetricKey(field.ID, token)
			if owner, taken := owners[key]; taken {
				m.logger.Warn("Counter key already used, dropping value",
					"key", key, "kept", owner, "dropped", field.ID+"="+token)
				continue
			}
			owners[key] = field.ID + "=" + token
			snap.CustomMetrics[key] = countMatches(records, field, token)
		}
	}

	return snap
}

func countMatches(records []model.MetricsRecord, field model.FieldMetadata, token string) int {
	matches := func(fields model.Fields) bool {
		v, ok := fields[field.ID]
		return ok && v.IsValid() && v.Canonical() == token
	}

	count := 0
	for _, r := range records {
		switch field.Level {
		case model.LevelModule:
			if matches(r.CustomFields) {
				count++
			}
		case model.LevelTarget:
			for _, t := range r.Targets {
				if matches(t.CustomFields) {
					count++
				}
			}
		}
	}
	return count
}

// RecordSnapshot appends a snapshot of records unless it is metric-equal to
// the last stored one. It reports whether a snapshot was stored. Unreadable
// history is logged and replaced.
func (m *Manager) RecordSnapshot(records []model.MetricsRecord) (bool, error) {
	h := m.Load()
	snap := m.CreateSnapshot(records)

	if last, ok := h.Last(); ok && last.SameMetrics(snap) {
		m.logger.Info("No changes detected, skipping snapshot", "last", last.Date)
		return false, nil
	}

	h.Snapshots = append(h.Snapshots, snap)
	if len(h.Snapshots) > m.limit {
		dropped := len(h.Snapshots) - m.limit
		h.Snapshots = h.Snapshots[dropped:]
		m.logger.Debug("Truncated history", "dropped", dropped, "limit", m.limit)
	}

	if err := m.store.Save(h); err != nil {
		return false, err
	}

	m.logger.Info("Recorded snapshot",
		"date", snap.Date,
		"modules", snap.ModulesCount,
		"snapshots", len(h.Snapshots),
	)
	return true, nil
}

// Load returns the stored history, or an empty one when the store is empty
// or unreadable.
func (m *Manager) Load() *History {
	h, err := m.store.Load()
	if err != nil {
		m.logger.Warn("Ignoring unreadable history", "error", err.Error())
		return &History{Snapshots: []Snapshot{}}
	}
	if h == nil {
		return &History{Snapshots: []Snapshot{}}
	}
	return h
}

// sortedTokens returns a field's value tokens in lexical order.
func sortedTokens(field model.FieldMetadata) []string {
	tokens := make([]string, 0, len(field.Values))
	for token := range field.Values {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
