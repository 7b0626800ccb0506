package history

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"modtrack/internal/analysis"
	trackerrors "modtrack/internal/errors"
	"modtrack/internal/model"
	"modtrack/internal/rules"
	"modtrack/internal/scanner"
	"modtrack/internal/slogutil"
)

type memStore struct {
	history *History
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load() (*History, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.history == nil {
		return &History{Snapshots: []Snapshot{}}, nil
	}
	cp := &History{Snapshots: append([]Snapshot(nil), s.history.Snapshots...)}
	return cp, nil
}

func (s *memStore) Save(h *History) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.history = &History{Snapshots: append([]Snapshot(nil), h.Snapshots...)}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// tickingClock advances one day per call.
func tickingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * 24 * time.Hour)
	}
}

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func langField() model.FieldMetadata {
	f := model.NewField("lang", "Language", model.LevelTarget).
		WithValue("swift", "Swift", model.ColorOrange).
		WithValue("objc", "Objective-C", model.ColorBlue)
	f.ShowInChart = true
	return f
}

func TestCreateSnapshotKeyCollision(t *testing.T) {
	first := model.NewField("a_b", "A B", model.LevelModule).WithValue("c", "C", model.ColorGreen)
	first.ShowInChart = true
	second := model.NewField("a", "A", model.LevelModule).WithValue("b_c", "B C", model.ColorRed)
	second.ShowInChart = true

	records := []model.MetricsRecord{
		{Name: "One", CustomFields: model.Fields{"a_b": model.String("c")}},
		{Name: "Two", CustomFields: model.Fields{"a_b": model.String("c"), "a": model.String("b_c")}},
	}

	var buf bytes.Buffer
	m := NewManager(&memStore{}, []model.FieldMetadata{first, second}, slogutil.NewLogger(&buf, slog.LevelWarn))
	snap := m.CreateSnapshot(records)

	if got := snap.CustomMetrics["a_b_c_count"]; got != 2 {
		t.Errorf("a_b_c_count = %d, want 2 from the first field", got)
	}
	if !strings.Contains(buf.String(), "a_b_c_count") || !strings.Contains(buf.String(), "a=b_c") {
		t.Errorf("expected collision warning, got: %s", buf.String())
	}
}

func TestCreateSnapshotCounts(t *testing.T) {
	tested := model.NewField("tested", "Tested", model.LevelModule).
		WithValue("true", "Yes", model.ColorGreen).
		WithValue("false", "No", model.ColorRed)
	tested.ShowInChart = true
	hidden := model.NewField("owner", "Owner", model.LevelModule).WithValue("core", "Core team", model.ColorGray)

	m := NewManager(&memStore{}, []model.FieldMetadata{langField(), tested, hidden}, slogutil.NewDiscardLogger(),
		WithClock(fixedClock(time.Date(2025, 3, 1, 14, 30, 0, 0, time.FixedZone("CET", 3600)))))

	records := []model.MetricsRecord{
		{
			Name: "A", IsModularized: true,
			Targets: []model.TargetMetrics{
				{Name: "A1", CustomFields: model.Fields{"lang": model.String("swift")}},
				{Name: "A2", CustomFields: model.Fields{"lang": model.String("objc")}},
				{Name: "A3", CustomFields: model.Fields{}},
			},
			CustomFields: model.Fields{"tested": model.Bool(true), "owner": model.String("core")},
		},
		{
			Name: "B", IsModularized: true,
			Targets: []model.TargetMetrics{
				{Name: "B1", CustomFields: model.Fields{"lang": model.String("swift")}},
			},
			CustomFields: model.Fields{"tested": model.Bool(false)},
		},
		{Name: "Legacy", IsModularized: false, Targets: []model.TargetMetrics{}, CustomFields: model.Fields{"tested": model.String("true")}},
	}

	got := m.CreateSnapshot(records)
	want := Snapshot{
		Date:             "2025-03-01T13:30:00Z",
		ModulesCount:     3,
		ModularizedCount: 2,
		LegacyCount:      1,
		TotalTargets:     4,
		CustomMetrics: map[string]int{
			"lang_swift_count":   2,
			"lang_objc_count":    1,
			"tested_true_count":  2,
			"tested_false_count": 1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateSnapshot (-want +got):\n%s", diff)
	}
}

func TestCreateSnapshotCanonicalForms(t *testing.T) {
	files := model.NewField("files", "Files", model.LevelModule).
		WithValue("3", "Three", model.ColorBlue).
		WithValue("2.5", "Two and a half", model.ColorBlue)
	files.ShowInChart = true
	tags := model.NewField("tags", "Tags", model.LevelModule).WithValue("ui,core", "UI+Core", model.ColorPurple)
	tags.ShowInChart = true

	m := NewManager(&memStore{}, []model.FieldMetadata{files, tags}, slogutil.NewDiscardLogger())
	got := m.CreateSnapshot([]model.MetricsRecord{
		{Name: "A", CustomFields: model.Fields{"files": model.Int(3), "tags": model.Strings("ui", "core")}},
		{Name: "B", CustomFields: model.Fields{"files": model.Float(3.0)}},
		{Name: "C", CustomFields: model.Fields{"files": model.Float(2.5)}},
		{Name: "D", CustomFields: model.Fields{"files": model.String("3")}},
	})

	want := map[string]int{"files_3_count": 3, "files_2.5_count": 1, "tags_ui,core_count": 1}
	if diff := cmp.Diff(want, got.CustomMetrics); diff != "" {
		t.Errorf("CustomMetrics (-want +got):\n%s", diff)
	}
}

func TestTotalTargetsCountsModularizedOnly(t *testing.T) {
	m := NewManager(&memStore{}, nil, slogutil.NewDiscardLogger())
	got := m.CreateSnapshot([]model.MetricsRecord{
		{Name: "M", IsModularized: true, Targets: []model.TargetMetrics{{Name: "a"}, {Name: "b"}}},
		// inconsistent record: targets without the modularized flag are not counted
		{Name: "X", IsModularized: false, Targets: []model.TargetMetrics{{Name: "c"}}},
	})
	if got.TotalTargets != 2 {
		t.Errorf("TotalTargets = %d, want 2", got.TotalTargets)
	}
}

func TestRecordSnapshotIsIdempotent(t *testing.T) {
	store := &memStore{}
	m := NewManager(store, []model.FieldMetadata{langField()}, slogutil.NewDiscardLogger(), WithClock(tickingClock(epoch)))
	records := []model.MetricsRecord{{Name: "A", IsModularized: true, Targets: []model.TargetMetrics{{Name: "t", CustomFields: model.Fields{"lang": model.String("swift")}}}}}

	recorded, err := m.RecordSnapshot(records)
	if err != nil || !recorded {
		t.Fatalf("first RecordSnapshot = %v, %v", recorded, err)
	}
	recorded, err = m.RecordSnapshot(records)
	if err != nil {
		t.Fatal(err)
	}
	if recorded {
		t.Error("second RecordSnapshot with identical metrics should be skipped")
	}
	if len(store.history.Snapshots) != 1 || store.saves != 1 {
		t.Errorf("snapshots = %d, saves = %d", len(store.history.Snapshots), store.saves)
	}

	records = append(records, model.MetricsRecord{Name: "B"})
	if recorded, _ := m.RecordSnapshot(records); !recorded {
		t.Error("changed metrics should be recorded")
	}
	if len(store.history.Snapshots) != 2 {
		t.Errorf("snapshots = %d, want 2", len(store.history.Snapshots))
	}
}

func TestRecordSnapshotTruncates(t *testing.T) {
	store := &memStore{history: &History{}}
	for i := 0; i < DefaultLimit; i++ {
		store.history.Snapshots = append(store.history.Snapshots, Snapshot{
			Date:          fmt.Sprintf("old-%03d", i),
			ModulesCount:  i,
			CustomMetrics: map[string]int{},
		})
	}

	m := NewManager(store, nil, slogutil.NewDiscardLogger(), WithClock(fixedClock(epoch)))
	recorded, err := m.RecordSnapshot(make([]model.MetricsRecord, 500))
	if err != nil || !recorded {
		t.Fatalf("RecordSnapshot = %v, %v", recorded, err)
	}

	snaps := store.history.Snapshots
	if len(snaps) != DefaultLimit {
		t.Fatalf("len = %d, want %d", len(snaps), DefaultLimit)
	}
	if snaps[0].Date != "old-001" {
		t.Errorf("oldest snapshot = %q, want old-001 (old-000 evicted)", snaps[0].Date)
	}
	if snaps[len(snaps)-1].ModulesCount != 500 {
		t.Errorf("newest snapshot = %+v", snaps[len(snaps)-1])
	}
}

func TestWithLimit(t *testing.T) {
	store := &memStore{}
	m := NewManager(store, nil, slogutil.NewDiscardLogger(), WithLimit(2), WithClock(tickingClock(epoch)))
	for i := 1; i <= 4; i++ {
		if _, err := m.RecordSnapshot(make([]model.MetricsRecord, i)); err != nil {
			t.Fatal(err)
		}
	}
	var counts []int
	for _, s := range store.history.Snapshots {
		counts = append(counts, s.ModulesCount)
	}
	if diff := cmp.Diff([]int{3, 4}, counts); diff != "" {
		t.Errorf("kept (-want +got):\n%s", diff)
	}

	if NewManager(store, nil, slogutil.NewDiscardLogger(), WithLimit(0)).limit != DefaultLimit {
		t.Error("WithLimit(0) should keep the default")
	}
}

func TestRecordSnapshotCorruptHistoryStartsOver(t *testing.T) {
	store := &memStore{loadErr: trackerrors.New(trackerrors.HistoryCorrupt, "bad", nil)}
	m := NewManager(store, nil, slogutil.NewDiscardLogger())

	recorded, err := m.RecordSnapshot(nil)
	if err != nil || !recorded {
		t.Fatalf("RecordSnapshot = %v, %v", recorded, err)
	}
	if len(store.history.Snapshots) != 1 {
		t.Errorf("snapshots = %d, want 1", len(store.history.Snapshots))
	}
}

func TestRecordSnapshotSaveError(t *testing.T) {
	saveErr := errors.New("disk full")
	m := NewManager(&memStore{saveErr: saveErr}, nil, slogutil.NewDiscardLogger())

	recorded, err := m.RecordSnapshot(nil)
	if !errors.Is(err, saveErr) {
		t.Errorf("err = %v, want %v", err, saveErr)
	}
	if recorded {
		t.Error("recorded = true on save failure")
	}
}

func TestEndToEndSwiftScenario(t *testing.T) {
	scanners := scanner.NewRegistry()
	scanners.Register("test", func(string) []model.Entity {
		return []model.Entity{model.NewEntity("Core", "/p/Core", "test", model.Target{Name: "CoreImpl", Path: "CoreImpl"})}
	})

	registry := rules.NewRegistry()
	if err := registry.RegisterTargetRule(langField(), func(model.Target, string) model.Fields {
		return model.Fields{"lang": model.String("swift")}
	}); err != nil {
		t.Fatal(err)
	}

	logger := slogutil.NewDiscardLogger()
	records := analysis.NewEngine(registry, logger).AnalyzeAll(scanners.ScanAll("/p"))
	if len(records) != 1 || !records[0].IsModularized {
		t.Fatalf("records = %+v", records)
	}
	if v, _ := records[0].Targets[0].CustomFields["lang"].AsString(); v != "swift" {
		t.Errorf("lang = %q", v)
	}

	store := NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	m := NewManager(store, registry.AllFieldsMetadata(), logger, WithClock(tickingClock(epoch)))

	snap := m.CreateSnapshot(records)
	if snap.ModulesCount != 1 || snap.ModularizedCount != 1 || snap.LegacyCount != 0 || snap.TotalTargets != 1 {
		t.Errorf("snapshot counters = %+v", snap)
	}
	if snap.CustomMetrics["lang_swift_count"] != 1 {
		t.Errorf("lang_swift_count = %d, want 1", snap.CustomMetrics["lang_swift_count"])
	}

	for i := 0; i < 2; i++ {
		if _, err := m.RecordSnapshot(records); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(m.Load().Snapshots); got != 1 {
		t.Errorf("history length after unchanged rerun = %d, want 1", got)
	}
}

func TestEmptyRegistries(t *testing.T) {
	logger := slogutil.NewDiscardLogger()
	registry := rules.NewRegistry()
	entities := scanner.NewRegistry().ScanAll(t.TempDir())
	records := analysis.NewEngine(registry, logger).AnalyzeAll(entities)

	if len(entities) != 0 || len(records) != 0 {
		t.Fatalf("entities = %d, records = %d", len(entities), len(records))
	}

	snap := NewManager(&memStore{}, registry.AllFieldsMetadata(), logger).CreateSnapshot(records)
	zero := Snapshot{Date: snap.Date, CustomMetrics: map[string]int{}}
	if diff := cmp.Diff(zero, snap); diff != "" {
		t.Errorf("snapshot (-want +got):\n%s", diff)
	}
}
