package history

import (
	"encoding/json"
	"os"

	trackerrors "modtrack/internal/errors"
	"modtrack/internal/jsonutil"
	"modtrack/internal/paths"
	"modtrack/internal/storage"
)

// Store persists the snapshot sequence. Load on a store that holds nothing
// yet returns an empty history without error.
type Store interface {
	Load() (*History, error)
	Save(h *History) error
}

// FileStore keeps history in a pretty-printed, key-sorted JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the history file. A missing file is an empty history; an
// unreadable or malformed one is HISTORY_CORRUPT.
func (s *FileStore) Load() (*History, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &History{Snapshots: []Snapshot{}}, nil
		}
		return nil, trackerrors.New(trackerrors.HistoryCorrupt, "cannot read "+s.path, err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, trackerrors.New(trackerrors.HistoryCorrupt, "cannot decode "+s.path, err)
	}
	if h.Snapshots == nil {
		h.Snapshots = []Snapshot{}
	}
	return &h, nil
}

// Save writes the history atomically.
func (s *FileStore) Save(h *History) error {
	data, err := jsonutil.Sorted(h.Normalized(), "  ")
	if err != nil {
		return trackerrors.New(trackerrors.SerializationFailed, "cannot encode history", err)
	}
	if err := paths.WriteFileAtomic(s.path, append(data, '\n'), 0644); err != nil {
		return trackerrors.New(trackerrors.HistoryUnwritable, "cannot write "+s.path, err)
	}
	return nil
}

// SQLiteStore keeps history in the snapshots tables of a storage database.
type SQLiteStore struct {
	db *storage.DB
}

// NewSQLiteStore creates a store over an open database.
func NewSQLiteStore(db *storage.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads every stored snapshot.
func (s *SQLiteStore) Load() (*History, error) {
	rows, err := s.db.LoadSnapshots()
	if err != nil {
		return nil, trackerrors.New(trackerrors.HistoryCorrupt, "cannot read "+s.db.Path(), err)
	}
	h := &History{Snapshots: make([]Snapshot, 0, len(rows))}
	for _, r := range rows {
		h.Snapshots = append(h.Snapshots, Snapshot{
			Date:             r.Date,
			ModulesCount:     r.ModulesCount,
			ModularizedCount: r.ModularizedCount,
			LegacyCount:      r.LegacyCount,
			TotalTargets:     r.TotalTargets,
			CustomMetrics:    r.Metrics,
		})
	}
	return h, nil
}

// Save replaces the stored sequence in one transaction.
func (s *SQLiteStore) Save(h *History) error {
	h = h.Normalized()
	rows := make([]storage.SnapshotRow, 0, len(h.Snapshots))
	for _, snap := range h.Snapshots {
		rows = append(rows, storage.SnapshotRow{
			Date:             snap.Date,
			ModulesCount:     snap.ModulesCount,
			ModularizedCount: snap.ModularizedCount,
			LegacyCount:      snap.LegacyCount,
			TotalTargets:     snap.TotalTargets,
			Metrics:          snap.CustomMetrics,
		})
	}
	if err := s.db.ReplaceSnapshots(rows); err != nil {
		return trackerrors.New(trackerrors.HistoryUnwritable, "cannot write "+s.db.Path(), err)
	}
	return nil
}

// Normalized returns a copy with nil collections replaced by empty ones, so
// documents encode [] and {} rather than null. A nil history is empty.
func (h *History) Normalized() *History {
	out := &History{Snapshots: []Snapshot{}}
	if h == nil {
		return out
	}
	for _, snap := range h.Snapshots {
		if snap.CustomMetrics == nil {
			snap.CustomMetrics = map[string]int{}
		}
		out.Snapshots = append(out.Snapshots, snap)
	}
	return out
}
