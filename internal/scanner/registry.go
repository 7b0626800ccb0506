// Package scanner holds the ordered set of discovery functions that turn a
// source tree into entities.
package scanner

import "modtrack/internal/model"

// ScanFunc discovers entities under root. A missing or unreadable root yields
// no entities; scanners never fail the run.
type ScanFunc func(root string) []model.Entity

// Scanner is the interface form of a ScanFunc, for scanners that carry state.
type Scanner interface {
	Name() string
	Scan(root string) []model.Entity
}

type entry struct {
	name string
	scan ScanFunc
}

// Registry runs scanners in registration order. It is filled during startup
// and read-only afterwards, so it carries no lock.
type Registry struct {
	scanners []entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a named scanner. Names are labels only; registering the
// same name twice runs both.
func (r *Registry) Register(name string, fn ScanFunc) {
	r.scanners = append(r.scanners, entry{name: name, scan: fn})
}

// RegisterScanner registers s under its own name.
func (r *Registry) RegisterScanner(s Scanner) {
	r.Register(s.Name(), s.Scan)
}

// ScanAll invokes every scanner in order and concatenates their results
// without deduplication.
func (r *Registry) ScanAll(root string) []model.Entity {
	all := []model.Entity{}
	for _, s := range r.scanners {
		all = append(all, s.scan(root)...)
	}
	return all
}

// Count returns the number of registered scanners.
func (r *Registry) Count() int {
	return len(r.scanners)
}

// Names returns scanner names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.scanners))
	for i, s := range r.scanners {
		names[i] = s.name
	}
	return names
}
