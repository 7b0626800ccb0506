// Package model holds the records that flow through the analysis pipeline:
// entities discovered by scanners, the self-describing field metadata rules
// declare, the values rules compute and the metrics produced per entity.
package model

// Target is a discoverable sub-unit inside an entity, such as a build target
// or library inside a package.
type Target struct {
	// Name is the target name as declared by its module
	Name string `json:"name"`

	// Path locates the target's sources; its form is scanner-defined
	Path string `json:"path"`

	// Flat targets own only the files directly in Path; their
	// subdirectories are separate targets
	Flat bool `json:"flat,omitempty"`
}

// Entity is a discovered module. An entity without targets is "not
// modularized" (legacy); that classification is derived, never stored.
type Entity struct {
	// Name is the human-readable module name
	Name string `json:"name"`

	// Path locates the module root; its form is scanner-defined
	Path string `json:"path"`

	// Source tags the scanner that produced the entity (e.g. "manifest", "legacy")
	Source string `json:"source"`

	// Targets are the module's sub-units in scanner-defined order
	Targets []Target `json:"targets"`
}

// NewEntity creates an entity owning a copy of targets.
func NewEntity(name, path, source string, targets ...Target) Entity {
	owned := make([]Target, len(targets))
	copy(owned, targets)
	return Entity{Name: name, Path: path, Source: source, Targets: owned}
}

// IsModularized reports whether the entity declares at least one target.
func (e Entity) IsModularized() bool {
	return len(e.Targets) > 0
}

// Key identifies an entity across scanners. Two scanners may report the same
// name; the source disambiguates them.
func (e Entity) Key() string {
	return e.Source + "/" + e.Name
}
