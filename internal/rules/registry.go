// Package rules holds detection rules and the field metadata they declare.
//
// Target rules run once per target of an entity, module rules once per
// entity. Within a scope every rule runs in registration order and their
// outputs merge into one field map; a later rule overwrites keys an earlier
// one produced.
package rules

import (
	"fmt"

	"modtrack/internal/model"
)

// TargetRule computes fields for one target. parentPath is the path of the
// entity owning the target.
type TargetRule func(target model.Target, parentPath string) model.Fields

// ModuleRule computes fields for one entity.
type ModuleRule func(entity model.Entity) model.Fields

type targetEntry struct {
	meta model.FieldMetadata
	rule TargetRule
}

type moduleEntry struct {
	meta model.FieldMetadata
	rule ModuleRule
}

// Registry stores rules in registration order. It is filled during startup
// and read-only afterwards.
type Registry struct {
	targetRules []targetEntry
	moduleRules []moduleEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterTargetRule appends a target rule. An empty level defaults to
// target.
func (r *Registry) RegisterTargetRule(meta model.FieldMetadata, rule TargetRule) error {
	meta, err := prepare(meta, model.LevelTarget)
	if err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("target rule %q: nil rule", meta.ID)
	}
	r.targetRules = append(r.targetRules, targetEntry{meta: meta, rule: rule})
	return nil
}

// RegisterModuleRule appends a module rule. An empty level defaults to
// module.
func (r *Registry) RegisterModuleRule(meta model.FieldMetadata, rule ModuleRule) error {
	meta, err := prepare(meta, model.LevelModule)
	if err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("module rule %q: nil rule", meta.ID)
	}
	r.moduleRules = append(r.moduleRules, moduleEntry{meta: meta, rule: rule})
	return nil
}

func prepare(meta model.FieldMetadata, scope model.Level) (model.FieldMetadata, error) {
	if meta.Level == "" {
		meta.Level = scope
	}
	if meta.Values == nil {
		meta.Values = map[string]model.ValueMeta{}
	}
	if err := meta.Validate(); err != nil {
		return meta, err
	}
	return meta, nil
}

// ApplyToTarget runs every target rule against target and merges the results.
func (r *Registry) ApplyToTarget(target model.Target, parentPath string) model.Fields {
	fields := model.Fields{}
	for _, e := range r.targetRules {
		fields.Merge(e.rule(target, parentPath))
	}
	return fields
}

// ApplyToModule runs every module rule against entity and merges the results.
func (r *Registry) ApplyToModule(entity model.Entity) model.Fields {
	fields := model.Fields{}
	for _, e := range r.moduleRules {
		fields.Merge(e.rule(entity))
	}
	return fields
}

// AllFieldsMetadata returns the metadata of every registered rule, target
// rules first, deduplicated by id. The first declaration of an id wins.
func (r *Registry) AllFieldsMetadata() []model.FieldMetadata {
	seen := make(map[string]bool)
	out := []model.FieldMetadata{}
	add := func(meta model.FieldMetadata) {
		if seen[meta.ID] {
			return
		}
		seen[meta.ID] = true
		out = append(out, meta)
	}
	for _, e := range r.targetRules {
		add(e.meta)
	}
	for _, e := range r.moduleRules {
		add(e.meta)
	}
	return out
}

// FieldsMetadataDict returns AllFieldsMetadata keyed by field id.
func (r *Registry) FieldsMetadataDict() map[string]model.FieldMetadata {
	all := r.AllFieldsMetadata()
	dict := make(map[string]model.FieldMetadata, len(all))
	for _, meta := range all {
		dict[meta.ID] = meta
	}
	return dict
}

// Count returns the number of registered rules across both scopes.
func (r *Registry) Count() int {
	return len(r.targetRules) + len(r.moduleRules)
}
