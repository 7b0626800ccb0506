// Package checks provides the built-in detection rules and the loader for
// YAML pattern rules.
package checks

import (
	"fmt"
	"log/slog"

	"modtrack/internal/modules"
	"modtrack/internal/rules"
	"modtrack/internal/walk"
)

// Built-in rule names, as used in the rules.enabled config key.
const (
	RuleLanguage    = "language"
	RuleSourceFiles = "source_files"
	RuleComplexity  = "complexity"
	RuleHasReadme   = "has_readme"
)

// Names lists the built-in rules in their default order.
var Names = []string{RuleLanguage, RuleSourceFiles, RuleComplexity, RuleHasReadme}

// Options configures the built-in rules.
type Options struct {
	// Root is the absolute repository root entity paths are relative to
	Root string

	// RulesFile is the YAML rules file relative to Root; empty disables it
	RulesFile string

	// Lister lists files once per directory per run
	Lister *walk.Lister
}

// Register adds the enabled built-in rules in the given order, then every
// rule of the YAML rules file. Unknown built-in names are an error; an
// invalid rules file is logged and skipped.
func Register(reg *rules.Registry, enabled []string, opts Options, logger *slog.Logger) error {
	if opts.Lister == nil {
		lister, err := modules.NewLister(walk.DefaultCacheSize, walk.DefaultIgnore)
		if err != nil {
			return err
		}
		opts.Lister = lister
	}
	fs := &files{root: opts.Root, lister: opts.Lister}

	for _, name := range enabled {
		var err error
		switch name {
		case RuleLanguage:
			err = reg.RegisterTargetRule(LanguageField(), fs.languageRule)
		case RuleSourceFiles:
			err = reg.RegisterTargetRule(SourceFilesField(), fs.sourceFilesRule)
		case RuleComplexity:
			err = reg.RegisterTargetRule(ComplexityField(), newComplexityRule(fs, logger))
		case RuleHasReadme:
			err = reg.RegisterModuleRule(HasReadmeField(), fs.hasReadmeRule)
		default:
			return fmt.Errorf("unknown rule %q (available: %v)", name, Names)
		}
		if err != nil {
			return err
		}
	}

	if opts.RulesFile == "" {
		return nil
	}
	return registerPatternRules(reg, fs, opts.RulesFile, logger)
}
