package checks

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	trackerrors "modtrack/internal/errors"
	"modtrack/internal/model"
	"modtrack/internal/paths"
	"modtrack/internal/rules"
	"modtrack/internal/walk"
)

// maxPatternFileSize bounds how much of a file pattern rules read.
const maxPatternFileSize = 1 << 20

// RulesFile is the document stored in .modtrack/rules.yaml.
type RulesFile struct {
	Rules []PatternRule `yaml:"rules"`
}

// PatternRule declares a field whose value is the first detect entry whose
// regexp matches any file selected by Files. Table defaults to true.
type PatternRule struct {
	ID          string      `yaml:"id"`
	Label       string      `yaml:"label"`
	Description string      `yaml:"description"`
	Level       model.Level `yaml:"level"`

	Filterable bool            `yaml:"filterable"`
	Table      *bool           `yaml:"table"`
	Chart      bool            `yaml:"chart"`
	Comparison bool            `yaml:"comparison"`
	Inverted   bool            `yaml:"inverted"`
	ChartType  model.ChartType `yaml:"chart_type"`
	ChartColor string          `yaml:"chart_color"`

	// Files is a doublestar glob relative to the module or target directory
	Files   string               `yaml:"files"`
	Detect  []DetectEntry        `yaml:"detect"`
	Default string               `yaml:"default"`
	Values  map[string]ValueDecl `yaml:"values"`
}

// DetectEntry maps a regexp to the value it produces.
type DetectEntry struct {
	Value   string `yaml:"value"`
	Pattern string `yaml:"pattern"`
}

// ValueDecl is the YAML form of model.ValueMeta.
type ValueDecl struct {
	Label       string `yaml:"label"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
}

// Metadata converts the rule's declaration to field metadata.
func (r PatternRule) Metadata() model.FieldMetadata {
	level := r.Level
	if level == "" {
		level = model.LevelTarget
	}
	label := r.Label
	if label == "" {
		label = r.ID
	}
	meta := model.NewField(r.ID, label, level)
	meta.Description = r.Description
	meta.IsFilterable = r.Filterable
	if r.Table != nil {
		meta.ShowInTable = *r.Table
	}
	meta.ShowInChart = r.Chart
	meta.ShowInComparison = r.Comparison
	meta.InvertedComparison = r.Inverted
	meta.ChartType = r.ChartType
	meta.ChartColor = r.ChartColor
	for token, v := range r.Values {
		meta.Values[token] = model.ValueMeta{Label: v.Label, Color: v.Color, Description: v.Description}
	}
	return meta
}

type compiledDetect struct {
	value string
	re    *regexp.Regexp
}

// compile validates the rule and compiles its detect patterns.
func (r PatternRule) compile() ([]compiledDetect, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("rule without id")
	}
	if r.Files == "" {
		return nil, fmt.Errorf("rule %q: missing files glob", r.ID)
	}
	if err := walk.ValidatePattern(r.Files); err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.ID, err)
	}
	if err := r.Metadata().Validate(); err != nil {
		return nil, err
	}

	detects := make([]compiledDetect, 0, len(r.Detect))
	for i, d := range r.Detect {
		if d.Value == "" {
			return nil, fmt.Errorf("rule %q: detect entry %d has no value", r.ID, i+1)
		}
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: detect entry %d: %w", r.ID, i+1, err)
		}
		detects = append(detects, compiledDetect{value: d.Value, re: re})
	}
	return detects, nil
}

// LoadRulesFile parses and validates a rules file. A missing file yields no
// rules.
func LoadRulesFile(path string) ([]PatternRule, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc RulesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	for _, r := range doc.Rules {
		if _, err := r.compile(); err != nil {
			return nil, err
		}
	}
	return doc.Rules, nil
}

func registerPatternRules(reg *rules.Registry, fs *files, rulesFile string, logger *slog.Logger) error {
	path := paths.Resolve(fs.root, rulesFile)
	loaded, err := LoadRulesFile(path)
	if err != nil {
		tracked := trackerrors.New(trackerrors.RulesFileInvalid, "invalid rules file", err)
		logger.Warn("Ignoring rules file", "file", path, "error", tracked.Error())
		return nil
	}

	for _, r := range loaded {
		p, err := newPatternRule(fs, r)
		if err != nil {
			return err
		}
		meta := r.Metadata()
		if meta.Level == model.LevelModule {
			err = reg.RegisterModuleRule(meta, p.module)
		} else {
			err = reg.RegisterTargetRule(meta, p.target)
		}
		if err != nil {
			return err
		}
		logger.Debug("Registered pattern rule", "id", r.ID, "level", meta.Level, "detect", len(p.detects))
	}
	return nil
}

type patternRule struct {
	files    *files
	id       string
	glob     string
	detects  []compiledDetect
	fallback string
}

func newPatternRule(fs *files, r PatternRule) (*patternRule, error) {
	detects, err := r.compile()
	if err != nil {
		return nil, err
	}
	return &patternRule{files: fs, glob: r.Files, detects: detects, fallback: r.Default, id: r.ID}, nil
}

func (p *patternRule) target(target model.Target, parentPath string) model.Fields {
	return p.evaluate(p.files.targetDir(target, parentPath), target.Flat)
}

func (p *patternRule) module(entity model.Entity) model.Fields {
	return p.evaluate(p.files.entityDir(entity), false)
}

func (p *patternRule) evaluate(dir string, flat bool) model.Fields {
	if value := p.detect(dir, flat); value != "" {
		return model.Fields{p.id: model.String(value)}
	}
	return model.Fields{}
}

// detect returns the first entry matching any selected file, else the
// default. Flat directories only offer their own files to the glob.
func (p *patternRule) detect(dir string, flat bool) string {
	matched, err := p.files.lister.Glob(dir, p.glob)
	if err != nil {
		return p.fallback
	}
	if flat {
		own := matched[:0]
		for _, name := range matched {
			if !strings.Contains(name, "/") {
				own = append(own, name)
			}
		}
		matched = own
	}
	if len(matched) == 0 {
		return p.fallback
	}

	contents := make([][]byte, 0, len(matched))
	for _, name := range matched {
		data, err := readHead(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			continue
		}
		contents = append(contents, data)
	}

	for _, d := range p.detects {
		for _, c := range contents {
			if d.re.Match(c) {
				return d.value
			}
		}
	}
	return p.fallback
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxPatternFileSize))
}
