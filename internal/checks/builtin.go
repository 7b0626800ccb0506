package checks

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"modtrack/internal/model"
	"modtrack/internal/modules"
)

// LanguageField describes the dominant language of a target.
func LanguageField() model.FieldMetadata {
	f := model.NewField(RuleLanguage, "Language", model.LevelTarget)
	f.Description = "Dominant source language by file count"
	f.IsFilterable = true
	f.ShowInChart = true
	f.ChartType = model.ChartBar
	return f.
		WithValue(modules.LanguageSwift, "Swift", model.ColorOrange).
		WithValue(modules.LanguageObjC, "Objective-C", model.ColorGray).
		WithValue(modules.LanguageGo, "Go", model.ColorBlue).
		WithValue(modules.LanguageTypeScript, "TypeScript", model.ColorBlue).
		WithValue(modules.LanguageJavaScript, "JavaScript", model.ColorYellow).
		WithValue(modules.LanguageKotlin, "Kotlin", model.ColorPurple).
		WithValue(modules.LanguageJava, "Java", model.ColorRed).
		WithValue(modules.LanguageDart, "Dart", model.ColorBlue).
		WithValue(modules.LanguagePython, "Python", model.ColorYellow).
		WithValue(modules.LanguageRust, "Rust", model.ColorOrange).
		WithValue(modules.LanguageC, "C", model.ColorGray).
		WithValue(modules.LanguageCpp, "C++", model.ColorGray).
		WithValue(modules.LanguageUnknown, "Unknown", model.ColorGray)
}

// SourceFilesField describes the source file count of a target.
func SourceFilesField() model.FieldMetadata {
	f := model.NewField(RuleSourceFiles, "Source files", model.LevelTarget)
	f.Description = "Number of files with a recognised source extension"
	return f
}

// HasReadmeField describes whether a module documents itself.
func HasReadmeField() model.FieldMetadata {
	f := model.NewField(RuleHasReadme, "README", model.LevelModule)
	f.IsFilterable = true
	f.ShowInChart = true
	f.ShowInComparison = true
	f.ChartType = model.ChartLine
	f.ChartColor = model.ColorGreen
	return f.
		WithValue("true", "Yes", model.ColorGreen).
		WithValue("false", "No", model.ColorRed)
}

func (f *files) languageRule(target model.Target, parentPath string) model.Fields {
	return model.Fields{RuleLanguage: model.String(dominantLanguage(f.sources(target, parentPath)))}
}

// dominantLanguage picks the language with most files; ties go to the
// alphabetically first language.
func dominantLanguage(names []string) string {
	counts := make(map[string]int)
	for _, name := range names {
		counts[modules.LanguageForFile(filepath.Base(name))]++
	}
	if len(counts) == 0 {
		return modules.LanguageUnknown
	}

	langs := make([]string, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	best := langs[0]
	for _, lang := range langs[1:] {
		if counts[lang] > counts[best] {
			best = lang
		}
	}
	return best
}

func (f *files) sourceFilesRule(target model.Target, parentPath string) model.Fields {
	return model.Fields{RuleSourceFiles: model.Int(len(f.sources(target, parentPath)))}
}

func (f *files) hasReadmeRule(entity model.Entity) model.Fields {
	return model.Fields{RuleHasReadme: model.Bool(hasReadme(f.entityDir(entity)))}
}

func hasReadme(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(strings.ToLower(e.Name()), "readme") {
			return true
		}
	}
	return false
}
