package modules

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ManifestFile represents a manifest file that can be used to detect modules
type ManifestFile struct {
	// FileName is the name of the manifest file
	FileName string
	// Language is the language associated with this manifest
	Language string
}

// ManifestFiles is the list of manifest files to search for, in priority
// order: when a directory holds several, the first one decides.
var ManifestFiles = []ManifestFile{
	{FileName: ManifestPackageSwift, Language: LanguageSwift},
	{FileName: ManifestGoMod, Language: LanguageGo},
	{FileName: ManifestCargoToml, Language: LanguageRust},
	{FileName: ManifestPackageJSON, Language: LanguageTypeScript},
	{FileName: ManifestPubspecYaml, Language: LanguageDart},
	{FileName: ManifestPyprojectToml, Language: LanguagePython},
	{FileName: ManifestPomXML, Language: LanguageJava},
	{FileName: ManifestBuildGradle, Language: LanguageJava},
	{FileName: ManifestBuildGradleKts, Language: LanguageKotlin},
}

// ManifestNames returns the manifest file names in priority order.
func ManifestNames() []string {
	names := make([]string, len(ManifestFiles))
	for i, mf := range ManifestFiles {
		names[i] = mf.FileName
	}
	return names
}

// ConventionDirectories are the source folders that become targets of
// ecosystems without a richer layout.
var ConventionDirectories = []string{"src", "lib"}

var extensionLanguages = map[string]string{
	".swift": LanguageSwift,
	".m":     LanguageObjC,
	".mm":    LanguageObjC,
	".go":    LanguageGo,
	".ts":    LanguageTypeScript,
	".tsx":   LanguageTypeScript,
	".js":    LanguageJavaScript,
	".jsx":   LanguageJavaScript,
	".dart":  LanguageDart,
	".py":    LanguagePython,
	".rs":    LanguageRust,
	".java":  LanguageJava,
	".kt":    LanguageKotlin,
	".kts":   LanguageKotlin,
	".c":     LanguageC,
	".h":     LanguageC,
	".cc":    LanguageCpp,
	".cpp":   LanguageCpp,
	".hpp":   LanguageCpp,
}

// LanguageForFile maps a file name to a language by extension, or
// LanguageUnknown for non-source files.
func LanguageForFile(name string) string {
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(name))]; ok {
		return lang
	}
	return LanguageUnknown
}

// DetectManifestInDir checks for manifest files in a specific directory
func DetectManifestInDir(dir string) (string, string) {
	for _, mf := range ManifestFiles {
		manifestPath := filepath.Join(dir, mf.FileName)
		if info, err := os.Stat(manifestPath); err == nil && !info.IsDir() {
			return mf.FileName, mf.Language
		}
	}
	return ManifestNone, LanguageUnknown
}

// extractModuleName extracts the module name from manifest or path
func extractModuleName(dir, manifestType string) string {
	manifestPath := filepath.Join(dir, manifestType)
	var name string
	switch manifestType {
	case ManifestPackageSwift:
		name = extractNameFromPackageSwift(manifestPath)
	case ManifestPackageJSON:
		name = extractNameFromPackageJSON(manifestPath)
	case ManifestPubspecYaml:
		name = extractNameFromPubspec(manifestPath)
	case ManifestGoMod:
		name = extractNameFromGoMod(manifestPath)
	case ManifestCargoToml:
		name = extractNameFromCargoToml(manifestPath)
	case ManifestPyprojectToml:
		name = extractNameFromPyproject(manifestPath)
	case ManifestPomXML:
		name = extractNameFromPom(manifestPath)
	}
	if name != "" {
		return name
	}
	// Fallback to directory name
	return filepath.Base(dir)
}

var swiftPackageName = regexp.MustCompile(`name:\s*"([^"]+)"`)

// extractNameFromPackageSwift returns the first name: argument, which is the
// package name in a conventional Package(...) declaration
func extractNameFromPackageSwift(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if m := swiftPackageName.FindSubmatch(data); m != nil {
		return string(m[1])
	}
	return ""
}

// extractNameFromPackageJSON extracts name from package.json
func extractNameFromPackageJSON(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return pkg.Name
}

// extractNameFromPubspec extracts name from pubspec.yaml
func extractNameFromPubspec(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var pubspec struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(data, &pubspec); err != nil {
		return ""
	}
	return pubspec.Name
}

// extractNameFromGoMod extracts the last element of the module path
func extractNameFromGoMod(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "module ") {
			parts := strings.Fields(trimmed)
			if len(parts) >= 2 {
				modulePath := strings.Trim(parts[1], `"`)
				pathParts := strings.Split(modulePath, "/")
				return pathParts[len(pathParts)-1]
			}
		}
	}
	return ""
}

// extractNameFromCargoToml extracts [package].name from Cargo.toml
func extractNameFromCargoToml(path string) string {
	var cargo struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if _, err := toml.DecodeFile(path, &cargo); err != nil {
		return ""
	}
	return cargo.Package.Name
}

// extractNameFromPyproject extracts [project].name, falling back to the
// Poetry section
func extractNameFromPyproject(path string) string {
	var py struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.DecodeFile(path, &py); err != nil {
		return ""
	}
	if py.Project.Name != "" {
		return py.Project.Name
	}
	return py.Tool.Poetry.Name
}

// extractNameFromPom extracts artifactId from pom.xml
func extractNameFromPom(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var pom struct {
		ArtifactID string `xml:"artifactId"`
	}
	if err := xml.Unmarshal(data, &pom); err != nil {
		return ""
	}
	return pom.ArtifactID
}
