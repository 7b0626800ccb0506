// Package modules provides the built-in scanners: modules declared in
// MODULES.toml, modules detected from build manifests and target-less legacy
// folders.
package modules

// Scanner names, also used as entity sources
const (
	SourceDeclared = "declared"
	SourceManifest = "manifest"
	SourceLegacy   = "legacy"
)

// ManifestType constants for well-known manifest files
const (
	ManifestPackageSwift   = "Package.swift"
	ManifestPackageJSON    = "package.json"
	ManifestPubspecYaml    = "pubspec.yaml"
	ManifestGoMod          = "go.mod"
	ManifestCargoToml      = "Cargo.toml"
	ManifestPyprojectToml  = "pyproject.toml"
	ManifestPomXML         = "pom.xml"
	ManifestBuildGradle    = "build.gradle"
	ManifestBuildGradleKts = "build.gradle.kts"
	ManifestNone           = "" // Not a manifest-based module
)

// Language constants
const (
	LanguageSwift      = "swift"
	LanguageObjC       = "objc"
	LanguageTypeScript = "typescript"
	LanguageJavaScript = "javascript"
	LanguageDart       = "dart"
	LanguageGo         = "go"
	LanguageRust       = "rust"
	LanguagePython     = "python"
	LanguageJava       = "java"
	LanguageKotlin     = "kotlin"
	LanguageC          = "c"
	LanguageCpp        = "cpp"
	LanguageUnknown    = "unknown"
)
