package modules

import (
	"testing"

	"modtrack/internal/testutil"
)

func TestLanguageForFile(t *testing.T) {
	tests := map[string]string{
		"main.swift":  LanguageSwift,
		"View.M":      LanguageObjC,
		"server.go":   LanguageGo,
		"index.tsx":   LanguageTypeScript,
		"lib.rs":      LanguageRust,
		"build.kts":   LanguageKotlin,
		"README.md":   LanguageUnknown,
		"Makefile":    LanguageUnknown,
		"header.hpp":  LanguageCpp,
		"module.dart": LanguageDart,
	}
	for name, want := range tests {
		if got := LanguageForFile(name); got != want {
			t.Errorf("LanguageForFile(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestDetectManifestInDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"package.json":  `{"name": "web"}`,
		"Package.swift": `let package = Package(name: "App")`,
	})

	manifest, language := DetectManifestInDir(dir)
	if manifest != ManifestPackageSwift || language != LanguageSwift {
		t.Errorf("DetectManifestInDir = %q, %q; Package.swift should take priority", manifest, language)
	}

	if m, l := DetectManifestInDir(t.TempDir()); m != ManifestNone || l != LanguageUnknown {
		t.Errorf("empty dir = %q, %q", m, l)
	}
}

func TestExtractModuleName(t *testing.T) {
	tests := []struct {
		manifest string
		content  string
		want     string
	}{
		{ManifestPackageSwift, "// swift-tools-version:5.9\nlet package = Package(\n    name: \"FeatureKit\",\n    targets: [.target(name: \"Impl\")]\n)", "FeatureKit"},
		{ManifestPackageJSON, `{"name": "@acme/web", "version": "1.0.0"}`, "@acme/web"},
		{ManifestPubspecYaml, "name: flutter_app\nversion: 1.0.0\n", "flutter_app"},
		{ManifestGoMod, "module github.com/acme/service\n\ngo 1.22\n", "service"},
		{ManifestCargoToml, "[package]\nname = \"engine\"\nversion = \"0.1.0\"\n", "engine"},
		{ManifestPyprojectToml, "[project]\nname = \"tooling\"\n", "tooling"},
		{ManifestPyprojectToml, "[tool.poetry]\nname = \"poetry-app\"\n", "poetry-app"},
		{ManifestPomXML, "<project><groupId>com.acme</groupId><artifactId>billing</artifactId></project>", "billing"},
		{ManifestBuildGradle, "plugins { id 'java' }", "fallback"},
		{ManifestPackageJSON, `{not json`, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.manifest+"/"+tt.want, func(t *testing.T) {
			dir := t.TempDir() + "/fallback"
			testutil.WriteTree(t, dir, map[string]string{tt.manifest: tt.content})
			if got := extractModuleName(dir, tt.manifest); got != tt.want {
				t.Errorf("extractModuleName = %q, want %q", got, tt.want)
			}
		})
	}
}
