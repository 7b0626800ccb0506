package modules

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"modtrack/internal/model"
	"modtrack/internal/slogutil"
	"modtrack/internal/testutil"
)

func TestManifestScanner(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"Packages/Core/Package.swift":               `let package = Package(name: "Core")`,
		"Packages/Core/Sources/CoreImpl/Core.swift": "struct Core {}",
		"Packages/Core/Sources/CoreAPI/API.swift":   "protocol API {}",
		"Packages/Core/Sources/.build/x.swift":      "",
		"Packages/Core/README.md":                   "# Core",
		"services/api/go.mod":                       "module example.com/api\n",
		"services/api/main.go":                      "package main",
		"services/api/internal/store/store.go":      "package store",
		"services/api/internal/store/testdata/x.go": "package x",
		"services/api/docs/readme.txt":              "",
		"services/api/tools/go.mod":                 "module example.com/api/tools\n",
		"services/api/tools/gen.go":                 "package tools",
		"web/package.json":                          `{"name": "web-app"}`,
		"web/src/index.ts":                          "",
		"web/node_modules/dep/package.json":         `{"name": "dep"}`,
		".git/package.json":                         `{"name": "hidden"}`,
	})

	got := NewManifestScanner(newTestLister(t), slogutil.NewDiscardLogger()).Scan(root)

	want := []model.Entity{
		model.NewEntity("Core", "Packages/Core", SourceManifest,
			model.Target{Name: "CoreAPI", Path: "Sources/CoreAPI"},
			model.Target{Name: "CoreImpl", Path: "Sources/CoreImpl"},
		),
		model.NewEntity("api", "services/api", SourceManifest,
			model.Target{Name: "api", Path: ".", Flat: true},
			model.Target{Name: "internal/store", Path: "internal/store", Flat: true},
		),
		model.NewEntity("tools", "services/api/tools", SourceManifest,
			model.Target{Name: "tools", Path: ".", Flat: true},
		),
		model.NewEntity("web-app", "web", SourceManifest,
			model.Target{Name: "src", Path: "src"},
		),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan (-want +got):\n%s", diff)
	}
}

func TestManifestScannerRootModule(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"Cargo.toml": "[package]\nname = \"cli\"\n",
		"lib/":       "",
	})

	got := NewManifestScanner(newTestLister(t), slogutil.NewDiscardLogger()).Scan(root)
	want := []model.Entity{model.NewEntity("cli", ".", SourceManifest, model.Target{Name: "lib", Path: "lib"})}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan (-want +got):\n%s", diff)
	}
}

func TestManifestScannerMissingRoot(t *testing.T) {
	got := NewManifestScanner(newTestLister(t), slogutil.NewDiscardLogger()).Scan(t.TempDir() + "/missing")
	if len(got) != 0 {
		t.Errorf("Scan(missing) = %v", got)
	}
}
