package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `language = "zh_CN"

[project]
module = "demo"

[build]
output = "bin"

[diagnostics]
format = "json"
`)
	nested := filepath.Join(root, "src", "geo")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, found, err := FindAndLoad(nested)
	if err != nil {
		t.Fatal(err)
	}
	if found != path {
		t.Errorf("config path = %q, want %q", found, path)
	}
	if cfg.Project.Module != "demo" || cfg.Diagnostics.Format != FormatJSON || cfg.Language != "zh_CN" {
		t.Errorf("config = %+v", cfg)
	}
	if got := cfg.OutputDir(found, nested); got != filepath.Join(root, "bin") {
		t.Errorf("output dir = %q", got)
	}
}

func TestFindAndLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, found, err := FindAndLoad(dir)
	if err != nil {
		t.Fatal(err)
	}
	if found != "" && filepath.Dir(found) == dir {
		t.Fatalf("unexpected config file %q", found)
	}
	if found == "" {
		if *cfg != *DefaultConfig() {
			t.Errorf("config = %+v, want defaults", cfg)
		}
		if got := cfg.OutputDir("", dir); got != filepath.Join(dir, "output") {
			t.Errorf("output dir = %q", got)
		}
	}
}

func TestLoadFillsMissingValues(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[project]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project.Module != "App" || cfg.Build.Output != "output" || cfg.Diagnostics.Format != FormatText {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"format":   "[diagnostics]\nformat = \"xml\"\n",
		"language": "language = \"fr\"\n",
		"syntax":   "[project\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, t.TempDir(), text)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
