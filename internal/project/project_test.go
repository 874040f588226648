package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalizeResolvesRelativeToAbsolute(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	got, err := Canonicalize(".")
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %s", got)
	}
}

func TestCanonicalizeResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	link := filepath.Join(dir, "link")

	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks not supported in this environment: %v", err)
	}

	got, err := Canonicalize(link)
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}

	wantReal, err := Canonicalize(real)
	if err != nil {
		t.Fatal(err)
	}
	if got != wantReal {
		t.Errorf("expected symlink to resolve to %s, got %s", wantReal, got)
	}
}

func TestLoadReturnsDefaultsWhenNoConfig(t *testing.T) {
	dir := t.TempDir()

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Root == "" {
		t.Error("expected non-empty Root")
	}
	if !filepath.IsAbs(p.Root) {
		t.Errorf("expected absolute Root, got %s", p.Root)
	}
	if p.Config == nil {
		t.Fatal("expected non-nil Config")
	}
}

func TestLoadDerivesLanguagesFromExplicitList(t *testing.T) {
	dir := t.TempDir()
	writeOtterToml(t, dir, `
[lsp]
languages = ["python", "go"]
disabled_languages = ["go"]
`)

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(p.Languages) != 1 || p.Languages[0] != "python" {
		t.Errorf("expected only python enabled, got %v", p.Languages)
	}
}

func TestLoadDerivesLanguagesFromSubsectionsWhenNoExplicitList(t *testing.T) {
	dir := t.TempDir()
	writeOtterToml(t, dir, `
[lsp.python]
enabled = true

[lsp.rust]
enabled = true
`)

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(p.Languages) != 2 {
		t.Errorf("expected 2 derived languages, got %v", p.Languages)
	}
}

func TestStructureSkipsDotGitAndVendor(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, ".git"))
	mustMkdirAll(t, filepath.Join(dir, "vendor"))
	mustMkdirAll(t, filepath.Join(dir, "src"))
	mustWriteFile(t, filepath.Join(dir, "src", "main.go"), "package main")

	entry, err := Structure(dir)
	if err != nil {
		t.Fatalf("Structure returned error: %v", err)
	}

	var names []string
	for _, c := range entry.Children {
		names = append(names, filepath.Base(c.Path))
	}
	for _, skip := range []string{".git", "vendor"} {
		for _, n := range names {
			if n == skip {
				t.Errorf("expected %s to be skipped, got children %v", skip, names)
			}
		}
	}

	found := false
	for _, n := range names {
		if n == "src" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected src directory present, got %v", names)
	}
}

func TestServiceCurrentAndReload(t *testing.T) {
	dir := t.TempDir()
	writeOtterToml(t, dir, `
[performance]
max_lsp_clients = 3
`)

	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	if svc.Current().Config.Performance.MaxLSPClients != 3 {
		t.Errorf("expected max_lsp_clients 3, got %d", svc.Current().Config.Performance.MaxLSPClients)
	}

	writeOtterToml(t, dir, `
[performance]
max_lsp_clients = 7
`)

	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if svc.Current().Config.Performance.MaxLSPClients != 7 {
		t.Errorf("expected reloaded max_lsp_clients 7, got %d", svc.Current().Config.Performance.MaxLSPClients)
	}
}

func writeOtterToml(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".otter.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write .otter.toml: %v", err)
	}
}

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}
