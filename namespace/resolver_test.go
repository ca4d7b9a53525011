package namespace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveFromFile_GoMod(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.25\n")
	rootFile := writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	nested := writeFile(t, filepath.Join(root, "internal", "cards", "card.go"), "package cards\n")

	r := New(DefaultConfig())

	ns, ok := r.ResolveFromFile(rootFile, "")
	require.True(t, ok)
	assert.Equal(t, "example.com/shop", ns)

	ns, ok = r.ResolveFromFile(nested, "")
	require.True(t, ok)
	assert.Equal(t, "example.com/shop/internal/cards", ns)

	id, ok := r.ResolveType(nested, "WelcomeCard", "")
	require.True(t, ok)
	assert.Equal(t, "example.com/shop/internal/cards.WelcomeCard", id)

	modulePath, moduleRoot, err := r.ModuleOf(filepath.Dir(nested))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", modulePath)
	assert.Equal(t, root, moduleRoot)
}

func TestResolveFromFile_Shapes(t *testing.T) {
	root := t.TempDir()
	cfg := Config{
		Packages: Shape{Path: "packages", Namespace: "example.com/acme/{package}"},
		Modules:  Shape{Path: "modules", Namespace: "example.com/mods"},
		App:      Shape{Path: "app", Namespace: "example.com/app"},
	}
	r := New(cfg)

	tests := []struct {
		name string
		file string
		want string
	}{
		{"package with src", filepath.Join(root, "packages", "billing", "src", "invoices", "invoice.go"), "example.com/acme/billing/invoices"},
		{"package without src", filepath.Join(root, "packages", "billing", "invoice.go"), "example.com/acme/billing"},
		{"module appends name", filepath.Join(root, "modules", "blog", "src", "post.go"), "example.com/mods/blog"},
		{"app rest", filepath.Join(root, "app", "http", "controllers", "home.go"), "example.com/app/http/controllers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, ok := r.ResolveFromFile(tt.file, "")
			require.True(t, ok)
			assert.Equal(t, tt.want, ns)
		})
	}
}

func TestResolveFromFile_EmptyTemplateSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/mono\n")
	file := writeFile(t, filepath.Join(root, "packages", "billing", "src", "invoice.go"), "package billing\n")

	ns, ok := New(DefaultConfig()).ResolveFromFile(file, "")
	require.True(t, ok)
	assert.Equal(t, "example.com/mono/packages/billing/src", ns)
}

func TestResolveFromFile_CustomPattern(t *testing.T) {
	root := t.TempDir()
	r := New(DefaultConfig())
	file := filepath.Join(root, "packages", "billing", "src", "invoices", "invoice.go")

	ns, ok := r.ResolveFromFile(file, "example.com/{package}/{namespace}")
	require.True(t, ok)
	assert.Equal(t, "example.com/billing/invoices", ns)

	ns, ok = r.ResolveFromFile(file, "example.com/{package}/{class}")
	require.True(t, ok)
	assert.Equal(t, "example.com/billing/invoice", ns)

	// {module} 无法从路径中解析
	ns, ok = r.ResolveFromFile(file, "example.com/{module}")
	assert.False(t, ok)
	assert.Empty(t, ns)

	// 未知占位符
	_, ok = r.ResolveFromFile(file, "example.com/{vendor}")
	assert.False(t, ok)
}

func TestResolveFromFile_Failures(t *testing.T) {
	root := t.TempDir()
	r := New(DefaultConfig())

	tests := []struct {
		name    string
		file    string
		pattern string
	}{
		{"empty path", "", ""},
		{"not a go file", filepath.Join(root, "README.md"), ""},
		{"no go.mod", filepath.Join(root, "orphan", "x.go"), ""},
		{"invalid import path", filepath.Join(root, "x.go"), "bad path with spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, ok := r.ResolveFromFile(tt.file, tt.pattern)
			assert.False(t, ok)
			assert.Empty(t, ns)
		})
	}
}

func TestModuleCacheReset(t *testing.T) {
	root := t.TempDir()
	goMod := writeFile(t, filepath.Join(root, "go.mod"), "module example.com/one\n")
	file := writeFile(t, filepath.Join(root, "a.go"), "package one\n")

	r := New(DefaultConfig())
	ns, _ := r.ResolveFromFile(file, "")
	assert.Equal(t, "example.com/one", ns)

	writeFile(t, goMod, "module example.com/two\n")
	ns, _ = r.ResolveFromFile(file, "")
	assert.Equal(t, "example.com/one", ns)

	r.Reset()
	ns, _ = r.ResolveFromFile(file, "")
	assert.Equal(t, "example.com/two", ns)
}
