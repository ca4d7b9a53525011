package registrygen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/donutnomad/godiscover/annotation"
	"github.com/donutnomad/godiscover/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTypes() []*catalog.TypeInfo {
	return []*catalog.TypeInfo{
		{
			ID:          "example.com/app/cards.Welcome",
			Name:        "Welcome",
			Package:     "example.com/app/cards",
			PackageName: "cards",
			File:        "/repo/cards/cards.go",
			Line:        4,
			Kind:        catalog.KindStruct,
			Annotations: annotation.Parse("// @Card(enabled=true, priority=10)"),
			Fields: []catalog.FieldInfo{
				{Name: "Title", Type: "string", Tag: `json:"title"`, Line: 5,
					Annotations: annotation.Parse(`// @Env(name="APP_TITLE")`)},
				{Name: "Ratio", Type: "float64", Tag: `fmt:"%.2f"`},
			},
			Methods: []catalog.MethodInfo{
				{Name: "Render", Signature: "func() string", Line: 8},
			},
		},
		{
			ID:       "example.com/app/shapes.AbstractSub",
			Name:     "AbstractSub",
			Package:  "example.com/app/shapes",
			Kind:     catalog.KindStruct,
			Abstract: true,
			Embeds:   []string{"example.com/app/shapes.Base"},
		},
		{
			ID:      "example.com/app/contracts.Renderer",
			Name:    "Renderer",
			Package: "example.com/app/contracts",
			Kind:    catalog.KindInterface,
			Methods: []catalog.MethodInfo{{Name: "Render", Signature: "func() string"}},
		},
	}
}

func parse(t *testing.T, src []byte) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "registry_gen.go", src, parser.ParseComments)
	require.NoError(t, err, string(src))
	return f
}

func importPaths(f *ast.File) []string {
	var out []string
	for _, imp := range f.Imports {
		out = append(out, strings.Trim(imp.Path.Value, `"`))
	}
	return out
}

func TestGenerate(t *testing.T) {
	src, err := Generate("registry", sampleTypes())
	require.NoError(t, err)

	code := string(src)
	assert.True(t, strings.HasPrefix(code, "// Code generated by godiscover generate. DO NOT EDIT."))

	f := parse(t, src)
	assert.Equal(t, "registry", f.Name.Name)
	assert.ElementsMatch(t, []string{catalogPath, annotationPath}, importPaths(f))

	var fn *ast.FuncDecl
	for _, decl := range f.Decls {
		if d, ok := decl.(*ast.FuncDecl); ok && d.Name.Name == FuncName {
			fn = d
		}
	}
	require.NotNil(t, fn, code)

	assert.Contains(t, code, `ID: "example.com/app/cards.Welcome"`)
	assert.Contains(t, code, "catalog.KindInterface")
	assert.Contains(t, code, "Abstract: true")
	assert.Contains(t, code, `"priority": "10"`)
	assert.Contains(t, code, `Tag: "json:\"title\""`)
	assert.Contains(t, code, `%.2f`)
	assert.Contains(t, code, `Embeds: []string{"example.com/app/shapes.Base"}`)
	assert.Equal(t, 3, strings.Count(code, "&catalog.TypeInfo{"))
}

func TestGenerate_WithoutAnnotations(t *testing.T) {
	types := sampleTypes()[1:]
	src, err := Generate("registry", types)
	require.NoError(t, err)

	f := parse(t, src)
	assert.Equal(t, []string{catalogPath}, importPaths(f))
}

func TestGenerate_Empty(t *testing.T) {
	src, err := Generate("registry", nil)
	require.NoError(t, err)

	parse(t, src)
	assert.NotContains(t, string(src), "c.Register(")

	_, err = Generate("", nil)
	assert.Error(t, err)
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := Generate("registry", sampleTypes())
	require.NoError(t, err)
	second, err := Generate("registry", sampleTypes())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry_gen.go")
	require.NoError(t, WriteFile(path, "registry", sampleTypes()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	parse(t, content)
}
