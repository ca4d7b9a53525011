package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/donutnomad/godiscover/internal/scanner"
	"github.com/donutnomad/godiscover/namespace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesSource = `package shapes

import "context"

type Shape interface {
	Area() float64
}

type Named interface {
	Shape
	Name(ctx context.Context) string
}

// @Abstract
type Base struct{}

func (b *Base) Area() float64 { return 0 }

// @Card(enabled=true, priority=10)
type Square struct {
	Base
	// @Column(name=side)
	Side float64 ` + "`json:\"side\"`" + `
}

type Circle struct{}

type List[T any] struct{ items []T }

type Failure interface{ error }
`

const shapesMethods = `package shapes

import "context"

func (s Square) Name(ctx context.Context) string { return "square" }

// @Route(method=GET, path="/circle")
func (c Circle) Area() float64 { return 3.14 }

type MyErr struct{}

func (MyErr) Error() string { return "x" }
`

const pkg = "example.com/app/shapes"

func loadFixture(t *testing.T) *Catalog {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod":            "module example.com/app\n",
		"shapes/shapes.go":  shapesSource,
		"shapes/methods.go": shapesMethods,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	c, err := Build(context.Background(), scanner.New(), namespace.New(namespace.DefaultConfig()), filepath.Join(root, "..."))
	require.NoError(t, err)
	return c
}

func TestBuild(t *testing.T) {
	c := loadFixture(t)

	assert.Equal(t, []string{
		pkg + ".Base",
		pkg + ".Circle",
		pkg + ".Failure",
		pkg + ".List",
		pkg + ".MyErr",
		pkg + ".Named",
		pkg + ".Shape",
		pkg + ".Square",
	}, c.All())
	assert.Equal(t, 8, c.Len())
	assert.Equal(t, []string{pkg}, c.Packages())

	square, ok := c.Lookup(pkg + ".Square")
	require.True(t, ok)
	assert.Equal(t, "shapes", square.PackageName)
	assert.Equal(t, KindStruct, square.Kind)
	assert.Equal(t, []string{pkg + ".Base"}, square.Embeds)
	_, hasName := square.Method("Name")
	assert.True(t, hasName, "方法声明在另一个文件中")

	assert.Len(t, c.InFiles(square.File), 7)
	assert.False(t, c.Has(pkg+".Missing"))
}

func TestExtends(t *testing.T) {
	c := loadFixture(t)

	tests := []struct {
		id, parent string
		want       bool
	}{
		{pkg + ".Square", pkg + ".Base", true},
		{pkg + ".Square", pkg + ".Square", false},
		{pkg + ".Circle", pkg + ".Base", false},
		{pkg + ".Square", pkg + ".Missing", false},
		{pkg + ".Missing", pkg + ".Base", false},
		{pkg + ".Named", pkg + ".Shape", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Extends(tt.id, tt.parent), "%s extends %s", tt.id, tt.parent)
	}
}

func TestImplements(t *testing.T) {
	c := loadFixture(t)

	tests := []struct {
		id, iface string
		want      bool
	}{
		{pkg + ".Square", pkg + ".Shape", true},
		{pkg + ".Square", pkg + ".Named", true},
		{pkg + ".Circle", pkg + ".Shape", true},
		{pkg + ".Circle", pkg + ".Named", false},
		{pkg + ".Base", pkg + ".Shape", true},
		{pkg + ".Named", pkg + ".Shape", true},
		{pkg + ".Shape", pkg + ".Shape", false},
		{pkg + ".MyErr", pkg + ".Failure", true},
		{pkg + ".Square", pkg + ".Base", false},
		{pkg + ".Missing", pkg + ".Shape", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Implements(tt.id, tt.iface), "%s implements %s", tt.id, tt.iface)
	}
}

func TestInstantiable(t *testing.T) {
	c := loadFixture(t)

	assert.True(t, c.Instantiable(pkg+".Square"))
	assert.True(t, c.Instantiable(pkg+".Circle"))
	assert.False(t, c.Instantiable(pkg+".Base"))
	assert.False(t, c.Instantiable(pkg+".Shape"))
	assert.False(t, c.Instantiable(pkg+".List"))
	assert.False(t, c.Instantiable(pkg+".Missing"))
}

func TestMetadataIndex(t *testing.T) {
	c := loadFixture(t)

	types := c.FindTypesWith("Card")
	require.Len(t, types, 1)
	assert.Equal(t, pkg+".Square", types[0].ID)
	assert.Equal(t, "10", types[0].Annotation.Param("priority"))

	methods := c.FindMethodsWith("Route")
	require.Len(t, methods, 1)
	assert.Equal(t, pkg+".Circle::Area", methods[0].ID)
	assert.Equal(t, "GET", methods[0].Annotation.Param("method"))

	props := c.FindPropertiesWith("Column")
	require.Len(t, props, 1)
	assert.Equal(t, pkg+".Square::$Side", props[0].ID)
	assert.Equal(t, "Side", props[0].Member)

	assert.Empty(t, c.FindTypesWith("Nothing"))
}

func TestRegisterAndReplace(t *testing.T) {
	c := New()
	c.Register(&TypeInfo{ID: "example.com/x.A", Name: "A", Kind: KindStruct}, nil, &TypeInfo{})
	assert.Equal(t, []string{"example.com/x.A"}, c.All())

	other := New()
	other.Register(&TypeInfo{ID: "example.com/x.B", Name: "B", Kind: KindStruct})
	c.Replace(other)
	assert.Equal(t, []string{"example.com/x.B"}, c.All())
}

func TestSplitID(t *testing.T) {
	p, n := SplitID("example.com/app/shapes.Square")
	assert.Equal(t, "example.com/app/shapes", p)
	assert.Equal(t, "Square", n)

	p, n = SplitID("example.com/app")
	assert.Equal(t, "", p)
	assert.Equal(t, "example.com/app", n)
}
