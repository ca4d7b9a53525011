package filter

import (
	"context"
	"slices"
	"testing"

	"github.com/donutnomad/godiscover/annotation"
	"github.com/donutnomad/godiscover/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStrategy 固定元数据的策略
type stubStrategy struct {
	meta map[string]strategy.Metadata
}

func (s stubStrategy) Discover(context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.meta))
	for id := range s.meta {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s stubStrategy) Metadata(id string) strategy.Metadata {
	if m, ok := s.meta[id]; ok {
		return m
	}
	return strategy.Metadata{"id": id}
}

func (s stubStrategy) CacheKey() string { return "stub" }

func card(params string) *annotation.Annotation {
	return annotation.Parse("@Card(" + params + ")")[0]
}

func newStub() stubStrategy {
	return stubStrategy{meta: map[string]strategy.Metadata{
		"a.One":   {"id": "a.One", "attribute": card("enabled=true, priority=10, tags=\"home,promo\", group=main")},
		"a.Two":   {"id": "a.Two", "attribute": card("enabled=false, priority=1, tags=promo, group=side")},
		"a.Three": {"id": "a.Three", "attributes": []*annotation.Annotation{annotation.Parse("@Other")[0], card("enabled=true, priority=5")}},
		"a.Four":  {"id": "a.Four"},
	}}
}

func TestPropertyFilter(t *testing.T) {
	s := newStub()
	ids, _ := s.Discover(context.Background())

	tests := []struct {
		name  string
		args  []any
		want  []string
		field string
	}{
		{"equal bool", []any{true}, []string{"a.One", "a.Three"}, "enabled"},
		{"equal false", []any{false}, []string{"a.Two"}, "enabled"},
		{"equal int", []any{"==", 10}, []string{"a.One"}, "priority"},
		{"not equal", []any{"!=", 10}, []string{"a.Three", "a.Two"}, "priority"},
		{"not equal alias", []any{"<>", "main"}, []string{"a.Two"}, "group"},
		{"greater", []any{">", 1}, []string{"a.One", "a.Three"}, "priority"},
		{"greater equal", []any{">=", 5}, []string{"a.One", "a.Three"}, "priority"},
		{"less", []any{"<", 5}, []string{"a.Two"}, "priority"},
		{"less equal", []any{"<=", "5"}, []string{"a.Three", "a.Two"}, "priority"},
		{"contains", []any{"contains", "home"}, []string{"a.One"}, "tags"},
		{"contains single", []any{"contains", "promo"}, []string{"a.One", "a.Two"}, "tags"},
		{"in", []any{"in", []string{"side", "other"}}, []string{"a.Two"}, "group"},
		{"in ints", []any{"in", []int{1, 5}}, []string{"a.Three", "a.Two"}, "priority"},
		{"missing property", []any{"x"}, []string{}, "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Where(tt.field, tt.args...)
			require.NoError(t, err)
			got := f.Apply(ids, s)
			slices.Sort(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropertyFilter_InvalidArguments(t *testing.T) {
	_, err := Where("enabled", "~", true)
	assert.ErrorIs(t, err, ErrInvalidOperator)

	_, err = Where("enabled", 1, true)
	assert.ErrorIs(t, err, ErrInvalidOperator)

	_, err = Where("enabled")
	assert.Error(t, err)

	f, err := NewPropertyFilter("enabled", " CONTAINS ", "x")
	require.NoError(t, err)
	assert.Equal(t, "enabled contains x", f.String())
}

func TestPropertyFilter_Fingerprint(t *testing.T) {
	on, _ := Where("enabled", true)
	off, _ := Where("enabled", false)
	again, _ := Where("enabled", "=", true)

	assert.NotEqual(t, on.Fingerprint(), off.Fingerprint())
	assert.Equal(t, on.Fingerprint(), again.Fingerprint())
}

func TestCallbackFilter(t *testing.T) {
	s := newStub()
	ids, _ := s.Discover(context.Background())

	f := NewCallbackFilter(func(id string, meta strategy.Metadata) bool {
		if id == "a.Four" {
			panic("no attribute")
		}
		_, ok := meta["attribute"]
		return ok
	})
	got := f.Apply(ids, s)
	slices.Sort(got)
	assert.Equal(t, []string{"a.One", "a.Two"}, got)

	chained := ApplyFilters(ids, s, f, mustWhere(t, "enabled", true))
	assert.Equal(t, []string{"a.One"}, chained)
}

func mustWhere(t *testing.T, property string, args ...any) *PropertyFilter {
	t.Helper()
	f, err := Where(property, args...)
	require.NoError(t, err)
	return f
}

// fakeRelations A 抽象且实现 I，B 具体且实现 I，C 具体未实现 I，D 的判定会 panic
type fakeRelations struct{}

func (fakeRelations) Instantiable(id string) bool {
	if id == "D" {
		panic("cannot load")
	}
	return id == "B" || id == "C"
}

func (fakeRelations) Extends(id, parent string) bool {
	return parent == "Base" && (id == "A" || id == "B")
}

func (fakeRelations) Implements(id, iface string) bool {
	return iface == "I" && (id == "A" || id == "B")
}

func TestValidators_OrderIndependent(t *testing.T) {
	r := fakeRelations{}
	candidates := []string{"A", "B", "C", "D"}

	instantiable := Instantiable(r)
	implements := Implements(r, "I")
	extends := Extends(r, "Base")

	assert.Equal(t, []string{"B"}, ApplyValidators(candidates, instantiable, implements))
	assert.Equal(t, []string{"B"}, ApplyValidators(candidates, implements, instantiable))
	assert.Equal(t, []string{"B"}, ApplyValidators(candidates, extends, implements, instantiable))
	assert.Equal(t, []string{"B"}, ApplyValidators(candidates, instantiable, extends, implements))
	assert.Equal(t, candidates, ApplyValidators(candidates))

	assert.False(t, SafeValidate(instantiable, "D"))
	assert.Equal(t, "Base", extends.Fingerprint())
	assert.Equal(t, "I", implements.Fingerprint())
}
