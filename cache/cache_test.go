package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	m := NewManager(NewFileStore(dir))

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "读取不会创建目录")

	ids := []string{"example.com/app.A", "example.com/app.B"}
	key := "directory:../weird key/with*chars"
	require.NoError(t, m.Put(ctx, key, ids))

	got, ok := m.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, ids, got)

	require.NoError(t, m.Put(ctx, "empty", nil))
	got, ok = m.Get(ctx, "empty")
	require.True(t, ok)
	assert.Empty(t, got)

	require.NoError(t, m.Clear(ctx, key))
	_, ok = m.Get(ctx, key)
	assert.False(t, ok)
	require.NoError(t, m.Clear(ctx, key), "删除不存在的键不报错")

	require.NoError(t, m.Put(ctx, "a", []string{"x"}))
	require.NoError(t, m.ClearAll(ctx))
	_, ok = m.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "empty")
	assert.False(t, ok)
}

func TestFileStore_ClearMissingDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "never"))
	assert.NoError(t, s.Clear(context.Background()))
	assert.NoError(t, s.Delete(context.Background(), "x"))
}

func TestManager_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	m := NewManager(store)

	require.NoError(t, store.Put(ctx, "bad", []byte("{not json"), 0))
	_, ok := m.Get(ctx, "bad")
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "wrong", []byte(`{"other":1}`), 0))
	_, ok = m.Get(ctx, "wrong")
	assert.False(t, ok)
}

func TestManager_Disabled(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)

	disabled := NewManager(store, WithEnabled(false))
	require.NoError(t, disabled.Put(ctx, "k", []string{"a"}))
	_, ok := disabled.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, disabled.Enabled())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 启用后读取的是之前写入的条目
	require.NoError(t, NewManager(store).Put(ctx, "k", []string{"a"}))
	got, ok := NewManager(store).Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, got)
}

func TestManager_TTL(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	m := NewManager(store, WithTTL(time.Minute), WithClock(clock))
	require.NoError(t, m.Put(ctx, "k", []string{"a"}))

	_, ok := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)

	// ttl 为 0 永不过期
	_, ok = NewManager(store, WithClock(clock)).Get(ctx, "k")
	assert.True(t, ok)
}

func TestFileStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewFileStore(t.TempDir()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Put(ctx, "shared", []string{"a", "b", "c"}))
		}()
	}
	wg.Wait()

	got, ok := m.Get(ctx, "shared")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestValkeyStore(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Skip("miniredis unavailable in sandbox")
	}
	defer server.Close()

	store, err := NewValkeyStore(ValkeyConfig{Address: server.Addr()})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	m := NewManager(store)

	require.NoError(t, m.Put(ctx, "one", []string{"a"}))
	require.NoError(t, m.Put(ctx, "two", []string{"b"}))
	require.NoError(t, server.Set("unrelated", "keep"))

	got, ok := m.Get(ctx, "one")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got)
	assert.True(t, server.Exists(DefaultValkeyPrefix+hashKey("one")))

	require.NoError(t, m.Clear(ctx, "one"))
	_, ok = m.Get(ctx, "one")
	assert.False(t, ok)

	require.NoError(t, m.ClearAll(ctx))
	_, ok = m.Get(ctx, "two")
	assert.False(t, ok)
	assert.True(t, server.Exists("unrelated"))
}

func TestValkeyStore_TTL(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Skip("miniredis unavailable in sandbox")
	}
	defer server.Close()

	store, err := NewValkeyStore(ValkeyConfig{Address: server.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	m := NewManager(store, WithTTL(time.Second))
	require.NoError(t, m.Put(ctx, "k", []string{"a"}))
	assert.True(t, server.Exists("test:"+hashKey("k")))

	server.FastForward(2 * time.Second)
	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	m, err := Open(Config{Enabled: true, Path: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, m.Store())

	_, err = Open(Config{Driver: "memcached"}, nil)
	assert.Error(t, err)

	_, err = Open(Config{Driver: DriverValkey}, nil)
	assert.Error(t, err)
}
