package cache

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/donutnomad/godiscover/internal/errors"
	valkey "github.com/valkey-io/valkey-go"
)

// DefaultValkeyPrefix 键前缀
const DefaultValkeyPrefix = "godiscover:"

type ValkeyConfig struct {
	Address  string `koanf:"address"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

// ValkeyStore 基于 Valkey/Redis 的存储，适合多台机器共享缓存
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

func NewValkeyStore(cfg ValkeyConfig) (*ValkeyStore, error) {
	if cfg.Address == "" {
		return nil, goerrors.New("cache: valkey 地址不能为空")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultValkeyPrefix
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{cfg.Address},
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		AlwaysRESP2:       true,
		ForceSingleClient: true,
		DisableCache:      true,
	})
	if err != nil {
		return nil, goerrors.WithStackTraceAndPrefix(err, "cache: valkey 客户端")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, goerrors.WithStackTraceAndPrefix(err, "cache: valkey ping")
	}

	return &ValkeyStore{client: client, prefix: prefix}, nil
}

func (s *ValkeyStore) key(key string) string {
	return s.prefix + hashKey(key)
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(s.key(key)).Build())
	if err := resp.Error(); err != nil {
		if errors.Is(err, valkey.Nil) {
			return nil, false, nil
		}
		return nil, false, goerrors.WithStackTraceAndPrefix(err, "cache: valkey get")
	}
	data, err := resp.AsBytes()
	if err != nil {
		return nil, false, goerrors.WithStackTraceAndPrefix(err, "cache: valkey get bytes")
	}
	return data, true, nil
}

func (s *ValkeyStore) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	set := s.client.B().Set().Key(s.key(key)).Value(string(data))
	cmd := set.Build()
	if ttl > 0 {
		cmd = set.Px(ttl).Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return goerrors.WithStackTraceAndPrefix(err, "cache: valkey set")
	}
	return nil
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(s.key(key)).Build()).Error(); err != nil {
		return goerrors.WithStackTraceAndPrefix(err, "cache: valkey del")
	}
	return nil
}

// Clear 按前缀 SCAN 后删除
func (s *ValkeyStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		entry, err := s.client.Do(ctx, s.client.B().Scan().Cursor(cursor).Match(s.prefix+"*").Count(100).Build()).AsScanEntry()
		if err != nil {
			return goerrors.WithStackTraceAndPrefix(err, "cache: valkey scan")
		}
		if len(entry.Elements) > 0 {
			if err := s.client.Do(ctx, s.client.B().Del().Key(entry.Elements...).Build()).Error(); err != nil {
				return goerrors.WithStackTraceAndPrefix(err, "cache: valkey del")
			}
		}
		if entry.Cursor == 0 {
			return nil
		}
		cursor = entry.Cursor
	}
}

func (s *ValkeyStore) Close() {
	s.client.Close()
}
