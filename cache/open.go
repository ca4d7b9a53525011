package cache

import (
	"time"

	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/sirupsen/logrus"
)

const (
	DriverFile   = "file"
	DriverValkey = "valkey"
)

// Config 缓存配置
type Config struct {
	Enabled bool          `koanf:"enabled"`
	Driver  string        `koanf:"driver"`
	Path    string        `koanf:"path"`
	TTL     time.Duration `koanf:"ttl"`
	Valkey  ValkeyConfig  `koanf:"valkey"`
}

// Open 按配置创建存储与 Manager
func Open(cfg Config, logger logrus.FieldLogger) (*Manager, error) {
	var store Store
	switch cfg.Driver {
	case "", DriverFile:
		store = NewFileStore(cfg.Path)
	case DriverValkey:
		s, err := NewValkeyStore(cfg.Valkey)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, errors.Errorf("cache: 未知的存储驱动 %q", cfg.Driver)
	}

	return NewManager(store,
		WithEnabled(cfg.Enabled),
		WithTTL(cfg.TTL),
		WithLogger(logger),
	), nil
}
