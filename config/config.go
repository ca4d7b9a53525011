// Package config 加载 godiscover 的运行配置
//
// 优先级：环境变量 > 配置文件 > 默认值
package config

import (
	"path/filepath"
	"strings"

	"github.com/donutnomad/godiscover/cache"
	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/donutnomad/godiscover/namespace"
	"github.com/sirupsen/logrus"
)

const (
	// EnvPrefix 环境变量前缀，嵌套键用双下划线，如 GODISCOVER_CACHE__ENABLED
	EnvPrefix = "GODISCOVER"
	// DefaultFile 未指定配置文件时尝试读取的文件
	DefaultFile = "godiscover.yaml"
)

type Config struct {
	BasePath string              `koanf:"base_path"`
	Scan     ScanConfig          `koanf:"scan"`
	Cache    cache.Config        `koanf:"cache"`
	Monorepo MonorepoConfig      `koanf:"monorepo"`
	Paths    map[string][]string `koanf:"paths"`
	Log      LogConfig           `koanf:"log"`
}

// ScanConfig 构建类型目录时扫描的源码范围
type ScanConfig struct {
	Paths   []string `koanf:"paths"`
	Workers int      `koanf:"workers"`
}

type ShapeConfig struct {
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
}

type MonorepoConfig struct {
	Packages ShapeConfig `koanf:"packages"`
	Modules  ShapeConfig `koanf:"modules"`
	App      ShapeConfig `koanf:"app"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func DefaultConfig() Config {
	ns := namespace.DefaultConfig()
	return Config{
		BasePath: ".",
		Scan: ScanConfig{
			Paths: []string{"./..."},
		},
		Cache: cache.Config{
			Enabled: true,
			Driver:  cache.DriverFile,
			Path:    filepath.Join(".godiscover", "cache"),
			Valkey: cache.ValkeyConfig{
				Prefix: cache.DefaultValkeyPrefix,
			},
		},
		Monorepo: MonorepoConfig{
			Packages: ShapeConfig{Path: ns.Packages.Path},
			Modules:  ShapeConfig{Path: ns.Modules.Path},
			App:      ShapeConfig{Path: ns.App.Path},
		},
		Paths: map[string][]string{},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate 检查配置是否可用
func (c Config) Validate() error {
	if c.BasePath == "" {
		return errors.New("config: base_path 不能为空")
	}
	if c.Scan.Workers < 0 {
		return errors.Errorf("config: scan.workers 不能为负数: %d", c.Scan.Workers)
	}
	if c.Cache.TTL < 0 {
		return errors.Errorf("config: cache.ttl 不能为负数: %s", c.Cache.TTL)
	}
	switch c.Cache.Driver {
	case "", cache.DriverFile:
		if c.Cache.Enabled && c.Cache.Path == "" {
			return errors.New("config: 启用缓存时 cache.path 不能为空")
		}
	case cache.DriverValkey:
		if c.Cache.Valkey.Address == "" {
			return errors.New("config: cache.valkey.address 不能为空")
		}
	default:
		return errors.Errorf("config: 未知的缓存驱动 %q", c.Cache.Driver)
	}
	for name, dirs := range c.Paths {
		if strings.TrimSpace(name) == "" {
			return errors.New("config: paths 的名称不能为空")
		}
		if len(dirs) == 0 {
			return errors.Errorf("config: paths.%s 至少需要一个目录", name)
		}
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.WithStackTraceAndPrefix(err, "config: log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("config: log.format 只支持 text 或 json: %q", c.Log.Format)
	}
	return nil
}

// Namespace 转换为命名空间解析器配置
func (c Config) Namespace() namespace.Config {
	return namespace.Config{
		Packages: namespace.Shape(c.Monorepo.Packages),
		Modules:  namespace.Shape(c.Monorepo.Modules),
		App:      namespace.Shape(c.Monorepo.App),
	}
}

// CacheConfig 返回缓存配置，相对的缓存目录按 base_path 展开
func (c Config) CacheConfig() cache.Config {
	out := c.Cache
	out.Path = c.Abs(out.Path)
	return out
}

// Abs 将相对路径按 base_path 展开
func (c Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BasePath, p)
}

