package config

import (
	"context"
	"os"
	"strings"

	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Loader 按 默认值 -> 文件 -> 环境变量 的顺序合并配置
type Loader struct {
	envPrefix string
	files     []string
}

func NewLoader(envPrefix string, files ...string) *Loader {
	return &Loader{
		envPrefix: envPrefix,
		files:     files,
	}
}

// Load 加载并校验配置
func (l *Loader) Load(ctx context.Context) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(structToMap(DefaultConfig()), "."), nil); err != nil {
		return Config{}, errors.WithStackTraceAndPrefix(err, "config: 加载默认值")
	}

	for _, path := range l.files {
		if path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Config{}, err
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return Config{}, errors.Errorf("config: 配置文件 %s 不存在", path)
			}
			return Config{}, errors.WithStackTraceAndPrefix(err, "config: stat %s", path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.WithStackTraceAndPrefix(err, "config: 加载文件 %s", path)
		}
	}

	if l.envPrefix != "" {
		if err := k.Load(env.ProviderWithValue(l.envPrefix, ".", l.transform), nil); err != nil {
			return Config{}, errors.WithStackTraceAndPrefix(err, "config: 加载环境变量")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.WithStackTraceAndPrefix(err, "config: unmarshal")
	}
	if cfg.Paths == nil {
		cfg.Paths = map[string][]string{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// transform GODISCOVER_CACHE__VALKEY__ADDRESS -> cache.valkey.address
// 列表类的键（scan.paths、paths.<name>）按逗号拆分
func (l *Loader) transform(key, value string) (string, any) {
	key = strings.TrimPrefix(key, l.envPrefix+"_")
	key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
	if key == "scan.paths" || strings.HasPrefix(key, "paths.") {
		return key, splitList(value)
	}
	return key, value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load 读取配置文件（可为空）与环境变量
// path 为空时若当前目录存在 godiscover.yaml 则读取它
func Load(ctx context.Context, path string) (Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	return NewLoader(EnvPrefix, path).Load(ctx)
}

// structToMap 将默认配置转换为 confmap 使用的 map
func structToMap(cfg Config) map[string]any {
	paths := make(map[string]any, len(cfg.Paths))
	for name, dirs := range cfg.Paths {
		paths[name] = dirs
	}
	return map[string]any{
		"base_path": cfg.BasePath,
		"scan": map[string]any{
			"paths":   cfg.Scan.Paths,
			"workers": cfg.Scan.Workers,
		},
		"cache": map[string]any{
			"enabled": cfg.Cache.Enabled,
			"driver":  cfg.Cache.Driver,
			"path":    cfg.Cache.Path,
			"ttl":     cfg.Cache.TTL,
			"valkey": map[string]any{
				"address":  cfg.Cache.Valkey.Address,
				"username": cfg.Cache.Valkey.Username,
				"password": cfg.Cache.Valkey.Password,
				"db":       cfg.Cache.Valkey.DB,
				"prefix":   cfg.Cache.Valkey.Prefix,
			},
		},
		"monorepo": map[string]any{
			"packages": shapeToMap(cfg.Monorepo.Packages),
			"modules":  shapeToMap(cfg.Monorepo.Modules),
			"app":      shapeToMap(cfg.Monorepo.App),
		},
		"paths": paths,
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
	}
}

func shapeToMap(s ShapeConfig) map[string]any {
	return map[string]any{
		"path":      s.Path,
		"namespace": s.Namespace,
	}
}
