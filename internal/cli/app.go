// Package cli godiscover 命令行
package cli

import (
	"github.com/donutnomad/godiscover/config"
	"github.com/donutnomad/godiscover/discovery"
	"github.com/donutnomad/godiscover/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	AppName = "godiscover"

	FlagConfig    = "config"
	FlagBasePath  = "base-path"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagNoCache   = "no-cache"
)

// NewApp 创建命令行应用
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "通过注解、目录、接口与嵌入关系发现 Go 类型",
		Version: version,
		Description: `扫描源码中的 // @Name(k=v) 注解，按目录、接口实现或嵌入关系查找类型，
并将过滤后的结果缓存到文件或 Valkey。

配置按 默认值 -> godiscover.yaml -> GODISCOVER_* 环境变量 -> 命令行参数 的顺序合并。

示例:
  godiscover cache --force
  godiscover list --dir app/cards --where enabled=true
  godiscover list --methods Route --where method=GET --format '{{ .ID }}'
  godiscover generate -o internal/registry/registry_gen.go`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    FlagConfig,
				Aliases: []string{"c"},
				Usage:   "配置文件路径，默认读取当前目录下的 " + config.DefaultFile,
			},
			&cli.StringFlag{
				Name:  FlagBasePath,
				Usage: "项目根目录，覆盖 base_path",
			},
			&cli.StringFlag{
				Name:  FlagLogLevel,
				Usage: "日志级别 (trace|debug|info|warn|error)",
			},
			&cli.StringFlag{
				Name:  FlagLogFormat,
				Usage: "日志格式 (text|json)",
			},
			&cli.BoolFlag{
				Name:  FlagNoCache,
				Usage: "禁用缓存",
			},
		},
		Commands: []*cli.Command{
			CacheCommand(),
			ClearCommand(),
			ListCommand(),
			WatchCommand(),
			GenerateCommand(),
		},
	}
}

// loadConfig 合并配置文件、环境变量与全局参数
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.Context, c.String(FlagConfig))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet(FlagBasePath) {
		cfg.BasePath = c.String(FlagBasePath)
	}
	if c.IsSet(FlagLogLevel) {
		cfg.Log.Level = c.String(FlagLogLevel)
	}
	if c.IsSet(FlagLogFormat) {
		cfg.Log.Format = c.String(FlagLogFormat)
	}
	if c.Bool(FlagNoCache) {
		cfg.Cache.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg config.Config) (*logrus.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format, logging.WithOutput(c.App.ErrWriter))
}

// newManager 加载配置并扫描源码
func newManager(c *cli.Context) (*discovery.Manager, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(c, cfg)
	if err != nil {
		return nil, err
	}
	return discovery.New(c.Context, cfg, discovery.WithLogger(logger))
}
