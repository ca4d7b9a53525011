package cli

import (
	"github.com/urfave/cli/v2"
)

// CacheCommand 预热 paths.<name> 的目录发现缓存
func CacheCommand() *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Aliases: []string{"discovery:cache"},
		Usage:   "预热配置中 paths 的发现缓存",
		Description: `对配置中的每个 paths.<name> 执行带缓存的目录发现。

单个路径组失败只记录并计数，不影响其余路径组和退出码。

示例:
  godiscover cache
  godiscover cache --force`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "预热前清空全部缓存",
			},
		},
		Action: runCache,
	}
}

func runCache(c *cli.Context) error {
	m, err := newManager(c)
	if err != nil {
		return err
	}
	if !m.Cache().Enabled() {
		m.Logger().Warn("缓存未启用，结果不会被保存")
	}

	report, err := m.Warm(c.Context, c.Bool("force"))
	if err != nil {
		return err
	}
	writeWarmReport(c.App.Writer, report)
	return nil
}
