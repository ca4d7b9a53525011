package cli

import (
	"fmt"

	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/urfave/cli/v2"
)

// ClearCommand 清除缓存
func ClearCommand() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "清除发现缓存",
		ArgsUsage: "[key]",
		Description: `不带参数时清空全部缓存；给出 key 时只删除该条目。
--path 清除 paths.<name> 对应的目录发现缓存。`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "清除 paths.<name> 对应的缓存",
			},
		},
		Action: runClear,
	}
}

func runClear(c *cli.Context) error {
	m, err := newManager(c)
	if err != nil {
		return err
	}

	key := c.Args().First()
	if name := c.String("path"); name != "" {
		dirs, ok := m.Config().Paths[name]
		if !ok {
			return errors.Errorf("未配置 paths.%s", name)
		}
		key = m.Directories(dirs...).Cached().CacheKey()
	}

	if key == "" {
		if err := m.Cache().ClearAll(c.Context); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "已清空全部缓存")
		return nil
	}

	if err := m.Cache().Clear(c.Context, key); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "已清除缓存 %s\n", key)
	return nil
}
