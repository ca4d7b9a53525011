package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/donutnomad/godiscover/catalog"
	"github.com/donutnomad/godiscover/registrygen"
	"github.com/urfave/cli/v2"
)

// GenerateCommand 将扫描得到的类型写成 RegisterTypes 函数
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "生成类型登记代码",
		Description: `扫描 scan.paths 并生成 RegisterTypes(c *catalog.Catalog)，
运行时通过 discovery.WithCatalog 使用，无需再扫描源码。

示例:
  godiscover generate -o internal/registry/registry_gen.go`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "输出文件，相对路径基于 base_path",
				Value:   "registry_gen.go",
			},
			&cli.StringFlag{
				Name:  "package",
				Usage: "生成代码的包名，默认取输出目录名",
			},
			&cli.BoolFlag{
				Name:  "annotated",
				Usage: "只登记带有注解（类型、方法或字段）的类型",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	m, err := newManager(c)
	if err != nil {
		return err
	}

	output := m.Config().Abs(c.String("output"))
	pkgName := c.String("package")
	if pkgName == "" {
		pkgName = packageNameFor(output)
	}

	var types []*catalog.TypeInfo
	for _, id := range m.Catalog().All() {
		info, ok := m.Catalog().Lookup(id)
		if !ok {
			continue
		}
		if c.Bool("annotated") && !annotated(info) {
			continue
		}
		types = append(types, info)
	}

	if err := registrygen.WriteFile(output, pkgName, types); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "已生成 %s (%d 个类型)\n", output, len(types))
	return nil
}

// packageNameFor 输出目录名转为合法包名
func packageNameFor(output string) string {
	dir := filepath.Base(filepath.Dir(output))
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, dir)
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return "registry"
	}
	return name
}

func annotated(info *catalog.TypeInfo) bool {
	if len(info.Annotations) > 0 {
		return true
	}
	for _, f := range info.Fields {
		if len(f.Annotations) > 0 {
			return true
		}
	}
	for _, mi := range info.Methods {
		if len(mi.Annotations) > 0 {
			return true
		}
	}
	return false
}
