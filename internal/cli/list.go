package cli

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/godiscover/annotation"
	"github.com/donutnomad/godiscover/discovery"
	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

const (
	flagAttribute    = "attribute"
	flagDir          = "dir"
	flagImplementing = "implementing"
	flagExtending    = "extending"
	flagMethods      = "methods"
	flagProperties   = "properties"
)

var sourceFlags = []string{flagAttribute, flagDir, flagImplementing, flagExtending, flagMethods, flagProperties}

// ListCommand 临时执行一次发现并输出结果
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "执行一次发现并输出标识符",
		Description: `必须且只能指定一种发现方式:
  --attribute --dir --implementing --extending --methods --properties

--where 支持 key=value、key!=value、key>=value 等比较，
以及 key:contains:value、key:in:a|b|c。多个 --where 同时生效。

--format 使用 text/template（附带 sprig 函数），数据为 {ID, Metadata}。

示例:
  godiscover list --dir app/cards --where enabled=true --instantiable
  godiscover list --implementing example.com/app/contracts.Renderer --in app
  godiscover list --methods Route --format '{{ .ID }} {{ (index .Metadata "attribute").Param "path" | upper }}'`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagAttribute, Aliases: []string{"a"}, Usage: "带有指定注解的类型"},
			&cli.StringSliceFlag{Name: flagDir, Aliases: []string{"d"}, Usage: "目录中声明的类型，支持 glob"},
			&cli.StringFlag{Name: flagImplementing, Usage: "实现了接口的类型 (pkg.Interface)"},
			&cli.StringFlag{Name: flagExtending, Usage: "嵌入了指定类型的类型 (pkg.Type)"},
			&cli.StringFlag{Name: flagMethods, Usage: "带有指定注解的方法"},
			&cli.StringFlag{Name: flagProperties, Usage: "带有指定注解的字段"},
			&cli.StringSliceFlag{Name: "in", Usage: "将接口/嵌入发现限定在目录中"},
			&cli.StringSliceFlag{Name: "where", Aliases: []string{"w"}, Usage: "按注解参数过滤"},
			&cli.BoolFlag{Name: "instantiable", Usage: "只保留可实例化的类型"},
			&cli.BoolFlag{Name: "cached", Usage: "读写缓存"},
			&cli.BoolFlag{Name: "paths", Usage: "输出目录或文件而不是标识符"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "每条结果的输出模板"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "输出完整元数据"},
		},
		Action: runList,
	}
}

func runList(c *cli.Context) error {
	set := lo.Filter(sourceFlags, func(name string, _ int) bool { return c.IsSet(name) })
	if len(set) != 1 {
		return errors.Errorf("必须且只能指定一种发现方式: --%s", strings.Join(sourceFlags, ", --"))
	}

	var tmpl *template.Template
	if format := c.String("format"); format != "" {
		t, err := template.New("list").Funcs(sprig.TxtFuncMap()).Parse(format)
		if err != nil {
			return errors.WithStackTraceAndPrefix(err, "解析 --format 模板失败")
		}
		tmpl = t
	}

	m, err := newManager(c)
	if err != nil {
		return err
	}

	b, err := buildQuery(c, m, set[0])
	if err != nil {
		return err
	}

	w := c.App.Writer
	if c.Bool("paths") {
		paths, err := b.Paths(c.Context)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(w, p)
		}
		return nil
	}

	results, err := b.Get(c.Context)
	if err != nil {
		return err
	}
	for _, r := range results {
		switch {
		case tmpl != nil:
			if err := tmpl.Execute(w, r); err != nil {
				return errors.WithStackTraceAndPrefix(err, "渲染 %s 失败", r.ID)
			}
			fmt.Fprintln(w)
		case c.Bool("verbose"):
			fmt.Fprintln(w, r.ID)
			spew.Fdump(w, map[string]any(r.Metadata))
		default:
			fmt.Fprintln(w, r.ID)
		}
	}
	return nil
}

func buildQuery(c *cli.Context, m *discovery.Manager, source string) (*discovery.Builder, error) {
	var b *discovery.Builder
	switch source {
	case flagAttribute:
		b = m.Attribute(c.String(flagAttribute))
	case flagDir:
		b = m.Directories(c.StringSlice(flagDir)...)
	case flagImplementing:
		b = m.Implementing(c.String(flagImplementing))
	case flagExtending:
		b = m.Extending(c.String(flagExtending))
	case flagMethods:
		b = m.Methods(c.String(flagMethods))
	case flagProperties:
		b = m.Properties(c.String(flagProperties))
	}

	if dirs := c.StringSlice("in"); len(dirs) > 0 {
		b = b.In(dirs...)
	}
	for _, expr := range c.StringSlice("where") {
		property, op, value, err := parseWhere(expr)
		if err != nil {
			return nil, err
		}
		b = b.Where(property, op, value)
	}
	if c.Bool("instantiable") {
		b = b.Instantiable()
	}
	if c.Bool("cached") {
		b = b.Cached()
	}
	return b, b.Err()
}

var (
	compareRegex = regexp.MustCompile(`^\s*([\w.-]+)\s*(>=|<=|!=|<>|==|=|>|<)\s*(.*?)\s*$`)
	keywordRegex = regexp.MustCompile(`^\s*([\w.-]+):(contains|in):(.*?)\s*$`)
)

// parseWhere 解析 key=value 或 key:op:value
func parseWhere(expr string) (property, op string, value any, err error) {
	if m := keywordRegex.FindStringSubmatch(expr); m != nil {
		if m[2] == "in" {
			return m[1], m[2], annotation.SplitList(m[3]), nil
		}
		return m[1], m[2], m[3], nil
	}
	if m := compareRegex.FindStringSubmatch(expr); m != nil {
		return m[1], m[2], m[3], nil
	}
	return "", "", nil, errors.Errorf("无法解析过滤条件 %q，应为 key=value 或 key:op:value", expr)
}
