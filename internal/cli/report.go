package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/donutnomad/godiscover/discovery"
	"github.com/mattn/go-runewidth"
)

// table 按显示宽度对齐的简单表格，中文列名也能对齐
type table struct {
	header []string
	rows   [][]string
}

func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	line := func(cells []string) {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			if i == len(cells)-1 {
				padded[i] = cell
				continue
			}
			padded[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, "  "), " "))
	}

	line(t.header)
	for _, row := range t.rows {
		line(row)
	}
}

// writeWarmReport 输出 cache 命令的结果
func writeWarmReport(w io.Writer, report discovery.WarmReport) {
	if report.Total() == 0 {
		fmt.Fprintln(w, "没有配置 paths，无需预热")
		return
	}

	t := newTable("名称", "状态", "数量", "目录")
	for _, e := range report.Entries {
		detail := strings.Join(e.Directories, ", ")
		if e.Err != nil {
			detail = e.Err.Error()
		}
		t.add(e.Name, statusLabel(e.Status), fmt.Sprint(e.Count), detail)
	}
	t.write(w)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "共 %d 个路径组: 已缓存 %d, 跳过 %d, 失败 %d, 发现 %d 个标识符\n",
		report.Total(), report.Cached(), report.Skipped(), report.Failed(), report.Identifiers())
}

func statusLabel(s discovery.WarmStatus) string {
	switch s {
	case discovery.WarmCached:
		return "已缓存"
	case discovery.WarmSkipped:
		return "跳过"
	case discovery.WarmFailed:
		return "失败"
	default:
		return string(s)
	}
}
