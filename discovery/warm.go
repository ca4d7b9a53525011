package discovery

import (
	"context"
	"slices"

	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// WarmStatus 单个路径组的预热结果
type WarmStatus string

const (
	WarmCached  WarmStatus = "cached"
	WarmSkipped WarmStatus = "skipped"
	WarmFailed  WarmStatus = "failed"
)

// WarmEntry paths.<name> 的预热结果
type WarmEntry struct {
	Name        string
	Directories []string
	Status      WarmStatus
	Count       int
	Err         error
}

// WarmReport 预热汇总
type WarmReport struct {
	Entries []WarmEntry
}

func (r WarmReport) Total() int {
	return len(r.Entries)
}

func (r WarmReport) count(status WarmStatus) int {
	return lo.CountBy(r.Entries, func(e WarmEntry) bool { return e.Status == status })
}

func (r WarmReport) Cached() int  { return r.count(WarmCached) }
func (r WarmReport) Skipped() int { return r.count(WarmSkipped) }
func (r WarmReport) Failed() int  { return r.count(WarmFailed) }

// Identifiers 全部路径组发现的标识符总数
func (r WarmReport) Identifiers() int {
	return lo.SumBy(r.Entries, func(e WarmEntry) int { return e.Count })
}

// Warm 对配置中的每个 paths.<name> 执行带缓存的目录发现
//
// force 为 true 时先清空全部缓存。单个路径组失败只记录并计数，不会中断其余路径组。
// 只有清空缓存失败时返回错误。
func (m *Manager) Warm(ctx context.Context, force bool) (WarmReport, error) {
	if force {
		if err := m.cache.ClearAll(ctx); err != nil {
			return WarmReport{}, errors.WithStackTraceAndPrefix(err, "清空缓存失败")
		}
		m.logger.Info("已清空发现缓存")
	}

	names := lo.Keys(m.cfg.Paths)
	slices.Sort(names)

	var report WarmReport
	for _, name := range names {
		entry := m.warmOne(ctx, name, m.cfg.Paths[name])
		log := m.logger.WithFields(logrus.Fields{"name": name, "status": entry.Status})
		switch entry.Status {
		case WarmFailed:
			log.WithError(entry.Err).Warn("路径组预热失败")
		case WarmSkipped:
			log.WithField("dirs", entry.Directories).Warn("跳过没有匹配目录的路径组")
		default:
			log.WithField("count", entry.Count).Debug("路径组预热完成")
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

func (m *Manager) warmOne(ctx context.Context, name string, dirs []string) (entry WarmEntry) {
	entry = WarmEntry{Name: name}
	defer func() {
		if r := recover(); r != nil {
			entry.Status = WarmFailed
			entry.Err = errors.Errorf("%s: %v", name, r)
		}
	}()

	builder := m.Directories(dirs...).Cached()
	expanded, err := builder.Paths(ctx)
	if err != nil {
		entry.Status, entry.Err = WarmFailed, err
		return entry
	}
	entry.Directories = expanded
	if len(expanded) == 0 {
		entry.Status = WarmSkipped
		entry.Directories = dirs
		return entry
	}

	ids, err := builder.Classes(ctx)
	if err != nil {
		entry.Status, entry.Err = WarmFailed, err
		return entry
	}
	entry.Status = WarmCached
	entry.Count = len(ids)
	return entry
}
