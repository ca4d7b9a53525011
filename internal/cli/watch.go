package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/donutnomad/godiscover/discovery"
	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/tools/imports"
)

// WatchCommand 监听源码变动，重新扫描并刷新缓存
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "监听源码变动，自动重新扫描并清除缓存",
		Description: `监听 scan.paths 下的目录。.go 文件写入或创建后先做语法检查，
防抖动结束后重新扫描类型并清空缓存；指定 --warm 时随后重新预热 paths。`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "防抖动时间",
				Value: time.Second,
			},
			&cli.BoolFlag{
				Name:  "warm",
				Usage: "重新扫描后预热 paths 缓存",
			},
		},
		Action: runWatch,
	}
}

func runWatch(c *cli.Context) error {
	m, err := newManager(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// 监听退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			m.Logger().Info("正在退出...")
			cancel()
		case <-ctx.Done():
		}
	}()

	patterns := make([]string, 0, len(m.Config().Scan.Paths))
	for _, p := range m.Config().Scan.Paths {
		patterns = append(patterns, m.Config().Abs(filepath.FromSlash(p)))
	}

	w, err := newWatcher(m, watchOptions{
		Patterns: patterns,
		Debounce: c.Duration("debounce"),
		Warm:     c.Bool("warm"),
	})
	if err != nil {
		return err
	}
	defer w.Close()

	return w.Run(ctx)
}

type watchOptions struct {
	Patterns []string
	Debounce time.Duration
	Warm     bool
	// OnRefresh 每次刷新完成后调用
	OnRefresh func(err error)
}

// watcher 处理文件变动
type watcher struct {
	opts    watchOptions
	manager *discovery.Manager
	fs      *fsnotify.Watcher
	logger  logrus.FieldLogger

	// 防抖动相关
	mu      sync.Mutex
	pending *time.Timer
	changed map[string]struct{}
}

func newWatcher(m *discovery.Manager, opts watchOptions) (*watcher, error) {
	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "收集监听目录失败")
	}
	if len(dirs) == 0 {
		return nil, errors.New("没有找到需要监听的目录")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "创建文件监听器失败")
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, errors.WithStackTraceAndPrefix(err, "添加监听目录失败 %s", dir)
		}
		m.Logger().WithField("dir", dir).Debug("监听目录")
	}
	m.Logger().WithField("dirs", len(dirs)).Info("开始监听，按 Ctrl+C 退出")

	return &watcher{
		opts:    opts,
		manager: m,
		fs:      fw,
		logger:  m.Logger(),
		changed: make(map[string]struct{}),
	}, nil
}

// Close 停止定时器并关闭监听器
func (w *watcher) Close() error {
	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

// Run 事件处理循环，ctx 取消后返回
func (w *watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("监听错误")
		}
	}
}

// handleEvent 处理文件事件
func (w *watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	// 只关注 Write 和 Create 事件
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	filePath := event.Name
	if !strings.HasSuffix(filePath, ".go") || isGeneratedFile(filePath) {
		return
	}

	log := w.logger.WithField("file", filePath)
	if err := checkSyntax(filePath); err != nil {
		log.WithError(err).Warn("语法错误，跳过")
		return
	}
	log.Debug("检测到文件变化")
	w.schedule(ctx, filePath)
}

// schedule 防抖动调度刷新，窗口内的多次变动合并为一次
func (w *watcher) schedule(ctx context.Context, filePath string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.changed[filePath] = struct{}{}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.Lock()
		files := len(w.changed)
		w.changed = make(map[string]struct{})
		w.pending = nil
		w.mu.Unlock()

		err := w.refresh(ctx)
		if err != nil {
			w.logger.WithError(err).Error("刷新失败")
		} else {
			w.logger.WithField("files", files).Info("刷新完成")
		}
		if w.opts.OnRefresh != nil {
			w.opts.OnRefresh(err)
		}
	})
}

// refresh 重新扫描、清空缓存，按需预热
func (w *watcher) refresh(ctx context.Context) error {
	if err := w.manager.Reload(ctx); err != nil {
		return err
	}
	if err := w.manager.Cache().ClearAll(ctx); err != nil {
		return err
	}
	if !w.opts.Warm {
		return nil
	}
	report, err := w.manager.Warm(ctx, false)
	if err != nil {
		return err
	}
	w.logger.WithFields(logrus.Fields{
		"cached":  report.Cached(),
		"skipped": report.Skipped(),
		"failed":  report.Failed(),
	}).Info("预热完成")
	return nil
}

// checkSyntax 检查文件语法
func checkSyntax(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	_, err = imports.Process(filePath, content, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true, // 只检查语法，不修改 imports
	})
	return err
}

// collectWatchDirs 收集所有需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...") || pattern == "..."
		baseDir := strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
		if baseDir == "" {
			baseDir = "."
		}

		absDir, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			// 单个文件监听其所在目录
			add(filepath.Dir(absDir))
			continue
		}
		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}

			// 跳过隐藏目录、vendor 和 testdata
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}

// isGeneratedFile 测试文件与生成的文件不影响类型登记
func isGeneratedFile(filePath string) bool {
	base := filepath.Base(filePath)
	return strings.HasSuffix(base, "_test.go") ||
		strings.HasSuffix(base, "_gen.go") ||
		strings.HasSuffix(base, "_mock.go")
}
