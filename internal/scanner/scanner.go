package scanner

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/samber/lo"
)

// Scanner 两阶段并行源码扫描器
// 第一阶段（可选）：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对文件进行 AST 解析
type Scanner struct {
	workers int

	// 注解过滤器（可选），设置后启用第一阶段
	annotationFilter []string

	// 需要跳过的文件后缀
	skipSuffixes []string
}

// Option 扫描器选项
type Option func(*Scanner)

func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithAnnotationFilter(annotations ...string) Option {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

// WithSkipSuffixes 追加需要跳过的文件后缀（默认跳过 _test.go）
func WithSkipSuffixes(suffixes ...string) Option {
	return func(s *Scanner) {
		s.skipSuffixes = append(s.skipSuffixes, suffixes...)
	}
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		workers:      runtime.NumCPU(),
		skipSuffixes: []string{"_test.go"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解的正则
var quickMatchRegex = regexp.MustCompile(`@(\w+)(?:\([^)]*\))?`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... 以及单个 .go 文件
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*Result, error) {
	files, err := s.CollectFiles(patterns...)
	if err != nil {
		return nil, err
	}
	return s.ScanFiles(ctx, files)
}

// ScanFiles 解析给定的文件列表
func (s *Scanner) ScanFiles(ctx context.Context, files []string) (*Result, error) {
	if len(files) == 0 {
		return &Result{}, nil
	}

	if len(s.annotationFilter) > 0 {
		matched, err := s.quickMatch(ctx, files)
		if err != nil {
			return nil, err
		}
		files = matched
		if len(files) == 0 {
			return &Result{}, nil
		}
	}

	return s.parseFiles(ctx, files)
}

// runPool 用固定数量的 worker 处理文件，fn 返回 nil 表示忽略该文件
func runPool[T any](ctx context.Context, workers int, files []string, fn func(string) *T) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileCh := make(chan string)
	resultCh := make(chan *T, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileCh {
				if r := fn(file); r != nil {
					resultCh <- r
				}
			}
		}()
	}

	var sendErr error
send:
	for _, file := range files {
		select {
		case <-ctx.Done():
			sendErr = ctx.Err()
			break send
		case fileCh <- file:
		}
	}
	close(fileCh)
	wg.Wait()
	close(resultCh)

	if sendErr != nil {
		return nil, sendErr
	}

	results := make([]*T, 0, len(resultCh))
	for r := range resultCh {
		results = append(results, r)
	}
	return results, nil
}

// quickMatch 第一阶段：并行读取文件，检查是否包含过滤器中的注解
func (s *Scanner) quickMatch(ctx context.Context, files []string) ([]string, error) {
	matched, err := runPool(ctx, s.workers, files, func(file string) *string {
		ok, err := s.QuickMatchFile(file)
		if err != nil || !ok {
			return nil // 跳过错误文件
		}
		return &file
	})
	if err != nil {
		return nil, err
	}

	result := lo.Map(matched, func(p *string, _ int) string { return *p })
	slices.Sort(result)
	return result, nil
}

// QuickMatchFile 快速检查文件注释中是否包含注解
// 未设置过滤器时任意注解都算匹配
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		trimmed := strings.TrimSpace(sc.Text())
		// 只检查注释行
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") && !strings.HasPrefix(trimmed, "*") {
			continue
		}

		for _, match := range quickMatchRegex.FindAllStringSubmatch(trimmed, -1) {
			if len(s.annotationFilter) == 0 || lo.Contains(s.annotationFilter, match[1]) {
				return true, nil
			}
		}
	}

	return false, sc.Err()
}

// parseFiles 第二阶段：AST 解析
func (s *Scanner) parseFiles(ctx context.Context, files []string) (*Result, error) {
	parsed, err := runPool(ctx, s.workers, files, func(file string) *FileResult {
		r, err := ParseFile(file)
		if err != nil {
			return nil // 语法错误的文件视为不存在
		}
		return r
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(parsed, func(a, b *FileResult) int {
		return strings.Compare(a.Path, b.Path)
	})
	return &Result{Files: parsed}, nil
}

// CollectFiles 收集所有需要扫描的文件（绝对路径，去重）
func (s *Scanner) CollectFiles(patterns ...string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...") || pattern == "..."
		if recursive {
			pattern = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if pattern == "" {
				pattern = "."
			}
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, errors.WithStackTrace(err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, errors.WithStackTrace(err)
		}

		if !info.IsDir() {
			if s.isSourceFile(absPath) {
				add(absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == absPath {
					return nil
				}
				name := d.Name()
				if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata" {
					return filepath.SkipDir
				}
				if !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if s.isSourceFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WithStackTrace(err)
		}
	}

	slices.Sort(files)
	return files, nil
}

func (s *Scanner) isSourceFile(path string) bool {
	if !strings.HasSuffix(path, ".go") {
		return false
	}
	for _, suffix := range s.skipSuffixes {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}
	return true
}

// 默认扫描器
var defaultScanner = New()

func Scan(ctx context.Context, patterns ...string) (*Result, error) {
	return defaultScanner.Scan(ctx, patterns...)
}
