package strategy

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/godiscover/internal/scanner"
	"github.com/mattn/go-zglob"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// DirectoryStrategy 扫描目录下的源文件，发现其中声明且已登记的类型
//
// 目录支持 glob（pkgs/*/src、internal/**），相对路径基于 basePath
type DirectoryStrategy struct {
	basePath string
	resolver Resolver
	registry Registry
	scanner  *scanner.Scanner
	logger   logrus.FieldLogger

	mu      sync.RWMutex
	dirs    []string
	pattern string            // 自定义命名空间模式
	files   map[string]string // 最近一次 Discover：标识符 → 文件
}

func NewDirectoryStrategy(dirs []string, basePath string, resolver Resolver, registry Registry, sc *scanner.Scanner) *DirectoryStrategy {
	if sc == nil {
		sc = scanner.New()
	}
	return &DirectoryStrategy{
		basePath: basePath,
		resolver: resolver,
		registry: registry,
		scanner:  sc,
		logger:   logrus.StandardLogger(),
		dirs:     slices.Clone(dirs),
		files:    map[string]string{},
	}
}

// SetDirectories 替换扫描目录
func (s *DirectoryStrategy) SetDirectories(dirs ...string) *DirectoryStrategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs = slices.Clone(dirs)
	return s
}

// SetNamespacePattern 设置自定义命名空间模式，空字符串表示使用默认解析
func (s *DirectoryStrategy) SetNamespacePattern(pattern string) *DirectoryStrategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern = pattern
	return s
}

func (s *DirectoryStrategy) SetLogger(logger logrus.FieldLogger) *DirectoryStrategy {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Directories 返回展开 glob 后实际存在的目录
func (s *DirectoryStrategy) Directories() []string {
	s.mu.RLock()
	dirs := slices.Clone(s.dirs)
	s.mu.RUnlock()
	return s.expand(dirs)
}

func (s *DirectoryStrategy) Discover(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	dirs := slices.Clone(s.dirs)
	pattern := s.pattern
	s.mu.RUnlock()

	var files []string
	for _, dir := range s.expand(dirs) {
		found, err := s.scanner.CollectFiles(filepath.Join(dir, "..."))
		if err != nil {
			s.logger.WithError(err).WithField("dir", dir).Warn("跳过无法读取的目录")
			continue
		}
		files = append(files, found...)
	}

	result, err := s.scanner.ScanFiles(ctx, lo.Uniq(files))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	fileOf := make(map[string]string)
	for _, file := range result.Files {
		ns, ok := s.resolver.ResolveFromFile(file.Path, pattern)
		if !ok {
			s.logger.WithField("file", file.Path).Debug("无法解析命名空间")
			continue
		}
		for _, decl := range file.Types {
			id := ns + "." + decl.Name
			if _, seen := fileOf[id]; seen || !s.registry.Has(id) {
				continue
			}
			fileOf[id] = file.Path
			ids = append(ids, id)
		}
	}

	s.mu.Lock()
	s.files = fileOf
	s.mu.Unlock()
	return ids, nil
}

func (s *DirectoryStrategy) Metadata(id string) Metadata {
	m := lookupMetadata(s.registry, id)
	s.mu.RLock()
	if file, ok := s.files[id]; ok {
		m["file"] = file
	}
	s.mu.RUnlock()
	return m
}

func (s *DirectoryStrategy) CacheKey() string {
	s.mu.RLock()
	key := struct {
		Dirs    []string `json:"dirs"`
		Pattern string   `json:"pattern,omitempty"`
	}{s.dirs, s.pattern}
	s.mu.RUnlock()

	serialized, err := sonic.MarshalString(key)
	if err != nil {
		serialized = strings.Join(key.Dirs, "|") + "|" + key.Pattern
	}
	return "directory:" + Hash(serialized)
}

// expand 展开 glob，只保留存在的目录（有序去重）
func (s *DirectoryStrategy) expand(dirs []string) []string {
	var expanded []string
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(s.basePath, dir)
		}

		if !strings.ContainsAny(dir, "*?[{") {
			if isDir(dir) {
				expanded = append(expanded, filepath.Clean(dir))
			}
			continue
		}

		matches, err := zglob.Glob(dir)
		if err != nil {
			continue
		}
		for _, match := range matches {
			if isDir(match) {
				expanded = append(expanded, filepath.Clean(match))
			}
		}
	}

	expanded = lo.Uniq(expanded)
	slices.Sort(expanded)
	return expanded
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
