// Package discovery 发现查询的入口
//
//	m, err := discovery.New(ctx, cfg)
//	cards, err := m.Directories("app/cards").Where("enabled", true).Cached().Get(ctx)
//	routes, err := m.Methods("Route").Where("method", "GET").Get(ctx)
package discovery

import (
	"context"
	"path/filepath"

	"github.com/donutnomad/godiscover/cache"
	"github.com/donutnomad/godiscover/catalog"
	"github.com/donutnomad/godiscover/config"
	"github.com/donutnomad/godiscover/internal/logging"
	"github.com/donutnomad/godiscover/internal/scanner"
	"github.com/donutnomad/godiscover/namespace"
	"github.com/donutnomad/godiscover/strategy"
	"github.com/sirupsen/logrus"
)

// Manager 持有发现所需的全部依赖
type Manager struct {
	cfg      config.Config
	logger   logrus.FieldLogger
	resolver *namespace.Resolver
	scanner  *scanner.Scanner
	catalog  *catalog.Catalog
	cache    *cache.Manager
	factory  *strategy.Factory

	scanOnLoad bool
}

type Option func(*Manager)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCatalog 使用预先登记的类型（例如生成的 RegisterTypes），不再扫描源码
func WithCatalog(c *catalog.Catalog) Option {
	return func(m *Manager) {
		if c != nil {
			m.catalog = c
			m.scanOnLoad = false
		}
	}
}

// WithCache 替换按配置创建的缓存
func WithCache(c *cache.Manager) Option {
	return func(m *Manager) {
		m.cache = c
	}
}

// New 创建 Manager：解析配置、扫描 scan.paths 建立类型登记表、打开缓存
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:        cfg,
		logger:     logging.Discard(),
		scanOnLoad: true,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.resolver = namespace.New(cfg.Namespace())
	m.scanner = scanner.New(scanner.WithWorkers(cfg.Scan.Workers))

	if m.catalog == nil {
		m.catalog = catalog.New()
	}
	if m.scanOnLoad {
		if err := m.scan(ctx, m.catalog); err != nil {
			return nil, err
		}
	}

	if m.cache == nil {
		c, err := cache.Open(cfg.CacheConfig(), m.logger)
		if err != nil {
			return nil, err
		}
		m.cache = c
	}

	m.factory = strategy.NewFactory(m.catalog, m.resolver,
		strategy.WithIndex(m.catalog),
		strategy.WithScanner(m.scanner),
		strategy.WithBasePath(cfg.BasePath),
		strategy.WithLogger(m.logger),
	)
	return m, nil
}

func (m *Manager) scan(ctx context.Context, into *catalog.Catalog) error {
	patterns := make([]string, 0, len(m.cfg.Scan.Paths))
	for _, p := range m.cfg.Scan.Paths {
		patterns = append(patterns, m.cfg.Abs(filepath.FromSlash(p)))
	}

	result, err := m.scanner.Scan(ctx, patterns...)
	if err != nil {
		return err
	}
	skipped := into.Load(result, m.resolver)
	m.logger.WithFields(logrus.Fields{
		"files":   len(result.Files),
		"types":   into.Len(),
		"skipped": skipped,
	}).Debug("类型登记完成")
	return nil
}

// Reload 重新扫描源码并替换类型登记表，已创建的构建器随之看到新内容
func (m *Manager) Reload(ctx context.Context) error {
	m.resolver.Reset()
	if !m.scanOnLoad {
		return nil
	}
	fresh := catalog.New()
	if err := m.scan(ctx, fresh); err != nil {
		return err
	}
	m.catalog.Replace(fresh)
	return nil
}

func (m *Manager) Config() config.Config {
	return m.cfg
}

func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

func (m *Manager) Cache() *cache.Manager {
	return m.cache
}

func (m *Manager) Factory() *strategy.Factory {
	return m.factory
}

func (m *Manager) Logger() logrus.FieldLogger {
	return m.logger
}

// Builder 使用任意策略创建构建器
func (m *Manager) Builder(s strategy.Strategy) *Builder {
	return NewBuilder(s, m.catalog, m.cache, m.logger)
}

// Attribute 带有指定注解的类型
func (m *Manager) Attribute(name string) *Builder {
	s, err := m.factory.Attribute(name)
	if err != nil {
		return failed(err, m.logger)
	}
	return m.Builder(s)
}

// Directories 目录中声明的类型
func (m *Manager) Directories(dirs ...string) *Builder {
	return m.Builder(m.factory.Directory(dirs...))
}

// Implementing 实现了接口的类型，可用 In 限定目录
func (m *Manager) Implementing(iface string) *Builder {
	return m.Builder(m.factory.Interface(iface))
}

// Extending （传递地）嵌入了 parent 的类型，可用 In 限定目录
func (m *Manager) Extending(parent string) *Builder {
	return m.Builder(m.factory.Parent(parent))
}

// Methods 带有指定注解的方法，标识符形如 pkg.Type::Method
func (m *Manager) Methods(name string) *Builder {
	s, err := m.factory.Methods(name)
	if err != nil {
		return failed(err, m.logger)
	}
	return m.Builder(s)
}

// Properties 带有指定注解的字段，标识符形如 pkg.Type::$Field
func (m *Manager) Properties(name string) *Builder {
	s, err := m.factory.Properties(name)
	if err != nil {
		return failed(err, m.logger)
	}
	return m.Builder(s)
}
