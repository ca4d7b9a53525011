package strategy

import (
	"github.com/donutnomad/godiscover/internal/scanner"
	"github.com/sirupsen/logrus"
)

// Factory 创建带依赖的策略
type Factory struct {
	registry Registry
	index    MetadataIndex
	resolver Resolver
	scanner  *scanner.Scanner
	basePath string
	logger   logrus.FieldLogger
}

type FactoryOption func(*Factory)

// WithIndex 设置注解索引，不设置时基于注解的策略返回 ErrIndexUnavailable
func WithIndex(index MetadataIndex) FactoryOption {
	return func(f *Factory) {
		f.index = index
	}
}

func WithScanner(sc *scanner.Scanner) FactoryOption {
	return func(f *Factory) {
		f.scanner = sc
	}
}

// WithBasePath 目录策略中相对路径的基准目录
func WithBasePath(path string) FactoryOption {
	return func(f *Factory) {
		f.basePath = path
	}
}

func WithLogger(logger logrus.FieldLogger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

func NewFactory(registry Registry, resolver Resolver, opts ...FactoryOption) *Factory {
	f := &Factory{
		registry: registry,
		resolver: resolver,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.scanner == nil {
		f.scanner = scanner.New()
	}
	return f
}

func (f *Factory) Registry() Registry {
	return f.registry
}

func (f *Factory) Attribute(name string) (*AttributeStrategy, error) {
	if f.index == nil {
		return nil, ErrIndexUnavailable
	}
	return NewAttributeStrategy(name, f.index), nil
}

func (f *Factory) Directory(dirs ...string) *DirectoryStrategy {
	return NewDirectoryStrategy(dirs, f.basePath, f.resolver, f.registry, f.scanner).SetLogger(f.logger)
}

func (f *Factory) Interface(iface string) *InterfaceStrategy {
	return NewInterfaceStrategy(iface, f.registry, f)
}

func (f *Factory) Parent(parent string) *ParentStrategy {
	return NewParentStrategy(parent, f.registry, f)
}

func (f *Factory) Methods(name string) (*MethodStrategy, error) {
	if f.index == nil {
		return nil, ErrIndexUnavailable
	}
	return NewMethodStrategy(name, f.index), nil
}

func (f *Factory) Properties(name string) (*PropertyStrategy, error) {
	if f.index == nil {
		return nil, ErrIndexUnavailable
	}
	return NewPropertyStrategy(name, f.index), nil
}
