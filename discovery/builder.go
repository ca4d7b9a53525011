package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/donutnomad/godiscover/cache"
	"github.com/donutnomad/godiscover/filter"
	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/donutnomad/godiscover/strategy"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// ErrNoStrategy 构建器未绑定策略
var ErrNoStrategy = errors.New("discovery: 未设置发现策略")

// Result 一个发现结果
type Result struct {
	ID       string
	Metadata strategy.Metadata
}

// Results 有序的发现结果
type Results []Result

func (r Results) IDs() []string {
	return lo.Map(r, func(item Result, _ int) string { return item.ID })
}

func (r Results) Map() map[string]strategy.Metadata {
	out := make(map[string]strategy.Metadata, len(r))
	for _, item := range r {
		out[item.ID] = item.Metadata
	}
	return out
}

// Registrar 接收发现结果，例如注册到容器或路由表
type Registrar interface {
	Register(id string, meta strategy.Metadata) error
}

// RegistrarFunc 函数形式的 Registrar
type RegistrarFunc func(id string, meta strategy.Metadata) error

func (f RegistrarFunc) Register(id string, meta strategy.Metadata) error {
	return f(id, meta)
}

// directoryScoped 可以限定到目录的策略（接口、父类型）
type directoryScoped interface {
	Directories(paths ...string) error
}

// Builder 发现查询
//
// 链式方法只记录配置，Get 时才执行：
//
//	Discover -> 过滤器（按注册顺序）-> 校验器（与关系）-> 缓存 -> 逐个生成元数据
//
// 构建过程中的错误会保存下来，由 Get 等终结方法返回。
type Builder struct {
	strategy   strategy.Strategy
	relations  filter.Relations
	cache      *cache.Manager
	logger     logrus.FieldLogger
	filters    []filter.Filter
	validators []filter.Validator
	cached     bool
	cacheKey   string
	err        error
}

// NewBuilder relations 用于 Instantiable/Extending/Implementing，cache 为 nil 时 Cached 不生效
func NewBuilder(s strategy.Strategy, relations filter.Relations, c *cache.Manager, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	b := &Builder{
		strategy:  s,
		relations: relations,
		cache:     c,
		logger:    logger,
	}
	if s == nil {
		b.err = ErrNoStrategy
	}
	return b
}

// failed 返回一个带错误的构建器
func failed(err error, logger logrus.FieldLogger) *Builder {
	b := NewBuilder(nil, nil, nil, logger)
	b.err = err
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil && err != nil {
		b.err = err
	}
	return b
}

// Strategy 返回绑定的策略
func (b *Builder) Strategy() strategy.Strategy {
	return b.strategy
}

// Err 构建过程中的第一个错误
func (b *Builder) Err() error {
	return b.err
}

// Where 按注解参数过滤：Where("enabled", true) 或 Where("priority", ">=", 5)
func (b *Builder) Where(property string, args ...any) *Builder {
	f, err := filter.Where(property, args...)
	if err != nil {
		return b.fail(err)
	}
	return b.Using(f)
}

// Filter 自定义过滤函数
func (b *Builder) Filter(fn filter.Predicate) *Builder {
	if fn == nil {
		return b.fail(errors.New("discovery: Filter 的函数不能为空"))
	}
	return b.Using(filter.NewCallbackFilter(fn))
}

// Using 追加过滤器
func (b *Builder) Using(f filter.Filter) *Builder {
	if f != nil {
		b.filters = append(b.filters, f)
	}
	return b
}

// Validate 追加校验器
func (b *Builder) Validate(v filter.Validator) *Builder {
	if v != nil {
		b.validators = append(b.validators, v)
	}
	return b
}

func (b *Builder) Instantiable() *Builder {
	if b.relations == nil {
		return b.fail(errors.New("discovery: Instantiable 需要类型登记表"))
	}
	return b.Validate(filter.Instantiable(b.relations))
}

// Extending 只保留（传递地）嵌入了 parent 的类型
func (b *Builder) Extending(parent string) *Builder {
	if b.relations == nil {
		return b.fail(errors.New("discovery: Extending 需要类型登记表"))
	}
	return b.Validate(filter.Extends(b.relations, parent))
}

// Implementing 只保留实现了 iface 的类型
func (b *Builder) Implementing(iface string) *Builder {
	if b.relations == nil {
		return b.fail(errors.New("discovery: Implementing 需要类型登记表"))
	}
	return b.Validate(filter.Implements(b.relations, iface))
}

// Implements 同 Implementing
func (b *Builder) Implements(iface string) *Builder {
	return b.Implementing(iface)
}

// In 将接口/父类型发现限定在目录内
func (b *Builder) In(dirs ...string) *Builder {
	if b.err != nil {
		return b
	}
	scoped, ok := b.strategy.(directoryScoped)
	if !ok {
		return b.fail(errors.Errorf("discovery: %T 不支持按目录限定", b.strategy))
	}
	return b.fail(scoped.Directories(dirs...))
}

// Cached 启用缓存，不传 key 时由策略与过滤条件生成
func (b *Builder) Cached(key ...string) *Builder {
	b.cached = true
	if len(key) > 0 {
		b.cacheKey = key[0]
	}
	return b
}

// CacheKey 返回实际使用的缓存键，未启用缓存时为空
func (b *Builder) CacheKey() string {
	if !b.cached || b.err != nil {
		return ""
	}
	if b.cacheKey != "" {
		return b.cacheKey
	}

	parts := []string{b.strategy.CacheKey()}
	for _, f := range b.filters {
		parts = append(parts, describe(f))
	}
	for _, v := range b.validators {
		parts = append(parts, describe(v))
	}
	return "discovery:" + strategy.Hash(strings.Join(parts, "|"))
}

// describe 类型名加参数摘要，参数不同的过滤条件得到不同的键
func describe(v any) string {
	name := fmt.Sprintf("%T", v)
	if fp, ok := v.(filter.Fingerprinter); ok {
		return name + "(" + fp.Fingerprint() + ")"
	}
	return name
}

// Get 执行发现
//
// 即使缓存命中也会调用 Discover，策略依赖它填充元数据。缓存只保存过滤后的标识符列表。
func (b *Builder) Get(ctx context.Context) (Results, error) {
	if b.err != nil {
		return nil, b.err
	}

	log := b.logger.WithField("strategy", b.strategy.CacheKey())
	raw, err := b.strategy.Discover(ctx)
	if err != nil {
		return nil, err
	}

	key := b.CacheKey()
	var ids []string
	hit := false
	if key != "" && b.cache != nil {
		ids, hit = b.cache.Get(ctx, key)
	}
	if !hit {
		ids = filter.ApplyFilters(raw, b.strategy, b.filters...)
		ids = filter.ApplyValidators(ids, b.validators...)
		if key != "" && b.cache != nil {
			if err := b.cache.Put(ctx, key, ids); err != nil {
				log.WithError(err).WithField("cache_key", key).Warn("写入缓存失败")
			}
		}
	}

	results := make(Results, 0, len(ids))
	for _, id := range ids {
		results = append(results, Result{ID: id, Metadata: b.strategy.Metadata(id)})
	}
	log.WithField("count", len(results)).Debug("发现完成")
	return results, nil
}

// Classes 只返回标识符
func (b *Builder) Classes(ctx context.Context) ([]string, error) {
	results, err := b.Get(ctx)
	if err != nil {
		return nil, err
	}
	return results.IDs(), nil
}

// ToMap 标识符 -> 元数据
func (b *Builder) ToMap(ctx context.Context) (map[string]strategy.Metadata, error) {
	results, err := b.Get(ctx)
	if err != nil {
		return nil, err
	}
	return results.Map(), nil
}

// Paths 目录策略返回展开后的目录；其他策略返回声明标识符的文件（去重），无法定位的标识符被跳过
func (b *Builder) Paths(ctx context.Context) ([]string, error) {
	if b.err != nil {
		return nil, b.err
	}
	if p, ok := b.strategy.(strategy.Pather); ok {
		return p.Directories(), nil
	}

	results, err := b.Get(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(results))
	for _, item := range results {
		if file, ok := item.Metadata["file"].(string); ok && file != "" {
			paths = append(paths, file)
		}
	}
	return lo.Uniq(paths), nil
}

// Register 将结果逐个交给 registrar，返回成功注册的数量
func (b *Builder) Register(ctx context.Context, registrar Registrar) (int, error) {
	results, err := b.Get(ctx)
	if err != nil {
		return 0, err
	}
	for i, item := range results {
		if err := registrar.Register(item.ID, item.Metadata); err != nil {
			return i, errors.WithStackTraceAndPrefix(err, "discovery: 注册 %s 失败", item.ID)
		}
	}
	return len(results), nil
}
