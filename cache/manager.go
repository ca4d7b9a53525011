package cache

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/sirupsen/logrus"
)

// Entry 缓存条目
type Entry struct {
	IDs       []string `json:"ids"`
	CreatedAt int64    `json:"created_at"`
}

// Manager 发现结果缓存
//
// 禁用时 Get 总是未命中、Put 不做任何事。损坏或读取失败的条目按未命中处理。
// ttl 大于 0 时超过 ttl 的条目视为未命中；为 0 时条目永不过期。
type Manager struct {
	store   Store
	enabled bool
	ttl     time.Duration
	logger  logrus.FieldLogger
	now     func() time.Time
}

type Option func(*Manager)

func WithEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock 替换时间来源（测试用）
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		enabled: true,
		logger:  logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Enabled() bool {
	return m.enabled
}

func (m *Manager) Store() Store {
	return m.store
}

// Get 返回缓存的标识符列表
func (m *Manager) Get(ctx context.Context, key string) ([]string, bool) {
	if !m.enabled {
		return nil, false
	}

	log := m.logger.WithField("cache_key", key)
	data, ok, err := m.store.Get(ctx, key)
	if err != nil {
		log.WithError(err).Debug("读取缓存失败")
		return nil, false
	}
	if !ok {
		log.Debug("缓存未命中")
		return nil, false
	}

	var entry Entry
	if err := sonic.Unmarshal(data, &entry); err != nil || entry.IDs == nil {
		log.Debug("缓存条目损坏")
		return nil, false
	}
	if m.ttl > 0 && m.now().Sub(time.Unix(entry.CreatedAt, 0)) > m.ttl {
		log.Debug("缓存条目已过期")
		return nil, false
	}

	log.WithField("count", len(entry.IDs)).Debug("缓存命中")
	return entry.IDs, true
}

// Put 写入标识符列表
func (m *Manager) Put(ctx context.Context, key string, ids []string) error {
	if !m.enabled {
		return nil
	}
	if ids == nil {
		ids = []string{}
	}

	data, err := sonic.Marshal(Entry{IDs: ids, CreatedAt: m.now().Unix()})
	if err != nil {
		return errors.WithStackTrace(err)
	}
	return m.store.Put(ctx, key, data, m.ttl)
}

// Clear 删除单个键，不存在时不做任何事
func (m *Manager) Clear(ctx context.Context, key string) error {
	return m.store.Delete(ctx, key)
}

// ClearAll 删除全部缓存
func (m *Manager) ClearAll(ctx context.Context) error {
	return m.store.Clear(ctx)
}
