// Package cache 缓存发现结果（过滤后的标识符列表，不含元数据）
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Store 键值存储
type Store interface {
	// Get 第二个返回值表示是否命中
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put ttl 为 0 表示不过期
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// hashKey 键的内容寻址摘要，任意字符的键都能安全地作为文件名
func hashKey(key string) string {
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}
