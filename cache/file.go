package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/gofrs/flock"
)

const lockFileName = ".lock"

// FileStore 每个键一个文件：<dir>/<xxhash(key)>.json
//
// 写入先写临时文件再 rename，并持有目录下的 flock 锁，多个进程并发写同一键不会产生残缺文件。
// 过期由 Manager 根据条目中的创建时间判断，FileStore 忽略 ttl。
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, hashKey(key)+".json")
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.WithStackTrace(err)
	}
	return data, true, nil
}

func (s *FileStore) Put(_ context.Context, key string, data []byte, _ time.Duration) error {
	// 首次写入时创建目录
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.WithStackTraceAndPrefix(err, "创建缓存目录 %s 失败", s.dir)
	}

	return s.withLock(func() error {
		tmp, err := os.CreateTemp(s.dir, ".tmp-*")
		if err != nil {
			return errors.WithStackTrace(err)
		}
		tmpName := tmp.Name()
		defer os.Remove(tmpName)

		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return errors.WithStackTrace(err)
		}
		if err := tmp.Close(); err != nil {
			return errors.WithStackTrace(err)
		}
		return errors.WithStackTrace(os.Rename(tmpName, s.path(key)))
	})
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if !dirExists(s.dir) {
		return nil
	}
	return s.withLock(func() error {
		if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
			return errors.WithStackTrace(err)
		}
		return nil
	})
}

// Clear 删除缓存目录下的全部内容
func (s *FileStore) Clear(_ context.Context) error {
	if !dirExists(s.dir) {
		return nil
	}
	return s.withLock(func() error {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			return errors.WithStackTrace(err)
		}
		for _, entry := range entries {
			if entry.Name() == lockFileName {
				continue
			}
			if err := os.RemoveAll(filepath.Join(s.dir, entry.Name())); err != nil {
				return errors.WithStackTrace(err)
			}
		}
		return nil
	})
}

func (s *FileStore) withLock(fn func() error) error {
	lock := flock.New(filepath.Join(s.dir, lockFileName))
	if err := lock.Lock(); err != nil {
		return errors.WithStackTraceAndPrefix(err, "获取缓存锁失败")
	}
	defer lock.Unlock()
	return fn()
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
