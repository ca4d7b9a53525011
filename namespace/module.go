package namespace

import (
	"os"
	"path/filepath"

	"github.com/donutnomad/godiscover/internal/errors"
	"golang.org/x/mod/modfile"
)

// ErrModuleNotFound 向上查找不到 go.mod
var ErrModuleNotFound = errors.New("未找到 go.mod")

// readModulePath 从 go.mod 文件读取模块路径
func readModulePath(goModPath string) (string, error) {
	content, err := os.ReadFile(goModPath)
	if err != nil {
		return "", errors.WithStackTraceAndPrefix(err, "读取 %s 失败", goModPath)
	}
	modulePath := modfile.ModulePath(content)
	if modulePath == "" {
		return "", errors.Errorf("未在 %s 中找到模块名称", goModPath)
	}
	return modulePath, nil
}

// findModule 从 dir 开始向上查找最近的 go.mod
func (r *Resolver) findModule(dir string) (moduleInfo, error) {
	if info, ok := r.modules.get(dir); ok {
		return info, nil
	}

	for current := dir; ; {
		goMod := filepath.Join(current, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			modulePath, err := readModulePath(goMod)
			if err != nil {
				return moduleInfo{}, err
			}
			info := moduleInfo{path: modulePath, root: current}
			r.modules.set(dir, info)
			return info, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return moduleInfo{}, ErrModuleNotFound
		}
		current = parent
	}
}

// ModuleOf 返回目录所属模块的路径和根目录
func (r *Resolver) ModuleOf(dir string) (string, string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", errors.WithStackTrace(err)
	}
	info, err := r.findModule(abs)
	if err != nil {
		return "", "", err
	}
	return info.path, info.root, nil
}
