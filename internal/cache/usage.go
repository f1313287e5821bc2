package cache

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// DirUsage 统计单个资源目录下的条目数与字节数。
type DirUsage struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
}

// Usage 遍历缓存根目录，按一级子目录（资源类型）汇总 .json 条目。
func (s *Store) Usage(ctx context.Context) (map[string]DirUsage, error) {
	out := make(map[string]DirUsage)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		typ, _, found := strings.Cut(filepath.ToSlash(rel), "/")
		if !found {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		u := out[typ]
		u.Entries++
		u.Bytes += info.Size()
		out[typ] = u
		return nil
	})
	if err != nil {
		return nil, storageErr("usage", s.root, err)
	}
	return out, nil
}
