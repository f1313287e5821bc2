package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sofahub/sofahub/internal/logging"
	"github.com/sofahub/sofahub/internal/resource"
)

const fileExt = ".json"

// Resolve 将 (资源类型, 键) 映射为缓存文件的绝对路径，并按需创建目录。
//
// 分页类型（match_dicts）的键形如 league/year/page，拆为两级目录加页码文件；
// year 自身含 `/` 时（如 "22/23"）首尾之间的段会以 `_` 拼接。段数不足 3 时
// 记录 key_format 告警并回退到扁平布局。其余类型一律将 `/` 替换为 `_`。
func (s *Store) Resolve(typ resource.Type, key string) (string, error) {
	meta := s.metadata(typ)
	if err := checkSegments(string(meta.Type)); err != nil || strings.Contains(string(meta.Type), "/") {
		return "", storageErr("resolve", string(typ), fmt.Errorf("%w: resource type %q", ErrInvalidKey, typ))
	}
	base := filepath.Join(s.root, meta.Subdir())

	if meta.Layout == resource.LayoutPaged {
		parts := strings.Split(key, "/")
		if len(parts) >= 3 {
			league := parts[0]
			year := strings.Join(parts[1:len(parts)-1], "_")
			page := parts[len(parts)-1]
			if err := checkSegments(league, year, page); err != nil {
				return "", storageErr("resolve", key, err)
			}
			dir := filepath.Join(base, league, year)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", storageErr("mkdir", dir, err)
			}
			return filepath.Join(dir, page+fileExt), nil
		}
		s.logger.WithFields(logrus.Fields{
			"action":   "key_format",
			"resource": string(meta.Type),
			"key":      key,
		}).Warn("unexpected key format for paged resource, using flat layout")
	}

	safe := strings.ReplaceAll(key, "/", "_")
	if err := checkSegments(safe); err != nil {
		return "", storageErr("resolve", key, err)
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", storageErr("mkdir", base, err)
	}
	return filepath.Join(base, safe+fileExt), nil
}

// metadata 查找注册表；未注册的类型按扁平布局处理，子目录即类型名。
func (s *Store) metadata(typ resource.Type) resource.Metadata {
	if meta, ok := resource.Resolve(string(typ)); ok {
		return meta
	}
	return resource.Metadata{Type: typ, Layout: resource.LayoutFlat}
}

// checkSegments 拒绝可能逃出资源目录或无法作为文件名的片段。
func checkSegments(segments ...string) error {
	for _, seg := range segments {
		switch {
		case seg == "", seg == ".", seg == "..":
			return fmt.Errorf("%w: segment %q", ErrInvalidKey, seg)
		case strings.ContainsAny(seg, `\`+"\x00"):
			return fmt.Errorf("%w: segment %q", ErrInvalidKey, seg)
		}
	}
	return nil
}

// cacheFields 与 logging.CacheFields 保持一致，便于按资源过滤日志。
func cacheFields(typ resource.Type, key string, hit bool) logrus.Fields {
	return logging.CacheFields(string(typ), key, hit)
}
