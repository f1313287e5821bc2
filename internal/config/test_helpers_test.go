package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// fixturePath 返回 testdata 下的 sofahub 配置样例。
func fixturePath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("缺少配置样例 %s: %v", name, err)
	}
	return path
}

// writeTempConfig 将 TOML 写入临时目录，返回配置路径。
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入 sofahub 配置失败: %v", err)
	}
	return path
}

// writeCacheConfig 写入只指定缓存目录的最小配置，extra 追加在其后。
func writeCacheConfig(t *testing.T, extra string) string {
	t.Helper()
	cacheDir := filepath.Join(t.TempDir(), "sofascore_cache")
	return writeTempConfig(t, fmt.Sprintf("CacheDir = %q\n%s", cacheDir, extra))
}
