package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFailsWithMissingFields(t *testing.T) {
	if _, err := Load(fixturePath(t, "missing.toml")); err == nil {
		t.Fatalf("缺失字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := writeCacheConfig(t, "LogLevel = \"info\"\nRetryDelay = \"boom\"\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	if _, err := Load(path); err == nil {
		t.Fatalf("显式指定的配置文件不存在时应报错")
	}
}

func TestLoadDefaultFileMayBeMissing(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("默认配置文件缺失时应使用默认值: %v", err)
	}
	if cfg.Path != "" {
		t.Fatalf("未读取文件时 Path 应为空")
	}
	if cfg.Global.ListenPort != 5050 {
		t.Fatalf("ListenPort 默认值错误: %d", cfg.Global.ListenPort)
	}
	if !strings.HasSuffix(cfg.Global.CacheDir, "sofascore_cache") {
		t.Fatalf("CacheDir 默认值错误: %s", cfg.Global.CacheDir)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(cfg.Global.CacheDir, home) {
		t.Fatalf("~ 应展开到 HOME: %s", cfg.Global.CacheDir)
	}
}

func TestLoadReadsEnvConfigPath(t *testing.T) {
	path := writeTempConfig(t, "ListenPort = 6060\nCacheDir = \"./data\"\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.ListenPort != 6060 {
		t.Fatalf("应读取 SOFAHUB_CONFIG 指向的文件")
	}
}

func TestLoadProxyFromEnvironment(t *testing.T) {
	t.Setenv("PROXY_ENDPOINT", "gate.proxy.test:7000")
	t.Setenv("PROXY_USERNAME", "user")
	t.Setenv("PROXY_PASSWORD", "secret")

	path := writeCacheConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.ProxyEndpoint != "gate.proxy.test:7000" || cfg.Global.ProxyUsername != "user" {
		t.Fatalf("代理环境变量未生效: %+v", cfg.Global)
	}
}
