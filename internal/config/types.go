package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sofahub/sofahub/internal/resource"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒数（整数或小数）与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"36h"、"86400" 或 "1.13" 等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(seconds * float64(time.Second)))
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述全局运行时行为：日志、缓存目录、上游访问节奏与代理。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	CacheDir        string   `mapstructure:"CacheDir"`
	APIBase         string   `mapstructure:"APIBase"`
	UpstreamTimeout Duration `mapstructure:"UpstreamTimeout"`
	MaxRetries      int      `mapstructure:"MaxRetries"`
	RetryDelay      Duration `mapstructure:"RetryDelay"`
	RequestInterval Duration `mapstructure:"RequestInterval"`
	ProxyEndpoint   string   `mapstructure:"ProxyEndpoint"`
	ProxyUsername   string   `mapstructure:"ProxyUsername"`
	ProxyPassword   string   `mapstructure:"ProxyPassword"`
}

// ResourceConfig 覆盖单个资源类型的默认读取策略。
type ResourceConfig struct {
	Name     string   `mapstructure:"Name"`
	CacheTTL Duration `mapstructure:"CacheTTL"`
	Forever  bool     `mapstructure:"Forever"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global    GlobalConfig     `mapstructure:",squash"`
	Resources []ResourceConfig `mapstructure:"Resource"`

	// Path 记录实际读取的文件；未找到默认文件时为空。
	Path string `mapstructure:"-"`
}

// HasProxy 表示是否配置了上游代理。
func (g GlobalConfig) HasProxy() bool {
	return strings.TrimSpace(g.ProxyEndpoint) != ""
}

// ProxyURL 将代理配置拼装为 http://[user:pass@]endpoint；未配置时返回 nil。
func (g GlobalConfig) ProxyURL() (*url.URL, error) {
	endpoint := strings.TrimSpace(g.ProxyEndpoint)
	if endpoint == "" {
		return nil, nil
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("代理缺少 Host: %s", g.ProxyEndpoint)
	}
	if g.ProxyUsername != "" {
		parsed.User = url.UserPassword(g.ProxyUsername, g.ProxyPassword)
	}
	return parsed, nil
}

// ProxyMode 输出 `proxied` 或 `direct`，供日志字段使用，不暴露凭证。
func (g GlobalConfig) ProxyMode() string {
	if g.HasProxy() {
		return "proxied"
	}
	return "direct"
}

// Overrides 将资源块映射为策略覆盖项。
func (r ResourceConfig) Overrides() resource.Overrides {
	return resource.Overrides{
		TTL:     r.CacheTTL.DurationValue(),
		Forever: r.Forever,
	}
}
