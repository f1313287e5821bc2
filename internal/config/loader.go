package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// DefaultPath 是未显式指定时尝试读取的配置文件。
	DefaultPath = "config.toml"
	// EnvConfigPath 指定配置文件路径的环境变量。
	EnvConfigPath = "SOFAHUB_CONFIG"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值、环境变量与校验逻辑。
// path 为空时依次尝试 SOFAHUB_CONFIG 与 ./config.toml；仅在使用默认文件时允许其缺失。
func Load(path string) (*Config, error) {
	allowMissing := false
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
		allowMissing = true
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("绑定环境变量失败: %w", err)
	}

	readPath := path
	if _, err := os.Stat(path); allowMissing && errors.Is(err, fs.ErrNotExist) {
		readPath = ""
	} else if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheDir, err := expandHome(cfg.Global.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	absCache, err := filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.CacheDir = absCache
	cfg.Path = readPath

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5050)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("CacheDir", "~/sofascore_cache")
	v.SetDefault("APIBase", "https://api.sofascore.com/api/v1")
	v.SetDefault("UpstreamTimeout", "30s")
	v.SetDefault("MaxRetries", 3)
	v.SetDefault("RetryDelay", "1.13s")
	v.SetDefault("RequestInterval", "2s")
	v.SetDefault("ProxyEndpoint", "")
	v.SetDefault("ProxyUsername", "")
	v.SetDefault("ProxyPassword", "")
}

// bindEnv 让 SOFAHUB_<KEY> 覆盖任意全局键，代理三项额外兼容无前缀的 PROXY_* 变量。
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("SOFAHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range map[string]string{
		"ProxyEndpoint": "PROXY_ENDPOINT",
		"ProxyUsername": "PROXY_USERNAME",
		"ProxyPassword": "PROXY_PASSWORD",
	} {
		if err := v.BindEnv(key, "SOFAHUB_"+strings.ToUpper(key), env); err != nil {
			return err
		}
	}
	return nil
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5050
	}
	if strings.TrimSpace(g.APIBase) == "" {
		g.APIBase = "https://api.sofascore.com/api/v1"
	}
	g.APIBase = strings.TrimRight(g.APIBase, "/")
	if g.UpstreamTimeout.DurationValue() == 0 {
		g.UpstreamTimeout = Duration(30 * time.Second)
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
