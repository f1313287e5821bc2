package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sofahub/sofahub/internal/cache"
	"github.com/sofahub/sofahub/internal/config"
	"github.com/sofahub/sofahub/internal/logging"
	"github.com/sofahub/sofahub/internal/metrics"
	"github.com/sofahub/sofahub/internal/sofascore"
	"github.com/sofahub/sofahub/internal/upstream"
)

// appRuntime 持有一次命令执行所需的全部依赖。
type appRuntime struct {
	cfg     *config.Config
	logger  *logrus.Logger
	metrics *metrics.Registry
	store   *cache.Store
	client  *sofascore.Client
}

// loadConfig 加载配置并初始化日志。
func loadConfig(opts *cliOptions) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := logging.InitLogger(cfg.Global, stdErr)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

// buildRuntime 遵循“配置 → 日志 → 磁盘缓存 → 上游客户端 → API 客户端”的顺序，
// 保证所有请求共享同一个缓存实例与请求 Session。
func buildRuntime(opts *cliOptions) (*appRuntime, error) {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	registry := metrics.New()
	store, err := cache.NewStore(cfg.Global.CacheDir,
		cache.WithLogger(logger),
		cache.WithMetrics(registry.Cache),
	)
	if err != nil {
		return nil, fmt.Errorf("初始化缓存目录失败: %w", err)
	}

	upstreamOpts, err := upstream.OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("构建上游客户端失败: %w", err)
	}
	upstreamOpts.Logger = logger
	upstreamOpts.Metrics = registry.Upstream
	httpClient := upstream.NewClient(upstreamOpts)

	client := sofascore.New(store, httpClient,
		sofascore.WithPolicies(cfg.Policies()),
		sofascore.WithAPIBase(cfg.Global.APIBase),
		sofascore.WithSession(httpClient.NewSession()),
		sofascore.WithLogger(logger),
	)

	return &appRuntime{
		cfg:     cfg,
		logger:  logger,
		metrics: registry,
		store:   store,
		client:  client,
	}, nil
}
