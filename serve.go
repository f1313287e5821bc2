package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sofahub/sofahub/internal/logging"
	"github.com/sofahub/sofahub/internal/server"
	"github.com/sofahub/sofahub/internal/server/routes"
	"github.com/sofahub/sofahub/internal/version"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动只读 HTTP 服务",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime(opts)
			if err != nil {
				return err
			}

			fields := logging.BaseFields("startup", rt.cfg.Path)
			fields["listen_port"] = rt.cfg.Global.ListenPort
			fields["cache_dir"] = rt.store.Root()
			fields["proxy"] = rt.cfg.Global.ProxyMode()
			fields["version"] = version.Full()
			rt.logger.WithFields(fields).Info("配置加载完成")

			app, err := newHTTPApp(rt)
			if err != nil {
				return fmt.Errorf("HTTP 服务构建失败: %w", err)
			}
			if err := listen(cmd.Context(), app, rt.cfg.Global.ListenPort, rt.logger); err != nil {
				return fmt.Errorf("HTTP 服务启动失败: %w", err)
			}
			return nil
		},
	}
}

func newHTTPApp(rt *appRuntime) (*fiber.App, error) {
	app, err := server.NewApp(server.AppOptions{
		Logger:     rt.logger,
		API:        rt.client,
		ListenPort: rt.cfg.Global.ListenPort,
	})
	if err != nil {
		return nil, err
	}
	routes.RegisterResourceRoutes(app, rt.client.Policies(), rt.store.Stats)
	routes.RegisterMetricsRoute(app, rt.metrics)
	return app, nil
}

// listen 阻塞直到服务退出；ctx 取消时优雅关闭。
func listen(ctx context.Context, app *fiber.App, port int, logger *logrus.Logger) error {
	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.WithField("action", "shutdown").Info("收到退出信号，正在关闭服务")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
