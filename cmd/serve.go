package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yqhp/rpncalc/api/rest"
	"yqhp/rpncalc/internal/stats"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 求值服务",
		Long: `启动 REST 服务，提供以下接口：
  GET  /health
  POST /api/v1/evaluate   {"expression": "...", "trace": false}
  POST /api/v1/batch      {"expressions": ["...", "..."]}
  GET  /api/v1/stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g)
		},
	}

	cmd.Flags().String("address", ":8080", "HTTP 服务地址")
	return cmd
}

func runServe(cmd *cobra.Command, g *globalOptions) error {
	server := rest.NewServer(serverConfig(g), stats.NewRecorder(), g.log)

	ctx, cancel := context.WithCancel(contextOf(cmd))
	defer cancel()

	// 处理关闭信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			g.log.Info("正在关闭服务...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if !g.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), Banner, Version)
		fmt.Fprintln(cmd.ErrOrStderr())
		fmt.Fprintf(cmd.ErrOrStderr(), "  HTTP 地址: %s\n\n", g.cfg.Server.Address)
	}

	g.log.Info("服务启动", zap.String("address", g.cfg.Server.Address))
	if err := server.StartWithContext(ctx); err != nil {
		return fmt.Errorf("服务运行失败: %w", err)
	}
	g.log.Info("服务已停止")
	return nil
}

func serverConfig(g *globalOptions) *rest.Config {
	cfg := rest.DefaultConfig()
	cfg.Address = g.cfg.Server.Address
	cfg.ReadTimeout = g.cfg.Server.ReadTimeout
	cfg.WriteTimeout = g.cfg.Server.WriteTimeout
	cfg.EnableCORS = g.cfg.Server.EnableCORS
	cfg.BodyLimit = g.cfg.Server.MaxBodyBytes
	return cfg
}
