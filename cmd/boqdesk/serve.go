package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"boqdesk/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port    int
		devMode bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.open()
			if err != nil {
				return err
			}
			defer rt.Close()

			// 命令行参数覆盖配置（仅当未显式配置 port 时生效）
			if port > 0 && !rt.info.PortSpecified {
				rt.cfg.Server.Port = port
			}
			if devMode {
				rt.cfg.Server.DevMode = true
			}

			srv := server.NewServer(rt.cfg, rt.store, rt.log)
			addr := fmt.Sprintf("%s:%d", rt.cfg.Server.Host, rt.cfg.Server.Port)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				rt.log.WithField("addr", addr).Info("server listening")
				errCh <- srv.Run(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			rt.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errCh
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "服务端口 (config.toml 优先)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "开发模式")
	return cmd
}
