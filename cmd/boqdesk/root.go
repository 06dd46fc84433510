package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"boqdesk/internal/config"
	"boqdesk/internal/logging"
	"boqdesk/internal/store"
)

type rootOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "boqdesk",
		Short:         "BOQ 任务批量导入服务",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "日志级别 (覆盖配置文件)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	return cmd
}

// app 子命令共用的配置、日志与存储
type app struct {
	cfg   *config.AppConfig
	info  config.LoadConfigInfo
	log   *logrus.Logger
	store *store.Store
}

func (o *rootOptions) open() (*app, error) {
	cfg, info, err := config.LoadConfigWithInfo(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.dataDir != "" {
		cfg.Data.DataDir = o.dataDir
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(config.DatabasePath(dataDir))
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"data_dir": dataDir, "config": info.Path}).Debug("runtime ready")

	return &app{cfg: cfg, info: info, log: logger, store: st}, nil
}

func (r *app) Close() {
	if err := r.store.Close(); err != nil {
		r.log.WithError(err).Warn("failed to close store")
	}
}
