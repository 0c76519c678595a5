// Package cmd 定义 uploadvault 命令行：服务、一次性清理与巡检、帖子与配置工具.
package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/log"
)

var (
	configPath string
	envFile    string
	debug      bool

	rootCmd = &cobra.Command{
		Use:           configs.AppName,
		Short:         "Resumable chunked uploads for posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	registerServeCommands()
	registerJobCommands()
	registerPostCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

// loadEnvFile 把 .env 写入进程环境，文件不存在不算错误.
func loadEnvFile() error {
	if envFile == "" {
		return nil
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// bootstrap 加载 .env、配置与日志.
func bootstrap() error {
	if err := loadEnvFile(); err != nil {
		return err
	}

	if err := configs.InitConfig(configPath); err != nil {
		return err
	}

	cfg := configs.GetConfig()

	return log.Init(cfg.Log, debug || cfg.Server.Debug)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
