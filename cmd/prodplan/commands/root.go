package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"prodplan/internal/config"
	"prodplan/internal/logging"
)

var (
	// Version 构建时通过 ldflags 注入
	Version = "dev"

	verbose    bool
	configPath string

	cfg     *config.AppConfig
	cfgInfo config.LoadConfigInfo
)

var rootCmd = &cobra.Command{
	Use:           "prodplan",
	Short:         "生产计划表：原料、日产量与牌号分配的周计划",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		var err error
		if configPath != "" {
			cfg, cfgInfo, err = config.LoadFrom(configPath)
		} else {
			cfg, cfgInfo, err = config.LoadConfigWithInfo()
		}
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logsDir := ""
		if cmd.Name() == "serve" {
			logsDir = config.LogsDir(cfg)
		}
		if err := logging.Init(logging.Options{Verbose: verbose, Dir: logsDir}); err != nil {
			return err
		}
		log.Debug().Str("version", Version).Str("config", cfgInfo.Path).Msg("prodplan starting")
		return nil
	},
}

// Execute 执行根命令
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config.toml 路径（默认与可执行文件同目录）")

	rootCmd.AddCommand(serveCmd, exportCmd, weeksCmd)
}
