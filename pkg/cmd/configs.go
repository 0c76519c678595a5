package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/uploadvault/pkg/configs"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "inspect the loaded configuration",
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the config file in use",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			if v := configs.GetViper(); v != nil && v.ConfigFileUsed() != "" {
				fmt.Fprintln(out, v.ConfigFileUsed())
				return
			}

			fmt.Fprintln(out, "no config file used, running on defaults and UPLOADVAULT_* env")
		},
	}

	configShowCmd = &cobra.Command{
		Use:     "show",
		Aliases: []string{"debug"},
		Short:   "print the effective config as JSON (credentials included)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				if v := configs.GetViper(); v != nil {
					v.Debug()
				}
			}

			return printJSON(cmd.OutOrStdout(), configs.GetConfig())
		},
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate [path]",
		Short: "load and validate a config file or directory without starting anything",
		Args:  cobra.MaximumNArgs(1),
		// 不经过 bootstrap，配置无效时也能给出校验结果.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadEnvFile() },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) == 1 {
				path = args[0]
			}

			v, err := configs.Load(path)
			if err != nil {
				return err
			}

			cfg, err := configs.Decode(v)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: storage=%s db=%s max_file_size=%d\n",
				cfg.Upload.Storage.Type, cfg.DB.GetDBType(), cfg.Upload.MaxFileSize)

			return nil
		},
	}
)

func registerConfigsCommands() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
