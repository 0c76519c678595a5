package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/service"
	"github.com/yeisme/uploadvault/pkg/internal/storage"
)

var (
	sweepPageSize     uint64
	sweepMaxAge       time.Duration
	reconcilePageSize uint64

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "hide uploads that were never published within max-age (one pass)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()

			pageSize := cfg.Sweeper.PageSize
			if cmd.Flags().Changed("page-size") {
				pageSize = sweepPageSize
			}

			maxAge := cfg.Sweeper.MaxAge
			if cmd.Flags().Changed("max-age") {
				maxAge = sweepMaxAge
			}

			return withServices(cmd.Context(), cfg, func(ctx context.Context, svc *service.Set) error {
				res, err := svc.Sweeper.Run(ctx, pageSize, maxAge)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	reconcileCmd = &cobra.Command{
		Use:   "reconcile",
		Short: "mark published uploads whose public file disappeared as missing (one pass)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()

			pageSize := cfg.Reconciler.PageSize
			if cmd.Flags().Changed("page-size") {
				pageSize = reconcilePageSize
			}

			return withServices(cmd.Context(), cfg, func(ctx context.Context, svc *service.Set) error {
				res, err := svc.Reconciler.Run(ctx, pageSize)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
)

// withServices 初始化存储与服务，执行 fn 后关闭存储.
func withServices(ctx context.Context, cfg *configs.AppConfig, fn func(context.Context, *service.Set) error) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	mgr, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := mgr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, service.NewSet(mgr, cfg))
}

func printJSON(w io.Writer, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

func registerJobCommands() {
	sweepCmd.Flags().Uint64Var(&sweepPageSize, "page-size", configs.DefaultSweepPageSize, "ids per sweep window")
	sweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", configs.DefaultSweepMaxAge, "reclaim uploads created before now-max-age")
	reconcileCmd.Flags().Uint64Var(&reconcilePageSize, "page-size", configs.DefaultReconcilePageSz, "ids per reconcile window")

	rootCmd.AddCommand(sweepCmd, reconcileCmd)
}
