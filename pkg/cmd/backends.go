package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/spf13/cobra"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/storage/blob"
	"github.com/yeisme/uploadvault/pkg/internal/storage/db"
	"github.com/yeisme/uploadvault/pkg/internal/storage/kv"
	"github.com/yeisme/uploadvault/pkg/internal/storage/mq"
	"github.com/yeisme/uploadvault/pkg/queue"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered database types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			printTypes(cmd.OutOrStdout(), "database", db.GetRegisteredDBTypes())
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update the posts and uploads tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := db.New(cmd.Context(), configs.GetConfig().DB)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrated", client.Type())

			return nil
		},
	}

	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "key-value store related commands",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered kv types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			printTypes(cmd.OutOrStdout(), "kv", kv.GetRegisteredKVTypes())
		},
	}

	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered mq types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			printTypes(cmd.OutOrStdout(), "mq", mq.GetRegisteredMQTypes())
		},
	}

	mqTailCmd = &cobra.Command{
		Use:   "tail",
		Short: "print upload lifecycle events as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := mq.New(ctx, configs.GetConfig().MQ, mq.WithMetrics(false))
			if err != nil {
				return err
			}
			defer client.Close()

			return tailEvents(ctx, cmd, client)
		},
	}

	blobCmd = &cobra.Command{
		Use:   "storage",
		Short: "upload file storage related commands",
	}

	blobListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered upload storage types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			printTypes(cmd.OutOrStdout(), "storage", blob.GetRegisteredTypes())
		},
	}
)

// tailEvents 订阅全部上传主题并逐条输出，直到命令上下文结束.
func tailEvents(ctx context.Context, cmd *cobra.Command, client *mq.Client) error {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, topic := range queue.UploadTopics() {
		ch, err := client.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		wg.Add(1)

		go func(ch <-chan *message.Message) {
			defer wg.Done()

			for msg := range ch {
				env, err := queue.ParseWatermillMessage[map[string]any](msg)
				msg.Ack()

				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skip malformed message %s: %v\n", msg.UUID, err)
					continue
				}

				mu.Lock()
				_ = printJSON(cmd.OutOrStdout(), env)
				mu.Unlock()
			}
		}(ch)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "listening on", client.Type())
	wg.Wait()

	return nil
}

func printTypes[T ~string](w io.Writer, kind string, types []T) {
	fmt.Fprintf(w, "Registered %s types:\n", kind)

	for _, t := range types {
		fmt.Fprintln(w, "   - "+string(t))
	}
}

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	dbCmd.AddCommand(dbListCmd, dbMigrateCmd)
	rootCmd.AddCommand(dbCmd)
}

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	kvCmd.AddCommand(kvListCmd)
	rootCmd.AddCommand(kvCmd)
}

// registerMQCommands 注册 MQ 与文件存储相关命令.
func registerMQCommands() {
	mqCmd.AddCommand(mqListCmd, mqTailCmd)
	blobCmd.AddCommand(blobListCmd)
	rootCmd.AddCommand(mqCmd, blobCmd)
}
