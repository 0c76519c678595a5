package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/service"
)

var (
	postAuthor string
	postTitle  string

	postCmd = &cobra.Command{
		Use:   "post",
		Short: "post related commands",
	}

	postAddCmd = &cobra.Command{
		Use:   "add",
		Short: "create a post that uploads can be attached to",
		RunE: func(cmd *cobra.Command, args []string) error {
			if postAuthor == "" {
				return errors.New("--author is required")
			}

			return withServices(cmd.Context(), configs.GetConfig(), func(ctx context.Context, svc *service.Set) error {
				post, err := svc.Ledger.CreatePost(ctx, postAuthor, postTitle)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created post %d (author %s)\n", post.ID, post.AuthorUsername)

				return nil
			})
		},
	}
)

func registerPostCommands() {
	postAddCmd.Flags().StringVar(&postAuthor, "author", "", "author username")
	postAddCmd.Flags().StringVar(&postTitle, "title", "", "post title")

	postCmd.AddCommand(postAddCmd)
	rootCmd.AddCommand(postCmd)
}
