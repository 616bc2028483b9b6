package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/relaychat-server/internal/store"
	"github.com/vovakirdan/relaychat-server/internal/store/sqlite"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user records",
	}

	var (
		name    string
		chatID  string
		addedBy string
		admin   bool
	)
	addCmd := &cobra.Command{
		Use:   "add <unique-key>",
		Short: "Create a user that can join rooms and send messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := &store.User{
				UniqueKey:   args[0],
				Name:        name,
				ChatID:      chatID,
				AddedBy:     addedBy,
				IsChatAdmin: admin,
			}
			if user.Name == "" {
				user.Name = args[0]
			}
			return withStore(cmd.Context(), opts, func(ctx context.Context, st store.Store) error {
				if err := st.CreateUser(ctx, user); err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				return printJSON(cmd, user)
			})
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "display name (defaults to the key)")
	addCmd.Flags().StringVar(&chatID, "chat", "", "home chat id")
	addCmd.Flags().StringVar(&addedBy, "added-by", "", "id of the user who added this one")
	addCmd.Flags().BoolVar(&admin, "admin", false, "mark as chat admin")

	userCmd.AddCommand(addCmd)
	return userCmd
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Manage chat records",
	}

	var (
		id        string
		createdBy string
	)
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a chat record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat := &store.Chat{ID: id, Name: args[0], CreatedBy: createdBy}
			return withStore(cmd.Context(), opts, func(ctx context.Context, st store.Store) error {
				if err := st.CreateChat(ctx, chat); err != nil {
					return fmt.Errorf("create chat: %w", err)
				}
				return printJSON(cmd, chat)
			})
		},
	}
	addCmd.Flags().StringVar(&id, "id", "", "chat id (generated when empty)")
	addCmd.Flags().StringVar(&createdBy, "created-by", "", "id of the creating user")

	chatCmd.AddCommand(addCmd)
	return chatCmd
}

func withStore(ctx context.Context, opts *rootOptions, fn func(context.Context, store.Store) error) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, st)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
