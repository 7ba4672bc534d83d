package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xmuzan/samplepomodoro/internal/auth"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Account and progress administration against the configured store",
	}
	cmd.AddCommand(newAdminUsersCmd(), newAdminApproveCmd(), newAdminResetCmd())
	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stores, cleanup, err := openStores(context.Background())
			if err != nil {
				return err
			}
			defer cleanup()

			users, err := auth.NewService(stores.Auth, nil, auth.Options{}).ListUsers()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, Heading(IconSparkle, "Accounts"))
			for _, u := range users {
				status := Warn.Render(string(u.Status))
				if u.Status == auth.StatusActive {
					status = Good.Render(string(u.Status))
				}
				role := ""
				if u.Admin {
					role = Gold.Render(" admin")
				}
				fmt.Fprintf(w, "- %s %s%s %s\n", Key.Render(u.Username), status, role, Muted.Render(u.CreatedAt.Format("2006-01-02")))
			}
			return nil
		},
	}
}

func newAdminApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <username>",
		Short: "Activate a pending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, stores, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := auth.NewService(stores.Auth, nil, auth.Options{}).Approve(args[0], time.Now().UTC())
			if err != nil {
				return err
			}
			if err := svc.CreatePlayer(ctx, u.Username); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Good.Render(IconDone+" approved"), u.Username)
			return nil
		},
	}
}

func newAdminResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <username>",
		Short: "Reset a player's progress to the defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := svc.ResetProgress(ctx, true, auth.NormalizeUsername(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Warn.Render(IconWarn+" progress reset"), args[0])
			return nil
		},
	}
}
