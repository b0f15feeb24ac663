package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/localstore"
)

func RegisterCmd() *cobra.Command {
	var username, email, password, department string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the sync server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			err = app.Client.Register(ctx, &domain.RegisterRequest{
				Username:   username,
				Email:      email,
				Password:   password,
				Department: department,
			})
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Println("Account created. Run 'campustask login' to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&department, "department", "", "department (optional)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func LoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.Client.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if err := app.Store.SetValue(ctx, localstore.KeyAccessToken, resp.AccessToken); err != nil {
				return err
			}
			if err := app.Store.SetValue(ctx, localstore.KeyRefreshToken, resp.RefreshToken); err != nil {
				return err
			}
			if resp.User != nil {
				if err := app.Store.SetValue(ctx, localstore.KeyUserID, resp.User.ID); err != nil {
					return err
				}
			}

			fmt.Printf("Signed in as %s\n", email)

			// Push anything written while signed out.
			app.Client.SetToken(resp.AccessToken)
			return app.TrySync(ctx)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			for _, key := range []string{localstore.KeyAccessToken, localstore.KeyRefreshToken, localstore.KeyUserID} {
				if err := app.Store.DeleteValue(ctx, key); err != nil {
					return err
				}
			}

			fmt.Println("Signed out")
			return nil
		},
	}
}
