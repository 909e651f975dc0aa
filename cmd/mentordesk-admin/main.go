package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"MentorDesk/internal/auth"
	"MentorDesk/internal/bootstrap"
	"MentorDesk/pkg/routes"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mentordesk-admin",
		Short:         "Administrative tasks for a MentorDesk deployment",
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			bootstrap.Loadenv()
		},
	}
	root.AddCommand(createSuperAdminCmd())
	return root
}

func createSuperAdminCmd() *cobra.Command {
	var req auth.RegisterRequest
	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "Create a superadmin account, or promote an existing admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Email == "" || len(req.Password) < 8 {
				return fmt.Errorf("--email and a --password of at least 8 characters are required")
			}
			if req.Firstname == "" {
				req.Firstname = "Super"
			}
			return withAuthService(cmd.Context(), func(ctx context.Context, svc *auth.AuthService) error {
				admin, err := svc.CreateSuperAdmin(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "superadmin %s (%s) ready\n", admin.Email, admin.ID.Hex())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().StringVar(&req.Firstname, "firstname", "", "first name")
	cmd.Flags().StringVar(&req.Lastname, "lastname", "", "last name")
	return cmd
}

// withAuthService starts the infrastructure without the HTTP server for the
// duration of fn.
func withAuthService(ctx context.Context, fn func(context.Context, *auth.AuthService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var svc *auth.AuthService
	app := fx.New(routes.Infra, routes.Domain, fx.Populate(&svc), fx.NopLogger)

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()
	return fn(ctx, svc)
}
