package main

import (
	"fmt"

	"github.com/dentacare/clinic-api/internal/infrastructure/database"
	"github.com/dentacare/clinic-api/pkg/utils"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresDB(&cfg.Database)
			if err != nil {
				return err
			}
			return database.AutoMigrate(db)
		},
	}
}

func sweepCmd() *cobra.Command {
	var reminders bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Repair appointments whose bill link is missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			result, err := a.reconciliation.Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unlinked=%d linked=%d orphaned=%d failed=%d\n",
				result.Unlinked, result.Linked, result.Orphaned, result.Failed)

			if reminders {
				sent, err := a.notifications.SendBalanceReminders(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reminders: bills=%d sms=%d emails=%d failed=%d\n",
					sent.Bills, sent.SMS, sent.Emails, sent.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reminders, "reminders", false, "also send balance reminders")
	return cmd
}

func tokenCmd() *cobra.Command {
	var staff, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a staff bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours).GenerateStaffToken(staff, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&staff, "staff", "", "staff member name recorded on bills and payments")
	cmd.Flags().StringVar(&role, "role", "cashier", "staff role")
	_ = cmd.MarkFlagRequired("staff")
	return cmd
}
