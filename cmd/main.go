package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"clinic-booking/cmd/bootstrap"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic",
		Short: "Clinic appointment booking API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedStaffCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Initialize application with all dependencies
	app, err := bootstrap.New()
	if err != nil {
		logrus.Errorf("Failed to initialize application: %v", err)
		return err
	}

	// Run the application
	app.Run()
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap.Migrate("up", 0)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the last migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive number, got %q", args[0])
				}
				steps = n
			}
			return bootstrap.Migrate("down", steps)
		},
	})

	return cmd
}

func seedStaffCmd() *cobra.Command {
	var in usecase.SeedStaffInput
	var role string

	cmd := &cobra.Command{
		Use:   "seed-staff",
		Short: "Create a staff account or repair its role",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Role = entity.Role(role)

			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			profile, err := app.Staff.SeedStaff(ctx, in)
			if err != nil {
				return err
			}
			app.Log.WithFields(logrus.Fields{
				"email": in.Email,
				"role":  profile.Role,
			}).Info("Staff account ready")
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password, required when the account does not exist")
	cmd.Flags().StringVar(&role, "role", string(entity.RoleAdmin), "admin or agent")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
