package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dbhealthTimeout time.Duration

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Open the configured database, apply migrations and ping it",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.DB.HealthCheck(cmd.Context(), dbhealthTimeout); err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		logger.Info("database healthy", "driver", env.DB.Driver())
		fmt.Println("ok")
		return nil
	},
}

func init() {
	dbhealthCmd.Flags().DurationVar(&dbhealthTimeout, "timeout", 2*time.Second, "ping timeout")
	rootCmd.AddCommand(dbhealthCmd)
}
