package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/debaditya-mohankudo/prmailhub/internal/config"
	"github.com/debaditya-mohankudo/prmailhub/internal/db"
	dbmigrate "github.com/debaditya-mohankudo/prmailhub/internal/db/migrate"
)

var rootCmd = &cobra.Command{
	Use:   "dbctl",
	Short: "Database schema management CLI",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize migration tables and extensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			return manager.Init(cmd.Context())
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or rollback schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			return manager.MigrateUp(cmd.Context())
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			return manager.MigrateDownSteps(cmd.Context(), steps)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:           "status",
	Short:         "Show applied and pending migrations",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			status, err := manager.Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range status {
				state := "pending"
				if m.IsApplied() {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s_%s\t%s\n", m.Name, m.Comment, state)
			}
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:           "verify",
	Short:         "Ensure database is on the latest schema version",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			return dbmigrate.EnsureCurrent(cmd.Context(), database.Bun(), migrationsDir(), false)
		})
	},
}

var recreateCmd = &cobra.Command{
	Use:   "recreate",
	Short: "Drop and recreate the record store (destructive)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.ToLower(os.Getenv("DB_ALLOW_DESTRUCTIVE")) != "yes" {
			return errors.New("DB_ALLOW_DESTRUCTIVE=yes must be set for recreate")
		}
		return runWithDatabase(func(database *db.Database) error {
			return recreate(cmd.Context(), database)
		})
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides POSTGRES_URL)")
	rootCmd.PersistentFlags().String("migrations", "internal/db/migrations", "Migrations directory")
	_ = viper.BindPFlag(config.KeyPostgresURL, rootCmd.PersistentFlags().Lookup("dsn"))
	_ = viper.BindPFlag(config.KeyMigrationsDir, rootCmd.PersistentFlags().Lookup("migrations"))

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(initCmd, migrateCmd, statusCmd, verifyCmd, recreateCmd)
	_ = migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back (0 = all)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dbctl: %v\n", err)
		os.Exit(1)
	}
}

func runWithDatabase(fn func(*db.Database) error) error {
	dsn := config.PostgresURL()
	if dsn == "" {
		return errors.New("postgres DSN must be provided via flag or environment")
	}
	database, err := db.NewDatabase(db.Config{DSN: dsn, Debug: config.DBDebug()})
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database)
}

func recreate(ctx context.Context, database *db.Database) error {
	if _, err := database.Bun().ExecContext(ctx, `DROP TABLE IF EXISTS record_docs CASCADE`); err != nil {
		return err
	}
	return dbmigrate.EnsureCurrent(ctx, database.Bun(), migrationsDir(), true)
}

func newManager(database *db.Database) (*dbmigrate.Manager, error) {
	return dbmigrate.NewManager(database.Bun(), migrationsDir())
}

func migrationsDir() string {
	dir := config.MigrationsDir()
	if dir == "" {
		dir = "internal/db/migrations"
	}
	return dir
}
