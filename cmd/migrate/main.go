package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vidaview-backend/internal/config"
	"vidaview-backend/internal/logger"
	"vidaview-backend/internal/migrate"
	"vidaview-backend/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	var configPath string
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "VidaView schema migrations",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.dev.yaml", "Path to configuration file")

	rootCmd.AddCommand(
		upCmd(&configPath),
		downCmd(&configPath),
		statusCmd(&configPath),
		seedCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// databaseURL returns DATABASE_URL when set, otherwise the connection
// string built from the database section of the config file.
func databaseURL(configPath string) (string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg.GetDatabaseConnectionString(), nil
}

// newMigrator connects with DATABASE_URL when set, otherwise with the
// database section of the config file.
func newMigrator(configPath string) (*migrate.Migrator, error) {
	dsn, err := databaseURL(configPath)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	migrations, err := migrate.Embedded()
	if err != nil {
		return nil, err
	}
	return migrate.NewMigrator(db, migrations), nil
}

func upCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator(*configPath)
			if err != nil {
				return err
			}
			applied, err := m.Up(cmd.Context())
			for _, mig := range applied {
				fmt.Printf("applied %s_%s\n", mig.Version, mig.Name)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("schema is up to date")
			}
			return nil
		},
	}
}

func downCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator(*configPath)
			if err != nil {
				return err
			}
			reverted, err := m.Down(cmd.Context())
			if err != nil {
				return err
			}
			if reverted == nil {
				fmt.Println("no migrations applied")
				return nil
			}
			fmt.Printf("reverted %s_%s\n", reverted.Version, reverted.Name)
			return nil
		},
	}
}

func statusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator(*configPath)
			if err != nil {
				return err
			}
			statuses, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%-8s  %-30s  %-8s\n", "Version", "Name", "Status")
			for _, s := range statuses {
				status := "Pending"
				if s.AppliedAt != nil {
					status = "Applied " + s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Printf("%-8s  %-30s  %s\n", s.Version, s.Name, status)
			}
			return nil
		},
	}
}

func seedCmd(configPath *string) *cobra.Command {
	var seedFile string
	var cost int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and apartments from a YAML seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(seedFile)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			sd, err := migrate.ParseSeed(data)
			if err != nil {
				return err
			}

			dsn, err := databaseURL(*configPath)
			if err != nil {
				return err
			}
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			res, err := migrate.Seed(cmd.Context(), postgres.NewStore(db), sd, cost)
			if err != nil {
				return err
			}
			fmt.Printf("users: %d created, %d skipped\n", res.UsersCreated, res.UsersSkipped)
			fmt.Printf("apartments: %d created, %d skipped\n", res.ApartmentsCreated, res.ApartmentsSkipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&seedFile, "file", "config/seed.dev.yaml", "Path to the seed file")
	cmd.Flags().IntVar(&cost, "bcrypt-cost", 10, "bcrypt cost for seeded passwords")
	return cmd
}
