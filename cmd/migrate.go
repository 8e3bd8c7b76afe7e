package cmd

import (
	"fmt"

	"github.com/UserUmbasa/explore-with-me/internal/config"
	"github.com/UserUmbasa/explore-with-me/internal/database"
	"github.com/UserUmbasa/explore-with-me/internal/logger"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations to create or update database schema.
By default the embedded versioned SQL migrations are applied.
Use --down to roll them back, or --auto to sync the schema
with gorm AutoMigrate instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, err := logger.NewFromConfig(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// 2. 连接数据库
		log.WithField("host", cfg.Database.Host).
			WithField("port", cfg.Database.Port).
			WithField("dbname", cfg.Database.DBName).
			Info("connecting to database")
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}

		// 3. 执行迁移
		auto, _ := cmd.Flags().GetBool("auto")
		if auto {
			defer database.Close(db)
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("schema synced with auto migrate")
			return nil
		}

		direction := database.MigrateUp
		if down, _ := cmd.Flags().GetBool("down"); down {
			direction = database.MigrateDown
		}
		// RunMigrations 结束时关闭连接
		if err := database.RunMigrations(db, cfg.Database.DBName, direction, log); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		log.WithField("direction", direction).Info("database migrations completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("down", false, "Roll back all versioned migrations")
	migrateCmd.Flags().Bool("auto", false, "Sync schema with gorm AutoMigrate instead of versioned migrations")
	migrateCmd.MarkFlagsMutuallyExclusive("down", "auto")
}
