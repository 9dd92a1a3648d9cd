package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/study-tracker/internal/catalog"
	catalogPostgres "github.com/frahmantamala/study-tracker/internal/catalog/postgres"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
	"github.com/frahmantamala/study-tracker/internal/user"
	userPostgres "github.com/frahmantamala/study-tracker/internal/user/postgres"
	"github.com/frahmantamala/study-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the problem catalog and admin permissions",
	Long:  `Load the bundled DSA catalog into the database and grant the admin permission to configured admin accounts.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configDir)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := openGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		ctx := context.Background()
		lg := logger.LoggerWrapper()

		file, err := catalog.DefaultSeedFile()
		if err != nil {
			log.Fatalf("failed to load catalog: %v", err)
		}

		stats, err := catalog.NewSeeder(catalogPostgres.NewCatalogRepository(gdb), lg).Seed(ctx, file, clearData)
		if err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		fmt.Printf("Seeded %d categories, %d patterns, %d problems\n", stats.Categories, stats.Patterns, stats.Problems)

		userRepo := userPostgres.NewUserRepository(gdb)
		if err := userRepo.EnsurePermission(ctx, coreuser.PermissionAdmin, "full administrator"); err != nil {
			log.Fatalf("failed to ensure admin permission: %v", err)
		}

		users := user.NewService(userRepo, lg)
		for _, email := range cfg.Admin.Emails {
			granted, err := users.GrantAdmin(ctx, email)
			if err != nil {
				log.Fatalf("failed to grant admin: %v", err)
			}
			if granted {
				fmt.Println("Granted admin permission to:", email)
			} else {
				fmt.Println("No account yet for admin email (granted at signup):", email)
			}
		}
	},
}
