package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dealerscraper/internal/config"
	"dealerscraper/internal/database"
	"dealerscraper/internal/fetch"
	"dealerscraper/internal/images"
	"dealerscraper/internal/scraper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		skipDetails  bool
		skipSnapshot bool
		force        bool
		source       string
	)

	cmd := &cobra.Command{
		Use:          "scraper",
		Short:        "Scrape dealer listings into the vehicle store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found")
			}

			cfg := config.Load()
			if source != "" {
				cfg.Scraper.Source = source
			}
			if cfg.Scraper.ListingURL == "" {
				return fmt.Errorf("no listing URL configured (set LISTING_URL)")
			}

			db, err := database.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("database unavailable: %w", err)
			}
			defer db.Close()

			fetcher := fetch.New(cfg.Fetch)
			defer fetcher.Close()

			s := scraper.New(cfg, fetcher, db, images.NewStore(cfg.Fetch), scraper.HyphenMakeResolver)

			result := s.Run(context.Background(), scraper.Options{
				SkipDetails:  skipDetails,
				SkipSnapshot: skipSnapshot,
				Force:        force,
			})
			if !result.Success {
				return fmt.Errorf("scrape failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipDetails, "skip-details", false, "skip detail-page fetching")
	cmd.Flags().BoolVar(&skipSnapshot, "skip-snapshot", false, "skip JSON snapshot generation")
	cmd.Flags().BoolVar(&force, "force", false, "write records even when unchanged")
	cmd.Flags().StringVar(&source, "source", "", "override the configured source identifier")

	cmd.AddCommand(maintenanceCmd())

	return cmd
}

// maintenanceCmd groups the manual store cleanup operations.
func maintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "maintenance",
		Short:        "Run store maintenance operations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found")
			}

			cfg := config.Load()
			db, err := database.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("database unavailable: %w", err)
			}
			defer db.Close()

			removed, err := db.CleanupOrphanAttributes()
			if err != nil {
				return fmt.Errorf("orphan cleanup failed: %w", err)
			}
			log.Printf("🧹 Removed %d orphan attribute rows", removed)

			merged, err := db.MergeDuplicateIdentities(cfg.Scraper.Source)
			if err != nil {
				return fmt.Errorf("identity merge failed: %w", err)
			}
			log.Printf("🔗 Merged %d duplicate identities", merged)

			return nil
		},
	}
	return cmd
}
