package cmd

import (
	"errors"
	"fmt"

	"github.com/faceforge/faceforge/internal/clustering"
	"github.com/faceforge/faceforge/internal/config"
	"github.com/faceforge/faceforge/internal/store/postgres"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var cleanupReviewsCmd = &cobra.Command{
	Use:   "cleanup-reviews",
	Short: "Remove review entries whose cluster no longer has faces",
	Long: `Scan the pending review queue and delete entries that point at
clusters with no remaining faces. Such entries can be left behind when
faces are deleted or reassigned one by one.`,
	RunE: runCleanupReviews,
}

func init() {
	rootCmd.AddCommand(cleanupReviewsCmd)

	cleanupReviewsCmd.Flags().Bool("dry-run", false, "Only report orphaned entries, don't delete them")
}

func runCleanupReviews(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	service := clustering.NewService(pool, nil, &cfg.Matching)

	ctx := cmd.Context()
	orphans, err := service.OrphanReviews(ctx)
	if err != nil {
		return fmt.Errorf("listing orphaned review entries: %w", err)
	}

	if len(orphans) == 0 {
		fmt.Println("No orphaned review entries found")
		return nil
	}

	if mustGetBool(cmd, "dry-run") {
		for _, entry := range orphans {
			fmt.Printf("orphaned: review %d (tenant %s, cluster %s)\n", entry.ID, entry.TenantID, entry.ClusterID)
		}
		fmt.Printf("Found %d orphaned review entries (dry run, nothing deleted)\n", len(orphans))
		return nil
	}

	bar := progressbar.NewOptions(len(orphans),
		progressbar.OptionSetDescription("Deleting orphaned reviews"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var deleted, failed int
	for _, entry := range orphans {
		if err := service.DeleteReviewPending(ctx, entry.TenantID, entry.ID); err != nil {
			failed++
		} else {
			deleted++
		}
		bar.Add(1)
	}

	fmt.Printf("\nDeleted %d orphaned review entries", deleted)
	if failed > 0 {
		fmt.Printf(", %d failed", failed)
	}
	fmt.Println()
	return nil
}
