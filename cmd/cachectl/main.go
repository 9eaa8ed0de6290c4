package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rag-gateway/internal/adapter/repository"
	"rag-gateway/internal/domain"
	"rag-gateway/internal/infra"
	"rag-gateway/internal/infra/config"
)

// cachectl operates on the web search cache directly, for use from cron
// jobs and operators' shells.
func main() {
	root := &cobra.Command{
		Use:           "cachectl",
		Short:         "Manage the web search cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCleanupCmd(), newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openCacheRepo(ctx context.Context) (domain.WebCacheRepository, func(), error) {
	cfg := config.Load()
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	pool, err := infra.NewPostgresDB(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	repo := repository.NewWebCacheRepository(pool, time.Duration(cfg.ContentCacheTTLMin)*time.Minute)
	return repo, pool.Close, nil
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired cache rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			repo, closeDB, err := openCacheRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			deleted, err := repo.CleanupExpired(ctx)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Printf("deleted %d expired rows\n", deleted)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			repo, closeDB, err := openCacheRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			stats, err := repo.Stats(ctx)
			if err != nil {
				return fmt.Errorf("stats failed: %w", err)
			}
			fmt.Printf("queries:          %d (%d expired)\n", stats.Queries, stats.ExpiredQueries)
			fmt.Printf("content entries:  %d (%d expired)\n", stats.ContentEntries, stats.ExpiredContent)
			return nil
		},
	}
}
