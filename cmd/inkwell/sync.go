package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
)

var prune bool

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the content directory into the database",
	Long: `Parse every Markdown file under the content directory and upsert it
into the SQLite database. With --prune, database entries whose files
no longer exist on disk are deleted.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := inkwell.LoadConfig(configPath)
		if err != nil {
			fatal("Failed to load config", err)
		}

		store, err := inkwell.NewStore(cfg.DatabasePath)
		if err != nil {
			fatal("Failed to open database", err)
		}
		defer store.Close()

		cache := inkwell.NewContentCache(store, cfg.CacheTTL.Duration)
		syncer := inkwell.NewSyncer(store, cache, cfg.ContentDir, cfg.Author)
		syncer.Prune = prune

		stats, err := syncer.Sync(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Sync failed: %v\n", err)
			fmt.Println("Tip: run 'inkwell lint' to find the offending file.")
			os.Exit(1)
		}

		fmt.Printf("Synced %d posts and %d pages", stats.Posts, stats.Pages)
		if prune {
			fmt.Printf(", pruned %d", stats.Pruned)
		}
		fmt.Println()
	},
}

func init() {
	syncCmd.Flags().BoolVar(&prune, "prune", false, "Delete database entries with no file on disk")
	rootCmd.AddCommand(syncCmd)
}
