package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
)

var newPage bool

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a new post or page file",
	Long: `Create a Markdown file with front-matter under the content directory.
Posts are named YYYY-MM-DD-slug.md; pages are named slug.md.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := inkwell.LoadConfig(configPath)
		if err != nil {
			fatal("Failed to load config", err)
		}

		title := strings.Join(args, " ")
		slug := inkwell.Slugify(title)
		if slug == "" {
			fatal("Invalid title", fmt.Errorf("%q produces an empty slug", title))
		}

		var path string
		var fm string
		if newPage {
			path = filepath.Join(cfg.ContentDir, "pages", slug+".md")
			fm = fmt.Sprintf("---\nlayout: page\ntitle: %q\n---\n\n", title)
		} else {
			date := time.Now().Format("2006-01-02")
			path = filepath.Join(cfg.ContentDir, "posts", date+"-"+slug+".md")
			fm = fmt.Sprintf("---\nlayout: post\ntitle: %q\ndate: %s\nauthor: %s\ntags: []\nexcerpt: \"\"\n---\n\n", title, date, cfg.Author)
		}

		if _, err := os.Stat(path); err == nil {
			fatal("File already exists", fmt.Errorf("%s", path))
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fatal("Failed to create directory", err)
		}
		if err := os.WriteFile(path, []byte(fm), 0o644); err != nil {
			fatal("Failed to write file", err)
		}

		fmt.Println("Created", path)
	},
}

func init() {
	newCmd.Flags().BoolVar(&newPage, "page", false, "Create a page instead of a post")
	rootCmd.AddCommand(newCmd)
}
