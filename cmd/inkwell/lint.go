package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
	"github.com/eringen/inkwell/lint"
)

var (
	lintExternal bool
	lintTimeout  time.Duration
)

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check content files for problems",
	Long: `Check every Markdown file under the content directory: front-matter
fields, dates, code fences, duplicate slugs and link targets.
With --external, outbound links are also probed over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := inkwell.LoadConfig(configPath)
		if err != nil {
			fatal("Failed to load config", err)
		}

		opts := []lint.LintOption{
			lint.WithDefaultAuthor(cfg.Author),
			lint.WithStaticDir("public"),
		}
		if lintExternal {
			opts = append(opts, lint.WithExternalChecks(&http.Client{Timeout: lintTimeout}))
		}

		issues, err := lint.New(cfg.ContentDir, opts...).Run(context.Background())
		if err != nil {
			fatal("Lint failed", err)
		}

		for _, issue := range issues {
			fmt.Println(issue)
		}
		if lint.HasErrors(issues) {
			os.Exit(1)
		}
		if len(issues) == 0 {
			fmt.Println("No problems found.")
		}
	},
}

func init() {
	lintCmd.Flags().BoolVar(&lintExternal, "external", false, "Probe external links over HTTP")
	lintCmd.Flags().DurationVar(&lintTimeout, "timeout", 10*time.Second, "Timeout per external link check")
	rootCmd.AddCommand(lintCmd)
}
