// Package lint verifies a content directory before publishing: every
// document carries complete front-matter, every fenced code block is
// well-formed and declares a known language, and every link points
// somewhere that exists.
package lint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/eringen/inkwell/content"
)

// Severity classifies an issue. Errors fail the lint run; warnings do not.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Rule identifiers, one per check.
const (
	RuleParse       = "parse"
	RuleFrontMatter = "front-matter"
	RuleDate        = "date"
	RuleAuthor      = "author"
	RuleCodeFence   = "code-fence"
	RuleLink        = "link"
	RuleSlug        = "slug"
)

// Issue is a single finding in a document.
type Issue struct {
	File     string
	Line     int
	Rule     string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %s: %s (%s)", i.File, i.Line, i.Severity, i.Message, i.Rule)
}

// Linter checks the Markdown sources under a content root.
type Linter struct {
	root          string
	staticDir     string
	defaultAuthor string
	checkExternal bool
	client        *http.Client
}

// LintOption configures a Linter.
type LintOption func(*Linter)

// WithDefaultAuthor suppresses missing-author errors for sites that set a
// site-wide author.
func WithDefaultAuthor(author string) LintOption {
	return func(l *Linter) { l.defaultAuthor = author }
}

// WithStaticDir resolves absolute /public/... links against dir.
func WithStaticDir(dir string) LintOption {
	return func(l *Linter) { l.staticDir = dir }
}

// WithExternalChecks enables HTTP HEAD requests against external links.
func WithExternalChecks(client *http.Client) LintOption {
	return func(l *Linter) {
		l.checkExternal = true
		l.client = client
	}
}

// New creates a Linter for the given content root.
func New(root string, opts ...LintOption) *Linter {
	l := &Linter{root: root, staticDir: "public"}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: 10 * time.Second}
	}
	return l
}

// Run lints every Markdown file under the content root and returns the
// issues found, sorted by file and line. The error return is reserved for
// I/O failures; content problems are always reported as issues.
func (l *Linter) Run(ctx context.Context) ([]Issue, error) {
	files, err := doublestar.Glob(os.DirFS(l.root), "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("lint: glob content: %w", err)
	}
	sort.Strings(files)

	var issues []Issue
	docs := make([]content.Document, 0, len(files))
	isPost := make([]bool, 0, len(files))

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(l.root, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("lint: read %s: %w", path, err)
		}
		doc, err := content.Parse(rel, data)
		if err != nil {
			issues = append(issues, Issue{File: rel, Line: 1, Rule: RuleParse, Severity: Error, Message: err.Error()})
			continue
		}
		docs = append(docs, doc)
		isPost = append(isPost, strings.HasPrefix(rel, "posts/"))
	}

	site := l.collectSlugs(docs, isPost, &issues)

	for i, doc := range docs {
		l.lintFrontMatter(doc, isPost[i], &issues)
		l.lintCodeFences(doc, &issues)
		l.lintLinks(ctx, doc, site, &issues)
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].Line < issues[j].Line
	})
	return issues, nil
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == Error {
			return true
		}
	}
	return false
}

// siteIndex holds the slugs a document's internal links may target.
type siteIndex struct {
	postSlugs map[string]struct{}
	pageSlugs map[string]struct{}
}

func (l *Linter) collectSlugs(docs []content.Document, isPost []bool, issues *[]Issue) siteIndex {
	site := siteIndex{
		postSlugs: make(map[string]struct{}),
		pageSlugs: make(map[string]struct{}),
	}
	seen := make(map[string]string)
	for i, doc := range docs {
		slug := docSlug(doc)
		kind := "page"
		set := site.pageSlugs
		if isPost[i] {
			kind = "post"
			set = site.postSlugs
		}
		key := kind + "/" + slug
		if prev, dup := seen[key]; dup {
			*issues = append(*issues, Issue{
				File: doc.Path, Line: 1, Rule: RuleSlug, Severity: Error,
				Message: fmt.Sprintf("duplicate %s slug %q (also %s)", kind, slug, prev),
			})
			continue
		}
		seen[key] = doc.Path
		set[slug] = struct{}{}
	}
	return site
}

// docSlug mirrors the loader's slug derivation: explicit front-matter slug,
// then the filename (with any date prefix stripped for posts).
func docSlug(doc content.Document) string {
	if doc.Meta.Slug != "" {
		return doc.Meta.Slug
	}
	stem := strings.TrimSuffix(filepath.Base(doc.Path), ".md")
	if _, slug, ok := content.SplitPostFilename(stem); ok {
		return slug
	}
	return stem
}

func (l *Linter) lintFrontMatter(doc content.Document, post bool, issues *[]Issue) {
	if !doc.HasFM {
		*issues = append(*issues, Issue{
			File: doc.Path, Line: 1, Rule: RuleFrontMatter, Severity: Error,
			Message: "missing front-matter block",
		})
		return
	}
	if strings.TrimSpace(doc.Meta.Title) == "" {
		*issues = append(*issues, Issue{
			File: doc.Path, Line: 1, Rule: RuleFrontMatter, Severity: Error,
			Message: "front-matter is missing required field \"title\"",
		})
	}
	if !post {
		return
	}

	stem := strings.TrimSuffix(filepath.Base(doc.Path), ".md")
	fileDate, _, fromFilename := content.SplitPostFilename(stem)
	date := doc.Meta.Date
	if date == "" {
		date = fileDate
	}
	switch {
	case date == "":
		*issues = append(*issues, Issue{
			File: doc.Path, Line: 1, Rule: RuleDate, Severity: Error,
			Message: "post has no date in front-matter or filename",
		})
	default:
		if _, err := content.NormalizeDate(date); err != nil {
			*issues = append(*issues, Issue{
				File: doc.Path, Line: 1, Rule: RuleDate, Severity: Error,
				Message: fmt.Sprintf("unrecognized date %q", date),
			})
		}
		if doc.Meta.Date != "" && fromFilename {
			if norm, err := content.NormalizeDate(doc.Meta.Date); err == nil && norm != fileDate {
				*issues = append(*issues, Issue{
					File: doc.Path, Line: 1, Rule: RuleDate, Severity: Warning,
					Message: fmt.Sprintf("front-matter date %s disagrees with filename date %s", norm, fileDate),
				})
			}
		}
	}

	if doc.Meta.Author == "" && l.defaultAuthor == "" {
		*issues = append(*issues, Issue{
			File: doc.Path, Line: 1, Rule: RuleAuthor, Severity: Error,
			Message: "post has no author and no site default is configured",
		})
	}
}
