package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
)

// Post is a loaded, validated blog article.
type Post struct {
	Path      string
	Slug      string
	Title     string
	Date      string
	Author    string
	Tags      []string
	Excerpt   string
	Body      string
	Published bool
}

// Page is a loaded standalone document (e.g. the about page).
type Page struct {
	Path   string
	Slug   string
	Title  string
	Author string
	Body   string
}

// Site is the result of loading a content directory.
type Site struct {
	Posts []Post
	Pages []Page
}

// reservedSlugs are path segments owned by engine routes; a page with one
// of these slugs would be unreachable.
var reservedSlugs = map[string]struct{}{
	"blog":    {},
	"admin":   {},
	"public":  {},
	"feed":    {},
	"sitemap": {},
}

// Loader reads Markdown sources under a content root. Posts live in
// posts/**/*.md, pages in pages/**/*.md.
type Loader struct {
	root          string
	defaultAuthor string
	validate      *validator.Validate
}

// NewLoader creates a Loader for the given content root. defaultAuthor
// fills in posts whose front-matter omits an author.
func NewLoader(root, defaultAuthor string) *Loader {
	return &Loader{
		root:          root,
		defaultAuthor: defaultAuthor,
		validate:      validator.New(),
	}
}

// Load walks the content root and returns all parsed posts and pages.
// Posts are sorted by date descending, pages by slug. Any malformed
// document fails the whole load: partially synced sites are worse than a
// loud error.
func (l *Loader) Load(ctx context.Context) (*Site, error) {
	site := &Site{}

	postFiles, err := l.glob("posts/**/*.md")
	if err != nil {
		return nil, err
	}
	for _, path := range postFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := l.loadPost(path)
		if err != nil {
			return nil, err
		}
		site.Posts = append(site.Posts, p)
	}

	pageFiles, err := l.glob("pages/**/*.md")
	if err != nil {
		return nil, err
	}
	for _, path := range pageFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := l.loadPage(path)
		if err != nil {
			return nil, err
		}
		site.Pages = append(site.Pages, p)
	}

	if err := checkUniqueSlugs(site); err != nil {
		return nil, err
	}

	sort.Slice(site.Posts, func(i, j int) bool {
		if site.Posts[i].Date != site.Posts[j].Date {
			return site.Posts[i].Date > site.Posts[j].Date
		}
		return site.Posts[i].Slug < site.Posts[j].Slug
	})
	sort.Slice(site.Pages, func(i, j int) bool {
		return site.Pages[i].Slug < site.Pages[j].Slug
	})

	return site, nil
}

func (l *Loader) glob(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(l.root), pattern)
	if err != nil {
		return nil, fmt.Errorf("content: glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

func (l *Loader) loadPost(rel string) (Post, error) {
	path := filepath.Join(l.root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		return Post{}, fmt.Errorf("content: read %s: %w", path, err)
	}
	doc, err := Parse(path, data)
	if err != nil {
		return Post{}, err
	}
	if !doc.HasFM {
		return Post{}, fmt.Errorf("content: post %s has no front-matter", path)
	}

	stem := strings.TrimSuffix(filepath.Base(rel), ".md")
	fileDate, fileSlug, fromFilename := SplitPostFilename(stem)

	// Front-matter wins over filename-derived values.
	slug := doc.Meta.Slug
	if slug == "" {
		if fromFilename {
			slug = fileSlug
		} else {
			slug = stem
		}
	}
	rawDate := doc.Meta.Date
	if rawDate == "" && fromFilename {
		rawDate = fileDate
	}
	if rawDate == "" {
		return Post{}, fmt.Errorf("content: post %s has no date (front-matter or filename)", path)
	}
	date, err := NormalizeDate(rawDate)
	if err != nil {
		return Post{}, fmt.Errorf("content: post %s: %w", path, err)
	}

	author := doc.Meta.Author
	if author == "" {
		author = l.defaultAuthor
	}

	p := Post{
		Path:      path,
		Slug:      slug,
		Title:     doc.Meta.Title,
		Date:      date,
		Author:    author,
		Tags:      doc.Meta.Tags,
		Excerpt:   doc.Meta.Excerpt,
		Body:      doc.Body,
		Published: doc.Meta.Published == nil || *doc.Meta.Published,
	}
	if err := l.validate.Struct(doc.Meta); err != nil {
		return Post{}, fmt.Errorf("content: post %s: %w", path, err)
	}
	if p.Author == "" {
		return Post{}, fmt.Errorf("content: post %s has no author and no site default", path)
	}
	return p, nil
}

func (l *Loader) loadPage(rel string) (Page, error) {
	path := filepath.Join(l.root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, fmt.Errorf("content: read %s: %w", path, err)
	}
	doc, err := Parse(path, data)
	if err != nil {
		return Page{}, err
	}
	if !doc.HasFM {
		return Page{}, fmt.Errorf("content: page %s has no front-matter", path)
	}
	if err := l.validate.Struct(doc.Meta); err != nil {
		return Page{}, fmt.Errorf("content: page %s: %w", path, err)
	}

	slug := doc.Meta.Slug
	if slug == "" {
		slug = strings.TrimSuffix(filepath.Base(rel), ".md")
	}
	if _, reserved := reservedSlugs[slug]; reserved {
		return Page{}, fmt.Errorf("content: page %s uses reserved slug %q", path, slug)
	}

	return Page{
		Path:   path,
		Slug:   slug,
		Title:  doc.Meta.Title,
		Author: doc.Meta.Author,
		Body:   doc.Body,
	}, nil
}

func checkUniqueSlugs(site *Site) error {
	seen := make(map[string]string)
	for _, p := range site.Posts {
		key := "post/" + p.Slug
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("content: duplicate post slug %q (%s and %s)", p.Slug, prev, p.Path)
		}
		seen[key] = p.Path
	}
	for _, p := range site.Pages {
		key := "page/" + p.Slug
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("content: duplicate page slug %q (%s and %s)", p.Slug, prev, p.Path)
		}
		seen[key] = p.Path
	}
	return nil
}
