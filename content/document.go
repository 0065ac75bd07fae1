// Package content loads a site's Markdown source files. Documents carry a
// YAML front-matter block (layout, title, date, author, tags, excerpt)
// followed by a Markdown body, the input format expected by static-site
// generators.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the metadata block at the top of a Markdown document.
type FrontMatter struct {
	Layout    string   `yaml:"layout"`
	Title     string   `yaml:"title" validate:"required"`
	Date      string   `yaml:"date"`
	Author    string   `yaml:"author"`
	Tags      []string `yaml:"tags"`
	Excerpt   string   `yaml:"excerpt"`
	Slug      string   `yaml:"slug"`
	Published *bool    `yaml:"published"`
}

// Document is a parsed Markdown source file.
type Document struct {
	Path   string
	Meta   FrontMatter
	Body   string
	HasFM  bool // whether the file carried a front-matter block
	BodyLn int  // 1-based line number where the body starts
}

// ErrUnclosedFrontMatter is returned when a front-matter block is opened
// but never closed.
var ErrUnclosedFrontMatter = errors.New("content: front-matter started but no closing delimiter found")

var fmDelim = []byte("---")

// Parse splits data into front-matter and body. Files that do not start
// with a `---` line are treated as body-only documents.
func Parse(path string, data []byte) (Document, error) {
	doc := Document{Path: path, BodyLn: 1}

	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		doc.Body = string(data)
		return doc, nil
	}

	rest := data[len(fmDelim):]
	end := -1
	offset := 0
	for {
		i := bytes.Index(rest[offset:], fmDelim)
		if i < 0 {
			break
		}
		at := offset + i
		// The closing delimiter must sit at the start of a line.
		if at > 0 && rest[at-1] == '\n' {
			end = at
			break
		}
		offset = at + len(fmDelim)
	}
	if end < 0 {
		return Document{}, fmt.Errorf("%w: %s", ErrUnclosedFrontMatter, path)
	}

	block := rest[:end]
	if err := yaml.Unmarshal(block, &doc.Meta); err != nil {
		return Document{}, fmt.Errorf("content: parse front-matter of %s: %w", path, err)
	}
	doc.HasFM = true

	body := string(rest[end+len(fmDelim):])
	body = strings.TrimPrefix(body, "\r\n")
	body = strings.TrimPrefix(body, "\n")
	doc.Body = body
	// block keeps the newline of the opening delimiter line, so its newline
	// count is the front-matter line count plus one; the closing delimiter
	// line adds one more before the body starts.
	doc.BodyLn = bytes.Count(block, []byte("\n")) + 2
	return doc, nil
}

// filenamePattern matches the Jekyll post convention: YYYY-MM-DD-slug.md.
var filenamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// SplitPostFilename extracts the date and slug from a post filename stem
// (without extension). Files not following the convention return ok=false.
func SplitPostFilename(stem string) (date, slug string, ok bool) {
	m := filenamePattern.FindStringSubmatch(stem)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// dateLayouts are the accepted front-matter date formats. Jekyll allows a
// time-of-day suffix; we normalize everything to YYYY-MM-DD.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// NormalizeDate parses a front-matter date and returns it as YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("content: unrecognized date %q", raw)
}
