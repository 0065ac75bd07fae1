package lint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, data string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func run(t *testing.T, root string, opts ...LintOption) []Issue {
	t.Helper()
	issues, err := New(root, opts...).Run(context.Background())
	require.NoError(t, err)
	return issues
}

func rules(issues []Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Rule)
	}
	return out
}

func TestCleanSite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2024-01-15-good.md", `---
title: A Good Post
author: Erin Gen
---

Some prose with a [link](https://example.com) and code:

`+"```go\nfmt.Println(\"hi\")\n```\n")
	writeFile(t, root, "pages/about.md", "---\ntitle: About\n---\n\nSee the [blog](/blog/).\n")

	issues := run(t, root)
	assert.Empty(t, issues)
}

func TestMissingFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/bare.md", "No metadata here.\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleFrontMatter, issues[0].Rule)
	assert.Equal(t, Error, issues[0].Severity)
}

func TestMissingTitle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2024-01-01-untitled.md", "---\nauthor: A\n---\nbody\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleFrontMatter, issues[0].Rule)
	assert.Contains(t, issues[0].Message, "title")
}

func TestUnparseableFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2024-01-01-broken.md", "---\ntitle: [oops\n---\nbody\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleParse, issues[0].Rule)
	assert.Equal(t, Error, issues[0].Severity)
}

func TestPostWithoutDate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/undated.md", "---\ntitle: T\nauthor: A\n---\nbody\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleDate, issues[0].Rule)
}

func TestDateDisagreement(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2024-01-01-shifted.md",
		"---\ntitle: T\nauthor: A\ndate: 2024-02-02\n---\nbody\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleDate, issues[0].Rule)
	assert.Equal(t, Warning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "disagrees")
}

func TestMissingAuthor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2024-01-01-anon.md", "---\ntitle: T\n---\nbody\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleAuthor, issues[0].Rule)

	// A site-wide default author satisfies the requirement.
	issues = run(t, root, WithDefaultAuthor("Erin Gen"))
	assert.Empty(t, issues)
}

func TestDuplicateSlugs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2024-01-01-same.md", "---\ntitle: A\nauthor: X\n---\n")
	writeFile(t, root, "posts/2024-02-02-same.md", "---\ntitle: B\nauthor: X\n---\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleSlug, issues[0].Rule)
	assert.Contains(t, issues[0].Message, "duplicate post slug")
}

func TestUnclosedFence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/about.md", "---\ntitle: About\n---\n\n```sh\necho hi\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleCodeFence, issues[0].Rule)
	assert.Equal(t, Error, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "unclosed")
	assert.Equal(t, 5, issues[0].Line)
}

func TestUnknownFenceLanguage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/about.md", "---\ntitle: About\n---\n\n```klingon\nqapla\n```\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleCodeFence, issues[0].Rule)
	assert.Contains(t, issues[0].Message, "klingon")
}

func TestBareFenceWarns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/about.md", "---\ntitle: About\n---\n\n```\nplain\n```\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleCodeFence, issues[0].Rule)
	assert.Equal(t, Warning, issues[0].Severity)
}

func TestInternalPostLink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2024-01-01-target.md", "---\ntitle: Target\nauthor: X\n---\nbody\n")
	writeFile(t, root, "pages/about.md",
		"---\ntitle: About\n---\n\nGood: [t](/blog/target/). Bad: [m](/blog/missing/).\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Equal(t, RuleLink, issues[0].Rule)
	assert.Contains(t, issues[0].Message, "/blog/missing/")
}

func TestInternalPageLink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/about.md", "---\ntitle: About\n---\n\n[me](/about/) [x](/nope/)\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "/nope/")
}

func TestStaticAssetLink(t *testing.T) {
	root := t.TempDir()
	static := t.TempDir()
	writeFile(t, static, "img/photo.jpg", "jpegdata")
	writeFile(t, root, "pages/about.md",
		"---\ntitle: About\n---\n\n![ok](/public/img/photo.jpg) ![bad](/public/img/missing.jpg)\n")

	issues := run(t, root, WithStaticDir(static))
	require.Len(t, issues, 1)
	assert.Equal(t, RuleLink, issues[0].Rule)
	assert.Contains(t, issues[0].Message, "missing.jpg")
}

func TestLinksInsideFencesSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/about.md",
		"---\ntitle: About\n---\n\n```text\nsee [broken](/blog/nowhere/)\n```\n")

	issues := run(t, root)
	assert.Empty(t, issues)
}

func TestUnsupportedScheme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/about.md",
		"---\ntitle: About\n---\n\n[f](ftp://example.com/file) [m](mailto:e@example.com) [t](tel:+15551234)\n")

	issues := run(t, root)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "ftp")
}

func TestNewTabMarkerStripped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/about.md",
		"---\ntitle: About\n---\n\n[docs](https://example.com/docs^)\n")

	issues := run(t, root)
	assert.Empty(t, issues)
}

func TestExternalLinkChecks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/no-head":
			w.WriteHeader(http.StatusMethodNotAllowed)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	root := t.TempDir()
	writeFile(t, root, "pages/about.md",
		"---\ntitle: About\n---\n\n[a]("+srv.URL+"/ok) [b]("+srv.URL+"/no-head) [c]("+srv.URL+"/gone)\n")

	issues := run(t, root, WithExternalChecks(srv.Client()))
	require.Len(t, issues, 1)
	assert.Equal(t, Warning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "404")

	// Without external checks the same links pass on URL shape alone.
	assert.Empty(t, run(t, root))
}

func TestIssuesSorted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pages/zeta.md", "no front matter\n")
	writeFile(t, root, "pages/alpha.md", "also none\n")

	issues := run(t, root)
	require.Len(t, issues, 2)
	assert.Equal(t, "pages/alpha.md", issues[0].File)
	assert.Equal(t, "pages/zeta.md", issues[1].File)
}

func TestHasErrors(t *testing.T) {
	assert.False(t, HasErrors(nil))
	assert.False(t, HasErrors([]Issue{{Severity: Warning}}))
	assert.True(t, HasErrors([]Issue{{Severity: Warning}, {Severity: Error}}))
}

func TestIssueString(t *testing.T) {
	i := Issue{File: "pages/about.md", Line: 7, Rule: RuleLink, Severity: Error, Message: "empty link target"}
	assert.Equal(t, "pages/about.md:7: error: empty link target (link)", i.String())
}
