package lint

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/eringen/inkwell/content"
)

// Matches [text](target) and ![alt](target). The optional trailing ^ is
// the renderer's open-in-new-tab marker.
var reLinkTarget = regexp.MustCompile(`!?\[[^\]]*\]\(([^)\s]+)\)`)

// lintLinks checks every link target in the document body. Internal links
// must resolve to a known post, page, or static file; external links must
// be well-formed http(s)/mailto URLs. Targets inside code fences are prose
// examples, not navigation, and are skipped.
func (l *Linter) lintLinks(ctx context.Context, doc content.Document, site siteIndex, issues *[]Issue) {
	inFence := false
	for n, line := range strings.Split(doc.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		lineNo := doc.BodyLn + n
		for _, m := range reLinkTarget.FindAllStringSubmatch(line, -1) {
			l.checkTarget(ctx, doc, lineNo, m[1], site, issues)
		}
	}
}

func (l *Linter) checkTarget(ctx context.Context, doc content.Document, line int, target string, site siteIndex, issues *[]Issue) {
	target = strings.TrimSpace(target)
	// The renderer's open-in-new-tab marker is part of the target text.
	target = strings.TrimSuffix(target, "^")
	switch {
	case target == "":
		*issues = append(*issues, Issue{
			File: doc.Path, Line: line, Rule: RuleLink, Severity: Error,
			Message: "empty link target",
		})
	case strings.HasPrefix(target, "#"):
		// In-document anchor; nothing to resolve.
	case strings.HasPrefix(target, "/"):
		l.checkInternal(doc, line, target, site, issues)
	default:
		l.checkExternalTarget(ctx, doc, line, target, issues)
	}
}

func (l *Linter) checkInternal(doc content.Document, line int, target string, site siteIndex, issues *[]Issue) {
	path := target
	if i := strings.IndexAny(path, "#?"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")

	switch {
	case path == "" || path == "blog":
		// Site root and blog index always exist.
	case strings.HasPrefix(path, "blog/"):
		slug := strings.TrimPrefix(path, "blog/")
		if _, ok := site.postSlugs[slug]; !ok {
			*issues = append(*issues, Issue{
				File: doc.Path, Line: line, Rule: RuleLink, Severity: Error,
				Message: fmt.Sprintf("internal link %q does not match any post", target),
			})
		}
	case strings.HasPrefix(path, "public/"):
		rel := strings.TrimPrefix(path, "public/")
		if _, err := os.Stat(filepath.Join(l.staticDir, filepath.FromSlash(rel))); err != nil {
			*issues = append(*issues, Issue{
				File: doc.Path, Line: line, Rule: RuleLink, Severity: Error,
				Message: fmt.Sprintf("static asset %q not found under %s", target, l.staticDir),
			})
		}
	default:
		if _, ok := site.pageSlugs[path]; !ok {
			*issues = append(*issues, Issue{
				File: doc.Path, Line: line, Rule: RuleLink, Severity: Error,
				Message: fmt.Sprintf("internal link %q does not match any page", target),
			})
		}
	}
}

func (l *Linter) checkExternalTarget(ctx context.Context, doc content.Document, line int, target string, issues *[]Issue) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" {
		*issues = append(*issues, Issue{
			File: doc.Path, Line: line, Rule: RuleLink, Severity: Error,
			Message: fmt.Sprintf("link %q is neither absolute-internal nor a valid URL", target),
		})
		return
	}

	switch strings.ToLower(u.Scheme) {
	case "mailto", "tel":
		return
	case "http", "https":
	default:
		*issues = append(*issues, Issue{
			File: doc.Path, Line: line, Rule: RuleLink, Severity: Error,
			Message: fmt.Sprintf("link %q uses unsupported scheme %q", target, u.Scheme),
		})
		return
	}

	if !l.checkExternal {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		*issues = append(*issues, Issue{
			File: doc.Path, Line: line, Rule: RuleLink, Severity: Error,
			Message: fmt.Sprintf("link %q: %v", target, err),
		})
		return
	}
	resp, err := l.client.Do(req)
	if err != nil {
		*issues = append(*issues, Issue{
			File: doc.Path, Line: line, Rule: RuleLink, Severity: Warning,
			Message: fmt.Sprintf("link %q unreachable: %v", target, err),
		})
		return
	}
	resp.Body.Close()
	// Some servers refuse HEAD; only hard 4xx/5xx beyond 405 are reported.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusMethodNotAllowed {
		*issues = append(*issues, Issue{
			File: doc.Path, Line: line, Rule: RuleLink, Severity: Warning,
			Message: fmt.Sprintf("link %q returned %d", target, resp.StatusCode),
		})
	}
}
