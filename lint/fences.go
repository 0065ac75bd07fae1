package lint

import (
	"fmt"
	"strings"

	"github.com/eringen/inkwell/content"
)

// knownLanguages is the set of fence languages the site's highlighter and
// the markdown renderer's language badges understand.
var knownLanguages = map[string]struct{}{
	"bash": {}, "c": {}, "console": {}, "cpp": {}, "cs": {}, "csharp": {},
	"css": {}, "diff": {}, "docker": {}, "dockerfile": {}, "go": {},
	"html": {}, "http": {}, "ini": {}, "java": {}, "javascript": {},
	"js": {}, "json": {}, "makefile": {}, "plaintext": {}, "powershell": {},
	"python": {}, "ruby": {}, "rust": {}, "sh": {}, "shell": {}, "sql": {},
	"text": {}, "toml": {}, "ts": {}, "typescript": {}, "xml": {}, "yaml": {},
}

// lintCodeFences verifies that ``` fences are balanced and that opening
// fences declare a language from the known set. A bare fence is legal but
// renders without a language badge, so it only warns.
func (l *Linter) lintCodeFences(doc content.Document, issues *[]Issue) {
	inFence := false
	openLine := 0
	for n, line := range strings.Split(doc.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		lineNo := doc.BodyLn + n
		if inFence {
			if rest := strings.TrimSpace(trimmed[3:]); rest != "" {
				// ```lang on a closing line means the previous block never closed.
				*issues = append(*issues, Issue{
					File: doc.Path, Line: lineNo, Rule: RuleCodeFence, Severity: Error,
					Message: fmt.Sprintf("closing fence carries text %q; previous fence opened at line %d may be unclosed", rest, openLine),
				})
			}
			inFence = false
			continue
		}
		inFence = true
		openLine = lineNo
		lang := strings.ToLower(strings.TrimSpace(trimmed[3:]))
		if lang == "" {
			*issues = append(*issues, Issue{
				File: doc.Path, Line: lineNo, Rule: RuleCodeFence, Severity: Warning,
				Message: "code fence has no language",
			})
			continue
		}
		if _, ok := knownLanguages[lang]; !ok {
			*issues = append(*issues, Issue{
				File: doc.Path, Line: lineNo, Rule: RuleCodeFence, Severity: Error,
				Message: fmt.Sprintf("unknown fence language %q", lang),
			})
		}
	}
	if inFence {
		*issues = append(*issues, Issue{
			File: doc.Path, Line: openLine, Rule: RuleCodeFence, Severity: Error,
			Message: "unclosed code fence",
		})
	}
}
