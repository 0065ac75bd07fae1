// Package markdown renders the Markdown dialect used by inkwell content
// as HTML, exposed as a templ component. It covers what technical blog
// posts need: headings, paragraphs, lists, blockquotes, tables, fenced
// code with a language badge, and safe inline links and images.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reStrong      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reStrongLow   = regexp.MustCompile(`__(.+?)__`)
	reEm          = regexp.MustCompile(`\*([^*]+)\*`)
	reEmLow       = regexp.MustCompile(`_([^_]+)_`)
	reStrike      = regexp.MustCompile(`~~(.+?)~~`)
	reCodeSpan    = regexp.MustCompile("`([^`]+)`")
	reAnchor      = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedItem = regexp.MustCompile(`^\d+\.\s`)
	reHeading     = regexp.MustCompile(`^(#{1,4})\s+(.*)$`)
	// ![alt](url) with an optional {style} or {style|width|height} suffix
	reImage = regexp.MustCompile(`\!\[(.*?)\]\((.*?)\)(?:\{([^|}]*?)(?:\|(\d+)\|(\d+))?\})?`)
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, md)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// blockKind tracks which container element is currently open.
type blockKind int

const (
	blockNone blockKind = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
)

// Render writes the HTML representation of md to buf.
func Render(buf *bytes.Buffer, md string) {
	var (
		open       = blockNone
		inFence    = false
		fenceBadge = false
		headerDone = false // table header row emitted
		imageCount = 0
	)

	closeBlock := func() {
		switch open {
		case blockPara:
			buf.WriteString("</p>")
		case blockList:
			buf.WriteString("</ul>")
		case blockOrdered:
			buf.WriteString("</ol>")
		case blockQuote:
			buf.WriteString("</blockquote>")
		case blockTable:
			if headerDone {
				buf.WriteString("</tbody>")
			}
			buf.WriteString("</table>")
			headerDone = false
		}
		open = blockNone
	}
	closeFence := func() {
		if !inFence {
			return
		}
		buf.WriteString("</code></pre>")
		if fenceBadge {
			buf.WriteString("</figure>")
			fenceBadge = false
		}
		inFence = false
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, "```") {
			if inFence {
				closeFence()
				continue
			}
			closeBlock()
			lang := strings.TrimSpace(line[3:])
			if lang != "" {
				fenceBadge = true
				escaped := html.EscapeString(lang)
				buf.WriteString(`<figure class="highlight"><figcaption class="lang lang-` + escaped + `">` + escaped + `</figcaption>`)
				buf.WriteString(`<pre><code class="language-` + escaped + `">`)
			} else {
				buf.WriteString("<pre><code>")
			}
			inFence = true
			continue
		}
		if inFence {
			buf.WriteString(html.EscapeString(line))
			buf.WriteByte('\n')
			continue
		}

		if strings.TrimSpace(line) == "" {
			closeBlock()
			continue
		}

		if m := reHeading.FindStringSubmatch(line); m != nil {
			closeBlock()
			level := strconv.Itoa(len(m[1]))
			buf.WriteString("<h" + level + ">")
			buf.WriteString(Spans(strings.TrimSpace(m[2]), &imageCount))
			buf.WriteString("</h" + level + ">")
			continue
		}

		switch {
		case strings.HasPrefix(line, "---"):
			closeBlock()
			buf.WriteString("<hr/>")
		case strings.HasPrefix(line, "|"):
			if open != blockTable {
				closeBlock()
				open = blockTable
				buf.WriteString("<table><thead><tr>")
				for _, cell := range tableCells(line) {
					buf.WriteString("<th>")
					buf.WriteString(Spans(cell, &imageCount))
					buf.WriteString("</th>")
				}
				buf.WriteString("</tr></thead>")
			} else if isTableRule(line) {
				if !headerDone {
					buf.WriteString("<tbody>")
					headerDone = true
				}
			} else {
				if !headerDone {
					buf.WriteString("<tbody>")
					headerDone = true
				}
				buf.WriteString("<tr>")
				for _, cell := range tableCells(line) {
					buf.WriteString("<td>")
					buf.WriteString(Spans(cell, &imageCount))
					buf.WriteString("</td>")
				}
				buf.WriteString("</tr>")
			}
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			if open != blockList {
				closeBlock()
				open = blockList
				buf.WriteString("<ul>")
			}
			buf.WriteString("<li>")
			buf.WriteString(Spans(strings.TrimSpace(line[2:]), &imageCount))
			buf.WriteString("</li>")
		case reOrderedItem.MatchString(line):
			if open != blockOrdered {
				closeBlock()
				open = blockOrdered
				buf.WriteString("<ol>")
			}
			item := reOrderedItem.ReplaceAllString(line, "")
			buf.WriteString("<li>")
			buf.WriteString(Spans(strings.TrimSpace(item), &imageCount))
			buf.WriteString("</li>")
		case strings.HasPrefix(line, "> "):
			if open != blockQuote {
				closeBlock()
				open = blockQuote
				buf.WriteString("<blockquote>")
			}
			buf.WriteString(Spans(strings.TrimSpace(line[2:]), &imageCount))
			buf.WriteByte('\n')
		default:
			if open != blockPara {
				closeBlock()
				open = blockPara
				buf.WriteString("<p>")
			} else {
				buf.WriteByte(' ')
			}
			buf.WriteString(Spans(strings.TrimSpace(line), &imageCount))
			buf.WriteByte('\n')
		}
	}
	closeBlock()
	closeFence()
}

func tableCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// isTableRule reports whether line is a header separator like |---|:--:|.
func isTableRule(line string) bool {
	line = strings.Trim(strings.TrimSpace(line), "|")
	for _, cell := range strings.Split(line, "|") {
		cell = strings.TrimSpace(cell)
		if strings.Trim(cell, "-:") != "" {
			return false
		}
	}
	return true
}

// applyOutsideTags applies fn only to text segments outside HTML tags, so
// formatting regexes never touch URLs inside href attributes.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// Spans applies inline formatting (code, bold, italic, strikethrough,
// links, images) to a single line of text.
func Spans(s string, imageCount *int) string {
	escaped := html.EscapeString(s)

	escaped = reImage.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImage.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		alt := match[1]
		style := match[3]
		width, height := "1024", "768"
		if match[4] != "" && match[5] != "" {
			width, height = match[4], match[5]
		}
		*imageCount++
		loadAttr := `loading="lazy"`
		if *imageCount == 1 {
			loadAttr = `fetchpriority="high"`
		}
		attrs := loadAttr + ` width="` + width + `" height="` + height + `" alt="` + alt + `" src="` + src + `" decoding="async"`
		if style != "" {
			attrs += ` style="` + style + `"`
		}
		return `<img ` + attrs + `/>`
	})

	escaped = reAnchor.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reAnchor.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if match[3] == "^" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})

	// Code spans are extracted first so emphasis regexes never reformat
	// their contents.
	var codeSpans []string
	escaped = reCodeSpan.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reCodeSpan.FindStringSubmatch(m)
		placeholder := "\x00CS" + strconv.Itoa(len(codeSpans)) + "\x00"
		codeSpans = append(codeSpans, "<code>"+match[1]+"</code>")
		return placeholder
	})

	escaped = applyOutsideTags(escaped, func(seg string) string {
		seg = reStrong.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reStrongLow.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reEm.ReplaceAllString(seg, "<em>$1</em>")
		seg = reEmLow.ReplaceAllString(seg, "<em>$1</em>")
		seg = reStrike.ReplaceAllString(seg, "<del>$1</del>")
		return seg
	})

	for i, code := range codeSpans {
		escaped = strings.Replace(escaped, "\x00CS"+strconv.Itoa(i)+"\x00", code, 1)
	}
	return escaped
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
// Relative-internal targets and http(s)/mailto/tel URLs pass; everything
// else is dropped.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
