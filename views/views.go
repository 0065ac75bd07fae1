// Package views provides the default templ components for an inkwell
// site. Sites that want their own look supply an inkwell.ViewFuncs of
// their own; these defaults render a clean, dependency-free HTML shell.
package views

import (
	"bytes"
	"context"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/inkwell"
	"github.com/eringen/inkwell/markdown"
)

// Default returns a ViewFuncs wired to the built-in components.
func Default(cfg inkwell.SiteConfig) inkwell.ViewFuncs {
	return inkwell.ViewFuncs{
		Home: func(posts []inkwell.Post, activeTag string, tags []string, siteURL string) templ.Component {
			return page(cfg, cfg.Name, func(buf *bytes.Buffer) {
				writeBlogSection(buf, posts, activeTag, tags)
			})
		},
		HomePartial: func(posts []inkwell.Post, activeTag string, tags []string, siteURL string) templ.Component {
			return component(func(buf *bytes.Buffer) {
				writeBlogSection(buf, posts, activeTag, tags)
			})
		},
		BlogSection: func(posts []inkwell.Post, activeTag string, tags []string) templ.Component {
			return component(func(buf *bytes.Buffer) {
				writeBlogSection(buf, posts, activeTag, tags)
			})
		},
		Post: func(post inkwell.Post, posts []inkwell.Post, siteURL string) templ.Component {
			return page(cfg, post.Title, func(buf *bytes.Buffer) {
				writePost(buf, cfg, post, posts)
			})
		},
		PostPartial: func(post inkwell.Post, posts []inkwell.Post, siteURL string) templ.Component {
			return component(func(buf *bytes.Buffer) {
				writePost(buf, cfg, post, posts)
			})
		},
		Page: func(pg inkwell.Page, siteURL string) templ.Component {
			return page(cfg, pg.Title, func(buf *bytes.Buffer) {
				writeStandalonePage(buf, pg)
			})
		},
		AdminLogin:       func(showError bool, csrfToken string) templ.Component { return adminLogin(cfg, showError, csrfToken) },
		AdminDashboard:   func(posts []inkwell.Post, pages []inkwell.Page, message, csrfToken string) templ.Component { return adminDashboard(cfg, posts, pages, message, csrfToken) },
		AdminFormPartial: func(post inkwell.Post, csrfToken string) templ.Component { return adminForm(post, csrfToken) },
		AdminImages:      func(images []inkwell.Image, csrfToken string) templ.Component { return adminImages(images, csrfToken) },
		NotFound:         func() templ.Component { return statusPage(cfg, "404", "Page not found.") },
		ServerError:      func() templ.Component { return statusPage(cfg, "500", "Something went wrong.") },
	}
}

// component wraps a buffer-writing function as a templ.Component.
func component(write func(*bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		write(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// page wraps body content in the site layout.
func page(cfg inkwell.SiteConfig, title string, write func(*bytes.Buffer)) templ.Component {
	return component(func(buf *bytes.Buffer) {
		buf.WriteString("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"/>")
		buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		buf.WriteString("<title>" + html.EscapeString(title) + "</title>")
		if cfg.Description != "" {
			buf.WriteString(`<meta name="description" content="` + html.EscapeString(cfg.Description) + `"/>`)
		}
		buf.WriteString(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"/>`)
		buf.WriteString(`<link rel="stylesheet" href="/public/site.css"/>`)
		buf.WriteString(`<script type="application/ld+json">` + inkwell.WebsiteJsonLD(cfg) + `</script>`)
		buf.WriteString("</head><body>")
		buf.WriteString(`<header><a href="/">` + html.EscapeString(cfg.Name) + `</a></header><main>`)
		write(buf)
		buf.WriteString("</main><footer>")
		if cfg.Author != "" {
			buf.WriteString("<p>" + html.EscapeString(cfg.Author) + "</p>")
		}
		buf.WriteString(`<p><a href="/feed.xml">RSS</a></p></footer></body></html>`)
	})
}

func writeBlogSection(buf *bytes.Buffer, posts []inkwell.Post, activeTag string, tags []string) {
	buf.WriteString(`<section id="blog">`)
	if len(tags) > 0 {
		buf.WriteString(`<nav class="tags">`)
		for _, t := range tags {
			cls := "tag"
			if t == activeTag {
				cls = "tag active"
			}
			buf.WriteString(`<a class="` + cls + `" href="/?tag=` + inkwell.PathEscape(t) + `">` + html.EscapeString(t) + `</a>`)
		}
		buf.WriteString("</nav>")
	}
	buf.WriteString("<ul class=\"posts\">")
	for _, p := range posts {
		buf.WriteString(`<li><time datetime="` + p.Date + `">` + p.Date + `</time> `)
		buf.WriteString(`<a href="` + p.Link + `/">` + html.EscapeString(p.Title) + `</a>`)
		if p.Summary != "" {
			buf.WriteString(`<p class="excerpt">` + html.EscapeString(p.Summary) + `</p>`)
		}
		buf.WriteString("</li>")
	}
	buf.WriteString("</ul></section>")
}

func writePost(buf *bytes.Buffer, cfg inkwell.SiteConfig, post inkwell.Post, posts []inkwell.Post) {
	buf.WriteString(`<script type="application/ld+json">` + inkwell.BlogPostingJsonLD(post, cfg) + `</script>`)
	buf.WriteString(`<article><h1>` + html.EscapeString(post.Title) + `</h1>`)
	buf.WriteString(`<p class="meta"><time datetime="` + post.Date + `">` + post.Date + `</time>`)
	if post.Author != "" {
		buf.WriteString(` · ` + html.EscapeString(post.Author))
	}
	if len(post.Tags) > 0 {
		buf.WriteString(` · ` + html.EscapeString(inkwell.JoinTags(post.Tags)))
	}
	buf.WriteString("</p>")
	var body bytes.Buffer
	markdown.Render(&body, post.Content)
	buf.Write(body.Bytes())
	buf.WriteString("</article>")

	if related := inkwell.FilterRelatedPosts(post, posts); len(related) > 0 {
		buf.WriteString(`<aside class="related"><h2>Related</h2><ul>`)
		for _, r := range related {
			buf.WriteString(`<li><a href="` + r.Link + `/">` + html.EscapeString(r.Title) + `</a></li>`)
		}
		buf.WriteString("</ul></aside>")
	}
}

func writeStandalonePage(buf *bytes.Buffer, pg inkwell.Page) {
	buf.WriteString(`<article><h1>` + html.EscapeString(pg.Title) + `</h1>`)
	var body bytes.Buffer
	markdown.Render(&body, pg.Content)
	buf.Write(body.Bytes())
	buf.WriteString("</article>")
}

func statusPage(cfg inkwell.SiteConfig, code, message string) templ.Component {
	return page(cfg, code, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="status"><h1>` + code + `</h1><p>` + html.EscapeString(message) + `</p>`)
		buf.WriteString(`<p><a href="/">Back to ` + html.EscapeString(cfg.Name) + `</a></p></section>`)
	})
}
