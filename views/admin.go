package views

import (
	"bytes"
	"fmt"
	"html"

	"github.com/a-h/templ"

	"github.com/eringen/inkwell"
)

func adminLogin(cfg inkwell.SiteConfig, showError bool, csrfToken string) templ.Component {
	return page(cfg, "Admin", func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="admin-login"><h1>Sign in</h1>`)
		if showError {
			buf.WriteString(`<p class="error">Wrong password.</p>`)
		}
		buf.WriteString(`<form method="post" action="/admin/login/">`)
		writeCsrf(buf, csrfToken)
		buf.WriteString(`<input type="password" name="password" autofocus required/>`)
		buf.WriteString(`<button type="submit">Sign in</button></form></section>`)
	})
}

func adminDashboard(cfg inkwell.SiteConfig, posts []inkwell.Post, pages []inkwell.Page, message, csrfToken string) templ.Component {
	return page(cfg, "Admin", func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="admin">`)
		if message != "" {
			buf.WriteString(`<p class="notice">` + html.EscapeString(message) + `</p>`)
		}
		buf.WriteString(`<form method="post" action="/admin/sync/">`)
		writeCsrf(buf, csrfToken)
		buf.WriteString(`<button type="submit">Re-sync content</button></form>`)
		buf.WriteString(`<form method="post" action="/admin/logout/">`)
		writeCsrf(buf, csrfToken)
		buf.WriteString(`<button type="submit">Sign out</button></form>`)

		buf.WriteString(`<h2>Posts</h2><table class="admin-posts"><thead><tr><th>Date</th><th>Title</th><th>Status</th></tr></thead><tbody>`)
		for _, p := range posts {
			status := "draft"
			if p.Published {
				status = "published"
			}
			buf.WriteString(`<tr><td>` + p.Date + `</td><td><a href="/admin/post/` + inkwell.PathEscape(p.Slug) + `/">` + html.EscapeString(p.Title) + `</a></td><td>` + status + `</td></tr>`)
		}
		buf.WriteString(`</tbody></table>`)

		buf.WriteString(`<h2>Pages</h2><ul>`)
		for _, p := range pages {
			buf.WriteString(`<li><a href="` + p.Link + `/">` + html.EscapeString(p.Title) + `</a></li>`)
		}
		buf.WriteString(`</ul>`)

		buf.WriteString(`<h2>New post</h2>`)
		writeAdminForm(buf, inkwell.Post{}, csrfToken)
		buf.WriteString(`</section>`)
	})
}

func adminForm(post inkwell.Post, csrfToken string) templ.Component {
	return component(func(buf *bytes.Buffer) {
		writeAdminForm(buf, post, csrfToken)
	})
}

func writeAdminForm(buf *bytes.Buffer, post inkwell.Post, csrfToken string) {
	buf.WriteString(`<form method="post" action="/admin/save/" class="post-form">`)
	writeCsrf(buf, csrfToken)
	buf.WriteString(`<input name="title" placeholder="Title" value="` + html.EscapeString(post.Title) + `"/>`)
	buf.WriteString(`<input name="slug" placeholder="slug" value="` + html.EscapeString(post.Slug) + `"/>`)
	buf.WriteString(`<input name="date" placeholder="YYYY-MM-DD" value="` + html.EscapeString(post.Date) + `"/>`)
	buf.WriteString(`<input name="author" placeholder="Author" value="` + html.EscapeString(post.Author) + `"/>`)
	buf.WriteString(`<input name="tags" placeholder="tag, tag" value="` + html.EscapeString(inkwell.JoinTags(post.Tags)) + `"/>`)
	buf.WriteString(`<textarea name="summary" placeholder="Summary">` + html.EscapeString(post.Summary) + `</textarea>`)
	buf.WriteString(`<textarea name="content" placeholder="Markdown body">` + html.EscapeString(post.Content) + `</textarea>`)
	checked := ""
	if post.Published {
		checked = " checked"
	}
	buf.WriteString(`<label><input type="checkbox" name="published"` + checked + `/> Published</label>`)
	buf.WriteString(`<button type="submit">Save</button></form>`)
}

func adminImages(images []inkwell.Image, csrfToken string) templ.Component {
	return component(func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="admin-images">`)
		buf.WriteString(`<form method="post" action="/admin/images/upload/" enctype="multipart/form-data">`)
		writeCsrf(buf, csrfToken)
		buf.WriteString(`<input type="file" name="image" accept="image/*" required/>`)
		buf.WriteString(`<button type="submit">Upload</button></form><ul>`)
		for _, img := range images {
			buf.WriteString(fmt.Sprintf(`<li><img src="/public/uploads/%s" width="120" alt="%s"/> %s (%dx%d, %d bytes)</li>`,
				inkwell.PathEscape(img.Filename), html.EscapeString(img.OriginalName),
				html.EscapeString(img.Filename), img.Width, img.Height, img.Size))
		}
		buf.WriteString(`</ul></section>`)
	})
}

func writeCsrf(buf *bytes.Buffer, token string) {
	buf.WriteString(`<input type="hidden" name="_csrf" value="` + html.EscapeString(token) + `"/>`)
}
