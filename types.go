package inkwell

// Post is the core content type. It originates from a Markdown file with
// YAML front-matter, is mirrored into SQLite, and is rendered by templates.
type Post struct {
	Slug      string
	Title     string
	Date      string // YYYY-MM-DD
	Author    string
	Tags      []string
	Summary   string
	Content   string // Markdown body
	Link      string
	Published bool
}

// Page is a standalone, non-chronological document such as /about/.
type Page struct {
	Slug    string
	Title   string
	Author  string
	Content string // Markdown body
	Link    string
}

// Image is metadata for an uploaded, resized image.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}
