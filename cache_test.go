package inkwell

import (
	"testing"
	"time"
)

func setupTestCache(t *testing.T) (*ContentCache, *Store) {
	t.Helper()
	s := setupTestStore(t)

	posts := []Post{
		{Slug: "first", Title: "First", Date: "2024-01-01", Tags: []string{"go"}, Published: true},
		{Slug: "second", Title: "Second", Date: "2024-02-02", Tags: []string{"go", "web"}, Published: true},
		{Slug: "draft", Title: "Draft", Date: "2024-03-03", Tags: []string{"go"}, Published: false},
	}
	for _, p := range posts {
		if err := s.SavePost(p); err != nil {
			t.Fatalf("SavePost: %v", err)
		}
	}
	if err := s.SavePage(Page{Slug: "about", Title: "About"}); err != nil {
		t.Fatalf("SavePage: %v", err)
	}

	return NewContentCache(s, time.Minute), s
}

func TestCacheListPosts(t *testing.T) {
	cache, _ := setupTestCache(t)

	posts, err := cache.ListPosts("")
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("ListPosts count = %d, want 2 (drafts excluded)", len(posts))
	}
	if posts[0].Slug != "second" {
		t.Errorf("first post = %q, want newest first", posts[0].Slug)
	}
}

func TestCacheListPostsByTag(t *testing.T) {
	cache, _ := setupTestCache(t)

	posts, err := cache.ListPosts("web")
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "second" {
		t.Errorf("ListPosts(web) = %v, want only second", posts)
	}

	// Tag matching is case-insensitive.
	posts, err = cache.ListPosts("WEB")
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("ListPosts(WEB) count = %d, want 1", len(posts))
	}

	posts, err = cache.ListPosts("nope")
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("ListPosts(nope) count = %d, want 0", len(posts))
	}
}

func TestCacheGetPost(t *testing.T) {
	cache, _ := setupTestCache(t)

	post, err := cache.GetPost("first")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if post.Title != "First" {
		t.Errorf("Title = %q, want %q", post.Title, "First")
	}

	if _, err := cache.GetPost("draft"); err != ErrNotFound {
		t.Errorf("GetPost(draft) should be ErrNotFound, got %v", err)
	}
	if _, err := cache.GetPost("missing"); err != ErrNotFound {
		t.Errorf("GetPost(missing) should be ErrNotFound, got %v", err)
	}
}

func TestCachePages(t *testing.T) {
	cache, _ := setupTestCache(t)

	pages, err := cache.ListPages()
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("ListPages count = %d, want 1", len(pages))
	}

	page, err := cache.GetPage("about")
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if page.Title != "About" {
		t.Errorf("Title = %q, want %q", page.Title, "About")
	}

	if _, err := cache.GetPage("missing"); err != ErrNotFound {
		t.Errorf("GetPage(missing) should be ErrNotFound, got %v", err)
	}
}

func TestCacheListTags(t *testing.T) {
	cache, _ := setupTestCache(t)

	tags, err := cache.ListTags()
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	// Only tags from published posts.
	if len(tags) != 2 {
		t.Errorf("ListTags = %v, want [go web]", tags)
	}
}

func TestCacheServesStaleUntilInvalidated(t *testing.T) {
	cache, store := setupTestCache(t)

	if _, err := cache.ListPosts(""); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := store.SavePost(Post{Slug: "new", Title: "New", Date: "2024-04-04", Published: true}); err != nil {
		t.Fatalf("SavePost: %v", err)
	}

	posts, _ := cache.ListPosts("")
	if len(posts) != 2 {
		t.Errorf("cache should still serve the old snapshot, got %d posts", len(posts))
	}

	cache.Invalidate()
	posts, err := cache.ListPosts("")
	if err != nil {
		t.Fatalf("ListPosts after invalidate: %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("cache should reload after invalidate, got %d posts", len(posts))
	}
}
