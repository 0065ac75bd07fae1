package inkwell

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeContent(t *testing.T, root, rel, data string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestSync(t *testing.T) {
	s := setupTestStore(t)
	cache := NewContentCache(s, time.Minute)

	root := t.TempDir()
	writeContent(t, root, "posts/2024-01-15-hello-world.md", `---
title: Hello World
author: Erin Gen
tags: [go, meta]
excerpt: First post.
---

Welcome to the blog.
`)
	writeContent(t, root, "pages/about.md", "---\ntitle: About\nauthor: Erin Gen\n---\n\nHi there.\n")

	syncer := NewSyncer(s, cache, root, "")
	stats, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if stats.Posts != 1 || stats.Pages != 1 || stats.Pruned != 0 {
		t.Errorf("stats = %+v, want 1 post, 1 page, 0 pruned", stats)
	}

	post, err := s.GetPost("hello-world")
	if err != nil {
		t.Fatalf("GetPost after sync: %v", err)
	}
	if post.Title != "Hello World" {
		t.Errorf("Title = %q, want %q", post.Title, "Hello World")
	}
	if post.Date != "2024-01-15" {
		t.Errorf("Date = %q, want filename date", post.Date)
	}
	if post.Summary != "First post." {
		t.Errorf("Summary = %q, want excerpt", post.Summary)
	}
	if len(post.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 tags", post.Tags)
	}

	page, err := s.GetPage("about")
	if err != nil {
		t.Fatalf("GetPage after sync: %v", err)
	}
	if page.Title != "About" {
		t.Errorf("page Title = %q, want %q", page.Title, "About")
	}
}

func TestSyncUpdatesExisting(t *testing.T) {
	s := setupTestStore(t)
	root := t.TempDir()
	rel := "posts/2024-01-15-evolving.md"

	writeContent(t, root, rel, "---\ntitle: First Draft\nauthor: A\n---\nv1\n")
	syncer := NewSyncer(s, nil, root, "")
	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	writeContent(t, root, rel, "---\ntitle: Final Title\nauthor: A\n---\nv2\n")
	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("re-sync failed: %v", err)
	}

	post, err := s.GetPost("evolving")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if post.Title != "Final Title" {
		t.Errorf("Title = %q, want updated title", post.Title)
	}
	if post.Content != "v2\n" {
		t.Errorf("Content = %q, want %q", post.Content, "v2\n")
	}
}

func TestSyncLeavesStoreOnlyEntries(t *testing.T) {
	s := setupTestStore(t)

	// A post created through the admin UI, with no file behind it.
	if err := s.SavePost(Post{Slug: "admin-only", Title: "Admin Only", Date: "2024-01-01", Published: true}); err != nil {
		t.Fatalf("SavePost: %v", err)
	}

	root := t.TempDir()
	writeContent(t, root, "posts/2024-02-02-on-disk.md", "---\ntitle: On Disk\nauthor: A\n---\n")

	syncer := NewSyncer(s, nil, root, "")
	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if _, err := s.GetPost("admin-only"); err != nil {
		t.Errorf("admin-only post should survive a sync without prune: %v", err)
	}
}

func TestSyncPrune(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SavePost(Post{Slug: "stale", Title: "Stale", Date: "2024-01-01", Published: true}); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	if err := s.SavePage(Page{Slug: "stale-page", Title: "Stale Page"}); err != nil {
		t.Fatalf("SavePage: %v", err)
	}

	root := t.TempDir()
	writeContent(t, root, "posts/2024-02-02-fresh.md", "---\ntitle: Fresh\nauthor: A\n---\n")

	syncer := NewSyncer(s, nil, root, "")
	syncer.Prune = true
	stats, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if stats.Pruned != 2 {
		t.Errorf("Pruned = %d, want 2", stats.Pruned)
	}

	if _, err := s.GetPostAny("stale"); err != ErrNotFound {
		t.Errorf("stale post should be pruned, got err: %v", err)
	}
	if _, err := s.GetPage("stale-page"); err != ErrNotFound {
		t.Errorf("stale page should be pruned, got err: %v", err)
	}
	if _, err := s.GetPost("fresh"); err != nil {
		t.Errorf("fresh post should exist: %v", err)
	}
}

func TestSyncDefaultAuthor(t *testing.T) {
	s := setupTestStore(t)
	root := t.TempDir()
	writeContent(t, root, "posts/2024-03-03-anon.md", "---\ntitle: Anon\n---\n")

	syncer := NewSyncer(s, nil, root, "Site Author")
	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	post, err := s.GetPost("anon")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if post.Author != "Site Author" {
		t.Errorf("Author = %q, want site default", post.Author)
	}
}

func TestSyncInvalidContentFailsWhole(t *testing.T) {
	s := setupTestStore(t)
	root := t.TempDir()
	writeContent(t, root, "posts/2024-01-01-good.md", "---\ntitle: Good\nauthor: A\n---\n")
	writeContent(t, root, "posts/2024-01-02-bad.md", "no front matter\n")

	syncer := NewSyncer(s, nil, root, "")
	if _, err := syncer.Sync(context.Background()); err == nil {
		t.Fatal("Sync should fail on malformed content")
	}
}

func TestSyncInvalidatesCache(t *testing.T) {
	s := setupTestStore(t)
	cache := NewContentCache(s, time.Minute)

	// Warm the cache while the store is empty.
	if posts, err := cache.ListPosts(""); err != nil || len(posts) != 0 {
		t.Fatalf("warm cache: posts=%v err=%v", posts, err)
	}

	root := t.TempDir()
	writeContent(t, root, "posts/2024-04-04-cached.md", "---\ntitle: Cached\nauthor: A\n---\n")

	syncer := NewSyncer(s, cache, root, "")
	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	posts, err := cache.ListPosts("")
	if err != nil {
		t.Fatalf("ListPosts after sync: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("cache should see the new post after invalidation, got %d", len(posts))
	}
}
