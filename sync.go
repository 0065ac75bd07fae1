package inkwell

import (
	"context"
	"fmt"

	"github.com/eringen/inkwell/content"
)

// Syncer mirrors a Markdown content directory into the Store. Files are
// the source of truth for slugs present on disk; posts created through the
// admin UI are left alone unless Prune is set.
type Syncer struct {
	// Prune removes store entries whose slug no longer exists on disk.
	Prune bool

	store  *Store
	cache  *ContentCache
	loader *content.Loader
}

// SyncStats reports what a sync run did.
type SyncStats struct {
	Posts  int
	Pages  int
	Pruned int
}

// NewSyncer creates a Syncer reading from dir. defaultAuthor fills posts
// whose front-matter omits an author.
func NewSyncer(store *Store, cache *ContentCache, dir, defaultAuthor string) *Syncer {
	return &Syncer{
		store:  store,
		cache:  cache,
		loader: content.NewLoader(dir, defaultAuthor),
	}
}

// Sync loads the content directory and upserts every document into the
// store, invalidating the cache afterwards.
func (s *Syncer) Sync(ctx context.Context) (SyncStats, error) {
	site, err := s.loader.Load(ctx)
	if err != nil {
		return SyncStats{}, err
	}

	var stats SyncStats
	diskPosts := make(map[string]struct{}, len(site.Posts))
	for _, p := range site.Posts {
		diskPosts[p.Slug] = struct{}{}
		if err := s.store.SavePost(Post{
			Slug:      p.Slug,
			Title:     p.Title,
			Date:      p.Date,
			Author:    p.Author,
			Tags:      p.Tags,
			Summary:   p.Excerpt,
			Content:   p.Body,
			Published: p.Published,
		}); err != nil {
			return stats, fmt.Errorf("save post %s: %w", p.Slug, err)
		}
		stats.Posts++
	}

	diskPages := make(map[string]struct{}, len(site.Pages))
	for _, p := range site.Pages {
		diskPages[p.Slug] = struct{}{}
		if err := s.store.SavePage(Page{
			Slug:    p.Slug,
			Title:   p.Title,
			Author:  p.Author,
			Content: p.Body,
		}); err != nil {
			return stats, fmt.Errorf("save page %s: %w", p.Slug, err)
		}
		stats.Pages++
	}

	if s.Prune {
		pruned, err := s.prune(diskPosts, diskPages)
		if err != nil {
			return stats, err
		}
		stats.Pruned = pruned
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return stats, nil
}

func (s *Syncer) prune(diskPosts, diskPages map[string]struct{}) (int, error) {
	pruned := 0
	postSlugs, err := s.store.ListPostSlugs()
	if err != nil {
		return 0, err
	}
	for _, slug := range postSlugs {
		if _, onDisk := diskPosts[slug]; !onDisk {
			if err := s.store.DeletePost(slug); err != nil {
				return pruned, fmt.Errorf("prune post %s: %w", slug, err)
			}
			pruned++
		}
	}
	pageSlugs, err := s.store.ListPageSlugs()
	if err != nil {
		return pruned, err
	}
	for _, slug := range pageSlugs {
		if _, onDisk := diskPages[slug]; !onDisk {
			if err := s.store.DeletePage(slug); err != nil {
				return pruned, fmt.Errorf("prune page %s: %w", slug, err)
			}
			pruned++
		}
	}
	return pruned, nil
}
