package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/listing"
	"github.com/goliatone/go-blog-cache/pkg/errors"
)

// Store is the persistence surface the post service mutates through.
// *PostStore implements it; tests substitute fakes.
type Store interface {
	Insert(ctx context.Context, post *Post) error
	ByID(ctx context.Context, id uuid.UUID) (*Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Lister is the listing surface the post service reads through and
// invalidates. *listing.Service[Post] implements it.
type Lister interface {
	GetPage(ctx context.Context, scope listing.Scope, page, pageSize int) (listing.Page[Post], error)
	Invalidate(ctx context.Context, pattern string) error
}

// Posts combines the persistence gateway, the cache-aside listing service
// and the optional detail cache into the post API the handlers consume.
//
// Every mutation invalidates the listing cache only after the database write
// succeeds. Invalidating before the write would open a window where a
// concurrent read repopulates the cache from pre-mutation data that then
// looks fresh for a full TTL.
type Posts struct {
	store  Store
	lists  Lister
	detail cache.ReadThrough
	keys   cache.Keys
	log    *zap.Logger
}

// NewPosts creates the post service. detail may be nil, in which case detail
// reads go straight to the store. A nil logger is replaced with a nop logger.
func NewPosts(store Store, lists Lister, detail cache.ReadThrough, keys cache.Keys, log *zap.Logger) *Posts {
	if log == nil {
		log = zap.NewNop()
	}

	return &Posts{
		store:  store,
		lists:  lists,
		detail: detail,
		keys:   keys,
		log:    log,
	}
}

// List returns one page of the all-posts listing, newest first.
func (p *Posts) List(ctx context.Context, page, pageSize int) (listing.Page[Post], error) {
	return p.lists.GetPage(ctx, listing.All(), page, pageSize)
}

// ListByAuthor returns one page of a single author's listing, newest first.
func (p *Posts) ListByAuthor(ctx context.Context, author string, page, pageSize int) (listing.Page[Post], error) {
	return p.lists.GetPage(ctx, listing.ByAuthor(author), page, pageSize)
}

// Get returns a single post, read-through cached when a detail cache is
// configured.
func (p *Posts) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	if p.detail == nil {
		return p.store.ByID(ctx, id)
	}

	return cache.GetOrFetch(ctx, p.detail, p.keys.DetailKey(id.String()), func(ctx context.Context) (*Post, error) {
		return p.store.ByID(ctx, id)
	})
}

// Create validates and persists a new post, then purges every listing the
// post could appear in: the global pages and the author's pages.
func (p *Posts) Create(ctx context.Context, title, content, author string) (*Post, error) {
	now := time.Now().UTC()
	post := &Post{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := post.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid post", err)
	}

	if err := p.store.Insert(ctx, post); err != nil {
		return nil, err
	}

	p.invalidateListings(ctx, post.Author)

	return post, nil
}

// Edit rewrites a post's title and content. Listing pages are purged even
// though title and content do not move the post between pages; the
// conservative sweep trades precision for a simpler invariant
// (over-invalidation is acceptable, under-invalidation is not).
func (p *Posts) Edit(ctx context.Context, id uuid.UUID, title, content string) (*Post, error) {
	post, err := p.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = content
	post.UpdatedAt = time.Now().UTC()

	if err := post.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid post", err)
	}

	if err := p.store.Update(ctx, post); err != nil {
		return nil, err
	}

	p.forgetDetail(ctx, id)
	p.invalidateListings(ctx, post.Author)

	return post, nil
}

// Remove deletes a post and purges the listings it appeared in.
func (p *Posts) Remove(ctx context.Context, id uuid.UUID) error {
	// Fetch first: after the delete the author is gone, and the author
	// scopes which patterns to purge.
	post, err := p.store.ByID(ctx, id)
	if err != nil {
		return err
	}

	if err := p.store.Delete(ctx, id); err != nil {
		return err
	}

	p.forgetDetail(ctx, id)
	p.invalidateListings(ctx, post.Author)

	return nil
}

// invalidateListings purges the global and author-scoped listing patterns.
// It runs only after a successful mutation and is best-effort: a failed
// purge is logged and absorbed, since the stale entries self-heal at TTL
// expiry while a failed write response would not.
func (p *Posts) invalidateListings(ctx context.Context, author string) {
	patterns := []string{
		p.keys.AllPagesPattern(),
		p.keys.AuthorPattern(author),
	}

	for _, pattern := range patterns {
		if err := p.lists.Invalidate(ctx, pattern); err != nil {
			p.log.Warn("listing invalidation failed",
				zap.String("pattern", pattern),
				zap.Error(err))
		}
	}
}

func (p *Posts) forgetDetail(ctx context.Context, id uuid.UUID) {
	if p.detail == nil {
		return
	}

	if err := p.detail.Forget(ctx, p.keys.DetailKey(id.String())); err != nil {
		p.log.Warn("detail cache purge failed",
			zap.String("id", id.String()),
			zap.Error(err))
	}
}
