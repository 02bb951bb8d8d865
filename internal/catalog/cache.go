// Package catalog holds the default template catalog and a read-through cache for it.
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vidcraft/backend/internal/models"
)

// ErrSourceUnavailable indicates the cache has no backing store.
var ErrSourceUnavailable = errors.New("template source unavailable")

// Source is the subset of the template repository the cache fronts.
type Source interface {
	ListTemplates(ctx context.Context) ([]models.Template, error)
	GetTemplate(ctx context.Context, id int64) (models.Template, error)
	CreateTemplate(ctx context.Context, input models.NewTemplate) (models.Template, error)
}

// CachingSource wraps a Source with a TTL cache over the active-template listing.
// Creating a template through the cache invalidates it.
type CachingSource struct {
	base Source
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	items   []models.Template
	expires time.Time
	version uint64
}

// NewCachingSource returns a Source that caches listings for the provided TTL.
func NewCachingSource(base Source, ttl time.Duration) *CachingSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingSource{
		base: base,
		ttl:  ttl,
		now:  time.Now,
	}
}

// ListTemplates returns the cached listing when fresh, otherwise it delegates
// to the underlying source and stores the result.
func (c *CachingSource) ListTemplates(ctx context.Context) ([]models.Template, error) {
	if c == nil || c.base == nil {
		return nil, ErrSourceUnavailable
	}

	now := c.now()

	c.mu.RLock()
	if c.items != nil && now.Before(c.expires) {
		items := append([]models.Template(nil), c.items...)
		c.mu.RUnlock()
		return items, nil
	}
	version := c.version
	c.mu.RUnlock()

	items, err := c.base.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	// A listing fetched across an invalidation may be stale; serve it but don't keep it.
	c.mu.Lock()
	if c.version == version {
		c.items = append(make([]models.Template, 0, len(items)), items...)
		c.expires = now.Add(c.ttl)
	}
	c.mu.Unlock()

	return items, nil
}

// GetTemplate is not cached.
func (c *CachingSource) GetTemplate(ctx context.Context, id int64) (models.Template, error) {
	if c == nil || c.base == nil {
		return models.Template{}, ErrSourceUnavailable
	}
	return c.base.GetTemplate(ctx, id)
}

// CreateTemplate stores the template and drops the cached listing.
func (c *CachingSource) CreateTemplate(ctx context.Context, input models.NewTemplate) (models.Template, error) {
	if c == nil || c.base == nil {
		return models.Template{}, ErrSourceUnavailable
	}

	tmpl, err := c.base.CreateTemplate(ctx, input)
	if err != nil {
		return models.Template{}, err
	}

	c.Invalidate()
	return tmpl, nil
}

// Invalidate forces the next listing to hit the underlying source.
func (c *CachingSource) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.expires = time.Time{}
	c.version++
	c.mu.Unlock()
}
