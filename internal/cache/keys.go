package cache

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/observability"
)

const (
	userKeyPrefix = "user:%s"
	blogKeyPrefix = "blog:%s"

	// CategoriesKey holds the cached category/count listing.
	CategoriesKey = "blogs:categories"
	// TagsKey holds the cached distinct tag listing.
	TagsKey = "blogs:tags"
)

const (
	UserTTL       = 5 * time.Minute
	BlogTTL       = 30 * time.Minute
	CategoriesTTL = 10 * time.Minute
	TagsTTL       = 10 * time.Minute
)

// UserKey returns the cache key for a user document.
func UserKey(userID string) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// BlogKey returns the cache key for a blog document.
func BlogKey(blogID string) string {
	return fmt.Sprintf(blogKeyPrefix, blogID)
}

// Invalidate removes the given key. Best effort; a nil client is a no-op.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	ctx, span := observability.TraceRedisOperation(ctx, "del")
	defer span.End()
	client.Del(ctx, key)
}

// InvalidateUser removes the cached user document.
func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateBlog removes the cached blog document.
func InvalidateBlog(ctx context.Context, blogID string) {
	Invalidate(ctx, BlogKey(blogID))
}

// InvalidateTaxonomy removes the cached category and tag listings.
// Called on any write that can change category or tag distributions.
func InvalidateTaxonomy(ctx context.Context) {
	Invalidate(ctx, CategoriesKey)
	Invalidate(ctx, TagsKey)
}
