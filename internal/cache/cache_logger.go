package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// CatalogPatterns match every cached catalog page and count
var CatalogPatterns = []string{"list:*", "count:*"}

// InvalidateCatalogCache drops every cached catalog page and count
func InvalidateCatalogCache(ctx context.Context, cm *CacheManager) error {
	return BatchInvalidate(ctx, cm.Catalog, CatalogPatterns)
}

// InvalidateUserCache drops the cached user for an identity-provider subject
func InvalidateUserCache(ctx context.Context, cm *CacheManager, authID string) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("auth:%s", authID))
}

// InvalidateProgressStats drops dashboard aggregates touched by a progress change
func InvalidateProgressStats(ctx context.Context, cm *CacheManager, userID, courseOwnerID string) {
	SafeDelete(ctx, cm.Stats,
		fmt.Sprintf("student:%s", userID),
		fmt.Sprintf("teacher:%s", courseOwnerID))
}
