package cache

import (
	"context"
	"log/slog"
)

// Roster cache keys.
const (
	RosterProfessorsKey = "professors"
	RosterStudentsKey   = "students"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateProfessors drops the cached professor list.
func InvalidateProfessors(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Roster, RosterProfessorsKey)
}

// InvalidateStudents drops the cached student list.
func InvalidateStudents(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Roster, RosterStudentsKey)
}

// InvalidateRoster drops every cached roster list.
func InvalidateRoster(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Roster, "*")
}
