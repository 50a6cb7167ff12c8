// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"phonestore/internal/models"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for catalog entries.
	catalogKeyPrefix = "catalog:"

	// generationKey holds the counter bumped by every Invalidate. Trees are
	// stored under the generation that was current when they were read.
	generationKey = catalogKeyPrefix + "gen"

	// DefaultCategoryTTL is how long a cached tree stays valid.
	DefaultCategoryTTL = 10 * time.Minute
)

// NoGeneration is returned by GetTree when the generation could not be
// read. SetTree ignores trees stored under it.
const NoGeneration int64 = -1

// CategoryCache stores rendered category trees in Valkey. The tree is
// rebuilt from PostgreSQL on a miss and dropped after every catalog write.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCategoryCache creates a category cache backed by the given Valkey client.
func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	if ttl == 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{client: client, ttl: ttl}
}

// TreeKey returns the cache key of the tree variant in generation gen.
func TreeKey(gen int64, includeInactive bool) string {
	variant := "active"
	if includeInactive {
		variant = "all"
	}
	return catalogKeyPrefix + "tree:" + strconv.FormatInt(gen, 10) + ":" + variant
}

func (cc *CategoryCache) generation(ctx context.Context) (int64, error) {
	gen, err := cc.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// GetTree returns the cached tree and the generation it was looked up in.
// On a miss the generation must be handed to SetTree together with the
// freshly built tree. Errors are logged and reported as a miss.
func (cc *CategoryCache) GetTree(ctx context.Context, includeInactive bool) ([]models.Category, int64, bool) {
	gen, err := cc.generation(ctx)
	if err != nil {
		slog.Warn("category cache generation error", "error", err)
		return nil, NoGeneration, false
	}

	key := TreeKey(gen, includeInactive)
	val, err := cc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, gen, false
	}
	if err != nil {
		slog.Warn("category cache get error", "key", key, "error", err)
		return nil, gen, false
	}

	var tree []models.Category
	if err := json.Unmarshal(val, &tree); err != nil {
		slog.Warn("category cache decode error", "key", key, "error", err)
		return nil, gen, false
	}
	slog.Debug("category cache hit", "key", key)
	return tree, gen, true
}

// SetTree stores a tree built after GetTree reported a miss in gen. A tree
// from a generation that has since been invalidated lands on a key nobody
// reads and expires with the TTL.
func (cc *CategoryCache) SetTree(ctx context.Context, includeInactive bool, gen int64, tree []models.Category) {
	if gen < 0 {
		return
	}
	key := TreeKey(gen, includeInactive)
	data, err := json.Marshal(tree)
	if err != nil {
		slog.Warn("category cache encode error", "key", key, "error", err)
		return
	}
	if err := cc.client.Set(ctx, key, data, cc.ttl).Err(); err != nil {
		slog.Warn("category cache set error", "key", key, "error", err)
	}
}

// Invalidate moves readers to a new generation and removes the stored trees
// by scanning for their prefix.
func (cc *CategoryCache) Invalidate(ctx context.Context) {
	if err := cc.client.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("category cache generation bump error", "error", err)
	}

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, catalogKeyPrefix+"tree:*", 100).Result()
		if err != nil {
			slog.Warn("category cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("category cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	slog.Debug("category cache invalidated", "deleted", deleted)
}
