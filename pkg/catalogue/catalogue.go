// Package catalogue holds the three opaque-store reads C5 owns: cross-branch
// article mapping, per-branch catalogue keys, and product-name lookup. The
// first two are memoized through a short-TTL Redis cache so repeated builder
// construction doesn't hammer Postgres, but nothing is cached indefinitely
// across process lifetime; ProductName always queries Postgres. The
// tool-choice write lives in pkg/choicelog, not here.
package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Keys enumerates the values the search tool's LLM-facing schema is allowed
// to emit as a filter for one branch.
type Keys struct {
	IndicationsKey     []string
	ContraindicationsKey []string
	BodyParts          []string
}

// Store reads the cross-branch article mapping and catalogue keys from
// Postgres, optionally fronted by a Redis cache.
type Store struct {
	pool  *pgxpool.Pool
	cache *redis.Client
	ttl   time.Duration
}

// cacheTTL is deliberately short: per spec §5, catalogue reads may be
// memoized per tenant-builder construction but must never be cached
// indefinitely across the process lifetime.
const cacheTTL = 5 * time.Minute

// NewStore builds a Store. cache may be nil, in which case every read goes
// straight to Postgres.
func NewStore(pool *pgxpool.Pool, cache *redis.Client) *Store {
	return &Store{pool: pool, cache: cache, ttl: cacheTTL}
}

// CrossBranchArticle resolves the article ID of the same logical service in
// secondaryChannel, given its primary (article, channel) pair. Returns
// ("", false, nil) when no mapping exists.
func (s *Store) CrossBranchArticle(ctx context.Context, primaryArticle string, primaryChannel, secondaryChannel int) (string, bool, error) {
	cacheKey := fmt.Sprintf("toolfleet:article:%s:%d:%d", primaryArticle, primaryChannel, secondaryChannel)
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			if v == "" {
				return "", false, nil
			}
			return v, true, nil
		}
	}

	const q = `
		SELECT secondary_article
		FROM cross_branch_article_map
		WHERE primary_article = $1 AND primary_channel = $2 AND secondary_channel = $3
	`
	var secondaryArticle string
	err := s.pool.QueryRow(ctx, q, primaryArticle, primaryChannel, secondaryChannel).Scan(&secondaryArticle)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.cacheSet(ctx, cacheKey, "")
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading cross-branch article map: %w", err)
	}

	s.cacheSet(ctx, cacheKey, secondaryArticle)
	return secondaryArticle, true, nil
}

// CatalogueKeys loads the three filter-value sets for one branch.
func (s *Store) CatalogueKeys(ctx context.Context, branchID int) (Keys, error) {
	cacheKey := fmt.Sprintf("toolfleet:catalogue_keys:%d", branchID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var keys Keys
			if jsonErr := json.Unmarshal(raw, &keys); jsonErr == nil {
				return keys, nil
			}
		}
	}

	const q = `
		SELECT indications_key, contraindications_key, body_parts
		FROM branch_catalogue_keys
		WHERE branch_id = $1
	`
	var keys Keys
	err := s.pool.QueryRow(ctx, q, branchID).Scan(&keys.IndicationsKey, &keys.ContraindicationsKey, &keys.BodyParts)
	if err != nil {
		return Keys{}, fmt.Errorf("reading catalogue keys for branch %d: %w", branchID, err)
	}

	if s.cache != nil {
		if raw, jsonErr := json.Marshal(keys); jsonErr == nil {
			s.cache.Set(ctx, cacheKey, raw, s.ttl)
		}
	}
	return keys, nil
}

// ProductName resolves the canonical name for a product_id, for validating
// a client's service choice before it's recorded. Returns ("", false, nil)
// when the product_id doesn't exist.
func (s *Store) ProductName(ctx context.Context, productID string) (string, bool, error) {
	const q = `SELECT product_name FROM catalogue_products WHERE product_id = $1`
	var name string
	err := s.pool.QueryRow(ctx, q, productID).Scan(&name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading product name for %q: %w", productID, err)
	}
	return name, true, nil
}

func (s *Store) cacheSet(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	s.cache.Set(ctx, key, value, s.ttl)
}
