package redis

import (
	"context"
	"errors"
	"time"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/pkg/circuitbreaker"
	"github.com/sync-campus/sync-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHED PROFILE STORE
// GetProfile always reads the store: the controller builds absolute-value
// patches from it. Cached profiles are served only by GetProfileSnapshot,
// for reads that never feed a write. Writes: store → invalidate.
// Buddy collections are not cached. Cache calls go through a circuit
// breaker; while it is open the decorator talks to the store only and
// entries written before the outage expire by TTL.
// ══════════════════════════════════════════════════════════════════════════════

// ProfileCache is the subset of Cache used by CachedStore.
type ProfileCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedStore decorates a profile.Store with a read-through cache for
// GetProfileSnapshot and LookupUsername. Cache failures never fail a request;
// the store stays the source of truth.
type CachedStore struct {
	profile.Store
	cache   ProfileCache
	ttl     time.Duration
	log     *logger.Logger
	breaker *circuitbreaker.CircuitBreaker
}

// cachedTransactor adds WithinTx when the wrapped store supports it.
type cachedTransactor struct {
	*CachedStore
	tx profile.Transactor
}

// NewCachedStore wraps inner. The result implements profile.Transactor only
// if inner does.
func NewCachedStore(inner profile.Store, cache ProfileCache, ttl time.Duration, log *logger.Logger) profile.Store {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("profile_cache"))
	cs := &CachedStore{
		Store: inner,
		cache: cache,
		ttl:   ttl,
		log:   log,
		breaker: circuitbreaker.CacheBreaker(
			func(err error) bool { return errors.Is(err, ErrCacheMiss) },
			func(name string, from, to circuitbreaker.State) {
				log.Warn("cache circuit state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			},
		),
	}
	if tx, ok := inner.(profile.Transactor); ok {
		return &cachedTransactor{CachedStore: cs, tx: tx}
	}
	return cs
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetProfile implements profile.Store. It never consults the cache.
func (s *CachedStore) GetProfile(ctx context.Context, id string) (*profile.UserProfile, error) {
	return s.Store.GetProfile(ctx, id)
}

// GetProfileSnapshot implements profile.SnapshotReader. The result may lag
// the store by up to the cache TTL.
func (s *CachedStore) GetProfileSnapshot(ctx context.Context, id string) (*profile.UserProfile, error) {
	key := ProfileKey(id)

	var cached profile.UserProfile
	switch err := s.get(ctx, key, &cached); {
	case err == nil:
		if cached.LastCheckInDates == nil {
			cached.LastCheckInDates = map[string]string{}
		}
		return &cached, nil
	case !errors.Is(err, ErrCacheMiss) && !circuitbreaker.IsRejected(err):
		s.log.Warn("cache read failed", logger.String("key", key), logger.Err(err))
	}

	p, err := s.Store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, p)
	return p, nil
}

// LookupUsername implements profile.Store.
func (s *CachedStore) LookupUsername(ctx context.Context, usernameLower string) (string, error) {
	key := UsernameKey(usernameLower)

	var owner string
	switch err := s.get(ctx, key, &owner); {
	case err == nil:
		return owner, nil
	case !errors.Is(err, ErrCacheMiss) && !circuitbreaker.IsRejected(err):
		s.log.Warn("cache read failed", logger.String("key", key), logger.Err(err))
	}

	owner, err := s.Store.LookupUsername(ctx, usernameLower)
	if err != nil {
		return "", err
	}
	s.fill(ctx, key, owner)
	return owner, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// CreateProfile implements profile.Store.
func (s *CachedStore) CreateProfile(ctx context.Context, p *profile.UserProfile) error {
	defer s.invalidate(ctx, ProfileKey(p.ID))
	return s.Store.CreateProfile(ctx, p)
}

// UpdateProfile implements profile.Store.
func (s *CachedStore) UpdateProfile(ctx context.Context, id string, patch profile.Patch) error {
	defer s.invalidate(ctx, ProfileKey(id))
	return s.Store.UpdateProfile(ctx, id, patch)
}

// DeleteProfile implements profile.Store.
func (s *CachedStore) DeleteProfile(ctx context.Context, id string) error {
	defer s.invalidate(ctx, ProfileKey(id))
	return s.Store.DeleteProfile(ctx, id)
}

// ReserveUsername implements profile.Store.
func (s *CachedStore) ReserveUsername(ctx context.Context, usernameLower, id string) error {
	defer s.invalidate(ctx, UsernameKey(usernameLower))
	return s.Store.ReserveUsername(ctx, usernameLower, id)
}

// ReleaseUsername implements profile.Store.
func (s *CachedStore) ReleaseUsername(ctx context.Context, usernameLower string) error {
	defer s.invalidate(ctx, UsernameKey(usernameLower))
	return s.Store.ReleaseUsername(ctx, usernameLower)
}

// ─────────────────────────────────────────────────────────────────────────────
// Transactions
// ─────────────────────────────────────────────────────────────────────────────

// WithinTx runs fn in the wrapped store's transaction. Reads inside the
// transaction bypass the cache; keys written inside it are invalidated once
// the transaction has finished.
func (s *cachedTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx profile.Store) error) error {
	var touched []string
	err := s.tx.WithinTx(ctx, func(ctx context.Context, inner profile.Store) error {
		return fn(ctx, &recordingStore{Store: inner, touched: &touched})
	})
	s.invalidate(ctx, touched...)
	return err
}

// recordingStore collects the cache keys affected by writes in a transaction.
type recordingStore struct {
	profile.Store
	touched *[]string
}

func (r *recordingStore) CreateProfile(ctx context.Context, p *profile.UserProfile) error {
	*r.touched = append(*r.touched, ProfileKey(p.ID))
	return r.Store.CreateProfile(ctx, p)
}

func (r *recordingStore) UpdateProfile(ctx context.Context, id string, patch profile.Patch) error {
	*r.touched = append(*r.touched, ProfileKey(id))
	return r.Store.UpdateProfile(ctx, id, patch)
}

func (r *recordingStore) DeleteProfile(ctx context.Context, id string) error {
	*r.touched = append(*r.touched, ProfileKey(id))
	return r.Store.DeleteProfile(ctx, id)
}

func (r *recordingStore) ReserveUsername(ctx context.Context, usernameLower, id string) error {
	*r.touched = append(*r.touched, UsernameKey(usernameLower))
	return r.Store.ReserveUsername(ctx, usernameLower, id)
}

func (r *recordingStore) ReleaseUsername(ctx context.Context, usernameLower string) error {
	*r.touched = append(*r.touched, UsernameKey(usernameLower))
	return r.Store.ReleaseUsername(ctx, usernameLower)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (s *CachedStore) get(ctx context.Context, key string, dest interface{}) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Get(ctx, key, dest)
	})
}

func (s *CachedStore) fill(ctx context.Context, key string, value interface{}) {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Set(ctx, key, value, s.ttl)
	})
	if err != nil && !circuitbreaker.IsRejected(err) {
		s.log.Warn("cache write failed", logger.String("key", key), logger.Err(err))
	}
}

func (s *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Delete(ctx, keys...)
	})
	if err != nil && !circuitbreaker.IsRejected(err) {
		s.log.Warn("cache invalidation failed", logger.Any("keys", keys), logger.Err(err))
	}
}
