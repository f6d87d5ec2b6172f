package follows

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anonto42/nano-midea/followers/internal/cache"
	"github.com/anonto42/nano-midea/followers/internal/counters"
	"github.com/anonto42/nano-midea/followers/internal/events"
	"github.com/anonto42/nano-midea/followers/internal/models"
	"github.com/anonto42/nano-midea/followers/internal/repositories"
	"github.com/anonto42/nano-midea/followers/pkg/metrics"
)

// DefaultCacheTTL bounds how stale a cached follower list can be.
const DefaultCacheTTL = time.Hour

const publishTimeout = 5 * time.Second

// CounterSync adjusts follower/following counts on the identity service.
type CounterSync interface {
	Adjust(ctx context.Context, userID string, field counters.Field, delta int) error
}

// SyncStatus reports the counter adjustments that failed after a commit.
type SyncStatus struct {
	Failures []error
}

func (s SyncStatus) OK() bool { return len(s.Failures) == 0 }

func (s SyncStatus) Err() error { return multierr.Combine(s.Failures...) }

// Outcome is the result of a committed mutation. Committed is true once the
// relationship store has changed, even when Sync reports failures.
type Outcome struct {
	Committed bool
	Follow    *models.Follow
	Sync      SyncStatus
}

// Service is the follow protocol engine. Mutations commit to the relationship
// store first, then adjust remote counters, then invalidate cached lists.
// A counter failure never rolls back the committed edge.
type Service struct {
	repo      repositories.FollowRepository
	counters  CounterSync
	cache     cache.Store
	publisher events.Publisher
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the engine to its three collaborators.
func NewService(repo repositories.FollowRepository, counterSync CounterSync, store cache.Store, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		counters:  counterSync,
		cache:     store,
		publisher: events.NopPublisher{},
		logger:    zap.NewNop(),
		cacheTTL:  DefaultCacheTTL,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Follow makes actorID follow targetID. When the edge is stored but a counter
// adjustment fails, both a committed Outcome and an ErrCounterSyncFailed error
// are returned.
func (s *Service) Follow(ctx context.Context, actorID, targetID string) (outcome *Outcome, err error) {
	defer s.record("follow", &err)

	actorID, targetID = strings.TrimSpace(actorID), strings.TrimSpace(targetID)
	if err := validatePair(actorID, targetID); err != nil {
		return nil, err
	}
	if actorID == targetID {
		return nil, ErrSelfReference
	}

	_, err = s.repo.FindFollow(ctx, actorID, targetID)
	switch {
	case err == nil:
		return nil, ErrAlreadyFollowing
	case !errors.Is(err, repositories.ErrFollowNotFound):
		return nil, s.storeFailure("find follow", err)
	}

	follow := &models.Follow{
		ID:          s.newID(),
		FollowerID:  actorID,
		FollowingID: targetID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrDuplicateFollow) {
			return nil, ErrAlreadyFollowing
		}
		return nil, s.storeFailure("create follow", err)
	}

	return s.afterCommit(ctx, events.TypeFollow, follow, 1)
}

// Unfollow removes the edge actorID -> targetID with the same ordering and
// non-rollback policy as Follow.
func (s *Service) Unfollow(ctx context.Context, actorID, targetID string) (outcome *Outcome, err error) {
	defer s.record("unfollow", &err)

	actorID, targetID = strings.TrimSpace(actorID), strings.TrimSpace(targetID)
	if err := validatePair(actorID, targetID); err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteFollow(ctx, actorID, targetID)
	if err != nil {
		return nil, s.storeFailure("delete follow", err)
	}
	if !deleted {
		return nil, ErrNotFollowing
	}

	follow := &models.Follow{FollowerID: actorID, FollowingID: targetID}
	return s.afterCommit(ctx, events.TypeUnfollow, follow, -1)
}

// CheckStatus reports whether actorID follows targetID. It always reads the store.
func (s *Service) CheckStatus(ctx context.Context, actorID, targetID string) (following bool, err error) {
	defer s.record("check", &err)

	actorID, targetID = strings.TrimSpace(actorID), strings.TrimSpace(targetID)
	if err := validatePair(actorID, targetID); err != nil {
		return false, err
	}
	if actorID == targetID {
		return false, errSelfCheck
	}

	_, err = s.repo.FindFollow(ctx, actorID, targetID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrFollowNotFound):
		return false, nil
	default:
		return false, s.storeFailure("check follow", err)
	}
}

// ListFollowers returns the users following userID, read through the cache.
func (s *Service) ListFollowers(ctx context.Context, userID string) (entries []models.FollowerEntry, err error) {
	defer s.record("list_followers", &err)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingTarget
	}
	return readThrough(ctx, s, cache.FamilyFollowers, cache.FollowersKey(userID), func() ([]models.FollowerEntry, error) {
		follows, err := s.repo.GetFollowers(ctx, userID)
		if err != nil {
			return nil, err
		}
		return models.ToFollowerEntries(follows), nil
	})
}

// ListFollowing returns the users userID follows, read through the cache.
func (s *Service) ListFollowing(ctx context.Context, userID string) (entries []models.FollowingEntry, err error) {
	defer s.record("list_following", &err)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingTarget
	}
	return readThrough(ctx, s, cache.FamilyFollowing, cache.FollowingKey(userID), func() ([]models.FollowingEntry, error) {
		follows, err := s.repo.GetFollowing(ctx, userID)
		if err != nil {
			return nil, err
		}
		return models.ToFollowingEntries(follows), nil
	})
}

// afterCommit runs the post-commit steps. Invalidation and publishing happen
// regardless of the counter outcome and survive caller cancellation.
func (s *Service) afterCommit(ctx context.Context, eventType string, follow *models.Follow, delta int) (*Outcome, error) {
	outcome := &Outcome{Committed: true, Follow: follow}
	outcome.Sync = s.syncCounts(ctx, follow.FollowerID, follow.FollowingID, delta)

	detached := context.WithoutCancel(ctx)
	s.invalidate(detached, follow.FollowerID, follow.FollowingID)
	s.publish(detached, events.FollowEvent{
		Type:         eventType,
		UserID:       follow.FollowerID,
		TargetUserID: follow.FollowingID,
		OccurredAt:   s.now().UTC(),
	})

	if !outcome.Sync.OK() {
		syncErr := outcome.Sync.Err()
		return outcome, &Error{Kind: KindCounterSyncFailed, Message: syncErr.Error(), Err: syncErr}
	}
	return outcome, nil
}

// syncCounts issues both adjustments concurrently and waits for both.
func (s *Service) syncCounts(ctx context.Context, actorID, targetID string, delta int) SyncStatus {
	adjustments := []struct {
		userID string
		field  counters.Field
	}{
		{userID: actorID, field: counters.FieldFollowing},
		{userID: targetID, field: counters.FieldFollowers},
	}

	results := make([]error, len(adjustments))
	var g errgroup.Group
	for i, adj := range adjustments {
		i, adj := i, adj
		g.Go(func() error {
			results[i] = s.counters.Adjust(ctx, adj.userID, adj.field, delta)
			return nil
		})
	}
	_ = g.Wait()

	var status SyncStatus
	for i, err := range results {
		if err == nil {
			continue
		}
		adj := adjustments[i]
		metrics.CounterSyncFailures.WithLabelValues(string(adj.field)).Inc()
		s.logger.Warn("counter sync failed",
			zap.String("user_id", adj.userID),
			zap.String("field", string(adj.field)),
			zap.Int("delta", delta),
			zap.Error(err),
		)
		status.Failures = append(status.Failures, err)
	}
	return status
}

func (s *Service) invalidate(ctx context.Context, actorID, targetID string) {
	keys := []string{cache.FollowersKey(targetID), cache.FollowingKey(actorID)}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, event events.FollowEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("follow event publish failed",
			zap.String("type", event.Type),
			zap.String("user_id", event.UserID),
			zap.String("target_userid", event.TargetUserID),
			zap.Error(err),
		)
	}
}

func (s *Service) storeFailure(op string, err error) error {
	s.logger.Error("relationship store failure", zap.String("op", op), zap.Error(err))
	return &Error{Kind: KindStoreUnavailable, Message: ErrStoreUnavailable.Message, Err: err}
}

func (s *Service) record(operation string, errp *error) {
	result := "ok"
	if e := AsError(*errp); e != nil {
		switch e.Kind {
		case KindCounterSyncFailed:
			result = "sync_failed"
		case KindStoreUnavailable, KindUnknown:
			result = "error"
		default:
			result = "rejected"
		}
	}
	metrics.FollowOperations.WithLabelValues(operation, result).Inc()
}

// readThrough serves key from the cache, falling back to load on a miss, a
// cache error or an undecodable payload. Fresh results are written back with
// the service TTL; a failed write is logged and does not fail the read.
func readThrough[T any](ctx context.Context, s *Service, family, key string, load func() ([]T, error)) ([]T, error) {
	cached, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(family, "error").Inc()
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		var entries []T
		if err := json.Unmarshal(cached, &entries); err == nil && entries != nil {
			metrics.CacheLookups.WithLabelValues(family, "hit").Inc()
			return entries, nil
		}
		metrics.CacheLookups.WithLabelValues(family, "error").Inc()
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	default:
		metrics.CacheLookups.WithLabelValues(family, "miss").Inc()
	}

	entries, err := load()
	if err != nil {
		return nil, s.storeFailure("list "+family, err)
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return entries, nil
	}
	if err := s.cache.PutWithExpiry(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return entries, nil
}

func validatePair(actorID, targetID string) error {
	if actorID == "" {
		return ErrMissingIdentity
	}
	if targetID == "" {
		return ErrMissingTarget
	}
	return nil
}
