// Package follow implements the two-sided follower/following mutation.
// A follow edge is materialized redundantly on both endpoints' documents
// and Mongo gives no multi-document atomicity here, so both halves are
// always attempted and the per-side outcome is surfaced to the caller.
package follow

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/user-service/internal/apperr"
	"github.com/tazhibayda/user-service/internal/domain"
	ulog "github.com/tazhibayda/user-service/internal/log"
	"github.com/tazhibayda/user-service/internal/metrics"
	"github.com/tazhibayda/user-service/internal/queue"
	"github.com/tazhibayda/user-service/internal/repo"
)

const (
	sideFollowers = "user.followers"
	sideFollowing = "follower.following"
)

type Manager struct {
	store  *repo.Store
	events queue.Publisher
	log    *zap.Logger
}

func NewManager(store *repo.Store, events queue.Publisher, log *zap.Logger) *Manager {
	return &Manager{store: store, events: events, log: log}
}

// AddFollower establishes that follower follows user. The push on each
// document re-checks absence at write time, so calling this twice (or
// concurrently) for the same pair leaves exactly one entry per side.
// Returns the follower's current record.
func (m *Manager) AddFollower(ctx context.Context, followerID, userID primitive.ObjectID, reqID string) (*domain.User, error) {
	if followerID == userID {
		return nil, apperr.Invalid("cannot follow yourself")
	}
	follower, user, err := m.resolvePair(ctx, followerID, userID)
	if err != nil {
		return nil, err
	}

	followerRef := domain.FollowRef{UserID: follower.ID, Name: follower.Name, Username: follower.Username}
	followeeRef := domain.FollowRef{UserID: user.ID, Name: user.Name, Username: user.Username}

	// both halves are attempted regardless of the other's outcome
	appliedFollowers, errFollowers := m.store.PushFollower(ctx, user.ID, followerRef)
	appliedFollowing, errFollowing := m.store.PushFollowing(ctx, follower.ID, followeeRef)

	if err := m.settle(ctx, "follow", followerID, userID,
		apperr.Side{Name: sideFollowers, Applied: appliedFollowers, Err: errFollowers},
		apperr.Side{Name: sideFollowing, Applied: appliedFollowing, Err: errFollowing},
	); err != nil {
		return nil, err
	}

	if appliedFollowers || appliedFollowing {
		m.publish(ctx, "follower.added",
			queue.FollowerAdded{FollowerID: followerID, UserID: userID}, reqID)
	}
	return m.store.FindUserByID(ctx, follower.ID)
}

// RemoveFollower is the inverse mutation. Entries are matched by
// counterpart id only; removing a relationship that does not exist is
// a no-op. Returns the follower's current record.
func (m *Manager) RemoveFollower(ctx context.Context, followerID, userID primitive.ObjectID, reqID string) (*domain.User, error) {
	follower, user, err := m.resolvePair(ctx, followerID, userID)
	if err != nil {
		return nil, err
	}

	removedFollowers, errFollowers := m.store.PullFollower(ctx, user.ID, follower.ID)
	removedFollowing, errFollowing := m.store.PullFollowing(ctx, follower.ID, user.ID)

	if err := m.settle(ctx, "unfollow", followerID, userID,
		apperr.Side{Name: sideFollowers, Applied: removedFollowers, Err: errFollowers},
		apperr.Side{Name: sideFollowing, Applied: removedFollowing, Err: errFollowing},
	); err != nil {
		return nil, err
	}

	if removedFollowers || removedFollowing {
		m.publish(ctx, "follower.removed",
			queue.FollowerRemoved{FollowerID: followerID, UserID: userID}, reqID)
	}
	return m.store.FindUserByID(ctx, follower.ID)
}

func (m *Manager) resolvePair(ctx context.Context, followerID, userID primitive.ObjectID) (*domain.User, *domain.User, error) {
	follower, err := m.store.FindUserByID(ctx, followerID)
	if err != nil {
		return nil, nil, &apperr.Upstream{Op: "find follower", Err: err}
	}
	user, err := m.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, nil, &apperr.Upstream{Op: "find user", Err: err}
	}
	if follower == nil || user == nil {
		return nil, nil, apperr.ErrNotFound
	}
	return follower, user, nil
}

// settle turns the two side outcomes into the error taxonomy: both
// errored is an upstream failure, one errored after the other applied
// is a partial failure the caller must be able to see.
func (m *Manager) settle(ctx context.Context, op string, followerID, userID primitive.ObjectID, a, b apperr.Side) error {
	switch {
	case a.Err != nil && b.Err != nil:
		metrics.FollowUpdatesTotal.WithLabelValues(op, "failed").Inc()
		return &apperr.Upstream{Op: op, Err: errors.Join(a.Err, b.Err)}
	case a.Err != nil || b.Err != nil:
		pe := &apperr.PartialError{Op: op, Sides: []apperr.Side{a, b}}
		metrics.FollowUpdatesTotal.WithLabelValues(op, "partial").Inc()
		ulog.WithDD(ctx, m.log).Error("two-sided update incomplete",
			zap.String("op", op),
			zap.String("follower_id", followerID.Hex()),
			zap.String("user_id", userID.Hex()),
			zap.Strings("applied", pe.Applied()),
			zap.Strings("failed", pe.Failed()),
		)
		return pe
	case a.Applied || b.Applied:
		metrics.FollowUpdatesTotal.WithLabelValues(op, "applied").Inc()
	default:
		metrics.FollowUpdatesTotal.WithLabelValues(op, "noop").Inc()
	}
	return nil
}

func (m *Manager) publish(ctx context.Context, key string, event any, reqID string) {
	if err := m.events.Publish(ctx, queue.Exchange, key, event, reqID); err != nil {
		m.log.Warn("event publish failed", zap.String("key", key), zap.Error(err))
	}
}
