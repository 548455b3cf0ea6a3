package follow

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/user-service/internal/apperr"
	"github.com/tazhibayda/user-service/internal/queue"
)

func testManager() *Manager {
	return NewManager(nil, queue.NewNoop(), zap.NewNop())
}

func TestSettleOneSideFailed(t *testing.T) {
	m := testManager()
	cause := errors.New("connection reset")

	err := m.settle(context.Background(), "follow", primitive.NewObjectID(), primitive.NewObjectID(),
		apperr.Side{Name: sideFollowers, Applied: true},
		apperr.Side{Name: sideFollowing, Err: cause},
	)

	var pe *apperr.PartialError
	if !errors.As(err, &pe) {
		t.Fatalf("want PartialError, got %T: %v", err, err)
	}
	if pe.Op != "follow" {
		t.Fatalf("op = %s", pe.Op)
	}
	if got := pe.Applied(); len(got) != 1 || got[0] != sideFollowers {
		t.Fatalf("applied = %v", got)
	}
	if got := pe.Failed(); len(got) != 1 || got[0] != sideFollowing {
		t.Fatalf("failed = %v", got)
	}
}

func TestSettleFirstSideFailed(t *testing.T) {
	m := testManager()

	err := m.settle(context.Background(), "unfollow", primitive.NewObjectID(), primitive.NewObjectID(),
		apperr.Side{Name: sideFollowers, Err: errors.New("write timeout")},
		apperr.Side{Name: sideFollowing, Applied: true},
	)

	var pe *apperr.PartialError
	if !errors.As(err, &pe) {
		t.Fatalf("want PartialError, got %T: %v", err, err)
	}
	if got := pe.Applied(); len(got) != 1 || got[0] != sideFollowing {
		t.Fatalf("applied = %v", got)
	}
	if got := pe.Failed(); len(got) != 1 || got[0] != sideFollowers {
		t.Fatalf("failed = %v", got)
	}
}

func TestSettleBothSidesFailed(t *testing.T) {
	m := testManager()
	cause1 := errors.New("primary stepdown")
	cause2 := errors.New("connection reset")

	err := m.settle(context.Background(), "follow", primitive.NewObjectID(), primitive.NewObjectID(),
		apperr.Side{Name: sideFollowers, Err: cause1},
		apperr.Side{Name: sideFollowing, Err: cause2},
	)

	// nothing diverged, so this is an upstream failure, not a partial one
	var pe *apperr.PartialError
	if errors.As(err, &pe) {
		t.Fatalf("both-sides failure misreported as partial: %v", err)
	}
	var up *apperr.Upstream
	if !errors.As(err, &up) {
		t.Fatalf("want Upstream, got %T: %v", err, err)
	}
	if !errors.Is(err, cause1) || !errors.Is(err, cause2) {
		t.Fatalf("causes lost: %v", err)
	}
}

func TestSettleCleanOutcomes(t *testing.T) {
	m := testManager()

	// applied on both sides
	if err := m.settle(context.Background(), "follow", primitive.NewObjectID(), primitive.NewObjectID(),
		apperr.Side{Name: sideFollowers, Applied: true},
		apperr.Side{Name: sideFollowing, Applied: true},
	); err != nil {
		t.Fatalf("applied: %v", err)
	}

	// no-op (relationship already present or already absent)
	if err := m.settle(context.Background(), "unfollow", primitive.NewObjectID(), primitive.NewObjectID(),
		apperr.Side{Name: sideFollowers},
		apperr.Side{Name: sideFollowing},
	); err != nil {
		t.Fatalf("noop: %v", err)
	}
}
