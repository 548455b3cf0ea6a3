package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/user-service/internal/domain"
)

// The four mutations below are the two halves of the follow/unfollow
// edge. Each push filters on the counterpart id being absent, so the
// duplicate check happens at write time and a read-then-write race
// cannot produce a second entry. Returns (applied, err); applied=false
// with nil err means the document either already had the entry or does
// not exist — callers resolve existence before mutating.

func (s *Store) PushFollower(ctx context.Context, userID primitive.ObjectID, ref domain.FollowRef) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.push_follower",
		tracer.Tag("user_id", userID.Hex()),
	)
	defer sp.Finish()

	res, err := s.colUsers.UpdateOne(ctx,
		bson.M{"_id": userID, "followers.user_id": bson.M{"$ne": ref.UserID}},
		bson.M{"$push": bson.M{"followers": ref}},
	)
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *Store) PushFollowing(ctx context.Context, userID primitive.ObjectID, ref domain.FollowRef) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.push_following",
		tracer.Tag("user_id", userID.Hex()),
	)
	defer sp.Finish()

	res, err := s.colUsers.UpdateOne(ctx,
		bson.M{"_id": userID, "following.user_id": bson.M{"$ne": ref.UserID}},
		bson.M{"$push": bson.M{"following": ref}},
	)
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// Pulls match by counterpart id only; denormalized name/username are
// display data and must not affect removal.

func (s *Store) PullFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.pull_follower",
		tracer.Tag("user_id", userID.Hex()),
	)
	defer sp.Finish()

	res, err := s.colUsers.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"followers": bson.M{"user_id": followerID}}},
	)
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *Store) PullFollowing(ctx context.Context, userID, followeeID primitive.ObjectID) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.pull_following",
		tracer.Tag("user_id", userID.Hex()),
	)
	defer sp.Finish()

	res, err := s.colUsers.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"following": bson.M{"user_id": followeeID}}},
	)
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
