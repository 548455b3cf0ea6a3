package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tazhibayda/user-service/internal/apperr"
	"github.com/tazhibayda/user-service/internal/domain"
)

// CreateUser inserts a new user document. Follower lists start empty,
// never nil, so both sides of the relationship are always present.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.Followers == nil {
		u.Followers = []domain.FollowRef{}
	}
	if u.Following == nil {
		u.Following = []domain.FollowRef{}
	}
	u.CreatedAt = time.Now().UTC()

	res, err := s.colUsers.InsertOne(ctx, u)
	if IsDup(err) {
		return apperr.ErrConflict
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *Store) FindUserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"external_id": externalID})
}

// FindUserByIdentifier resolves a tagged identifier to a user document.
func (s *Store) FindUserByIdentifier(ctx context.Context, ident domain.Identifier) (*domain.User, error) {
	switch ident.Kind {
	case domain.KindInternal:
		oid, err := ident.ObjectID()
		if err != nil {
			return nil, fmt.Errorf("invalid internal id %q: %w", ident.Value, err)
		}
		return s.FindUserByID(ctx, oid)
	default:
		return s.FindUserByExternalID(ctx, ident.Value)
	}
}

// UpdateUserProfile applies a self-edit. Empty fields are left untouched.
func (s *Store) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, name, phone, imageKey, imageURL string) error {
	set := bson.M{}
	if name != "" {
		set["name"] = name
	}
	if phone != "" {
		set["phone_number"] = phone
	}
	if imageKey != "" {
		set["image_key"] = imageKey
		set["image_url"] = imageURL
	}
	if len(set) == 0 {
		return nil
	}
	res, err := s.colUsers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
