package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account document. An account is identified either by
// username+password_hash (local signup) or by external_id (identity
// asserted by a third-party provider); never neither.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username,omitempty" json:"username,omitempty"`
	Name         string             `bson:"name"          json:"name"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	PhoneNumber  string             `bson:"phone_number,omitempty"  json:"phone_number,omitempty"`
	Email        string             `bson:"email"         json:"email"`
	ImageKey     string             `bson:"image_key,omitempty" json:"-"`
	ImageURL     string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ExternalID   string             `bson:"external_id,omitempty" json:"external_id,omitempty"`
	Followers    []FollowRef        `bson:"followers"     json:"followers"`
	Following    []FollowRef        `bson:"following"     json:"following"`
	CreatedAt    time.Time          `bson:"created_at"    json:"created_at"`
}

// FollowRef is one endpoint of a follow edge, denormalized onto the
// counterpart's document. UserID is the key; name/username are kept
// only for display and are never used for matching.
type FollowRef struct {
	UserID   primitive.ObjectID `bson:"user_id"  json:"user_id"`
	Name     string             `bson:"name"     json:"name"`
	Username string             `bson:"username" json:"username"`
}

// Local reports whether the account carries local credentials.
func (u *User) Local() bool { return u.PasswordHash != "" }
