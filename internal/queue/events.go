package queue

import "go.mongodb.org/mongo-driver/bson/primitive"

// Exchange is the topic exchange all account/relationship events go to.
const Exchange = "user.events"

type UserRegistered struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

type UserSignedIn struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Username string             `json:"username"`
}

type FollowerAdded struct {
	FollowerID primitive.ObjectID `json:"follower_id"`
	UserID     primitive.ObjectID `json:"user_id"`
}

type FollowerRemoved struct {
	FollowerID primitive.ObjectID `json:"follower_id"`
	UserID     primitive.ObjectID `json:"user_id"`
}
