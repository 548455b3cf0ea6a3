// Package service orchestrates signup, signin and account lookups over
// the user store, the credential/token primitives and object storage.
package service

import (
	"context"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/user-service/internal/apperr"
	"github.com/tazhibayda/user-service/internal/domain"
	"github.com/tazhibayda/user-service/internal/queue"
	"github.com/tazhibayda/user-service/internal/repo"
	"github.com/tazhibayda/user-service/internal/security"
	"github.com/tazhibayda/user-service/internal/storage"
)

type Account struct {
	Store     *repo.Store
	Objects   storage.ObjectStore
	Events    queue.Publisher
	JWTSecret string
	Log       *zap.Logger
}

func NewAccount(store *repo.Store, objects storage.ObjectStore, events queue.Publisher, jwtSecret string, log *zap.Logger) *Account {
	return &Account{Store: store, Objects: objects, Events: events, JWTSecret: jwtSecret, Log: log}
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type SignupInput struct {
	Name            string
	Username        string
	Password        string
	ConfirmPassword string
	PhoneNumber     string
	Email           string
	Image           ImageUpload
}

// Signup validates the form, uploads the avatar, creates the user and
// issues a session token. Nothing is persisted when validation fails.
func (a *Account) Signup(ctx context.Context, in SignupInput, reqID string) (*domain.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateSignup(in); err != nil {
		return nil, "", err
	}

	if existing, err := a.Store.FindUserByUsername(ctx, in.Username); err != nil {
		return nil, "", &apperr.Upstream{Op: "find user", Err: err}
	} else if existing != nil {
		return nil, "", apperr.ErrConflict
	}

	key := storage.AvatarKey(in.Image.Filename)
	if err := a.Objects.Put(ctx, key, in.Image.ContentType, in.Image.Body); err != nil {
		return nil, "", &apperr.Upstream{Op: "image upload", Err: err}
	}
	imageURL, err := a.Objects.SignedGetURL(ctx, key)
	if err != nil {
		return nil, "", &apperr.Upstream{Op: "image url", Err: err}
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, "", &apperr.Upstream{Op: "hash password", Err: err}
	}

	u := &domain.User{
		Username:     in.Username,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		ImageKey:     key,
		ImageURL:     imageURL,
	}
	if err := a.Store.CreateUser(ctx, u); err != nil {
		if err == apperr.ErrConflict {
			return nil, "", err
		}
		return nil, "", &apperr.Upstream{Op: "create user", Err: err}
	}

	token, err := security.MakeAccess(a.JWTSecret, u.ID.Hex(), u.Username, security.AccessTTL)
	if err != nil {
		return nil, "", &apperr.Upstream{Op: "sign token", Err: err}
	}

	a.publish(ctx, "user.registered",
		queue.UserRegistered{UserID: u.ID, Username: u.Username, Email: u.Email}, reqID)
	return u, token, nil
}

// Signin looks the user up by username and compares the password hash.
func (a *Account) Signin(ctx context.Context, username, password, reqID string) (*domain.User, string, error) {
	u, err := a.Store.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", &apperr.Upstream{Op: "find user", Err: err}
	}
	if u == nil {
		return nil, "", apperr.ErrNotFound
	}
	// external-identity accounts carry no password hash and cannot
	// sign in with credentials
	if !u.Local() || !security.CheckPassword(u.PasswordHash, password) {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, err := security.MakeAccess(a.JWTSecret, u.ID.Hex(), u.Username, security.AccessTTL)
	if err != nil {
		return nil, "", &apperr.Upstream{Op: "sign token", Err: err}
	}

	a.publish(ctx, "user.signedin",
		queue.UserSignedIn{UserID: u.ID, Username: u.Username}, reqID)
	return u, token, nil
}

type ExternalProfile struct {
	Name       string
	Email      string
	GivenName  string
	ExternalID string
	ImageURL   string
}

// CreateFromExternalIdentity returns the account bound to the asserted
// external identity, creating it on first login. No password is stored.
func (a *Account) CreateFromExternalIdentity(ctx context.Context, p ExternalProfile, reqID string) (*domain.User, error) {
	if p.ExternalID == "" {
		return nil, apperr.Invalid("external id is required")
	}
	existing, err := a.Store.FindUserByExternalID(ctx, p.ExternalID)
	if err != nil {
		return nil, &apperr.Upstream{Op: "find user", Err: err}
	}
	if existing != nil {
		return existing, nil
	}

	u := &domain.User{
		Name:       p.Name,
		Email:      strings.ToLower(strings.TrimSpace(p.Email)),
		Username:   strings.TrimSpace(p.GivenName),
		ExternalID: p.ExternalID,
		ImageURL:   p.ImageURL,
	}
	if err := a.Store.CreateUser(ctx, u); err != nil {
		if err == apperr.ErrConflict {
			// lost a race with another first login for the same identity
			if u, ferr := a.Store.FindUserByExternalID(ctx, p.ExternalID); ferr == nil && u != nil {
				return u, nil
			}
			return nil, err
		}
		return nil, &apperr.Upstream{Op: "create user", Err: err}
	}

	a.publish(ctx, "user.registered",
		queue.UserRegistered{UserID: u.ID, Username: u.Username, Email: u.Email}, reqID)
	return u, nil
}

// GetUser is a point lookup by internal id.
func (a *Account) GetUser(ctx context.Context, hexID string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hexID))
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	u, err := a.Store.FindUserByID(ctx, oid)
	if err != nil {
		return nil, &apperr.Upstream{Op: "find user", Err: err}
	}
	if u == nil {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

// Resolve looks a user up by a tagged identifier (internal or external).
func (a *Account) Resolve(ctx context.Context, ident domain.Identifier) (*domain.User, error) {
	u, err := a.Store.FindUserByIdentifier(ctx, ident)
	if err != nil {
		return nil, &apperr.Upstream{Op: "find user", Err: err}
	}
	return u, nil
}

type UpdateInput struct {
	Name        string
	PhoneNumber string
	Image       *ImageUpload
}

// UpdateProfile applies a self-edit to the current user.
func (a *Account) UpdateProfile(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*domain.User, error) {
	if in.PhoneNumber != "" && !phoneRe.MatchString(in.PhoneNumber) {
		return nil, apperr.Invalid("Phone number is invalid!")
	}

	var key, url string
	if in.Image != nil && in.Image.Body != nil {
		key = storage.AvatarKey(in.Image.Filename)
		if err := a.Objects.Put(ctx, key, in.Image.ContentType, in.Image.Body); err != nil {
			return nil, &apperr.Upstream{Op: "image upload", Err: err}
		}
		var err error
		if url, err = a.Objects.SignedGetURL(ctx, key); err != nil {
			return nil, &apperr.Upstream{Op: "image url", Err: err}
		}
	}

	if err := a.Store.UpdateUserProfile(ctx, id, strings.TrimSpace(in.Name), in.PhoneNumber, key, url); err != nil {
		if err == apperr.ErrNotFound {
			return nil, err
		}
		return nil, &apperr.Upstream{Op: "update user", Err: err}
	}
	u, err := a.Store.FindUserByID(ctx, id)
	if err != nil {
		return nil, &apperr.Upstream{Op: "find user", Err: err}
	}
	if u == nil {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (a *Account) publish(ctx context.Context, key string, event any, reqID string) {
	if err := a.Events.Publish(ctx, queue.Exchange, key, event, reqID); err != nil {
		a.Log.Warn("event publish failed", zap.String("key", key), zap.Error(err))
	}
}
