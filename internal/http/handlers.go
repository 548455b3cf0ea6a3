package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/user-service/internal/apperr"
	"github.com/tazhibayda/user-service/internal/domain"
	"github.com/tazhibayda/user-service/internal/follow"
	"github.com/tazhibayda/user-service/internal/log"
	"github.com/tazhibayda/user-service/internal/oauth"
	"github.com/tazhibayda/user-service/internal/repo"
	"github.com/tazhibayda/user-service/internal/service"
)

type Handler struct {
	Account         *service.Account
	Follow          *follow.Manager
	Store           *repo.Store
	Redis           *repo.Redis
	RateLimitPerMin int
	Google          *oauth.Verifier
	JWTSecret       string
}

func NewHandler(acct *service.Account, fm *follow.Manager, store *repo.Store, rds *repo.Redis, rlPerMin int, google *oauth.Verifier, jwtSecret string) *Handler {
	return &Handler{
		Account:         acct,
		Follow:          fm,
		Store:           store,
		Redis:           rds,
		RateLimitPerMin: rlPerMin,
		Google:          google,
		JWTSecret:       jwtSecret,
	}
}

func reqID(c *gin.Context) string { return c.GetString(requestIDKey) }

// Signup godoc
// @Summary Register with username/password and profile image
// @Tags users
// @Accept mpfd
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /api/users/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "profile image is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot read image"})
		return
	}
	defer f.Close()

	in := service.SignupInput{
		Name:            c.PostForm("name"),
		Username:        c.PostForm("username"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
		PhoneNumber:     c.PostForm("phoneNumber"),
		Email:           c.PostForm("emailId"),
		Image: service.ImageUpload{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Body:        f,
		},
	}

	u, token, err := h.Account.Signup(c.Request.Context(), in, reqID(c))
	if err != nil {
		switch {
		case apperr.IsInvalid(err):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, apperr.ErrConflict):
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists!"})
		default:
			log.L.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "signup failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": u, "token": token})
}

type signinReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signin godoc
// @Summary Sign in with username/password
// @Tags users
// @Accept json
// @Produce json
// @Param payload body signinReq true "credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/users/signin [post]
func (h *Handler) Signin(c *gin.Context) {
	var in signinReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	u, token, err := h.Account.Signin(c.Request.Context(), in.Username, in.Password, reqID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User doesn't exist!"})
		case errors.Is(err, apperr.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Credentials!"})
		default:
			log.L.Error("signin failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "signin failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": u, "token": token})
}

type externalReq struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	GivenName string `json:"givenName"`
	GoogleID  string `json:"googleId"`
	ImageURL  string `json:"imageUrl"`
	IDToken   string `json:"idToken"` // optional Google id_token assertion
}

// CreateExternal godoc
// @Summary Resolve or create an account from an external identity
// @Tags users
// @Accept json
// @Produce json
// @Param payload body externalReq true "external profile"
// @Success 203 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /api/users/external [post]
func (h *Handler) CreateExternal(c *gin.Context) {
	var in externalReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "invalid json"})
		return
	}

	p := service.ExternalProfile{
		Name:       in.Name,
		Email:      in.Email,
		GivenName:  in.GivenName,
		ExternalID: in.GoogleID,
		ImageURL:   in.ImageURL,
	}
	// when the client sends the raw assertion, trust its claims over the body
	if in.IDToken != "" && h.Google != nil {
		ident, err := h.Google.VerifyAssertion(in.IDToken)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"message": "invalid identity assertion"})
			return
		}
		p = service.ExternalProfile{
			Name:       ident.Name,
			Email:      ident.Email,
			GivenName:  ident.GivenName,
			ExternalID: ident.Sub,
			ImageURL:   ident.Picture,
		}
	}

	u, err := h.Account.CreateFromExternalIdentity(c.Request.Context(), p, reqID(c))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusNonAuthoritativeInfo, gin.H{"result": u})
}

type specificReq struct {
	Data string `json:"data"`
	Kind string `json:"kind"` // "internal" | "external"; optional
}

// GetSpecificUser godoc
// @Summary Look up a user by tagged identifier
// @Tags users
// @Accept json
// @Produce json
// @Param payload body specificReq true "identifier"
// @Success 200 {object} map[string]any
// @Router /api/users/specific [post]
func (h *Handler) GetSpecificUser(c *gin.Context) {
	var in specificReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	ident, err := domain.ParseIdentifier(in.Kind, in.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	u, err := h.Account.Resolve(c.Request.Context(), ident)
	if err != nil {
		log.L.Error("lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": u})
}

type followReq struct {
	Follower string `json:"follower"`
	User     string `json:"user"`
}

func parseFollowReq(c *gin.Context) (followerID, userID primitive.ObjectID, ok bool) {
	var in followReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "invalid json"})
		return followerID, userID, false
	}
	followerID, err := primitive.ObjectIDFromHex(in.Follower)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "invalid follower id"})
		return followerID, userID, false
	}
	userID, err = primitive.ObjectIDFromHex(in.User)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "invalid user id"})
		return followerID, userID, false
	}
	return followerID, userID, true
}

func followError(c *gin.Context, err error) {
	var pe *apperr.PartialError
	if errors.As(err, &pe) {
		// expose which side applied so the caller can reconcile or retry
		c.JSON(http.StatusForbidden, gin.H{
			"message": pe.Error(),
			"applied": pe.Applied(),
			"failed":  pe.Failed(),
		})
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
}

// AddFollower godoc
// @Summary Follower starts following user
// @Tags follow
// @Accept json
// @Produce json
// @Param payload body followReq true "follower and user ids"
// @Success 203 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /api/users/follow [post]
func (h *Handler) AddFollower(c *gin.Context) {
	followerID, userID, ok := parseFollowReq(c)
	if !ok {
		return
	}
	u, err := h.Follow.AddFollower(c.Request.Context(), followerID, userID, reqID(c))
	if err != nil {
		followError(c, err)
		return
	}
	c.JSON(http.StatusNonAuthoritativeInfo, gin.H{"result": u})
}

// RemoveFollower godoc
// @Summary Follower stops following user
// @Tags follow
// @Accept json
// @Produce json
// @Param payload body followReq true "follower and user ids"
// @Success 203 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /api/users/unfollow [post]
func (h *Handler) RemoveFollower(c *gin.Context) {
	followerID, userID, ok := parseFollowReq(c)
	if !ok {
		return
	}
	u, err := h.Follow.RemoveFollower(c.Request.Context(), followerID, userID, reqID(c))
	if err != nil {
		followError(c, err)
		return
	}
	c.JSON(http.StatusNonAuthoritativeInfo, gin.H{"result": u})
}

// GetUser godoc
// @Summary Fetch a user by id
// @Tags users
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} domain.User
// @Failure 404 {object} map[string]string
// @Router /api/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.Account.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		log.L.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func currentUser(c *gin.Context) (AuthUser, bool) {
	v, ok := c.Get(authUserKey)
	if !ok {
		return AuthUser{}, false
	}
	au, ok := v.(AuthUser)
	return au, ok
}

// Me godoc
// @Summary Current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} map[string]string
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	au, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}
	u, err := h.Account.GetUser(c.Request.Context(), au.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateMeReq struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateMe godoc
// @Summary Edit current user's profile
// @Tags users
// @Security BearerAuth
// @Accept json
// @Accept mpfd
// @Produce json
// @Param payload body updateMeReq true "fields to change"
// @Success 200 {object} domain.User
// @Failure 400 {object} map[string]string
// @Router /api/auth/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	au, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}
	oid, err := primitive.ObjectIDFromHex(au.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return
	}

	var in service.UpdateInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		// multipart carries the same fields plus an optional new avatar
		in.Name = c.PostForm("name")
		in.PhoneNumber = c.PostForm("phoneNumber")
		if file, err := c.FormFile("image"); err == nil {
			f, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "cannot read image"})
				return
			}
			defer f.Close()
			in.Image = &service.ImageUpload{
				Filename:    file.Filename,
				ContentType: file.Header.Get("Content-Type"),
				Body:        f,
			}
		}
	} else {
		var body updateMeReq
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
			return
		}
		in.Name = body.Name
		in.PhoneNumber = body.PhoneNumber
	}

	u, err := h.Account.UpdateProfile(c.Request.Context(), oid, in)
	if err != nil {
		switch {
		case apperr.IsInvalid(err):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, apperr.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		default:
			log.L.Error("update profile failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
