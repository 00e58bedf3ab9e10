package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/marketplace/internal/common"
	"github.com/dmitrijs2005/marketplace/internal/logging"
	"github.com/dmitrijs2005/marketplace/internal/server/auth"
	"github.com/dmitrijs2005/marketplace/internal/server/models"
	"github.com/dmitrijs2005/marketplace/internal/server/password"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Authenticate(ctx context.Context, username, password string) (*auth.TokenPair, error)
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	DecodeAccessToken(token string) (int64, error)
}

type MediaService interface {
	ProfileImageUploadURL(ctx context.Context, userID int64) (string, string, error)
}

type Handler struct {
	users  UserService
	media  MediaService
	logger logging.Logger
}

func NewHandler(us UserService, ms MediaService, l logging.Logger) *Handler {
	return &Handler{users: us, media: ms, logger: l.With("module", "http_handler")}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type registrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type meResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
}

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func messageBody(msg string) gin.H { return gin.H{"message": msg} }
func detailBody(msg string) gin.H  { return gin.H{"detail": msg} }

// Login handles POST /api/users/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, messageBody("Invalid credentials"))
		return
	}

	pair, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, messageBody("Invalid credentials"))
			return
		}
		c.JSON(http.StatusInternalServerError, messageBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

// Register handles POST /api/users/registration.
func (h *Handler) Register(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, detailBody("All fields are required."))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, detailBody("Password is too long."))
		case errors.Is(err, common.ErrorValidation):
			c.JSON(http.StatusBadRequest, detailBody("All fields are required."))
		case errors.Is(err, common.ErrorAlreadyExists):
			c.JSON(http.StatusBadRequest, detailBody("Username or email already exists."))
		default:
			h.logger.Error(c.Request.Context(), "registration failed", "error", err)
			c.JSON(http.StatusInternalServerError, detailBody("Server error."))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"detail": "User registered successfully!", "id": user.ID})
}

// RefreshToken handles POST /api/users/token/refresh.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		c.JSON(http.StatusUnauthorized, messageBody("Unauthorized"))
		return
	}

	pair, err := h.users.RefreshToken(c.Request.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, messageBody("Unauthorized"))
			return
		}
		c.JSON(http.StatusInternalServerError, messageBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

// Me handles GET /api/users/me.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, messageBody("Unauthorized"))
		return
	}

	user, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, messageBody("User not found"))
			return
		}
		h.logger.Error(c.Request.Context(), "user lookup failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, messageBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, meResponse{
		ID:         user.ID,
		Username:   user.UserName,
		Email:      user.Email,
		DateJoined: user.DateJoined,
	})
}

// ImageUploadURL handles POST /api/users/me/image-upload-url.
func (h *Handler) ImageUploadURL(c *gin.Context) {
	userID, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, messageBody("Unauthorized"))
		return
	}

	key, url, err := h.media.ProfileImageUploadURL(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, messageBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, uploadURLResponse{Key: key, URL: url})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
