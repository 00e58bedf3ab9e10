// Package services contains server-side business logic. This file implements
// UserService: login against both stored hash formats, registration, token
// refresh and profile lookup.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/marketplace/internal/common"
	"github.com/dmitrijs2005/marketplace/internal/dbx"
	"github.com/dmitrijs2005/marketplace/internal/logging"
	"github.com/dmitrijs2005/marketplace/internal/server/auth"
	"github.com/dmitrijs2005/marketplace/internal/server/models"
	"github.com/dmitrijs2005/marketplace/internal/server/password"
	"github.com/dmitrijs2005/marketplace/internal/server/repositories/repomanager"
)

// LoginObserver is told about every login attempt. scheme is the hash
// format that matched ("none" when nothing did).
type LoginObserver interface {
	ObserveLogin(scheme, outcome string)
}

// Login outcomes reported to LoginObserver.
const (
	LoginSucceeded = "success"
	LoginFailed    = "failure"
	LoginErrored   = "error"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    *password.Verifier
	issuer      *auth.Issuer
	logger      logging.Logger
	observer    LoginObserver
	now         func() time.Time
}

// NewUserService wires a UserService. observer may be nil.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, v *password.Verifier, i *auth.Issuer,
	l logging.Logger, o LoginObserver) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		verifier:    v,
		issuer:      i,
		logger:      l.With("module", "user_service"),
		observer:    o,
		now:         time.Now,
	}
}

// Authenticate verifies username and plaintext against the stored hash and
// issues a token pair. An unknown user and a wrong password both yield
// common.ErrInvalidCredentials; store and signing failures yield
// common.ErrorInternal.
func (s *UserService) Authenticate(ctx context.Context, username, plaintext string) (*auth.TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.verifier.VerifyAbsent(ctx, plaintext)
			s.logger.Warn(ctx, "login failed", "username", username, "reason", "unknown user")
			s.observe(password.SchemeNone, LoginFailed)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "username", username, "error", err)
		s.observe(password.SchemeNone, LoginErrored)
		return nil, common.ErrorInternal
	}

	scheme, err := s.verifier.Verify(ctx, plaintext, user.Password)
	if err != nil {
		s.logger.Error(ctx, "password verification aborted", "username", username, "error", err)
		s.observe(password.SchemeNone, LoginErrored)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if scheme == password.SchemeNone {
		s.logger.Warn(ctx, "login failed", "username", username, "reason", "password mismatch")
		s.observe(scheme, LoginFailed)
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "user_id", user.ID, "error", err)
		s.observe(scheme, LoginErrored)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login succeeded", "user_id", user.ID, "scheme", scheme)
	s.observe(scheme, LoginSucceeded)
	return pair, nil
}

// DecodeAccessToken returns the user id carried by a valid access token.
// Failures wrap common.ErrorUnauthorized.
func (s *UserService) DecodeAccessToken(token string) (int64, error) {
	return s.issuer.DecodeAccessToken(token)
}

// RefreshToken exchanges a valid refresh token for a new pair. Nothing is
// stored, so the old refresh token stays valid until it expires.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	userID, err := s.issuer.DecodeRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn(ctx, "refresh rejected", "error", err)
		return nil, err
	}

	pair, err := s.issuer.IssuePair(userID)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// Register creates a user with a modern password hash. Empty fields yield
// common.ErrorValidation and a taken username or email yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, plaintext string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || plaintext == "" {
		return nil, common.ErrorValidation
	}

	hash, err := s.verifier.Hash(ctx, plaintext)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		UserName:   username,
		Email:      email,
		Password:   hash,
		DateJoined: s.now().UTC(),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByUsernameOrEmail(ctx, username, email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrorAlreadyExists
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Warn(ctx, "registration rejected", "username", username, "reason", "username or email taken")
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "registered", "user_id", user.ID, "username", user.UserName)
	return user, nil
}

// Me returns the public profile of userID or common.ErrorNotFound.
func (s *UserService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

func (s *UserService) observe(scheme password.Scheme, outcome string) {
	if s.observer != nil {
		s.observer.ObserveLogin(string(scheme), outcome)
	}
}
