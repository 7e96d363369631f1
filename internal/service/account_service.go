package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/metrilive/internal/db"
	"github.com/metrilive/internal/logging"
)

// AccountService 负责登录校验、加载当前用户的授权信息以及保存 Facebook token。
type AccountService struct {
	users UserStore
	log   zerolog.Logger
}

// NewAccountService returns an account service backed by users.
func NewAccountService(users UserStore) *AccountService {
	return &AccountService{users: users, log: logging.Component("account")}
}

// Authenticate checks username and password and returns the matching principal.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Principal{}, ErrInvalidCredentials
	}

	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return Principal{}, storageFailure("find user", err)
	}
	if user == nil {
		return Principal{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logging.Ctx(ctx, s.log).Warn().Str("user", username).Msg("password mismatch")
		return Principal{}, ErrInvalidCredentials
	}

	return s.LoadPrincipal(ctx, user.ID)
}

// LoadPrincipal rebuilds the principal of userID, including authorized pages.
func (s *AccountService) LoadPrincipal(ctx context.Context, userID uint) (Principal, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return Principal{}, storageFailure("find user", err)
	}
	if user == nil {
		return Principal{}, ErrUserNotFound
	}
	return NewPrincipal(user), nil
}

// SetFacebookToken stores token as the principal's own Graph credential.
func (s *AccountService) SetFacebookToken(ctx context.Context, p Principal, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenRequired
	}

	if err := s.users.UpdateUserToken(ctx, p.UserID, token); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUserNotFound
		}
		return storageFailure("update user token", err)
	}

	logging.Ctx(ctx, s.log).Info().
		Str("user", p.Username).
		Bool("replaced", p.FacebookToken != "" && p.FacebookToken != token).
		Msg("facebook token updated")
	return nil
}
