package service

import (
	"context"

	"github.com/metrilive/internal/db"
)

// AdminTokenFinder looks up the fallback administrator credential.
type AdminTokenFinder interface {
	FirstAdminWithToken(ctx context.Context) (*db.User, error)
}

// TokenResolver picks the Facebook access token used on a user's behalf.
type TokenResolver struct {
	admins AdminTokenFinder
}

// NewTokenResolver returns a resolver backed by the given admin lookup.
func NewTokenResolver(admins AdminTokenFinder) *TokenResolver {
	return &TokenResolver{admins: admins}
}

// Resolve returns the principal's own token when set, otherwise the token of
// the first administrator holding one.
func (r *TokenResolver) Resolve(ctx context.Context, p Principal) (string, error) {
	if p.FacebookToken != "" {
		return p.FacebookToken, nil
	}

	admin, err := r.admins.FirstAdminWithToken(ctx)
	if err != nil {
		return "", storageFailure("find admin token", err)
	}
	if admin == nil || admin.FacebookAccessToken == "" {
		return "", ErrNoCredentialAvailable
	}
	return admin.FacebookAccessToken, nil
}
