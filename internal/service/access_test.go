package service

import (
	"context"
	"errors"
	"testing"

	"github.com/metrilive/internal/db"
)

func principalFor(role db.Role, token string, pageIDs ...string) Principal {
	p := Principal{UserID: 1, Username: "u", Role: role, FacebookToken: token, AuthorizedPageIDs: map[string]struct{}{}}
	for _, id := range pageIDs {
		p.AuthorizedPageIDs[id] = struct{}{}
	}
	return p
}

func TestAuthorizePage(t *testing.T) {
	user := principalFor(db.RoleUser, "", "p1", "p2")
	admin := principalFor(db.RoleAdmin, "")

	for _, pageID := range []string{"p1", "p2", "p3", ""} {
		_, member := user.AuthorizedPageIDs[pageID]
		err := AuthorizePage(user, pageID)
		if member && err != nil {
			t.Fatalf("expected %q to be allowed, got %v", pageID, err)
		}
		if !member && !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("expected %q to be denied, got %v", pageID, err)
		}
		if err := AuthorizePage(admin, pageID); err != nil {
			t.Fatalf("expected admin to pass for %q, got %v", pageID, err)
		}
	}
}

func TestFilterVideosKeepsAuthorizedPagesOnly(t *testing.T) {
	videos := []db.LiveVideo{{ID: "v1", PageID: "p1"}, {ID: "v2", PageID: "p2"}, {ID: "v3", PageID: "p1"}}

	filtered := FilterVideos(principalFor(db.RoleUser, "", "p1"), videos)
	if len(filtered) != 2 || filtered[0].ID != "v1" || filtered[1].ID != "v3" {
		t.Fatalf("unexpected filtered videos %+v", filtered)
	}

	if got := FilterVideos(principalFor(db.RoleUser, ""), videos); len(got) != 0 {
		t.Fatalf("expected no videos for empty authorized set, got %d", len(got))
	}
	if got := FilterVideos(principalFor(db.RoleAdmin, ""), videos); len(got) != 3 {
		t.Fatalf("expected admin to keep every video, got %d", len(got))
	}
}

func TestPrincipalPageIDsSortedAndNeverNil(t *testing.T) {
	if ids := NewPrincipal(nil).PageIDs(); ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", ids)
	}

	ids := principalFor(db.RoleUser, "", "p3", "p1", "p2").PageIDs()
	if len(ids) != 3 || ids[0] != "p1" || ids[2] != "p3" {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
}

type stubAdmins struct {
	admin *db.User
	err   error
	calls int
}

func (s *stubAdmins) FirstAdminWithToken(context.Context) (*db.User, error) {
	s.calls++
	return s.admin, s.err
}

func TestTokenResolverPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("own token wins", func(t *testing.T) {
		admins := &stubAdmins{admin: &db.User{FacebookAccessToken: "admin"}}
		token, err := NewTokenResolver(admins).Resolve(ctx, principalFor(db.RoleUser, "own"))
		if err != nil || token != "own" {
			t.Fatalf("expected own token, got %q, %v", token, err)
		}
		if admins.calls != 0 {
			t.Fatal("expected no admin lookup when the user has a token")
		}
	})

	t.Run("admin fallback", func(t *testing.T) {
		admins := &stubAdmins{admin: &db.User{FacebookAccessToken: "admin"}}
		token, err := NewTokenResolver(admins).Resolve(ctx, principalFor(db.RoleUser, ""))
		if err != nil || token != "admin" {
			t.Fatalf("expected admin token, got %q, %v", token, err)
		}
	})

	t.Run("no credential", func(t *testing.T) {
		_, err := NewTokenResolver(&stubAdmins{}).Resolve(ctx, principalFor(db.RoleAdmin, ""))
		if !errors.Is(err, ErrNoCredentialAvailable) {
			t.Fatalf("expected ErrNoCredentialAvailable, got %v", err)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		boom := errors.New("disk gone")
		_, err := NewTokenResolver(&stubAdmins{err: boom}).Resolve(ctx, principalFor(db.RoleUser, ""))
		var serr *StorageError
		if !errors.As(err, &serr) || !errors.Is(err, boom) {
			t.Fatalf("expected wrapped StorageError, got %v", err)
		}
	})
}

func TestTokenResolverUsesLowestAdminWithToken(t *testing.T) {
	store := setupServiceTestStore(t)
	seedPrincipal(t, store, "admin-empty", db.RoleAdmin, "")
	seedPrincipal(t, store, "user-with-token", db.RoleUser, "user-token")
	seedPrincipal(t, store, "admin-a", db.RoleAdmin, "token-a")
	seedPrincipal(t, store, "admin-b", db.RoleAdmin, "token-b")

	token, err := NewTokenResolver(store).Resolve(context.Background(), principalFor(db.RoleUser, ""))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if token != "token-a" {
		t.Fatalf("expected first admin token, got %q", token)
	}
}
