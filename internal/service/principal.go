package service

import (
	"sort"

	"github.com/metrilive/internal/db"
)

// Principal is the acting user's identity and authorization set. Every sync
// operation receives it explicitly.
type Principal struct {
	UserID            uint
	Username          string
	Role              db.Role
	FacebookToken     string
	AuthorizedPageIDs map[string]struct{}
}

// NewPrincipal builds a Principal from a user loaded with its AuthorizedPages.
func NewPrincipal(user *db.User) Principal {
	p := Principal{AuthorizedPageIDs: make(map[string]struct{})}
	if user == nil {
		return p
	}
	p.UserID = user.ID
	p.Username = user.Username
	p.Role = user.Role
	p.FacebookToken = user.FacebookAccessToken
	for _, page := range user.AuthorizedPages {
		p.AuthorizedPageIDs[page.ID] = struct{}{}
	}
	return p
}

// IsAdmin reports whether the principal bypasses page checks.
func (p Principal) IsAdmin() bool {
	return p.Role == db.RoleAdmin
}

// PageIDs returns the authorized page ids in sorted order, never nil.
func (p Principal) PageIDs() []string {
	ids := make([]string, 0, len(p.AuthorizedPageIDs))
	for id := range p.AuthorizedPageIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
