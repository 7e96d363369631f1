package service

import "github.com/metrilive/internal/db"

// AuthorizePage lets admins through and requires pageID to be in the
// authorized set for everyone else.
func AuthorizePage(p Principal, pageID string) error {
	if p.IsAdmin() {
		return nil
	}
	if _, ok := p.AuthorizedPageIDs[pageID]; ok {
		return nil
	}
	return ErrAccessDenied
}

// FilterPages drops pages the principal may not read.
func FilterPages(p Principal, pages []db.FacebookPage) []db.FacebookPage {
	return filterByPage(p, pages, func(page db.FacebookPage) string { return page.ID })
}

// FilterVideos drops videos whose page the principal may not read.
func FilterVideos(p Principal, videos []db.LiveVideo) []db.LiveVideo {
	return filterByPage(p, videos, func(video db.LiveVideo) string { return video.PageID })
}

func filterByPage[T any](p Principal, items []T, pageOf func(T) string) []T {
	if p.IsAdmin() {
		return items
	}
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if AuthorizePage(p, pageOf(item)) == nil {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
