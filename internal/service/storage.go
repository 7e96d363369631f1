package service

import (
	"context"

	"github.com/metrilive/internal/db"
)

// GraphAPI is the subset of the Graph client the sync pipelines use.
// FetchConnection decodes every node of a connection into out (a pointer to
// a slice); FetchObject decodes one node, honouring an optional field
// projection.
type GraphAPI interface {
	FetchConnection(ctx context.Context, token, path string, out any) error
	FetchObject(ctx context.Context, token, id string, fields []string, out any) error
}

// Storage is the persistence contract of the sync pipelines. Find* return
// (nil, nil) when the row does not exist.
type Storage interface {
	AdminTokenFinder

	FindPage(ctx context.Context, id string) (*db.FacebookPage, error)
	ListPages(ctx context.Context) ([]db.FacebookPage, error)
	UpsertPage(ctx context.Context, page *db.FacebookPage, claimOwner bool) error

	FindVideo(ctx context.Context, id string) (*db.LiveVideo, error)
	ListVideos(ctx context.Context, pageIDs []string) ([]db.LiveVideo, error)
	UpsertVideo(ctx context.Context, video *db.LiveVideo) error
	UpsertVideoDetails(ctx context.Context, video *db.LiveVideo) error

	UpsertComment(ctx context.Context, comment *db.Comment) error

	AppendMetric(ctx context.Context, metric *db.VideoMetric) error
	ListMetrics(ctx context.Context, videoID string) ([]db.VideoMetric, error)
}

// UserStore is the persistence contract of AccountService.
type UserStore interface {
	FindUser(ctx context.Context, id uint) (*db.User, error)
	FindUserByUsername(ctx context.Context, username string) (*db.User, error)
	UpdateUserToken(ctx context.Context, userID uint, token string) error
}
