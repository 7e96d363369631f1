package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/metrilive/internal/db"
	"github.com/metrilive/internal/facebook"
	"github.com/metrilive/internal/logging"
	"github.com/metrilive/internal/metrics"
)

const (
	accountsPath       = "me/accounts"
	selfObjectID       = "me"
	untitledVideoTitle = "Untitled video"
)

// FacebookService runs the page, live video, comment and URL sync pipelines.
// Each call runs Authorize → Resolve credential → Fetch → Validate → Persist
// → Snapshot; a failing step stops the call and earlier writes stay.
type FacebookService struct {
	store  Storage
	graph  GraphAPI
	tokens *TokenResolver
	now    func() time.Time
	log    zerolog.Logger
}

// NewFacebookService wires the sync pipelines to storage and the Graph client.
func NewFacebookService(store Storage, graph GraphAPI) *FacebookService {
	return &FacebookService{
		store:  store,
		graph:  graph,
		tokens: NewTokenResolver(store),
		now:    time.Now,
		log:    logging.Component("facebook_sync"),
	}
}

// WithClock 允许在测试中固定快照的采集时间。
func (s *FacebookService) WithClock(now func() time.Time) *FacebookService {
	if now == nil {
		return s
	}
	s.now = now
	return s
}

// SyncPages lists the pages reachable with the resolved token and stores
// them. A page token cannot list me/accounts (Graph code 100); in that case
// the token's own object is fetched once and used as the only page.
// Non-admins only get back pages in their authorized set.
func (s *FacebookService) SyncPages(ctx context.Context, p Principal) (pages []db.FacebookPage, err error) {
	defer func() { metrics.RecordSync("pages", err) }()
	log := logging.Ctx(ctx, s.log)
	log.Info().Str("user", p.Username).Msg("fetching facebook pages")

	token, err := s.tokens.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	remote, err := s.fetchAccounts(ctx, token)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(remote)).Msg("facebook pages fetched")

	var owner *uint
	if p.UserID != 0 {
		id := p.UserID
		owner = &id
	}

	pages = make([]db.FacebookPage, 0, len(remote))
	for _, fp := range remote {
		name := providerText(fp.Name)
		record := db.FacebookPage{ID: fp.ID, Name: name, OwnerID: owner}
		if err := s.store.UpsertPage(ctx, &record, false); err != nil {
			return nil, storageFailure("save page", err)
		}
		pages = append(pages, db.FacebookPage{ID: fp.ID, Name: name})
	}

	return FilterPages(p, pages), nil
}

func (s *FacebookService) fetchAccounts(ctx context.Context, token string) ([]facebook.Page, error) {
	var pages []facebook.Page
	err := s.graph.FetchConnection(ctx, token, accountsPath, &pages)
	if err == nil {
		return pages, nil
	}

	gerr, ok := facebook.AsGraphError(err)
	if !ok || !gerr.IsUnsupportedOperation() {
		return nil, newProviderError("fetch pages", err)
	}

	metrics.SyncFallbacks.Inc()
	logging.Ctx(ctx, s.log).Info().Int("code", gerr.Code).Msg("me/accounts unsupported for token, fetching token page instead")

	var self facebook.Page
	if err := s.graph.FetchObject(ctx, token, selfObjectID, nil, &self); err != nil {
		return nil, newProviderError("fetch token page", err)
	}
	return []facebook.Page{self}, nil
}

// SyncLiveVideos fetches the live videos of pageID. When the page is stored
// locally each video is upserted and gets a metric snapshot; otherwise the
// videos are only returned. The live_videos edge carries no counters, so a
// stored video keeps the counters of its last URL sync and the snapshot
// repeats them.
func (s *FacebookService) SyncLiveVideos(ctx context.Context, p Principal, pageID string) (videos []db.LiveVideo, err error) {
	defer func() { metrics.RecordSync("live_videos", err) }()
	log := logging.Ctx(ctx, s.log)

	if err := AuthorizePage(p, pageID); err != nil {
		log.Warn().Str("user", p.Username).Str("page_id", pageID).Msg("live video sync denied")
		return nil, err
	}

	token, err := s.tokens.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	log.Info().Str("page_id", pageID).Msg("fetching live videos")
	var remote []facebook.LiveVideo
	if err := s.graph.FetchConnection(ctx, token, pageID+"/live_videos", &remote); err != nil {
		return nil, newProviderError("fetch live videos", err)
	}
	log.Info().Str("page_id", pageID).Int("count", len(remote)).Msg("live videos fetched")

	parent, err := s.store.FindPage(ctx, pageID)
	if err != nil {
		return nil, storageFailure("find page", err)
	}
	if parent == nil && len(remote) > 0 {
		log.Warn().Str("page_id", pageID).Msg("page not stored locally, live videos will not be persisted")
	}

	videos = make([]db.LiveVideo, 0, len(remote))
	for _, lv := range remote {
		video := db.LiveVideo{
			ID:           lv.ID,
			PageID:       pageID,
			Title:        providerText(lv.Title),
			Description:  providerText(lv.Description),
			CreationTime: lv.CreationTime.Ptr(),
		}
		if parent != nil {
			stored, err := s.saveVideoDetails(ctx, &video)
			if err != nil {
				return nil, err
			}
			video = *stored
		}
		videos = append(videos, video)
	}

	return videos, nil
}

// SyncComments fetches the comments of videoID. A video known locally is
// authorized against its page and its comments are upserted; for an unknown
// video the comments are returned without being stored.
func (s *FacebookService) SyncComments(ctx context.Context, p Principal, videoID string) (comments []db.Comment, err error) {
	defer func() { metrics.RecordSync("comments", err) }()
	log := logging.Ctx(ctx, s.log)

	video, err := s.store.FindVideo(ctx, videoID)
	if err != nil {
		return nil, storageFailure("find video", err)
	}
	if video != nil {
		if err := AuthorizePage(p, video.PageID); err != nil {
			log.Warn().Str("user", p.Username).Str("video_id", videoID).Msg("comment sync denied")
			return nil, err
		}
	}

	token, err := s.tokens.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	log.Info().Str("video_id", videoID).Msg("fetching comments")
	comments, err = s.fetchComments(ctx, token, videoID)
	if err != nil {
		return nil, err
	}

	if video == nil {
		log.Warn().Str("video_id", videoID).Int("count", len(comments)).Msg("video not stored locally, comments will not be persisted")
		return comments, nil
	}

	if err := s.saveComments(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// SyncByURL resolves a video from a pasted URL, stores its page (owned by the
// acting user), the video with a metric snapshot, and all its comments.
// ShareCount is always stored as 0: the Graph field is not reliable.
func (s *FacebookService) SyncByURL(ctx context.Context, p Principal, rawURL string) (video *db.LiveVideo, err error) {
	defer func() { metrics.RecordSync("url", err) }()
	log := logging.Ctx(ctx, s.log)

	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	log.Info().Str("video_id", videoID).Msg("processing video url")

	token, err := s.tokens.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	var remote facebook.Video
	if err := s.graph.FetchObject(ctx, token, videoID, facebook.VideoFields, &remote); err != nil {
		if errors.Is(err, facebook.ErrEmptyObject) {
			return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
		}
		if gerr, ok := facebook.AsGraphError(err); ok && gerr.IsObjectUnavailable() {
			log.Error().Str("video_id", videoID).Msg("facebook reported object not found or access denied")
		}
		return nil, newProviderError("fetch video", err)
	}
	if remote.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}
	if remote.From == nil || remote.From.ID == "" {
		return nil, ErrSourcePageUnknown
	}

	if err := AuthorizePage(p, remote.From.ID); err != nil {
		log.Warn().Str("user", p.Username).Str("page_id", remote.From.ID).Msg("video url sync denied")
		return nil, err
	}

	owner := p.UserID
	page := db.FacebookPage{ID: remote.From.ID, Name: providerText(remote.From.Name), OwnerID: &owner}
	if err := s.store.UpsertPage(ctx, &page, true); err != nil {
		return nil, storageFailure("save page", err)
	}

	title := providerText(remote.Title)
	if title == "" {
		title = untitledVideoTitle
	}
	video = &db.LiveVideo{
		ID:           remote.ID,
		PageID:       page.ID,
		Title:        title,
		Description:  providerText(remote.Description),
		CreationTime: remote.CreatedTime.Ptr(),
		ViewCount:    remote.Views,
		CommentCount: remote.CommentTotal(),
		ShareCount:   0,
	}
	if err := s.saveVideo(ctx, video); err != nil {
		return nil, err
	}

	comments, err := s.fetchComments(ctx, token, videoID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].LiveVideoID = video.ID
	}
	if err := s.saveComments(ctx, comments); err != nil {
		return nil, err
	}

	log.Info().
		Str("video_id", video.ID).
		Str("page_id", page.ID).
		Int("comments", len(comments)).
		Msg("video url processed")
	return video, nil
}

// ListStoredPages returns the stored pages the principal may read.
func (s *FacebookService) ListStoredPages(ctx context.Context, p Principal) ([]db.FacebookPage, error) {
	pages, err := s.store.ListPages(ctx)
	if err != nil {
		return nil, storageFailure("list pages", err)
	}
	return FilterPages(p, pages), nil
}

// ListSavedVideos returns the stored videos of the pages the principal may read.
func (s *FacebookService) ListSavedVideos(ctx context.Context, p Principal) ([]db.LiveVideo, error) {
	var pageIDs []string
	if !p.IsAdmin() {
		pageIDs = p.PageIDs()
	}
	videos, err := s.store.ListVideos(ctx, pageIDs)
	if err != nil {
		return nil, storageFailure("list videos", err)
	}
	return videos, nil
}

func (s *FacebookService) fetchComments(ctx context.Context, token, videoID string) ([]db.Comment, error) {
	var remote []facebook.Comment
	if err := s.graph.FetchConnection(ctx, token, videoID+"/comments", &remote); err != nil {
		return nil, newProviderError("fetch comments", err)
	}

	comments := make([]db.Comment, 0, len(remote))
	for _, rc := range remote {
		comment := db.Comment{
			ID:          rc.ID,
			LiveVideoID: videoID,
			Message:     providerText(rc.Message),
			CreatedTime: rc.CreatedTime.Ptr(),
		}
		if rc.From != nil {
			comment.FromID = rc.From.ID
			comment.FromName = providerText(rc.From.Name)
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func (s *FacebookService) saveComments(ctx context.Context, comments []db.Comment) error {
	for i := range comments {
		if err := s.store.UpsertComment(ctx, &comments[i]); err != nil {
			return storageFailure("save comment", err)
		}
	}
	return nil
}

func (s *FacebookService) saveVideo(ctx context.Context, video *db.LiveVideo) error {
	if err := s.store.UpsertVideo(ctx, video); err != nil {
		return storageFailure("save video", err)
	}
	return s.snapshot(ctx, video)
}

// saveVideoDetails 刷新标题等字段后读回存储的计数，再以该计数记录快照。
func (s *FacebookService) saveVideoDetails(ctx context.Context, video *db.LiveVideo) (*db.LiveVideo, error) {
	if err := s.store.UpsertVideoDetails(ctx, video); err != nil {
		return nil, storageFailure("save video", err)
	}
	stored, err := s.store.FindVideo(ctx, video.ID)
	if err != nil {
		return nil, storageFailure("reload video", err)
	}
	if stored == nil {
		return nil, storageFailure("reload video", fmt.Errorf("video %s missing after save", video.ID))
	}
	if err := s.snapshot(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *FacebookService) snapshot(ctx context.Context, video *db.LiveVideo) error {
	snapshot := db.VideoMetric{
		LiveVideoID:  video.ID,
		CollectedAt:  s.now().UTC(),
		ViewCount:    video.ViewCount,
		CommentCount: video.CommentCount,
		ShareCount:   video.ShareCount,
	}
	if err := s.store.AppendMetric(ctx, &snapshot); err != nil {
		return storageFailure("append metric snapshot", err)
	}
	metrics.MetricSnapshots.Inc()
	return nil
}
