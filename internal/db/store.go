package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 表示按主键更新时未命中任何记录。
var ErrNotFound = errors.New("record not found")

// Store 以外部 ID 为键对主页、视频、评论做幂等写入，指标快照只追加。
// 每次写入都是单条 INSERT ... ON CONFLICT 语句，不跨实体开启事务。
// Find* 方法在记录不存在时返回 (nil, nil)。
type Store struct {
	db *gorm.DB
}

// NewStore 基于给定的 gorm 连接创建 Store。
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// DB exposes the underlying gorm instance.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) first(ctx context.Context, dst interface{}, query *gorm.DB) (bool, error) {
	if err := query.WithContext(ctx).First(dst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindUser 按 ID 读取用户并预加载其授权主页。
func (s *Store) FindUser(ctx context.Context, id uint) (*User, error) {
	var user User
	found, err := s.first(ctx, &user, s.db.Preload("AuthorizedPages").Where("id = ?", id))
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// FindUserByUsername 按用户名读取用户并预加载其授权主页。
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	found, err := s.first(ctx, &user, s.db.Preload("AuthorizedPages").Where("username = ?", username))
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// FirstAdminWithToken 返回 ID 最小且持有非空 Facebook 令牌的管理员。
func (s *Store) FirstAdminWithToken(ctx context.Context) (*User, error) {
	var user User
	query := s.db.
		Where("role = ?", RoleAdmin).
		Where("facebook_access_token IS NOT NULL AND facebook_access_token <> ''").
		Order("id ASC")
	found, err := s.first(ctx, &user, query)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// CreateUser 创建用户，同时写入其授权主页关联。
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// UpdateUserToken 覆盖用户保存的 Facebook 令牌。
func (s *Store) UpdateUserToken(ctx context.Context, userID uint, token string) error {
	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", userID).
		Update("facebook_access_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindPage 按外部 ID 读取主页。
func (s *Store) FindPage(ctx context.Context, id string) (*FacebookPage, error) {
	var page FacebookPage
	found, err := s.first(ctx, &page, s.db.Where("id = ?", id))
	if err != nil || !found {
		return nil, err
	}
	return &page, nil
}

// ListPages 返回所有已保存的主页。
func (s *Store) ListPages(ctx context.Context) ([]FacebookPage, error) {
	var pages []FacebookPage
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// FindPagesByIDs 返回 ID 命中的主页，未知 ID 会被忽略。
func (s *Store) FindPagesByIDs(ctx context.Context, ids []string) ([]FacebookPage, error) {
	pages := make([]FacebookPage, 0, len(ids))
	if len(ids) == 0 {
		return pages, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// UpsertPage 按 ID 创建或更新主页名称。claimOwner 为 true 时同时覆盖归属用户，
// 否则已存在的记录保留最初的归属。
func (s *Store) UpsertPage(ctx context.Context, page *FacebookPage, claimOwner bool) error {
	columns := []string{"name", "updated_at"}
	if claimOwner {
		columns = append(columns, "owner_id")
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(page).Error
}

// FindVideo 按外部 ID 读取视频。
func (s *Store) FindVideo(ctx context.Context, id string) (*LiveVideo, error) {
	var video LiveVideo
	found, err := s.first(ctx, &video, s.db.Where("id = ?", id))
	if err != nil || !found {
		return nil, err
	}
	return &video, nil
}

// ListVideos 返回已保存的视频；pageIDs 非 nil 时只返回这些主页下的视频。
func (s *Store) ListVideos(ctx context.Context, pageIDs []string) ([]LiveVideo, error) {
	videos := make([]LiveVideo, 0)
	query := s.db.WithContext(ctx).Order("creation_time DESC, id ASC")
	if pageIDs != nil {
		if len(pageIDs) == 0 {
			return videos, nil
		}
		query = query.Where("page_id IN ?", pageIDs)
	}
	if err := query.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// UpsertVideo 按 ID 创建或整体覆盖视频（后写入者生效）。
func (s *Store) UpsertVideo(ctx context.Context, video *LiveVideo) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"page_id", "title", "description", "creation_time",
			"view_count", "comment_count", "share_count", "updated_at",
		}),
	}).Create(video).Error
}

// UpsertVideoDetails 只刷新视频的描述字段；已存在行的计数保持不变，
// 新行按传入的计数插入。
func (s *Store) UpsertVideoDetails(ctx context.Context, video *LiveVideo) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"page_id", "title", "description", "creation_time", "updated_at",
		}),
	}).Create(video).Error
}

// UpsertComment 按 ID 创建或整体覆盖评论。
func (s *Store) UpsertComment(ctx context.Context, comment *Comment) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"live_video_id", "from_id", "from_name", "message", "created_time", "updated_at",
		}),
	}).Create(comment).Error
}

// ListComments 返回某个视频下已保存的评论。
func (s *Store) ListComments(ctx context.Context, videoID string) ([]Comment, error) {
	var comments []Comment
	if err := s.db.WithContext(ctx).
		Where("live_video_id = ?", videoID).
		Order("created_time ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// AppendMetric 追加一条指标快照，ID 由数据库自增生成。
func (s *Store) AppendMetric(ctx context.Context, metric *VideoMetric) error {
	return s.db.WithContext(ctx).Create(metric).Error
}

// ListMetrics 按采集时间升序返回视频的指标快照。
func (s *Store) ListMetrics(ctx context.Context, videoID string) ([]VideoMetric, error) {
	var metrics []VideoMetric
	if err := s.db.WithContext(ctx).
		Where("live_video_id = ?", videoID).
		Order("collected_at ASC, id ASC").
		Find(&metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}
