package db

import "time"

// FacebookPage 是 Facebook 主页在本地的镜像，ID 使用 Graph API 返回的外部 ID。
type FacebookPage struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string
	OwnerID   *uint `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定自定义表名。
func (FacebookPage) TableName() string {
	return "facebook_pages"
}

// LiveVideo 记录视频及其最近一次同步到的互动计数。
type LiveVideo struct {
	ID           string `gorm:"primaryKey;size:64"`
	PageID       string `gorm:"size:64;index;not null"`
	Title        string
	Description  string `gorm:"type:text"`
	CreationTime *time.Time
	ViewCount    int64 `gorm:"not null;default:0"`
	CommentCount int64 `gorm:"not null;default:0"`
	ShareCount   int64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName 指定自定义表名。
func (LiveVideo) TableName() string {
	return "live_videos"
}

// Comment 是挂在视频下的评论，作者信息可能缺失。
type Comment struct {
	ID          string `gorm:"primaryKey;size:128"`
	LiveVideoID string `gorm:"size:64;index;not null"`
	FromID      string `gorm:"size:64"`
	FromName    string
	Message     string `gorm:"type:text"`
	CreatedTime *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定自定义表名。
func (Comment) TableName() string {
	return "comments"
}

// VideoMetric 是某一时刻视频计数的快照，只追加、不修改。
type VideoMetric struct {
	ID           uint      `gorm:"primaryKey"`
	LiveVideoID  string    `gorm:"size:64;index:idx_video_metric_collected;not null"`
	CollectedAt  time.Time `gorm:"index:idx_video_metric_collected;not null"`
	ViewCount    int64     `gorm:"not null;default:0"`
	CommentCount int64     `gorm:"not null;default:0"`
	ShareCount   int64     `gorm:"not null;default:0"`
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (VideoMetric) TableName() string {
	return "video_metric_history"
}
