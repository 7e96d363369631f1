package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/metrilive/internal/db"
)

const (
	dailyTotalsType = "VIDEO"
	dayLayout       = "2006-01-02"
)

// DailyTotal sums the stored counters of the videos created on one day.
type DailyTotal struct {
	Date          string `json:"date"`
	Type          string `json:"type"`
	TotalViews    int64  `json:"totalViews"`
	TotalComments int64  `json:"totalComments"`
	TotalShares   int64  `json:"totalShares"`
}

// MetricsService serves dashboard aggregates and snapshot history.
type MetricsService struct {
	store Storage
}

// NewMetricsService returns a metrics service backed by store.
func NewMetricsService(store Storage) *MetricsService {
	return &MetricsService{store: store}
}

// DailyTotals groups the visible videos by creation day (UTC), newest day
// first. Videos without a creation time are left out.
func (s *MetricsService) DailyTotals(ctx context.Context, p Principal) ([]DailyTotal, error) {
	var pageIDs []string
	if !p.IsAdmin() {
		pageIDs = p.PageIDs()
	}
	videos, err := s.store.ListVideos(ctx, pageIDs)
	if err != nil {
		return nil, storageFailure("list videos", err)
	}

	byDay := make(map[string]*DailyTotal)
	for _, video := range videos {
		if video.CreationTime == nil {
			continue
		}
		day := video.CreationTime.UTC().Format(dayLayout)
		total, ok := byDay[day]
		if !ok {
			total = &DailyTotal{Date: day, Type: dailyTotalsType}
			byDay[day] = total
		}
		total.TotalViews += video.ViewCount
		total.TotalComments += video.CommentCount
		total.TotalShares += video.ShareCount
	}

	totals := make([]DailyTotal, 0, len(byDay))
	for _, total := range byDay {
		totals = append(totals, *total)
	}
	// dayLayout sorts lexically in date order
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date > totals[j].Date })
	return totals, nil
}

// MetricPoint is one snapshot of a video's counters.
type MetricPoint struct {
	CollectedAt  time.Time `json:"collectedAt"`
	ViewCount    int64     `json:"viewCount"`
	CommentCount int64     `json:"commentCount"`
	ShareCount   int64     `json:"shareCount"`
}

// VideoHistory returns the snapshots of a stored video in collection order.
func (s *MetricsService) VideoHistory(ctx context.Context, p Principal, videoID string) ([]MetricPoint, error) {
	video, err := s.store.FindVideo(ctx, videoID)
	if err != nil {
		return nil, storageFailure("find video", err)
	}
	if video == nil {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}
	if err := AuthorizePage(p, video.PageID); err != nil {
		return nil, err
	}

	snapshots, err := s.store.ListMetrics(ctx, videoID)
	if err != nil {
		return nil, storageFailure("list metrics", err)
	}
	return toMetricPoints(snapshots), nil
}

func toMetricPoints(snapshots []db.VideoMetric) []MetricPoint {
	points := make([]MetricPoint, 0, len(snapshots))
	for _, snapshot := range snapshots {
		points = append(points, MetricPoint{
			CollectedAt:  snapshot.CollectedAt,
			ViewCount:    snapshot.ViewCount,
			CommentCount: snapshot.CommentCount,
			ShareCount:   snapshot.ShareCount,
		})
	}
	return points
}
