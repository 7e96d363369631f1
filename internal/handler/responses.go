package handler

import (
	"time"

	"github.com/metrilive/internal/db"
)

type pageResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type videoResponse struct {
	ID           string     `json:"id"`
	PageID       string     `json:"pageId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CreationTime *time.Time `json:"creationTime,omitempty"`
	ViewCount    int64      `json:"viewCount"`
	CommentCount int64      `json:"commentCount"`
	ShareCount   int64      `json:"shareCount"`
}

type commentResponse struct {
	ID          string     `json:"id"`
	LiveVideoID string     `json:"liveVideoId"`
	FromID      string     `json:"fromId,omitempty"`
	FromName    string     `json:"fromName,omitempty"`
	Message     string     `json:"message"`
	CreatedTime *time.Time `json:"createdTime,omitempty"`
}

func newPageResponses(pages []db.FacebookPage) []pageResponse {
	items := make([]pageResponse, 0, len(pages))
	for _, page := range pages {
		items = append(items, pageResponse{ID: page.ID, Name: page.Name})
	}
	return items
}

func newVideoResponse(video db.LiveVideo) videoResponse {
	return videoResponse{
		ID:           video.ID,
		PageID:       video.PageID,
		Title:        video.Title,
		Description:  video.Description,
		CreationTime: video.CreationTime,
		ViewCount:    video.ViewCount,
		CommentCount: video.CommentCount,
		ShareCount:   video.ShareCount,
	}
}

func newVideoResponses(videos []db.LiveVideo) []videoResponse {
	items := make([]videoResponse, 0, len(videos))
	for _, video := range videos {
		items = append(items, newVideoResponse(video))
	}
	return items
}

func newCommentResponses(comments []db.Comment) []commentResponse {
	items := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		items = append(items, commentResponse{
			ID:          comment.ID,
			LiveVideoID: comment.LiveVideoID,
			FromID:      comment.FromID,
			FromName:    comment.FromName,
			Message:     comment.Message,
			CreatedTime: comment.CreatedTime,
		})
	}
	return items
}
