package facebook

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// VideoFields is the projection requested when a single video is resolved from a URL.
var VideoFields = []string{"id", "title", "description", "created_time", "from", "views", "comments.summary(true)"}

const graphTimeLayout = "2006-01-02T15:04:05-0700"

// Time decodes Graph API timestamps such as "2024-05-01T18:30:00+0000".
type Time struct {
	time.Time
}

// UnmarshalJSON accepts the Graph layout, RFC 3339 and null.
func (t *Time) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	value := strings.Trim(string(raw), `"`)
	if value == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{graphTimeLayout, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("facebook: invalid time %q", value)
}

// Ptr returns nil for the zero time so optional columns stay NULL.
func (t Time) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	value := t.Time
	return &value
}

// Ref is the {id, name} pair Graph uses for authors and owners.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Page is a node returned by me/accounts or me.
type Page struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// LiveVideo is a node of the {page-id}/live_videos connection.
type LiveVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	CreationTime Time   `json:"creation_time"`
}

// Video is a single video object fetched with VideoFields.
type Video struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CreatedTime Time          `json:"created_time"`
	From        *Ref          `json:"from"`
	Views       int64         `json:"views"`
	Comments    *CommentsEdge `json:"comments"`
}

// CommentsEdge carries the summary requested with comments.summary(true).
type CommentsEdge struct {
	Summary struct {
		TotalCount int64 `json:"total_count"`
	} `json:"summary"`
}

// CommentTotal returns the comment summary total, 0 when absent.
func (v Video) CommentTotal() int64 {
	if v.Comments == nil {
		return 0
	}
	return v.Comments.Summary.TotalCount
}

// Comment is a node of the {video-id}/comments connection.
type Comment struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	CreatedTime Time   `json:"created_time"`
	From        *Ref   `json:"from"`
}
