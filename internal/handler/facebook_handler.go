package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type tokenPayload struct {
	AccessToken string `json:"accessToken" binding:"required"`
}

type processURLPayload struct {
	URL string `json:"url" binding:"required"`
}

// SetFacebookToken 保存当前用户自己的 Facebook access token
func (a *API) SetFacebookToken(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	var payload tokenPayload
	if !bindJSON(c, &payload, "请提供 accessToken") {
		return
	}

	if err := a.accounts.SetFacebookToken(c.Request.Context(), p, payload.AccessToken); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token 已保存"})
}

// ProcessVideoURL 根据粘贴的视频链接同步视频、主页、评论并记录一次指标快照
func (a *API) ProcessVideoURL(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	var payload processURLPayload
	if !bindJSON(c, &payload, "请提供视频链接") {
		return
	}

	video, err := a.facebook.SyncByURL(c.Request.Context(), p, strings.TrimSpace(payload.URL))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": newVideoResponse(*video)})
}

// SyncPages fetches the pages behind the resolved token and returns the visible ones.
func (a *API) SyncPages(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	pages, err := a.facebook.SyncPages(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": newPageResponses(pages)})
}

// ListStoredPages returns stored pages without calling Facebook.
func (a *API) ListStoredPages(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	pages, err := a.facebook.ListStoredPages(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": newPageResponses(pages)})
}

// SyncLiveVideos 同步某个主页下的直播视频
func (a *API) SyncLiveVideos(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	pageID := strings.TrimSpace(c.Param("pageId"))
	if pageID == "" {
		respondError(c, http.StatusBadRequest, "缺少主页 ID")
		return
	}

	videos, err := a.facebook.SyncLiveVideos(c.Request.Context(), p, pageID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": newVideoResponses(videos)})
}

// SyncComments 同步某个视频下的评论
func (a *API) SyncComments(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	videoID := strings.TrimSpace(c.Param("liveVideoId"))
	if videoID == "" {
		respondError(c, http.StatusBadRequest, "缺少视频 ID")
		return
	}

	comments, err := a.facebook.SyncComments(c.Request.Context(), p, videoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": newCommentResponses(comments)})
}

// ListSavedVideos returns stored videos of the pages the user may read.
func (a *API) ListSavedVideos(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	videos, err := a.facebook.ListSavedVideos(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": newVideoResponses(videos)})
}
