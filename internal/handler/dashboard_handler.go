package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DashboardMetrics 返回按天汇总的视频指标
func (a *API) DashboardMetrics(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	totals, err := a.metrics.DailyTotals(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": totals})
}

// VideoMetrics 返回单个视频的指标快照历史
func (a *API) VideoMetrics(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	videoID := strings.TrimSpace(c.Param("videoId"))
	points, err := a.metrics.VideoHistory(c.Request.Context(), p, videoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videoId": videoID, "history": points})
}
