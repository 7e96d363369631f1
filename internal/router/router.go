package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/metrilive/internal/handler"
)

const sessionName = "metrilive_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger())

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.POST("/login", api.Login)
		authGroup.POST("/logout", api.Logout)
		authGroup.GET("/me", api.AuthRequired(), api.Me)

		// 需要登录的接口
		secured := apiGroup.Group("")
		secured.Use(api.AuthRequired())
		{
			fb := secured.Group("/facebook")
			fb.POST("/token", api.SetFacebookToken)
			fb.POST("/process-url", api.ProcessVideoURL)
			fb.GET("/pages", api.SyncPages)
			fb.GET("/stored-pages", api.ListStoredPages)
			fb.GET("/pages/:pageId/lives", api.SyncLiveVideos)
			fb.GET("/lives/:liveVideoId/comments", api.SyncComments)
			fb.GET("/videos", api.ListSavedVideos)
			fb.GET("/videos/:videoId/metrics", api.VideoMetrics)

			secured.GET("/dashboard/metrics", api.DashboardMetrics)
		}
	}

	return r
}
