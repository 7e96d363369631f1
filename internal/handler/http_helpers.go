package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metrilive/internal/logging"
	"github.com/metrilive/internal/service"
)

const principalContextKey = "__principal"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// currentPrincipal returns the principal stored by AuthRequired.
func currentPrincipal(c *gin.Context) (service.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return service.Principal{}, false
	}
	p, ok := value.(service.Principal)
	return p, ok
}

func setPrincipal(c *gin.Context, p service.Principal) {
	c.Set(principalContextKey, p)
}

// respondServiceError 将服务层错误映射为 HTTP 状态码，不向调用方暴露 Facebook 的原始响应。
func respondServiceError(c *gin.Context, err error) {
	var providerErr *service.ProviderError

	switch {
	case errors.Is(err, service.ErrInvalidURL):
		respondError(c, http.StatusBadRequest, "无法从链接中识别视频 ID")
	case errors.Is(err, service.ErrAccessDenied):
		respondError(c, http.StatusForbidden, "无权访问该主页的数据")
	case errors.Is(err, service.ErrNoCredentialAvailable):
		respondError(c, http.StatusPreconditionFailed, "当前用户和管理员都没有可用的 Facebook token")
	case errors.Is(err, service.ErrVideoNotFound):
		respondError(c, http.StatusNotFound, "视频不存在")
	case errors.Is(err, service.ErrSourcePageUnknown):
		respondError(c, http.StatusUnprocessableEntity, "无法确定视频所属的主页")
	case errors.Is(err, service.ErrTokenRequired):
		respondError(c, http.StatusBadRequest, "请填写 access token")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusUnauthorized, "用户不存在，请重新登录")
	case errors.As(err, &providerErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Facebook 请求失败",
			"detail":  providerErr.Message,
			"code":    providerErr.Code,
			"subcode": providerErr.Subcode,
		})
	default:
		logging.Ctx(c.Request.Context(), logging.Component("http")).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		respondError(c, http.StatusInternalServerError, "服务器内部错误，请稍后重试")
	}
}
