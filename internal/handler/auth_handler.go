package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/metrilive/internal/service"
)

const sessionUserIDKey = "user_id"

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type principalResponse struct {
	ID               uint     `json:"id"`
	Username         string   `json:"username"`
	Role             string   `json:"role"`
	HasFacebookToken bool     `json:"hasFacebookToken"`
	AuthorizedPages  []string `json:"authorizedPages"`
}

func newPrincipalResponse(p service.Principal) principalResponse {
	return principalResponse{
		ID:               p.UserID,
		Username:         p.Username,
		Role:             string(p.Role),
		HasFacebookToken: p.FacebookToken != "",
		AuthorizedPages:  p.PageIDs(),
	}
}

// Login 校验用户名密码并写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "请输入用户名和密码") {
		return
	}

	p, err := a.accounts.Authenticate(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, p.UserID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newPrincipalResponse(p)})
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Status(http.StatusNoContent)
}

// Me returns the logged-in user and the pages it may read.
func (a *API) Me(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newPrincipalResponse(p)})
}

// AuthRequired 从会话中恢复当前用户，并把授权信息放入请求上下文
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserIDKey).(uint)
		if !ok || userID == 0 {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}

		p, err := a.accounts.LoadPrincipal(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				session.Clear()
				session.Save()
			}
			respondServiceError(c, err)
			c.Abort()
			return
		}

		setPrincipal(c, p)
		c.Next()
	}
}
