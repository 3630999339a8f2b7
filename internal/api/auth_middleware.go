package api

import (
	"context"
	"errors"
	"insurance/internal/auth"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	currentUserContextKey = "current-user"
)

// RequestUser 存储请求上下文中的认证用户信息
type RequestUser struct {
	ID       uint
	Username string
	Name     string
	Role     string
}

// IsAdmin 判断用户是否具有管理员权限
func (u *RequestUser) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == db.UserRoleAdmin
}

func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "message": message})
}

// AuthMiddleware JWT 认证中间件
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			abortWith(c, http.StatusUnauthorized, "未授权")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWith(c, http.StatusUnauthorized, "无效的授权头格式")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abortWith(c, http.StatusUnauthorized, "缺少 Bearer Token")
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abortWith(c, http.StatusUnauthorized, "登录已过期，请重新登录")
				return
			}
			logrus.WithError(err).Warn("failed to parse jwt token")
			abortWith(c, http.StatusUnauthorized, "Token 无效")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// 令牌签发后账号可能已被删除或停用
		user, err := h.repo.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortWith(c, http.StatusUnauthorized, "用户不存在")
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
			abortWith(c, http.StatusInternalServerError, "验证用户失败")
			return
		}

		if !user.Status {
			abortWith(c, http.StatusForbidden, "账户已被禁用")
			return
		}

		c.Set(currentUserContextKey, &RequestUser{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
			Role:     user.Role,
		})
		c.Next()
	}
}

// RequireAdmin 管理员权限守卫中间件
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			abortWith(c, http.StatusForbidden, "需要管理员权限")
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}

// operatorFrom 为操作日志构造操作人
func operatorFrom(c *gin.Context) dto.Operator {
	op := dto.Operator{IPAddress: c.ClientIP()}
	if user := CurrentUser(c); user != nil {
		op.ID = user.ID
		op.Name = user.Name
	}
	return op
}
