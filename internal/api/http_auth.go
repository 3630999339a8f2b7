package api

import (
	"context"
	"errors"
	"insurance/internal/auth"
	"insurance/internal/entity/converter"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Health 存活检查
func (h *HTTPHandler) Health(c *gin.Context) {
	status := "ok"
	if h.repo != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.repo.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("database ping failed")
			status = "degraded"
		}
	}
	Success(c, "服务运行正常", gin.H{"status": status, "time": h.now().Format(time.RFC3339)})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req dto.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "用户名和密码不能为空")
		return
	}

	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		BadRequest(c, "用户名和密码不能为空")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("username", username).Error("failed to load user for login")
			InternalError(c, "登录失败", err)
			return
		}
		logrus.WithField("username", username).Warn("login attempt for unknown user")
		Unauthorized(c, "用户名或密码错误")
		return
	}

	rehash, err := auth.VerifyStoredPassword(user.Password, password)
	if err != nil {
		logrus.WithField("username", username).Warn("password verification failed")
		Unauthorized(c, "用户名或密码错误")
		return
	}

	if !user.Status {
		Forbidden(c, "账户已被禁用")
		return
	}

	// 从旧备份恢复的明文密码在首次登录时转为哈希
	if rehash {
		if hashed, err := auth.HashPassword(password); err == nil {
			if err := h.repo.UpdateUser(ctx, user.ID, db.UserUpdates{Password: &hashed}); err != nil {
				logrus.WithError(err).WithField("user_id", user.ID).Warn("failed to upgrade plaintext password")
			}
		}
	}

	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "登录失败", err)
		return
	}

	Success(c, "登录成功", dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      converter.UserToSummary(user),
	})
}

// UserInfo 返回令牌对应的当前用户
func (h *HTTPHandler) UserInfo(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "未授权")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		respondError(c, err, "获取用户信息失败")
		return
	}

	Success(c, "获取用户信息成功", converter.UserToSummary(dbUser))
}
