package api

import (
	"context"
	"errors"
	"fmt"
	"insurance/internal/auth"
	"insurance/internal/entity/converter"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxUsernameAttempts = 5

var errEmptyName = errors.New("姓名不能为空")

var roleLabels = map[string]string{
	db.UserRoleAgent:       "代理人",
	db.UserRoleUnderwriter: "出单员",
}

var usernamePrefixes = map[string]string{
	db.UserRoleAgent:       "AG",
	db.UserRoleUnderwriter: "UW",
}

// parseIDParam 解析路径参数 id，失败时已写入 400 响应
func parseIDParam(c *gin.Context, label string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "无效的"+label+"ID")
		return 0, false
	}
	return uint(id), true
}

// generateUsername 角色前缀加毫秒时间戳后 6 位，冲突时 attempt 递增
func generateUsername(role string, now time.Time, attempt int) string {
	prefix := usernamePrefixes[role]
	if prefix == "" {
		prefix = "U"
	}
	return fmt.Sprintf("%s%06d", prefix, (now.UnixMilli()+int64(attempt))%1000000)
}

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query dto.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}
	query.Normalize(20, 200)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		respondError(c, err, "获取用户列表失败")
		return
	}
	Paged(c, "获取成功", converter.UsersToSummaries(users), meta)
}

func (h *HTTPHandler) listStaff(c *gin.Context, role string) {
	var query dto.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}
	query.Role = role
	query.Normalize(20, 200)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		respondError(c, err, "获取"+roleLabels[role]+"列表失败")
		return
	}
	Paged(c, "获取成功", converter.UsersToSummaries(users), meta)
}

// loadStaff 读取指定角色的用户，角色不符视为不存在
func (h *HTTPHandler) loadStaff(ctx context.Context, c *gin.Context, id uint, role string) (*db.User, bool) {
	user, err := h.repo.GetUserByID(ctx, id)
	if err == nil && user.Role != role {
		err = gorm.ErrRecordNotFound
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, roleLabels[role]+"不存在")
			return nil, false
		}
		respondError(c, err, "获取"+roleLabels[role]+"失败")
		return nil, false
	}
	return user, true
}

// createStaff 创建代理人或出单员；用户名缺省时自动生成，密码缺省时使用默认密码
func (h *HTTPHandler) createStaff(ctx context.Context, role string, req dto.StaffCreateRequest) (*db.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errEmptyName
	}
	password := strings.TrimSpace(req.Password)
	if password == "" {
		password = h.cfg.DefaultAgentPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	status := true
	if req.Status != nil {
		status = *req.Status
	}

	username := strings.TrimSpace(req.Username)
	generated := username == ""
	now := h.now()
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		if generated {
			username = generateUsername(role, now, attempt)
		}
		user := &db.User{
			Username:   username,
			Password:   hash,
			Name:       name,
			Role:       role,
			Email:      strings.TrimSpace(req.Email),
			Phone:      strings.TrimSpace(req.Phone),
			Department: strings.TrimSpace(req.Department),
			Status:     status,
		}
		err = h.repo.CreateUser(ctx, user)
		if err == nil {
			return user, nil
		}
		if !generated || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, err
}

func (h *HTTPHandler) addStaff(c *gin.Context, role string) {
	var req dto.StaffCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.createStaff(ctx, role, req)
	if err != nil {
		if errors.Is(err, errEmptyName) {
			MissingField(c, "姓名")
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, "用户名已存在")
			return
		}
		respondError(c, err, "添加"+roleLabels[role]+"失败")
		return
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("staff created")
	Success(c, "添加成功", gin.H{"id": user.ID, "username": user.Username})
}

func (h *HTTPHandler) updateStaff(c *gin.Context, role string) {
	id, ok := parseIDParam(c, roleLabels[role])
	if !ok {
		return
	}
	var req dto.StaffUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.loadStaff(ctx, c, id, role); !ok {
		return
	}

	var hashed *string
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := auth.HashPassword(strings.TrimSpace(*req.Password))
		if err != nil {
			InternalError(c, "更新"+roleLabels[role]+"失败", err)
			return
		}
		hashed = &hash
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		MissingField(c, "姓名")
		return
	}

	if err := h.repo.UpdateUser(ctx, id, converter.StaffUpdatesFromRequest(req, hashed)); err != nil {
		respondError(c, err, "更新"+roleLabels[role]+"失败")
		return
	}
	Success(c, "更新成功", nil)
}

func (h *HTTPHandler) ListAgents(c *gin.Context) {
	h.listStaff(c, db.UserRoleAgent)
}

// SearchAgents 按关键字搜索代理人，关键字为空时返回空列表
func (h *HTTPHandler) SearchAgents(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		Success(c, "搜索成功", []dto.UserSummary{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	query := dto.UserQuery{Role: db.UserRoleAgent, Keyword: keyword}
	query.Normalize(50, 200)
	users, _, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		respondError(c, err, "搜索代理人失败")
		return
	}
	Success(c, "搜索成功", converter.UsersToSummaries(users))
}

func (h *HTTPHandler) AddAgent(c *gin.Context) {
	h.addStaff(c, db.UserRoleAgent)
}

// BatchImportAgents 逐条创建代理人，单条失败不影响其余
func (h *HTTPHandler) BatchImportAgents(c *gin.Context) {
	var req dto.AgentBatchImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponseWithDetails(c, http.StatusBadRequest, "导入数据不能为空", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := dto.BatchImportResult{Total: len(req.Agents)}
	for _, item := range req.Agents {
		if _, err := h.createStaff(ctx, db.UserRoleAgent, item); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Name, err))
			continue
		}
		result.Imported++
	}
	logrus.WithFields(logrus.Fields{"imported": result.Imported, "failed": result.Failed}).Info("agents batch imported")
	Success(c, fmt.Sprintf("批量导入完成，成功 %d 条，失败 %d 条", result.Imported, result.Failed), result)
}

func (h *HTTPHandler) AgentDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "代理人")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, ok := h.loadStaff(ctx, c, id, db.UserRoleAgent)
	if !ok {
		return
	}
	Success(c, "获取成功", converter.UserToSummary(user))
}

func (h *HTTPHandler) UpdateAgent(c *gin.Context) {
	h.updateStaff(c, db.UserRoleAgent)
}

// DeleteAgent 存在关联业务记录的代理人不允许删除
func (h *HTTPHandler) DeleteAgent(c *gin.Context) {
	id, ok := parseIDParam(c, "代理人")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.loadStaff(ctx, c, id, db.UserRoleAgent); !ok {
		return
	}
	if !h.ensureAgentsUnused(ctx, c, []uint{id}) {
		return
	}
	if err := h.repo.DeleteUser(ctx, id); err != nil {
		respondError(c, err, "删除代理人失败")
		return
	}
	Success(c, "删除成功", nil)
}

func (h *HTTPHandler) BatchDeleteAgents(c *gin.Context) {
	var req dto.IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请选择要删除的代理人")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.ensureAgentsUnused(ctx, c, req.IDs) {
		return
	}
	deleted, err := h.repo.DeleteUsers(ctx, db.UserRoleAgent, req.IDs)
	if err != nil {
		respondError(c, err, "批量删除代理人失败")
		return
	}
	Success(c, "删除成功", gin.H{"deleted": deleted})
}

func (h *HTTPHandler) ensureAgentsUnused(ctx context.Context, c *gin.Context, ids []uint) bool {
	count, err := h.repo.CountBusinessesByAgents(ctx, ids)
	if err != nil {
		respondError(c, err, "删除代理人失败")
		return false
	}
	if count > 0 {
		BadRequest(c, "该代理人存在关联的业务记录，无法删除")
		return false
	}
	return true
}

func (h *HTTPHandler) ListUnderwriters(c *gin.Context) {
	h.listStaff(c, db.UserRoleUnderwriter)
}

func (h *HTTPHandler) AddUnderwriter(c *gin.Context) {
	h.addStaff(c, db.UserRoleUnderwriter)
}

func (h *HTTPHandler) UpdateUnderwriter(c *gin.Context) {
	h.updateStaff(c, db.UserRoleUnderwriter)
}

func (h *HTTPHandler) DeleteUnderwriter(c *gin.Context) {
	id, ok := parseIDParam(c, "出单员")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.loadStaff(ctx, c, id, db.UserRoleUnderwriter); !ok {
		return
	}
	if err := h.repo.DeleteUser(ctx, id); err != nil {
		respondError(c, err, "删除出单员失败")
		return
	}
	Success(c, "删除成功", nil)
}
