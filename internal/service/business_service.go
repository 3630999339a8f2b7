package service

import (
	"context"
	"errors"
	"fmt"
	"insurance/internal/entity/common"
	"insurance/internal/entity/converter"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"insurance/internal/model"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BusinessService 业务记录服务，写操作与操作日志在同一事务中完成
type BusinessService struct {
	repo model.Repository
	loc  *time.Location
	now  func() time.Time
}

// NewBusinessService 创建业务记录服务
func NewBusinessService(repo model.Repository, loc *time.Location) *BusinessService {
	if loc == nil {
		loc = time.Local
	}
	return &BusinessService{repo: repo, loc: loc, now: time.Now}
}

// SetClock 替换时钟（用于测试）
func (s *BusinessService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *BusinessService) newLog(op dto.Operator, kind, content string) *db.OperationLog {
	name := op.Name
	if name == "" {
		name = "系统管理员"
	}
	return &db.OperationLog{
		OperatorID:       op.ID,
		OperatorName:     name,
		OperationType:    kind,
		OperationContent: content,
		IPAddress:        op.IPAddress,
		Module:           db.ModuleBusiness,
		OperationTime:    s.now(),
	}
}

func (s *BusinessService) requireRole(ctx context.Context, id uint, role string, notFound error) error {
	if id == 0 {
		return fmt.Errorf("%w: id 0", notFound)
	}
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", notFound, id)
		}
		return err
	}
	if user.Role != role {
		return fmt.Errorf("%w: user %d has role %s", notFound, id, user.Role)
	}
	return nil
}

func (s *BusinessService) parseOptionalTime(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := common.ParseDate(value, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidDate, field, value)
	}
	return &t, nil
}

// customerNameFor 按客户类型选择客户名称，显式传入的 customerName 优先
func customerNameFor(explicit, clientType, personal, company, plate string) string {
	if strings.TrimSpace(explicit) != "" {
		return strings.TrimSpace(explicit)
	}
	switch clientType {
	case db.ClientTypePersonal:
		return personal
	case db.ClientTypeCompany:
		return company
	case db.ClientTypeVehicle:
		return plate
	}
	return ""
}

func amountOr(v decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return fallback
}

// Create 新增业务记录并写入创建日志
func (s *BusinessService) Create(ctx context.Context, req dto.BusinessCreateRequest, op dto.Operator) (*db.Business, error) {
	if err := s.requireRole(ctx, req.AgentID, db.UserRoleAgent, ErrAgentNotFound); err != nil {
		return nil, err
	}
	if req.UnderwriterID != nil && *req.UnderwriterID > 0 {
		if err := s.requireRole(ctx, *req.UnderwriterID, db.UserRoleUnderwriter, ErrUnderwriterNotFound); err != nil {
			return nil, err
		}
	}

	now := s.now().In(s.loc)
	times := map[string]string{
		"startDate":    req.StartDate,
		"endDate":      req.EndDate,
		"inquiryDate":  req.InquiryDate,
		"reminderTime": req.ReminderTime,
		"dealTime":     req.DealTime,
	}
	parsed := make(map[string]*time.Time, len(times))
	for field, value := range times {
		t, err := s.parseOptionalTime(field, value)
		if err != nil {
			return nil, err
		}
		parsed[field] = t
	}

	personal := req.PersonalName
	if personal == "" {
		personal = req.ClientName
	}
	inquiry := amountOr(req.InquiryAmount, decimal.Zero)

	business := &db.Business{
		AgentID:             req.AgentID,
		UnderwriterID:       req.UnderwriterID,
		InsuranceID:         req.SpecificInsuranceID,
		SpecificInsuranceID: req.SpecificInsuranceID,
		InsuranceTypeID:     req.InsuranceTypeID,
		BusinessLevelID:     req.BusinessLevelID,
		CustomerName:        customerNameFor(req.CustomerName, req.ClientType, personal, req.CompanyName, req.PlateNumber),
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		ClientType:          req.ClientType,
		PersonalName:        personal,
		CompanyName:         req.CompanyName,
		PlateNumber:         req.PlateNumber,
		PolicyNumber:        req.PolicyNumber,
		InquiryAmount:       inquiry,
		PremiumAmount:       amountOr(req.Premium, inquiry),
		CoverageAmount:      amountOr(req.AmountInsured, inquiry),
		Status:              req.Status,
		DealStatus:          req.DealStatus,
		StartDate:           parsed["startDate"],
		EndDate:             parsed["endDate"],
		ReminderTime:        parsed["reminderTime"],
		DealTime:            parsed["dealTime"],
		FollowUpRemark:      req.FollowUpRemark,
		Remarks:             req.Remark,
		InquiryDate:         now,
	}
	if business.Status == "" {
		business.Status = db.BusinessStatusPending
	}
	if business.DealStatus == "" {
		business.DealStatus = db.DealStatusPending
	}
	if business.Remarks == "" {
		business.Remarks = req.FollowUpRemark
	}
	if t := parsed["inquiryDate"]; t != nil {
		business.InquiryDate = *t
	}
	if business.StartDate == nil {
		business.StartDate = &now
	}
	if business.EndDate == nil {
		end := business.StartDate.AddDate(1, 0, 0)
		business.EndDate = &end
	}
	if business.Status == db.BusinessStatusApproved {
		business.ApprovalDate = &now
	}

	log := s.newLog(op, db.OperationCreate, fmt.Sprintf("创建了业务记录，客户名称：%s", business.CustomerName))
	if err := s.repo.CreateBusinessWithLog(ctx, business, log); err != nil {
		return nil, err
	}
	return business, nil
}

// Update 部分更新业务记录并写入更新日志
func (s *BusinessService) Update(ctx context.Context, id uint, req dto.BusinessUpdateRequest, op dto.Operator) (*db.Business, error) {
	existing, err := s.repo.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.AgentID != nil {
		if err := s.requireRole(ctx, *req.AgentID, db.UserRoleAgent, ErrAgentNotFound); err != nil {
			return nil, err
		}
	}
	if req.UnderwriterID != nil && *req.UnderwriterID > 0 {
		if err := s.requireRole(ctx, *req.UnderwriterID, db.UserRoleUnderwriter, ErrUnderwriterNotFound); err != nil {
			return nil, err
		}
	}

	updates := db.BusinessUpdates{
		AgentID:             req.AgentID,
		UnderwriterID:       req.UnderwriterID,
		InsuranceID:         req.SpecificInsuranceID,
		SpecificInsuranceID: req.SpecificInsuranceID,
		InsuranceTypeID:     req.InsuranceTypeID,
		BusinessLevelID:     req.BusinessLevelID,
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		ClientType:          req.ClientType,
		PersonalName:        req.PersonalName,
		CompanyName:         req.CompanyName,
		PlateNumber:         req.PlateNumber,
		PolicyNumber:        req.PolicyNumber,
		InquiryAmount:       req.InquiryAmount,
		PremiumAmount:       req.Premium,
		CoverageAmount:      req.AmountInsured,
		Status:              req.Status,
		DealStatus:          req.DealStatus,
		FollowUpRemark:      req.FollowUpRemark,
		Remarks:             req.Remark,
	}

	for _, field := range []struct {
		name  string
		value *string
		dest  **time.Time
	}{
		{"startDate", req.StartDate, &updates.StartDate},
		{"endDate", req.EndDate, &updates.EndDate},
		{"inquiryDate", req.InquiryDate, &updates.InquiryDate},
		{"approvalDate", req.ApprovalDate, &updates.ApprovalDate},
		{"reminderTime", req.ReminderTime, &updates.ReminderTime},
		{"dealTime", req.DealTime, &updates.DealTime},
	} {
		if field.value == nil {
			continue
		}
		t, err := s.parseOptionalTime(field.name, *field.value)
		if err != nil {
			return nil, err
		}
		*field.dest = t
	}

	// 客户名称随客户类型或对应名称字段变化
	clientType := existing.ClientType
	if req.ClientType != nil {
		clientType = *req.ClientType
	}
	pick := func(v *string, fallback string) string {
		if v != nil {
			return *v
		}
		return fallback
	}
	explicit := ""
	if req.CustomerName != nil {
		explicit = *req.CustomerName
	}
	name := customerNameFor(explicit, clientType,
		pick(req.PersonalName, existing.PersonalName),
		pick(req.CompanyName, existing.CompanyName),
		pick(req.PlateNumber, existing.PlateNumber))
	if name != "" && name != existing.CustomerName {
		updates.CustomerName = &name
	} else {
		name = existing.CustomerName
	}

	if req.Status != nil && *req.Status == db.BusinessStatusApproved &&
		existing.Status != db.BusinessStatusApproved && updates.ApprovalDate == nil {
		now := s.now().In(s.loc)
		updates.ApprovalDate = &now
	}

	log := s.newLog(op, db.OperationUpdate, fmt.Sprintf("更新了业务记录，客户名称：%s", name))
	if err := s.repo.UpdateBusinessWithLog(ctx, id, updates, log); err != nil {
		return nil, err
	}
	return s.repo.GetBusiness(ctx, id)
}

// Delete 删除业务记录并写入删除日志
func (s *BusinessService) Delete(ctx context.Context, id uint, op dto.Operator) error {
	existing, err := s.repo.GetBusiness(ctx, id)
	if err != nil {
		return err
	}
	log := s.newLog(op, db.OperationDelete, fmt.Sprintf("删除了业务记录，客户名称：%s", existing.CustomerName))
	return s.repo.DeleteBusinessWithLog(ctx, id, log)
}

// BatchDelete 批量删除业务记录，返回实际删除数量
func (s *BusinessService) BatchDelete(ctx context.Context, ids []uint, op dto.Operator) (int64, error) {
	log := s.newLog(op, db.OperationDelete, fmt.Sprintf("批量删除了 %d 条业务记录", len(ids)))
	return s.repo.DeleteBusinessesWithLog(ctx, ids, log)
}

// Get 获取单条业务记录
func (s *BusinessService) Get(ctx context.Context, id uint) (*dto.BusinessView, error) {
	b, err := s.repo.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}
	view := converter.BusinessToView(b)
	return &view, nil
}

// Filter 将查询参数转换为仓库过滤条件
func (s *BusinessService) Filter(q dto.BusinessQuery) (*dto.BusinessFilter, error) {
	filter := &dto.BusinessFilter{
		BaseParams:          q.BaseParams,
		AgentID:             q.AgentID,
		UnderwriterID:       q.UnderwriterID,
		InsuranceTypeID:     q.InsuranceTypeID,
		SpecificInsuranceID: q.SpecificInsuranceID,
		BusinessLevelID:     q.BusinessLevelID,
		ClientType:          q.ClientType,
		DealStatus:          q.DealStatus,
		Status:              q.Status,
		CustomerName:        q.CustomerName,
		Keyword:             q.Keyword,
	}
	for _, bound := range []struct {
		field string
		value string
		dst   **decimal.Decimal
	}{
		{"minAmount", q.MinAmount, &filter.MinAmount},
		{"maxAmount", q.MaxAmount, &filter.MaxAmount},
	} {
		if strings.TrimSpace(bound.value) == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(bound.value))
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidAmount, bound.field, bound.value)
		}
		*bound.dst = &d
	}
	from, err := s.parseOptionalTime("startDate", q.StartDate)
	if err != nil {
		return nil, err
	}
	if from != nil {
		start := common.StartOfDay(*from)
		filter.From = &start
	}
	to, err := s.parseOptionalTime("endDate", q.EndDate)
	if err != nil {
		return nil, err
	}
	if to != nil {
		end := common.EndOfDay(*to)
		filter.To = &end
	}
	return filter, nil
}

// List 分页查询业务记录
func (s *BusinessService) List(ctx context.Context, q dto.BusinessQuery) ([]dto.BusinessView, *common.Pagination, error) {
	filter, err := s.Filter(q)
	if err != nil {
		return nil, nil, err
	}
	items, meta, err := s.repo.ListBusinesses(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return converter.BusinessesToViews(items), meta, nil
}

// Logs 返回业务记录的操作日志
func (s *BusinessService) Logs(ctx context.Context, id uint) ([]db.OperationLog, error) {
	if _, err := s.repo.GetBusiness(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListOperationLogs(ctx, db.ModuleBusiness, id)
}

// Export 返回所有符合条件的记录并写入导出日志
func (s *BusinessService) Export(ctx context.Context, q dto.BusinessQuery, op dto.Operator) ([]dto.BusinessView, error) {
	filter, err := s.Filter(q)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.FindBusinesses(ctx, filter)
	if err != nil {
		return nil, err
	}
	log := s.newLog(op, db.OperationExport, fmt.Sprintf("导出了 %d 条业务记录", len(items)))
	if err := s.repo.CreateOperationLog(ctx, log); err != nil {
		logrus.WithError(err).Warn("failed to record export log")
	}
	return converter.BusinessesToViews(items), nil
}

// Import 将表格行转换为业务记录，在一个事务中全部写入。
// 行内没有代理人列时使用 defaultAgentID。
func (s *BusinessService) Import(ctx context.Context, rows []dto.BusinessImportRow, defaultAgentID uint, op dto.Operator) (*dto.BusinessImportResult, error) {
	result := &dto.BusinessImportResult{Total: len(rows)}
	agents := make(map[string]uint)
	insurances := make(map[string]*db.Insurance)
	now := s.now().In(s.loc)

	if defaultAgentID > 0 {
		if err := s.requireRole(ctx, defaultAgentID, db.UserRoleAgent, ErrAgentNotFound); err != nil {
			return nil, err
		}
	}

	businesses := make([]db.Business, 0, len(rows))
	for _, row := range rows {
		fail := func(format string, args ...interface{}) {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %s", row.Line, fmt.Sprintf(format, args...)))
		}
		if strings.TrimSpace(row.CustomerName) == "" {
			fail("客户名称不能为空")
			continue
		}

		agentID := defaultAgentID
		if name := strings.TrimSpace(row.AgentName); name != "" {
			id, ok := agents[name]
			if !ok {
				user, err := s.repo.GetUserByUsername(ctx, name)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, err
				}
				if err == nil && user.Role == db.UserRoleAgent {
					id = user.ID
				}
				agents[name] = id
			}
			agentID = id
		}
		if agentID == 0 {
			fail("未找到代理人 %q", row.AgentName)
			continue
		}

		amount := decimal.Zero
		if v := strings.TrimSpace(row.InquiryAmount); v != "" {
			parsed, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
			if err != nil {
				fail("询价金额无效 %q", v)
				continue
			}
			amount = parsed
		}

		inquiryDate := now
		if v := strings.TrimSpace(row.InquiryDate); v != "" {
			t, err := common.ParseDate(v, s.loc)
			if err != nil {
				fail("登记日期无效 %q", v)
				continue
			}
			inquiryDate = t
		}

		b := db.Business{
			AgentID:        agentID,
			ClientType:     db.ClientTypePersonal,
			CustomerName:   strings.TrimSpace(row.CustomerName),
			PersonalName:   strings.TrimSpace(row.CustomerName),
			PolicyNumber:   strings.TrimSpace(row.PolicyNumber),
			InquiryAmount:  amount,
			PremiumAmount:  amount,
			CoverageAmount: amount,
			Status:         db.BusinessStatusPending,
			DealStatus:     db.DealStatusFromLabel(strings.TrimSpace(row.DealStatus)),
			InquiryDate:    inquiryDate,
			Remarks:        importRemarks(row),
		}
		if b.DealStatus == "" {
			b.DealStatus = db.DealStatusPending
		}

		if name := strings.TrimSpace(row.InsuranceName); name != "" {
			ins, ok := insurances[name]
			if !ok {
				found, err := s.repo.GetInsuranceByName(ctx, name)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, err
				}
				ins = found
				insurances[name] = found
			}
			if ins != nil {
				id, categoryID := ins.ID, ins.CategoryID
				b.InsuranceID = &id
				b.SpecificInsuranceID = &id
				b.InsuranceTypeID = &categoryID
			}
		}
		businesses = append(businesses, b)
	}

	if len(businesses) == 0 {
		return result, ErrNothingToImport
	}
	log := s.newLog(op, db.OperationImport, fmt.Sprintf("导入了 %d 条业务记录", len(businesses)))
	if err := s.repo.ImportBusinessesWithLog(ctx, businesses, log); err != nil {
		return nil, err
	}
	result.Imported = len(businesses)
	return result, nil
}

func importRemarks(row dto.BusinessImportRow) string {
	var parts []string
	if v := strings.TrimSpace(row.Policyholder); v != "" {
		parts = append(parts, "投保人："+v)
	}
	if v := strings.TrimSpace(row.Insured); v != "" {
		parts = append(parts, "被保险人："+v)
	}
	if v := strings.TrimSpace(row.InsurancePeriod); v != "" {
		parts = append(parts, "保险期限："+v)
	}
	return strings.Join(parts, "；")
}
