package model

import (
	"context"
	"insurance/internal/entity/common"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"

	"gorm.io/gorm"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户、代理人、出单员
	CreateUser(ctx context.Context, user *db.User) error
	UpdateUser(ctx context.Context, id uint, updates db.UserUpdates) error
	GetUserByID(ctx context.Context, id uint) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	ListUsers(ctx context.Context, params *dto.UserQuery) ([]db.User, *common.Pagination, error)
	ListUsersByIDs(ctx context.Context, ids []uint) ([]db.User, error)
	DeleteUser(ctx context.Context, id uint) error
	DeleteUsers(ctx context.Context, role string, ids []uint) (int64, error)
	CountUsers(ctx context.Context, role string) (int64, error)

	// 险种分类与保险产品
	ListCategories(ctx context.Context) ([]db.InsuranceCategory, error)
	CountInsurancesByCategory(ctx context.Context) (map[uint]int64, error)
	GetCategory(ctx context.Context, id uint) (*db.InsuranceCategory, error)
	GetCategoryByName(ctx context.Context, name string) (*db.InsuranceCategory, error)
	CreateCategory(ctx context.Context, category *db.InsuranceCategory) error
	UpdateCategory(ctx context.Context, id uint, name string) error
	DeleteCategory(ctx context.Context, id uint) error
	CategoryInUse(ctx context.Context, id uint) (bool, error)

	CreateInsurance(ctx context.Context, insurance *db.Insurance) error
	UpdateInsurance(ctx context.Context, id uint, updates db.InsuranceUpdates) error
	GetInsurance(ctx context.Context, id uint) (*db.Insurance, error)
	GetInsuranceByName(ctx context.Context, name string) (*db.Insurance, error)
	ListInsurances(ctx context.Context, params *dto.InsuranceQuery) ([]db.Insurance, *common.Pagination, error)
	DeleteInsurance(ctx context.Context, id uint) error
	CountInsurances(ctx context.Context) (int64, error)

	// 业务等级
	ListBusinessLevels(ctx context.Context, params *dto.BusinessLevelQuery) ([]db.BusinessLevel, error)
	GetBusinessLevel(ctx context.Context, id uint) (*db.BusinessLevel, error)
	GetBusinessLevelByName(ctx context.Context, name string) (*db.BusinessLevel, error)
	CreateBusinessLevel(ctx context.Context, level *db.BusinessLevel) error
	UpdateBusinessLevel(ctx context.Context, id uint, updates db.BusinessLevelUpdates) error
	DeleteBusinessLevel(ctx context.Context, id uint) error

	// 业务记录，写操作与操作日志在同一事务内
	ListBusinesses(ctx context.Context, filter *dto.BusinessFilter) ([]db.Business, *common.Pagination, error)
	FindBusinesses(ctx context.Context, filter *dto.BusinessFilter) ([]db.Business, error)
	GetBusiness(ctx context.Context, id uint) (*db.Business, error)
	CountBusinessesByAgents(ctx context.Context, agentIDs []uint) (int64, error)
	CreateBusinessWithLog(ctx context.Context, business *db.Business, log *db.OperationLog) error
	UpdateBusinessWithLog(ctx context.Context, id uint, updates db.BusinessUpdates, log *db.OperationLog) error
	DeleteBusinessWithLog(ctx context.Context, id uint, log *db.OperationLog) error
	DeleteBusinessesWithLog(ctx context.Context, ids []uint, log *db.OperationLog) (int64, error)
	ImportBusinessesWithLog(ctx context.Context, businesses []db.Business, log *db.OperationLog) error

	// 操作日志
	CreateOperationLog(ctx context.Context, log *db.OperationLog) error
	ListOperationLogs(ctx context.Context, module string, relatedID uint) ([]db.OperationLog, error)

	// 统计
	AggregateBusinesses(ctx context.Context, filter dto.BusinessStatsFilter) (dto.BusinessAggregate, error)
	ListBusinessFacts(ctx context.Context, filter dto.BusinessStatsFilter) ([]dto.BusinessFact, error)

	// DB 返回底层连接，供备份服务使用。
	DB() *gorm.DB
	Ping(ctx context.Context) error
}
