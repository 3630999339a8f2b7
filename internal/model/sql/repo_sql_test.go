package sql

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestRepo(t *testing.T) *GormRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&db.User{}, &db.InsuranceCategory{}, &db.Insurance{},
		&db.BusinessLevel{}, &db.Business{}, &db.OperationLog{},
	))
	return NewGormRepository(gdb)
}

func seedAgent(t *testing.T, repo *GormRepository, username string) *db.User {
	t.Helper()
	agent := &db.User{Username: username, Password: "x", Name: username, Role: db.UserRoleAgent, Status: true}
	require.NoError(t, repo.CreateUser(context.Background(), agent))
	return agent
}

func newBusiness(agentID uint, inquiry time.Time, deal string, premium int64) *db.Business {
	return &db.Business{
		AgentID:       agentID,
		ClientType:    db.ClientTypePersonal,
		CustomerName:  "客户",
		PremiumAmount: decimal.NewFromInt(premium),
		Status:        db.BusinessStatusPending,
		DealStatus:    deal,
		InquiryDate:   inquiry,
	}
}

func TestCreateBusinessWithLogSetsRelatedID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	agent := seedAgent(t, repo, "agent1")

	b := newBusiness(agent.ID, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), db.DealStatusPending, 100)
	log := &db.OperationLog{OperationType: db.OperationCreate, Module: db.ModuleBusiness, OperationTime: time.Now()}
	require.NoError(t, repo.CreateBusinessWithLog(ctx, b, log))
	require.NotZero(t, b.ID)
	assert.Equal(t, b.ID, log.RelatedID)

	logs, err := repo.ListOperationLogs(ctx, db.ModuleBusiness, b.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	got, err := repo.GetBusiness(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Agent)
	assert.Equal(t, "agent1", got.Agent.Name)
}

func TestUpdateBusinessWithLogNotFound(t *testing.T) {
	repo := newTestRepo(t)
	status := db.BusinessStatusApproved
	err := repo.UpdateBusinessWithLog(context.Background(), 999, db.BusinessUpdates{Status: &status}, &db.OperationLog{})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteBusinessesWithLog(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	agent := seedAgent(t, repo, "agent1")

	var ids []uint
	for i := 0; i < 3; i++ {
		b := newBusiness(agent.ID, time.Now().UTC(), db.DealStatusPending, 10)
		require.NoError(t, repo.CreateBusinessWithLog(ctx, b, nil))
		ids = append(ids, b.ID)
	}

	deleted, err := repo.DeleteBusinessesWithLog(ctx, append(ids[:2:2], 12345), &db.OperationLog{
		OperationType: db.OperationDelete,
		Module:        db.ModuleBusiness,
		OperationTime: time.Now(),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	count, err := repo.CountBusinessesByAgents(ctx, []uint{agent.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	logs, err := repo.ListOperationLogs(ctx, db.ModuleBusiness, ids[0])
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestListBusinessesFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	a1 := seedAgent(t, repo, "a1")
	a2 := seedAgent(t, repo, "a2")

	day := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateBusinessWithLog(ctx, newBusiness(a1.ID, day, db.DealStatusSuccess, 100), nil))
	require.NoError(t, repo.CreateBusinessWithLog(ctx, newBusiness(a1.ID, day.AddDate(0, 0, 1), db.DealStatusPending, 200), nil))
	require.NoError(t, repo.CreateBusinessWithLog(ctx, newBusiness(a2.ID, day, db.DealStatusSuccess, 300), nil))

	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)

	tests := []struct {
		name   string
		filter dto.BusinessFilter
		want   int64
	}{
		{name: "all", filter: dto.BusinessFilter{}, want: 3},
		{name: "agent", filter: dto.BusinessFilter{AgentID: a1.ID}, want: 2},
		{name: "deal status", filter: dto.BusinessFilter{DealStatus: db.DealStatusSuccess}, want: 2},
		{name: "day range", filter: dto.BusinessFilter{From: &from, To: &to}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, meta, err := repo.ListBusinesses(ctx, &tt.filter)
			require.NoError(t, err)
			assert.EqualValues(t, tt.want, meta.TotalCount)
			assert.Len(t, items, int(tt.want))
		})
	}
}

func TestAggregateBusinesses(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	agent := seedAgent(t, repo, "a1")

	day := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	for i, deal := range []string{db.DealStatusPending, db.DealStatusSuccess, db.DealStatusSuccess} {
		require.NoError(t, repo.CreateBusinessWithLog(ctx, newBusiness(agent.ID, day, deal, int64(100*(i+1))), nil))
	}

	all, err := repo.AggregateBusinesses(ctx, dto.BusinessStatsFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Count)
	assert.True(t, all.Premium.Equal(decimal.NewFromInt(600)), all.Premium.String())

	deals, err := repo.AggregateBusinesses(ctx, dto.BusinessStatsFilter{DealColumn: "deal_status", DealValue: db.DealStatusSuccess})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deals.Count)
	assert.True(t, deals.Premium.Equal(decimal.NewFromInt(500)))

	empty, err := repo.AggregateBusinesses(ctx, dto.BusinessStatsFilter{AgentID: 999})
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.True(t, empty.Premium.IsZero())

	_, err = repo.AggregateBusinesses(ctx, dto.BusinessStatsFilter{DealColumn: "1=1; --", DealValue: "x"})
	assert.Error(t, err)
}

func TestCategoryInUse(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	cat := &db.InsuranceCategory{Name: "健康险"}
	require.NoError(t, repo.CreateCategory(ctx, cat))
	inUse, err := repo.CategoryInUse(ctx, cat.ID)
	require.NoError(t, err)
	assert.False(t, inUse)

	require.NoError(t, repo.CreateInsurance(ctx, &db.Insurance{Name: "百万医疗", Code: "H001", CategoryID: cat.ID, Status: true}))
	inUse, err = repo.CategoryInUse(ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	err = repo.CreateCategory(ctx, &db.InsuranceCategory{Name: "健康险"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestUpdateUserKeepsFalseStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	agent := seedAgent(t, repo, "a1")

	off := false
	require.NoError(t, repo.UpdateUser(ctx, agent.ID, db.UserUpdates{Status: &off}))
	got, err := repo.GetUserByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.False(t, got.Status)

	err = repo.UpdateUser(ctx, 4242, db.UserUpdates{Status: &off})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCreateBusinessWithLogRollsBackOnLogFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	repo := NewGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `business`")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `operation_log`")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	b := newBusiness(1, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), db.DealStatusPending, 100)
	err = repo.CreateBusinessWithLog(context.Background(), b, &db.OperationLog{
		OperationType: db.OperationCreate,
		Module:        db.ModuleBusiness,
		OperationTime: time.Now(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
