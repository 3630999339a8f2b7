package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"insurance/internal/entity/db"
	"insurance/internal/model"
	"insurance/internal/model/sql"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newTestRepo(t *testing.T) *sql.GormRepository {
	t.Helper()
	gdb, err := model.OpenGormDB(sqlite.Open(filepath.Join(t.TempDir(), "service.db")))
	require.NoError(t, err)
	require.NoError(t, model.MigrateSchema(gdb))
	return sql.NewGormRepository(gdb)
}

func createUser(t *testing.T, repo *sql.GormRepository, username, role string) *db.User {
	t.Helper()
	u := &db.User{Username: username, Password: "x", Name: username, Role: role, Status: true}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

type businessRow struct {
	agentID uint
	at      time.Time
	status  string
	deal    string
	premium int64
	typeID  *uint
}

func insertRows(t *testing.T, repo *sql.GormRepository, rows ...businessRow) {
	t.Helper()
	for _, r := range rows {
		status := r.status
		if status == "" {
			status = db.BusinessStatusPending
		}
		deal := r.deal
		if deal == "" {
			deal = db.DealStatusPending
		}
		b := &db.Business{
			AgentID:         r.agentID,
			ClientType:      db.ClientTypePersonal,
			CustomerName:    "客户",
			PremiumAmount:   decimal.NewFromInt(r.premium),
			Status:          status,
			DealStatus:      deal,
			InquiryDate:     r.at,
			InsuranceTypeID: r.typeID,
		}
		require.NoError(t, repo.CreateBusinessWithLog(context.Background(), b, nil))
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
