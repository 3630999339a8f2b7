package converter

import (
	"testing"
	"time"

	"insurance/internal/entity/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBusinessToViewResolvesNames(t *testing.T) {
	typeID := uint(3)
	b := &db.Business{
		ID:              7,
		AgentID:         2,
		InsuranceTypeID: &typeID,
		ClientType:      db.ClientTypePersonal,
		CustomerName:    "张三",
		PremiumAmount:   decimal.RequireFromString("199.90"),
		DealStatus:      db.DealStatusSuccess,
		InquiryDate:     time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Agent:           &db.User{ID: 2, Name: "王代理"},
		InsuranceType:   &db.InsuranceCategory{ID: 3, Name: "健康险"},
	}

	view := BusinessToView(b)
	assert.Equal(t, "王代理", view.AgentName)
	assert.Equal(t, "健康险", view.InsuranceTypeName)
	assert.Equal(t, "已成交", view.DealStatusText)
	assert.Empty(t, view.UnderwriterName)
	assert.True(t, view.PremiumAmount.Equal(decimal.RequireFromString("199.9")))
}

func TestUsersToSummariesKeepsOrder(t *testing.T) {
	users := []db.User{{ID: 1, Username: "a"}, {ID: 2, Username: "b"}}
	got := UsersToSummaries(users)
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Username)
	assert.Equal(t, "b", got[1].Username)
}
