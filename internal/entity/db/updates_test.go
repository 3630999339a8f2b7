package db

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBusinessUpdatesToMap(t *testing.T) {
	premium := decimal.NewFromInt(300)
	status := BusinessStatusApproved
	remark := ""

	updates := BusinessUpdates{
		PremiumAmount:  &premium,
		Status:         &status,
		FollowUpRemark: &remark,
	}

	got := updates.ToMap()
	assert.Len(t, got, 3)
	assert.Equal(t, premium, got["premium_amount"])
	assert.Equal(t, "approved", got["status"])
	assert.Equal(t, "", got["follow_up_remark"], "empty strings are explicit updates")
	assert.False(t, updates.IsEmpty())
	assert.True(t, BusinessUpdates{}.IsEmpty())
}

func TestUserUpdatesFalseStatus(t *testing.T) {
	off := false
	got := UserUpdates{Status: &off}.ToMap()
	assert.Equal(t, map[string]interface{}{"status": false}, got)
}

func TestResolvedCustomerName(t *testing.T) {
	tests := []struct {
		name string
		b    Business
		want string
	}{
		{name: "personal", b: Business{ClientType: ClientTypePersonal, PersonalName: "张三", CustomerName: "x"}, want: "张三"},
		{name: "company", b: Business{ClientType: ClientTypeCompany, CompanyName: "某公司"}, want: "某公司"},
		{name: "vehicle", b: Business{ClientType: ClientTypeVehicle, PlateNumber: "京A12345"}, want: "京A12345"},
		{name: "fallback", b: Business{ClientType: ClientTypeCompany, CustomerName: "李四"}, want: "李四"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.ResolvedCustomerName())
		})
	}
}

func TestDealStatusLabelRoundTrip(t *testing.T) {
	for _, v := range []string{DealStatusPending, DealStatusSuccess, DealStatusFailed, "custom"} {
		assert.Equal(t, v, DealStatusFromLabel(DealStatusLabel(v)))
	}
}
