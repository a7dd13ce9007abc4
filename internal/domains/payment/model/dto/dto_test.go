package dto_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"localguide/internal/domains/payment/model"
	"localguide/internal/domains/payment/model/dto"
	"localguide/shared/constant"
)

func TestListPaymentsQuery_Filter(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		role      string
		wantWhere string
	}{
		{name: "tourist sees own payments", url: "/payments", role: constant.RoleTourist, wantWhere: "(payments.user_id = :user_id)"},
		{name: "guide sees payments for own tours", url: "/payments?status=paid", role: constant.RoleGuide, wantWhere: "(bookings.guide_id = :scope_guide_id AND payments.status = :status)"},
		{name: "admin sees everything", url: "/payments", role: constant.RoleAdmin, wantWhere: ""},
		{name: "unknown status ignored", url: "/payments?status=settled", role: constant.RoleAdmin, wantWhere: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query dto.ListPaymentsQuery

			query.FromRequest(httptest.NewRequest("GET", tt.url, nil))

			filter := query.Filter("user-1", tt.role)
			where, _ := filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, "payments.created_at", query.SortBy)
		})
	}
}

func TestPendingPayment(t *testing.T) {
	pending := dto.PendingPayment{BookingID: "b-1", UserID: "u-1", Amount: 65, Currency: "usd", StripeSessionID: "cs_1"}

	payment := pending.ToModel("u@example.com")

	assert.NotEmpty(t, payment.ID)
	assert.Equal(t, model.StatusPending, payment.Status)
	assert.Equal(t, "cs_1", payment.StripeSessionID)
	assert.Empty(t, payment.StripePaymentID)
}
