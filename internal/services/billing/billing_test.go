package billing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockfortress/stockfortress/internal/config"
	"github.com/stockfortress/stockfortress/internal/models"
	"github.com/stockfortress/stockfortress/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockRepository) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) GetSubscriptionByStripeID(ctx context.Context, stripeSubID string) (*models.Subscription, error) {
	args := m.Called(ctx, stripeSubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) UpdateSubscriptionByStripeID(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpdateSubscriptionStatusByStripeID(ctx context.Context, stripeSubID, status string) (int, error) {
	args := m.Called(ctx, stripeSubID, status)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpdateSubscriptionPlanByUserID(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RefreshSubscriptionPeriodByStripeID(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) DeleteSubscriptionByStripeID(ctx context.Context, stripeSubID string) (int, error) {
	args := m.Called(ctx, stripeSubID)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testStripeConfig() config.Stripe {
	return config.Stripe{
		SecretKey:      "sk_test_dummy",
		WebhookSecret:  "",
		ProMonthly:     "price_pro_monthly",
		ProYearly:      "price_pro_yearly",
		PremiumMonthly: "price_premium_monthly",
		PremiumYearly:  "price_premium_yearly",
	}
}

func TestNew_NotConfiguredWithoutSecretKey(t *testing.T) {
	svc := New(config.Stripe{}, "http://localhost", new(MockRepository), newNoopLogger())
	assert.False(t, svc.Configured())

	_, err := svc.CreateCheckout(context.Background(), models.CheckoutRequest{UserID: "u1", Plan: "pro"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = svc.SyncCheckout(context.Background(), "cs_test")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPriceID(t *testing.T) {
	svc := New(testStripeConfig(), "http://localhost", new(MockRepository), newNoopLogger())

	tests := []struct {
		plan     string
		cycle    string
		expected string
		wantErr  bool
	}{
		{plan: "pro", cycle: "monthly", expected: "price_pro_monthly"},
		{plan: "pro", cycle: "yearly", expected: "price_pro_yearly"},
		{plan: "premium", cycle: "monthly", expected: "price_premium_monthly"},
		{plan: "premium", cycle: "yearly", expected: "price_premium_yearly"},
		{plan: "free", cycle: "monthly", wantErr: true},
		{plan: "pro", cycle: "weekly", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.plan+"/"+tt.cycle, func(t *testing.T) {
			got, err := svc.priceID(tt.plan, tt.cycle)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPlan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReportsLimit(t *testing.T) {
	assert.Equal(t, 3, reportsLimit("free"))
	assert.Equal(t, 30, reportsLimit("pro"))
	assert.Equal(t, 999999, reportsLimit("premium"))
	assert.Equal(t, 3, reportsLimit("unknown"), "неизвестный план получает лимит free")
}

func TestGetSubscription_SyntheticFreePlan(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSubscriptionByUserID", mock.Anything, "u1").
		Return(nil, storage.ErrNotFound).Once()

	svc := New(testStripeConfig(), "http://localhost", repo, newNoopLogger())
	sub, err := svc.GetSubscription(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "free", sub.PlanName)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, 3, sub.ReportsLimit)
	repo.AssertExpectations(t)
}

func TestCreateFree_UpsertsFreeRow(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSubscriptionByUserID", mock.Anything, "u1").
		Return(&models.Subscription{UserID: "u1", StripeCustomerID: "cus_1", PlanName: "pro"}, nil).Once()
	repo.On("UpsertSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
		return s.UserID == "u1" &&
			s.PlanName == "free" &&
			s.ReportsLimit == 3 &&
			s.StripeCustomerID == "cus_1"
	})).Return(nil).Once()

	// Без ключа Stripe отмена внешней подписки пропускается.
	svc := New(config.Stripe{}, "http://localhost", repo, newNoopLogger())
	err := svc.CreateFree(context.Background(), "u1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestChangePlan_InvalidPlan(t *testing.T) {
	svc := New(testStripeConfig(), "http://localhost", new(MockRepository), newNoopLogger())
	err := svc.ChangePlan(context.Background(), models.ChangePlanRequest{
		UserID: "u1", Plan: "platinum", BillingCycle: "monthly",
	})
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestChangePlan_NoSubscriptionRow(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSubscriptionByUserID", mock.Anything, "u1").
		Return(nil, storage.ErrNotFound).Once()

	svc := New(testStripeConfig(), "http://localhost", repo, newNoopLogger())
	err := svc.ChangePlan(context.Background(), models.ChangePlanRequest{
		UserID: "u1", Plan: "pro", BillingCycle: "monthly",
	})
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}
