package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockfortress/stockfortress/internal/config"
	"github.com/stockfortress/stockfortress/internal/models"
	"github.com/stockfortress/stockfortress/internal/storage"
)

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	cfg := testStripeConfig()
	cfg.WebhookSecret = "whsec_test"
	repo := new(MockRepository)
	svc := New(cfg, "http://localhost", repo, newNoopLogger())

	err := svc.HandleWebhook(context.Background(), []byte(`{"type":"checkout.session.completed"}`), "bad-signature")

	assert.ErrorIs(t, err, ErrSignatureInvalid)
	repo.AssertNotCalled(t, "UpsertSubscription")
	repo.AssertNotCalled(t, "DeleteSubscriptionByStripeID")
}

func TestHandleWebhook_UnknownEventIsIgnored(t *testing.T) {
	repo := new(MockRepository)
	svc := New(testStripeConfig(), "http://localhost", repo, newNoopLogger())

	err := svc.HandleWebhook(context.Background(), []byte(`{"type":"customer.created","data":{"object":{}}}`), "")

	require.NoError(t, err)
	repo.AssertNotCalled(t, "UpsertSubscription")
}

func TestHandleWebhook_SubscriptionUpdated(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSubscriptionByStripeID", mock.Anything, "sub_123").
		Return(&models.Subscription{UserID: "u1", StripeSubscriptionID: "sub_123"}, nil).Once()
	repo.On("UpdateSubscriptionByStripeID", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
		return s.StripeSubscriptionID == "sub_123" &&
			s.Status == "active" &&
			s.CancelAtPeriodEnd
	})).Return(1, nil).Once()

	svc := New(testStripeConfig(), "http://localhost", repo, newNoopLogger())

	payload := []byte(`{
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_123",
			"status": "active",
			"cancel_at_period_end": true,
			"current_period_start": 1767225600,
			"current_period_end": 1769904000
		}}
	}`)
	err := svc.HandleWebhook(context.Background(), payload, "")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleWebhook_SubscriptionUpdatedForUnknownRowIsBenign(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSubscriptionByStripeID", mock.Anything, "sub_999").
		Return(nil, storage.ErrNotFound).Once()

	svc := New(testStripeConfig(), "http://localhost", repo, newNoopLogger())

	payload := []byte(`{
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_999", "status": "active"}}
	}`)
	err := svc.HandleWebhook(context.Background(), payload, "")

	require.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateSubscriptionByStripeID")
}

func TestHandleWebhook_SubscriptionDeleted(t *testing.T) {
	repo := new(MockRepository)
	repo.On("DeleteSubscriptionByStripeID", mock.Anything, "sub_123").Return(1, nil).Once()

	svc := New(testStripeConfig(), "http://localhost", repo, newNoopLogger())

	payload := []byte(`{
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_123"}}
	}`)
	err := svc.HandleWebhook(context.Background(), payload, "")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleWebhook_PaymentFailedMarksPastDue(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpdateSubscriptionStatusByStripeID", mock.Anything, "sub_123", "past_due").
		Return(1, nil).Once()

	svc := New(testStripeConfig(), "http://localhost", repo, newNoopLogger())

	payload := []byte(`{
		"type": "invoice.payment_failed",
		"data": {"object": {"id": "in_1", "subscription": "sub_123"}}
	}`)
	err := svc.HandleWebhook(context.Background(), payload, "")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleWebhook_NotConfigured(t *testing.T) {
	svc := New(config.Stripe{}, "http://localhost", new(MockRepository), newNoopLogger())
	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
