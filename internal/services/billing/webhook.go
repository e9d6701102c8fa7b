package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/stockfortress/stockfortress/internal/models"
	"github.com/stockfortress/stockfortress/internal/storage"
)

// ErrSignatureInvalid — подпись вебхука не прошла проверку;
// событие отклоняется без изменения состояния.
var ErrSignatureInvalid = errors.New("invalid webhook signature")

// HandleWebhook проверяет подпись события Stripe и применяет его к
// локальному состоянию. Повтор одного и того же события идемпотентен.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	const op = "billing.HandleWebhook"
	if err := s.requireStripe(); err != nil {
		return err
	}
	if err := s.requireRepo(); err != nil {
		return err
	}

	var event stripe.Event
	if s.webhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("stripe webhook received", slog.String("type", string(event.Type)))

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.upsertFromSession(ctx, &sess)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handleSubscriptionUpdated(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handleSubscriptionDeleted(ctx, &sub)

	case "invoice.payment_succeeded":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handlePaymentSucceeded(ctx, &inv)

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handlePaymentFailed(ctx, &inv)

	default:
		s.log.Info("unhandled stripe event", slog.String("type", string(event.Type)))
		return nil
	}
}

// handleSubscriptionUpdated синхронизирует статус, период и флаг отмены.
// Неизвестная подписка молча игнорируется: checkout мог ещё не завершиться.
func (s *Service) handleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	const op = "billing.handleSubscriptionUpdated"

	if _, err := s.repo.GetSubscriptionByStripeID(ctx, sub.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err := s.repo.UpdateSubscriptionByStripeID(ctx, models.Subscription{
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		CurrentPeriodStart:   unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     unixTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// handleSubscriptionDeleted удаляет локальную строку подписки.
func (s *Service) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	const op = "billing.handleSubscriptionDeleted"

	if _, err := s.repo.DeleteSubscriptionByStripeID(ctx, sub.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription deleted", slog.String("subscription_id", sub.ID))
	return nil
}

// handlePaymentSucceeded реактивирует подписку и обновляет границы периода.
func (s *Service) handlePaymentSucceeded(ctx context.Context, inv *stripe.Invoice) error {
	const op = "billing.handlePaymentSucceeded"

	if inv.Subscription == nil || inv.Subscription.ID == "" {
		return nil
	}

	existing, err := s.repo.GetSubscriptionByStripeID(ctx, inv.Subscription.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.api.Subscriptions.Get(inv.Subscription.ID, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.repo.RefreshSubscriptionPeriodByStripeID(ctx, models.Subscription{
		StripeSubscriptionID: sub.ID,
		ReportsLimit:         reportsLimit(existing.PlanName),
		CurrentPeriodStart:   unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     unixTime(sub.CurrentPeriodEnd),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// handlePaymentFailed помечает подписку как past_due.
func (s *Service) handlePaymentFailed(ctx context.Context, inv *stripe.Invoice) error {
	const op = "billing.handlePaymentFailed"

	if inv.Subscription == nil || inv.Subscription.ID == "" {
		return nil
	}
	if _, err := s.repo.UpdateSubscriptionStatusByStripeID(ctx, inv.Subscription.ID, "past_due"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
