package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stockfortress/stockfortress/internal/models"
)

// UpsertSubscription вставляет или обновляет подписку по user_id.
// Повторное применение того же события не создаёт вторую строку.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpsertSubscription"

	query := `INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id,
			      plan_name, billing_cycle, status, reports_limit,
			      current_period_start, current_period_end, cancel_at_period_end, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
			  ON CONFLICT (user_id) DO UPDATE
			  SET stripe_customer_id = EXCLUDED.stripe_customer_id,
			      stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			      plan_name = EXCLUDED.plan_name,
			      billing_cycle = EXCLUDED.billing_cycle,
			      status = EXCLUDED.status,
			      reports_limit = EXCLUDED.reports_limit,
			      current_period_start = EXCLUDED.current_period_start,
			      current_period_end = EXCLUDED.current_period_end,
			      cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			      updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query,
		sub.UserID, nullIfEmpty(sub.StripeCustomerID), nullIfEmpty(sub.StripeSubscriptionID),
		sub.PlanName, sub.BillingCycle, sub.Status, sub.ReportsLimit,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSubscriptionByUserID возвращает подписку пользователя.
func (s *Storage) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUserID"

	query := subscriptionSelect + ` WHERE user_id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscriptionByStripeID возвращает подписку по идентификатору процессора.
func (s *Storage) GetSubscriptionByStripeID(ctx context.Context, stripeSubID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByStripeID"

	query := subscriptionSelect + ` WHERE stripe_subscription_id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, stripeSubID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateSubscriptionByStripeID синхронизирует статус, период и флаг отмены
// по идентификатору подписки процессора.
func (s *Storage) UpdateSubscriptionByStripeID(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.UpdateSubscriptionByStripeID"

	query := `UPDATE subscriptions
			  SET status = $1, current_period_start = $2, current_period_end = $3,
			      cancel_at_period_end = $4, updated_at = now()
			  WHERE stripe_subscription_id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		sub.Status, sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd, sub.StripeSubscriptionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateSubscriptionStatusByStripeID меняет только статус подписки.
func (s *Storage) UpdateSubscriptionStatusByStripeID(ctx context.Context, stripeSubID, status string) (int, error) {
	const op = "storage.UpdateSubscriptionStatusByStripeID"

	result, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1, updated_at = now() WHERE stripe_subscription_id = $2`,
		status, stripeSubID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateSubscriptionPlanByUserID обновляет тариф после смены плана.
func (s *Storage) UpdateSubscriptionPlanByUserID(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.UpdateSubscriptionPlanByUserID"

	query := `UPDATE subscriptions
			  SET plan_name = $1, billing_cycle = $2, status = $3, reports_limit = $4,
			      current_period_start = $5, current_period_end = $6,
			      cancel_at_period_end = $7, updated_at = now()
			  WHERE user_id = $8`
	result, err := s.DB.ExecContext(ctx, query,
		sub.PlanName, sub.BillingCycle, sub.Status, sub.ReportsLimit,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd, sub.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RefreshSubscriptionPeriodByStripeID реактивирует подписку после успешной
// оплаты: статус active, лимит отчётов и границы периода обновляются.
func (s *Storage) RefreshSubscriptionPeriodByStripeID(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.RefreshSubscriptionPeriodByStripeID"

	query := `UPDATE subscriptions
			  SET status = 'active', reports_limit = $1,
			      current_period_start = $2, current_period_end = $3, updated_at = now()
			  WHERE stripe_subscription_id = $4`
	result, err := s.DB.ExecContext(ctx, query,
		sub.ReportsLimit, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.StripeSubscriptionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteSubscriptionByStripeID удаляет локальную строку подписки.
func (s *Storage) DeleteSubscriptionByStripeID(ctx context.Context, stripeSubID string) (int, error) {
	const op = "storage.DeleteSubscriptionByStripeID"

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE stripe_subscription_id = $1`, stripeSubID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

const subscriptionSelect = `SELECT user_id, stripe_customer_id, stripe_subscription_id,
	plan_name, billing_cycle, status, reports_limit,
	current_period_start, current_period_end, cancel_at_period_end
	FROM subscriptions`

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	var sub models.Subscription
	var customerID, subscriptionID sql.NullString
	if err := row.Scan(&sub.UserID, &customerID, &subscriptionID,
		&sub.PlanName, &sub.BillingCycle, &sub.Status, &sub.ReportsLimit,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd); err != nil {
		return nil, err
	}
	sub.StripeCustomerID = customerID.String
	sub.StripeSubscriptionID = subscriptionID.String
	return &sub, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
