// Package billing зеркалирует подписки платёжного процессора (Stripe)
// в локальное хранилище. Все мутации — идемпотентные upsert по user_id
// либо по идентификатору подписки процессора: повторная доставка одного
// и того же вебхука не создаёт вторую строку.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/stockfortress/stockfortress/internal/config"
	"github.com/stockfortress/stockfortress/internal/models"
	"github.com/stockfortress/stockfortress/internal/storage"
)

var (
	// ErrNotConfigured — Stripe или база данных не сконфигурированы.
	ErrNotConfigured = errors.New("billing is not configured")
	// ErrInvalidPlan — неизвестный план или цикл оплаты.
	ErrInvalidPlan = errors.New("invalid plan or billing cycle")
	// ErrSubscriptionNotFound — у пользователя нет подписки.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrNoStripeSubscription — локальная строка есть, но подписки процессора нет.
	ErrNoStripeSubscription = errors.New("no stripe subscription to change")
)

// planReports — лимит отчётов по плану; premium фактически безлимитен.
var planReports = map[string]int{
	"free":    3,
	"pro":     30,
	"premium": 999999,
}

// SubscriptionRepository описывает методы хранилища подписок.
type SubscriptionRepository interface {
	UpsertSubscription(ctx context.Context, sub models.Subscription) error
	GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	GetSubscriptionByStripeID(ctx context.Context, stripeSubID string) (*models.Subscription, error)
	UpdateSubscriptionByStripeID(ctx context.Context, sub models.Subscription) (int, error)
	UpdateSubscriptionStatusByStripeID(ctx context.Context, stripeSubID, status string) (int, error)
	UpdateSubscriptionPlanByUserID(ctx context.Context, sub models.Subscription) (int, error)
	RefreshSubscriptionPeriodByStripeID(ctx context.Context, sub models.Subscription) (int, error)
	DeleteSubscriptionByStripeID(ctx context.Context, stripeSubID string) (int, error)
}

// Service — мост между платёжным процессором и локальным хранилищем.
type Service struct {
	api           *client.API
	repo          SubscriptionRepository
	cfg           config.Stripe
	clientURL     string
	webhookSecret string
	log           *slog.Logger
}

// New создает новый Service. api равен nil, когда Stripe не сконфигурирован;
// repo равен nil, когда не сконфигурирована база. Оба случая дают
// ErrNotConfigured при вызове операций.
func New(cfg config.Stripe, clientURL string, repo SubscriptionRepository, log *slog.Logger) *Service {
	var api *client.API
	if cfg.SecretKey != "" {
		api = client.New(cfg.SecretKey, nil)
	}
	return &Service{
		api:           api,
		repo:          repo,
		cfg:           cfg,
		clientURL:     clientURL,
		webhookSecret: cfg.WebhookSecret,
		log:           log,
	}
}

// Configured сообщает, доступен ли Stripe.
func (s *Service) Configured() bool {
	return s.api != nil
}

func (s *Service) requireStripe() error {
	if s.api == nil {
		return ErrNotConfigured
	}
	return nil
}

func (s *Service) requireRepo() error {
	if s.repo == nil {
		return ErrNotConfigured
	}
	return nil
}

// priceID возвращает идентификатор цены Stripe для плана и цикла оплаты.
func (s *Service) priceID(plan, cycle string) (string, error) {
	switch plan + "/" + cycle {
	case "pro/monthly":
		return s.cfg.ProMonthly, nil
	case "pro/yearly":
		return s.cfg.ProYearly, nil
	case "premium/monthly":
		return s.cfg.PremiumMonthly, nil
	case "premium/yearly":
		return s.cfg.PremiumYearly, nil
	}
	return "", ErrInvalidPlan
}

// CreateCheckout создает checkout-сессию Stripe и возвращает её URL.
// Клиент Stripe переиспользуется: если сохранённый customer удалён на
// стороне процессора, создаётся новый и строка в базе обновляется.
func (s *Service) CreateCheckout(ctx context.Context, req models.CheckoutRequest) (string, error) {
	const op = "billing.CreateCheckout"
	if err := s.requireStripe(); err != nil {
		return "", err
	}
	if err := s.requireRepo(); err != nil {
		return "", err
	}

	plan := strings.ToLower(req.Plan)
	cycle := defaultCycle(req.BillingCycle)
	priceID, err := s.priceID(plan, cycle)
	if err != nil {
		return "", err
	}

	customerID, err := s.resolveCustomer(ctx, req.UserID, req.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.clientURL + "/dashboard?stripe_success=1&session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.clientURL + "/dashboard?stripe_cancel=1"
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("plan", plan)
	params.AddMetadata("billing_cycle", cycle)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sess.URL, nil
}

// resolveCustomer возвращает живой customer id для пользователя,
// создавая нового клиента Stripe при необходимости.
func (s *Service) resolveCustomer(ctx context.Context, userID, email string) (string, error) {
	existing, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	if existing != nil && existing.StripeCustomerID != "" {
		cust, err := s.api.Customers.Get(existing.StripeCustomerID, nil)
		if err == nil && !cust.Deleted {
			return cust.ID, nil
		}
		s.log.Warn("stored stripe customer is gone, creating a new one",
			slog.String("customer_id", existing.StripeCustomerID))
	}

	params := &stripe.CustomerParams{}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.AddMetadata("app_user_id", userID)
	cust, err := s.api.Customers.New(params)
	if err != nil {
		return "", err
	}

	if existing != nil {
		existing.StripeCustomerID = cust.ID
		if err := s.repo.UpsertSubscription(ctx, *existing); err != nil {
			return "", err
		}
	}
	return cust.ID, nil
}

// SyncCheckout синхронизирует завершённую checkout-сессию в хранилище.
func (s *Service) SyncCheckout(ctx context.Context, sessionID string) error {
	const op = "billing.SyncCheckout"
	if err := s.requireStripe(); err != nil {
		return err
	}

	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("subscription")
	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.upsertFromSession(ctx, sess)
}

// upsertFromSession создает/обновляет подписку из метаданных checkout-сессии.
func (s *Service) upsertFromSession(ctx context.Context, sess *stripe.CheckoutSession) error {
	const op = "billing.upsertFromSession"
	if err := s.requireRepo(); err != nil {
		return err
	}

	userID := sess.Metadata["user_id"]
	plan := sess.Metadata["plan"]
	cycle := sess.Metadata["billing_cycle"]
	if userID == "" || plan == "" || cycle == "" {
		return fmt.Errorf("%s: missing required session metadata", op)
	}
	if sess.Subscription == nil || sess.Subscription.ID == "" {
		return fmt.Errorf("%s: missing subscription id on session", op)
	}

	// Полные данные подписки берём у процессора, а не из события.
	sub, err := s.api.Subscriptions.Get(sess.Subscription.ID, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	periodStart := unixTime(sub.CurrentPeriodStart)
	periodEnd := unixTime(sub.CurrentPeriodEnd)
	return s.repo.UpsertSubscription(ctx, models.Subscription{
		UserID:               userID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: sub.ID,
		PlanName:             plan,
		BillingCycle:         cycle,
		Status:               "active",
		ReportsLimit:         reportsLimit(plan),
		CurrentPeriodStart:   periodStart,
		CurrentPeriodEnd:     periodEnd,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	})
}

// ChangePlan меняет тариф существующей подписки Stripe с пропорциональным
// перерасчётом и зеркалирует результат локально в том же запросе.
func (s *Service) ChangePlan(ctx context.Context, req models.ChangePlanRequest) error {
	const op = "billing.ChangePlan"
	if err := s.requireStripe(); err != nil {
		return err
	}
	if err := s.requireRepo(); err != nil {
		return err
	}

	plan := strings.ToLower(req.Plan)
	cycle := defaultCycle(strings.ToLower(req.BillingCycle))
	priceID, err := s.priceID(plan, cycle)
	if err != nil {
		return err
	}

	existing, err := s.repo.GetSubscriptionByUserID(ctx, req.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSubscriptionNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if existing.StripeSubscriptionID == "" {
		return ErrNoStripeSubscription
	}

	getParams := &stripe.SubscriptionParams{}
	getParams.AddExpand("items.data.price")
	stripeSub, err := s.api.Subscriptions.Get(existing.StripeSubscriptionID, getParams)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(stripeSub.Items.Data) == 0 {
		return fmt.Errorf("%s: subscription has no items", op)
	}

	updateParams := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
		ProrationBehavior: stripe.String("create_prorations"),
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(stripeSub.Items.Data[0].ID),
				Price: stripe.String(priceID),
			},
		},
	}
	updateParams.AddMetadata("user_id", req.UserID)
	updateParams.AddMetadata("plan", plan)
	updateParams.AddMetadata("billing_cycle", cycle)

	updated, err := s.api.Subscriptions.Update(stripeSub.ID, updateParams)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	status := string(updated.Status)
	if status == "" {
		status = "active"
	}
	_, err = s.repo.UpdateSubscriptionPlanByUserID(ctx, models.Subscription{
		UserID:             req.UserID,
		PlanName:           plan,
		BillingCycle:       cycle,
		Status:             status,
		ReportsLimit:       reportsLimit(plan),
		CurrentPeriodStart: unixTime(updated.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(updated.CurrentPeriodEnd),
		CancelAtPeriodEnd:  updated.CancelAtPeriodEnd,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateFree переводит пользователя на бесплатный план, отменяя подписку
// процессора, если она есть.
func (s *Service) CreateFree(ctx context.Context, userID string) error {
	const op = "billing.CreateFree"
	if err := s.requireRepo(); err != nil {
		return err
	}

	existing, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if existing != nil && existing.StripeSubscriptionID != "" && s.api != nil {
		if _, err := s.api.Subscriptions.Cancel(existing.StripeSubscriptionID, nil); err != nil {
			s.log.Warn("failed to cancel stripe subscription",
				slog.String("subscription_id", existing.StripeSubscriptionID),
				slog.Any("err", err))
		}
	}

	free := models.Subscription{
		UserID:       userID,
		PlanName:     "free",
		BillingCycle: "monthly",
		Status:       "active",
		ReportsLimit: reportsLimit("free"),
	}
	if existing != nil {
		free.StripeCustomerID = existing.StripeCustomerID
	}
	if err := s.repo.UpsertSubscription(ctx, free); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSubscription возвращает подписку пользователя. При отсутствии строки
// возвращается синтетический бесплатный план.
func (s *Service) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "billing.GetSubscription"
	if err := s.requireRepo(); err != nil {
		return nil, err
	}

	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.Subscription{
			UserID:       userID,
			PlanName:     "free",
			BillingCycle: "monthly",
			Status:       "active",
			ReportsLimit: reportsLimit("free"),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

func reportsLimit(plan string) int {
	if limit, ok := planReports[plan]; ok {
		return limit
	}
	return planReports["free"]
}

func defaultCycle(cycle string) string {
	if cycle == "" {
		return "monthly"
	}
	return cycle
}

func unixTime(ts int64) *time.Time {
	if ts == 0 {
		now := time.Now().UTC()
		return &now
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
