package models

import "time"

// Subscription отражает локальную копию подписки платёжного процессора.
// Инвариант: ровно одна строка на пользователя (upsert по user_id).
type Subscription struct {
	UserID               string     `json:"user_id"`
	StripeCustomerID     string     `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string     `json:"stripe_subscription_id,omitempty"`
	PlanName             string     `json:"plan_name"`
	BillingCycle         string     `json:"billing_cycle"`
	Status               string     `json:"status"`
	ReportsLimit         int        `json:"reports_limit"`
	CurrentPeriodStart   *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
}

// CheckoutRequest используется для приёма данных запроса создания checkout-сессии.
type CheckoutRequest struct {
	UserID       string `json:"userId" validate:"required"`
	Plan         string `json:"plan" validate:"required"`
	BillingCycle string `json:"billingCycle"`
	Email        string `json:"email"`
	SuccessURL   string `json:"successUrl"`
	CancelURL    string `json:"cancelUrl"`
}

// SyncCheckoutRequest — запрос синхронизации завершённой checkout-сессии.
type SyncCheckoutRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// ChangePlanRequest — запрос смены тарифного плана.
type ChangePlanRequest struct {
	UserID       string `json:"userId" validate:"required"`
	Plan         string `json:"plan" validate:"required"`
	BillingCycle string `json:"billingCycle"`
}

// FreeSubscriptionRequest — запрос перехода на бесплатный план.
type FreeSubscriptionRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// MarketQuote — котировка по одному символу.
type MarketQuote struct {
	Price   float64 `json:"price"`
	Change  float64 `json:"change"`
	Percent float64 `json:"percent"`
}
