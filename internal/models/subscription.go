package models

import "time"

// Статусы подписки.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Plan — тариф из каталога.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Interval string   `json:"interval"`
	Features []string `json:"features"`
}

// Subscription — текущая подписка аккаунта.
type Subscription struct {
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// PaymentRecord — запись истории платежей (только чтение).
type PaymentRecord struct {
	ID           string    `json:"id"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Method       string    `json:"method"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	Subscription struct {
		Plan string `json:"plan"`
	} `json:"subscription"`
}

// PendingOrder — платёжный заказ, ожидающий подписи шлюза.
type PendingOrder struct {
	OrderID       string  `json:"orderId"`
	PaymentID     string  `json:"paymentId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	RazorpayKeyID string  `json:"razorpayKeyId"`
}

// OrderRequest — тело запроса на создание заказа.
type OrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// PaymentVerification — подписанный обратный вызов шлюза вместе с ID платежа.
type PaymentVerification struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	Payment   string `json:"paymentId"`
}

// BillingSnapshot — авторитетный снимок подписки и аккаунта с сервера.
type BillingSnapshot struct {
	Subscription *Subscription `json:"subscription"`
	Account      *Account      `json:"account"`
}
