package store

import (
	"context"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

// FetchPlans загружает каталог тарифов.
func (s *Store) FetchPlans(ctx context.Context) error {
	const op = "store.FetchPlans"

	id := s.begin(TypeFetchPlans)
	reply, err := s.api.Plans(ctx)
	if err != nil {
		return s.reject(op, TypeFetchPlans, id, err, "Failed to fetch plans", quiet)
	}

	s.fulfill(TypeFetchPlans, id, reply.Data.Plans)
	return nil
}

// FetchSubscription загружает подписку и аккаунт.
func (s *Store) FetchSubscription(ctx context.Context) error {
	const op = "store.FetchSubscription"

	id := s.begin(TypeFetchSubscription)
	reply, err := s.api.Subscription(ctx)
	if err != nil {
		return s.reject(op, TypeFetchSubscription, id, err, "Failed to fetch subscription", quiet)
	}

	s.fulfill(TypeFetchSubscription, id, reply.Data)
	return nil
}

// CreateOrder создаёт платёжный заказ на повышение тарифа аккаунта slug.
func (s *Store) CreateOrder(ctx context.Context, slug string, in models.OrderRequest) (models.PendingOrder, error) {
	const op = "store.CreateOrder"

	id := s.begin(TypeCreateOrder)
	reply, err := s.api.CreateOrder(ctx, slug, in)
	if err != nil {
		return models.PendingOrder{}, s.reject(op, TypeCreateOrder, id, err, "Failed to create order", notify)
	}

	s.fulfill(TypeCreateOrder, id, reply.Data)
	return reply.Data, nil
}

// VerifyPayment подтверждает платёж. При успехе подписка и аккаунт заменяются
// ответом сервера, а заказ забывается; при ошибке заказ сохраняется.
func (s *Store) VerifyPayment(ctx context.Context, in models.PaymentVerification) error {
	const op = "store.VerifyPayment"

	id := s.begin(TypeVerifyPayment)
	reply, err := s.api.VerifyPayment(ctx, in)
	if err != nil {
		return s.reject(op, TypeVerifyPayment, id, err, "Payment verification failed", notify)
	}

	s.fulfill(TypeVerifyPayment, id, reply.Data)
	s.success(reply.Message)
	return nil
}

// FetchPaymentHistory загружает страницу истории платежей.
func (s *Store) FetchPaymentHistory(ctx context.Context, q models.PageQuery) error {
	const op = "store.FetchPaymentHistory"

	id := s.begin(TypeFetchPayments)
	reply, err := s.api.Payments(ctx, q)
	if err != nil {
		return s.reject(op, TypeFetchPayments, id, err, "Failed to fetch payment history", quiet)
	}

	s.fulfill(TypeFetchPayments, id, PaymentsPayload{Payments: reply.Data.Payments, Pagination: reply.Data.Pagination})
	return nil
}

// CancelSubscription отменяет подписку. Тариф аккаунта не меняется до даты окончания.
func (s *Store) CancelSubscription(ctx context.Context) error {
	const op = "store.CancelSubscription"

	id := s.begin(TypeCancelSubscription)
	reply, err := s.api.CancelSubscription(ctx)
	if err != nil {
		return s.reject(op, TypeCancelSubscription, id, err, "Failed to cancel subscription", notify)
	}

	s.fulfill(TypeCancelSubscription, id, reply.Data)
	s.success(reply.Message)
	return nil
}
