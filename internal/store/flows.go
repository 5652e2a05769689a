package store

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/notes-client/internal/apiclient"
	"github.com/magabrotheeeer/notes-client/internal/models"
)

// Размеры страниц составных загрузок.
const (
	DashboardNotes  = 5
	BillingPageSize = 10
	PaymentMethod   = "razorpay"
)

// Checkout открывает платёжный шлюз для заказа и возвращает подписанный ответ шлюза
// (OrderID, PaymentID, Signature).
type Checkout interface {
	Open(ctx context.Context, order models.PendingOrder) (models.PaymentVerification, error)
}

// Bootstrap восстанавливает сессию при запуске: истёкший токен забывается
// без запроса к серверу, действующий дополняется профилем.
func (s *Store) Bootstrap(ctx context.Context) error {
	token := s.State().Session.Token
	if token == "" {
		return nil
	}
	if apiclient.TokenExpired(token, s.now()) {
		s.log.Info("stored token has expired, session cleared")
		s.ForgetSession(ctx)
		return nil
	}
	return s.FetchProfile(ctx)
}

// LoadDashboard параллельно загружает профиль и последние заметки. Подписка
// загружается для администратора, когда профиль уже получен. Возвращает первую
// ошибку; остальные запросы не прерываются.
func (s *Store) LoadDashboard(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error { return s.FetchNotes(ctx, models.NotesQuery{Page: 1, Limit: DashboardNotes}) })
	g.Go(func() error {
		err := s.FetchProfile(ctx)
		if !IsAdmin(s.State().Session) {
			return err
		}
		if subErr := s.FetchSubscription(ctx); err == nil {
			err = subErr
		}
		return err
	})

	return g.Wait()
}

// LoadBilling параллельно загружает тарифы, подписку и первую страницу платежей.
func (s *Store) LoadBilling(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error { return s.FetchPlans(ctx) })
	g.Go(func() error { return s.FetchSubscription(ctx) })
	g.Go(func() error {
		return s.FetchPaymentHistory(ctx, models.PageQuery{Page: 1, Limit: BillingPageSize})
	})

	return g.Wait()
}

// Upgrade переводит аккаунт сессии на тариф planID: создаёт заказ, открывает
// шлюз, подтверждает платёж и перечитывает подписку. Бесплатный тариф и сессия
// без аккаунта ничего не делают.
//
// Если шлюз закрыт без оплаты, заказ остаётся в OrderData до ClearOrderData.
func (s *Store) Upgrade(ctx context.Context, planID string, gateway Checkout) error {
	const op = "store.Upgrade"

	acc := s.State().Session.Account
	if planID == models.PlanFree || acc == nil || acc.Slug == "" {
		return nil
	}

	order, err := s.CreateOrder(ctx, acc.Slug, models.OrderRequest{PaymentMethod: PaymentMethod})
	if err != nil {
		return err
	}

	resp, err := gateway.Open(ctx, order)
	if err != nil {
		s.log.Info("checkout closed without payment", slog.String("order_id", order.OrderID))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.VerifyPayment(ctx, models.PaymentVerification{
		OrderID:   resp.OrderID,
		PaymentID: resp.PaymentID,
		Signature: resp.Signature,
		Payment:   order.PaymentID,
	}); err != nil {
		return err
	}

	return s.FetchSubscription(ctx)
}

// Unsubscribe отменяет подписку и перечитывает её.
func (s *Store) Unsubscribe(ctx context.Context) error {
	if err := s.CancelSubscription(ctx); err != nil {
		return err
	}
	return s.FetchSubscription(ctx)
}
