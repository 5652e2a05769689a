package store

import "github.com/magabrotheeeer/notes-client/internal/models"

// SubscriptionState — слайс биллинга.
//
// Account здесь — собственная копия аккаунта, независимая от SessionState.Account.
type SubscriptionState struct {
	Plans               []models.Plan
	CurrentSubscription *models.Subscription
	Account             *models.Account
	PaymentHistory      []models.PaymentRecord
	PaymentPagination   models.Pagination
	OrderData           *models.PendingOrder
	IsLoading           bool
	Error               string

	Requests Requests
}

// InitialSubscription возвращает пустой слайс биллинга.
func InitialSubscription() SubscriptionState {
	return SubscriptionState{PaymentPagination: models.DefaultPagination()}
}

// PaymentsPayload — полезная нагрузка fetchPaymentHistory/fulfilled.
type PaymentsPayload struct {
	Payments   []models.PaymentRecord
	Pagination models.Pagination
}

func reduceSubscription(s SubscriptionState, a Action) SubscriptionState {
	switch a.Type {
	case TypeSubscriptionClearError:
		s.Error = ""
		return s
	case TypeClearOrderData:
		s.OrderData = nil
		return s
	case TypeFetchPlans, TypeFetchSubscription, TypeCreateOrder,
		TypeVerifyPayment, TypeFetchPayments, TypeCancelSubscription:
	default:
		return s
	}

	requests, out, ok := s.Requests.track(a)
	if !ok {
		return s
	}
	s.Requests = requests

	switch a.Phase {
	case PhasePending:
		s.Error = ""
	case PhaseRejected:
		if out.current {
			s.Error = a.Error
		}
	case PhaseFulfilled:
		if out.apply {
			s = applySubscription(s, a)
		}
	}

	s.IsLoading = s.Requests.Loading()
	return s
}

func applySubscription(s SubscriptionState, a Action) SubscriptionState {
	switch a.Type {
	case TypeFetchPlans:
		if plans, ok := a.Payload.([]models.Plan); ok {
			s.Plans = append([]models.Plan(nil), plans...)
		}
	case TypeFetchSubscription:
		if snap, ok := a.Payload.(models.BillingSnapshot); ok {
			s.CurrentSubscription, s.Account = snapshot(snap)
		}
	case TypeCreateOrder:
		if order, ok := a.Payload.(models.PendingOrder); ok {
			s.OrderData = &order
		}
	case TypeVerifyPayment:
		if snap, ok := a.Payload.(models.BillingSnapshot); ok {
			s.CurrentSubscription, s.Account = snapshot(snap)
			s.OrderData = nil
		}
	case TypeFetchPayments:
		if p, ok := a.Payload.(PaymentsPayload); ok {
			s.PaymentHistory = append([]models.PaymentRecord(nil), p.Payments...)
			s.PaymentPagination = p.Pagination.Normalize()
		}
	case TypeCancelSubscription:
		snap, ok := a.Payload.(models.BillingSnapshot)
		if !ok {
			return s
		}
		prev := s.Account
		s.CurrentSubscription, s.Account = snapshot(snap)
		// Тариф меняется только подтверждённым платежом.
		if prev != nil && s.Account != nil {
			s.Account.Plan = prev.Plan
		}
	}
	return s
}

func snapshot(snap models.BillingSnapshot) (*models.Subscription, *models.Account) {
	var (
		sub *models.Subscription
		acc *models.Account
	)
	if snap.Subscription != nil {
		sub = ptr(*snap.Subscription)
	}
	if snap.Account != nil {
		acc = ptr(*snap.Account)
	}
	return sub, acc
}
