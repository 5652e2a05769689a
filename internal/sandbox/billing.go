package sandbox

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

var catalog = []models.Plan{
	{
		ID:       models.PlanFree,
		Name:     "Free",
		Price:    0,
		Interval: "month",
		Features: []string{"Up to 3 notes", "Unlimited members", "Tag filtering"},
	},
	{
		ID:       models.PlanPro,
		Name:     "Pro",
		Price:    ProPrice,
		Interval: "month",
		Features: []string{"Unlimited notes", "Unlimited members", "Tag filtering", "Priority support"},
	},
}

func (s *Server) plans(w http.ResponseWriter, r *http.Request) {
	ok(w, r, http.StatusOK, "", map[string]any{"plans": catalog})
}

func (s *Server) snapshot(acc *account) models.BillingSnapshot {
	a := acc.Account
	out := models.BillingSnapshot{Account: &a}
	if acc.subscription != nil {
		sub := *acc.subscription
		out.Subscription = &sub
	}
	return out
}

func (s *Server) subscription(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot(s.accounts[current(r).accountID])
	s.mu.Unlock()
	ok(w, r, http.StatusOK, "", snap)
}

type orderRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !s.decode(w, r, &req) {
		return
	}
	p := current(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accounts[p.accountID]
	if acc.Slug != chi.URLParam(r, "slug") {
		fail(w, r, http.StatusForbidden, "You can only upgrade your own account")
		return
	}
	if acc.Plan == models.PlanPro && acc.subscription != nil && acc.subscription.Status == models.SubscriptionActive {
		fail(w, r, http.StatusBadRequest, "Account is already on the Pro plan")
		return
	}

	rec := &payment{
		PaymentRecord: models.PaymentRecord{
			ID:        uuid.NewString(),
			Amount:    ProPrice,
			Currency:  Currency,
			Method:    req.PaymentMethod,
			Status:    "pending",
			CreatedAt: s.now(),
		},
		accountID: p.accountID,
		orderID:   "order_" + uuid.NewString(),
	}
	rec.Subscription.Plan = models.PlanPro
	s.payments = append(s.payments, rec)

	ok(w, r, http.StatusCreated, "Order created", models.PendingOrder{
		OrderID:       rec.orderID,
		PaymentID:     rec.ID,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		RazorpayKeyID: KeyID,
	})
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
	Payment   string `json:"paymentId" validate:"required"`
}

func (s *Server) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	p := current(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec *payment
	for _, pay := range s.payments {
		if pay.ID == req.Payment && pay.accountID == p.accountID {
			rec = pay
		}
	}
	if rec == nil || rec.orderID != req.OrderID {
		fail(w, r, http.StatusNotFound, "Payment not found")
		return
	}
	if !s.validSignature(req.OrderID, req.PaymentID, req.Signature) {
		rec.Status = "failed"
		fail(w, r, http.StatusBadRequest, "Invalid payment signature")
		return
	}

	now := s.now()
	rec.Status = models.SubscriptionActive
	acc := s.accounts[p.accountID]
	acc.Plan = models.PlanPro
	acc.Limit = models.UnlimitedNotes
	acc.subscription = &models.Subscription{
		Status:    models.SubscriptionActive,
		StartDate: now,
		EndDate:   now.AddDate(0, 1, 0),
	}
	ok(w, r, http.StatusOK, "Payment verified. Welcome to Pro!", s.snapshot(acc))
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	p := current(r)
	page, limit := pageQuery(r)

	s.mu.Lock()
	var records []models.PaymentRecord
	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].accountID == p.accountID {
			records = append(records, s.payments[i].PaymentRecord)
		}
	}
	s.mu.Unlock()

	items, pg := paginate(records, page, limit)
	ok(w, r, http.StatusOK, "", map[string]any{"payments": items, "pagination": pg})
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	p := current(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accounts[p.accountID]
	if acc.subscription == nil || acc.subscription.Status != models.SubscriptionActive {
		fail(w, r, http.StatusBadRequest, "No active subscription to cancel")
		return
	}
	acc.subscription.Status = models.SubscriptionCancelled
	ok(w, r, http.StatusOK, "Subscription cancelled. Pro access remains until the end of the billing period.", s.snapshot(acc))
}

// ExpireSubscription переводит подписку в expired и возвращает аккаунт на free (для тестов).
func (s *Server) ExpireSubscription(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountBySlug(slug)
	if acc == nil || acc.subscription == nil {
		return
	}
	acc.subscription.Status = models.SubscriptionExpired
	acc.Plan = models.PlanFree
	acc.Limit = FreeNoteLimit
}
