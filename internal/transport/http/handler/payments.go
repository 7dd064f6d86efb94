package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-payments-api/internal/application/ledger"
	"github.com/go-payments-api/internal/application/order"
	"github.com/go-payments-api/internal/application/payment"
	"github.com/go-payments-api/internal/domain"
	"github.com/go-payments-api/internal/transport/http/middleware"
)

// providerRazorpay is the only provider segment this deployment serves.
const providerRazorpay = "razorpay"

// PaymentHandler handles the payment-order lifecycle endpoints.
type PaymentHandler struct {
	orders   order.Service
	payments payment.Service
	ledger   ledger.Service
}

func NewPaymentHandler(orders order.Service, payments payment.Service, lg ledger.Service) *PaymentHandler {
	return &PaymentHandler{orders: orders, payments: payments, ledger: lg}
}

func (h *PaymentHandler) knownProvider(w http.ResponseWriter, r *http.Request) bool {
	if chi.URLParam(r, "provider") != providerRazorpay {
		writeError(w, http.StatusNotFound, "unknown payment provider")
		return false
	}
	return true
}

// CreateOrder handles POST /api/payments/{provider}/create-order.
// Authentication is optional; when present, the verified subject is recorded
// on the order so the grant can be attributed.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if !h.knownProvider(w, r) {
		return
	}
	var req order.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ident, ok := middleware.IdentityFromContext(r.Context()); ok {
		req.SubjectID = ident.SubjectID
	}
	o, err := h.orders.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, OrderEnvelope{
		ID:       o.OrderID,
		Amount:   o.Amount,
		Currency: o.Currency,
		KeyID:    o.GatewayKeyID,
	})
}

// Verify handles POST /api/payments/{provider}/verify.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if !h.knownProvider(w, r) {
		return
	}
	var req payment.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.payments.Verify(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rec.Outcome != domain.OutcomeVerified {
		writeJSON(w, http.StatusBadRequest, VerifyEnvelope{Success: false, Message: rec.FailureReason})
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{Success: true})
}

// Checkout handles GET /api/payments/{provider}/checkout/{orderID}.
// It returns the descriptor the client-side checkout state machine feeds to
// the provider's payment UI; ?method= narrows the instrument set.
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !h.knownProvider(w, r) {
		return
	}
	o, err := h.payments.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	desc, err := payment.BuildCheckoutDescriptor(o, payment.PaymentMethod(r.URL.Query().Get("method")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

// Credits handles GET /api/credits. The route is mounted behind
// RequireIdentity, so an anonymous request never reaches it.
func (h *PaymentHandler) Credits(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	grants, err := h.ledger.ListBySubject(r.Context(), ident.SubjectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GrantsEnvelope{Data: grants})
}
