package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-payments-api/internal/application/order"
	"github.com/go-payments-api/internal/application/payment"
	"github.com/go-payments-api/internal/domain"
	"github.com/go-payments-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) Create(ctx context.Context, req order.CreateRequest) (*domain.Order, error) {
	args := m.Called(ctx, req)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) Verify(ctx context.Context, req payment.VerifyRequest) (*domain.VerificationRecord, error) {
	args := m.Called(ctx, req)
	if v, _ := args.Get(0).(*domain.VerificationRecord); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPaymentService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLedgerService struct{ mock.Mock }

func (m *mockLedgerService) Grant(ctx context.Context, o *domain.Order) (*domain.CreditGrant, error) {
	args := m.Called(ctx, o)
	if g, _ := args.Get(0).(*domain.CreditGrant); g != nil {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockLedgerService) ListBySubject(ctx context.Context, subjectID string) ([]domain.CreditGrant, error) {
	args := m.Called(ctx, subjectID)
	if grants, _ := args.Get(0).([]domain.CreditGrant); grants != nil {
		return grants, args.Error(1)
	}
	return nil, args.Error(1)
}

type stubVerifier struct {
	ident *domain.Identity
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*domain.Identity, error) {
	if s.ident == nil {
		return nil, &domain.AuthError{Code: domain.AuthCodeTokenInvalid, Reason: "token invalid"}
	}
	return s.ident, nil
}

func newTestRouter(os *mockOrderService, ps *mockPaymentService, ls *mockLedgerService, v middleware.TokenVerifier) http.Handler {
	h := NewPaymentHandler(os, ps, ls)
	r := chi.NewRouter()
	if v != nil {
		r.Use(middleware.Identity(v))
	}
	r.Route("/api/payments/{provider}", func(r chi.Router) {
		r.Post("/create-order", h.CreateOrder)
		r.Post("/verify", h.Verify)
		r.Get("/checkout/{orderID}", h.Checkout)
	})
	r.With(middleware.RequireIdentity).Get("/api/credits", h.Credits)
	return r
}

// --- create-order ---

func TestCreateOrder_Success(t *testing.T) {
	os := &mockOrderService{}
	os.On("Create", mock.Anything, mock.AnythingOfType("order.CreateRequest")).Return(&domain.Order{
		OrderID:      "order_ABC123",
		Amount:       996,
		Currency:     "INR",
		GatewayKeyID: "rzp_test_key",
		Status:       domain.OrderCreated,
	}, nil)

	body := `{"amount":12.00,"currency":"USD","packageId":"starter-pack"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/razorpay/create-order", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(os, nil, nil, nil).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var env OrderEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "order_ABC123", env.ID)
	assert.Equal(t, int64(996), env.Amount)
	assert.Equal(t, "INR", env.Currency)
	assert.Equal(t, "rzp_test_key", env.KeyID)
}

func TestCreateOrder_UnknownProvider(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/stripe/create-order", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	newTestRouter(&mockOrderService{}, nil, nil, nil).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/razorpay/create-order", strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()
	newTestRouter(&mockOrderService{}, nil, nil, nil).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateOrder_GatewayDown_502(t *testing.T) {
	os := &mockOrderService{}
	os.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("gateway order creation: %w", domain.ErrGatewayUnavailable))

	body := `{"amount":12.00,"currency":"USD","packageId":"starter-pack"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/razorpay/create-order", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(os, nil, nil, nil).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.NotEmpty(t, env.Message)
}

func TestCreateOrder_AuthenticatedRequest_CarriesSubject(t *testing.T) {
	os := &mockOrderService{}
	os.On("Create", mock.Anything, mock.MatchedBy(func(req order.CreateRequest) bool {
		return req.SubjectID == "u1"
	})).Return(&domain.Order{OrderID: "order_ABC123", Status: domain.OrderCreated}, nil)

	body := `{"amount":12.00,"currency":"USD","packageId":"starter-pack"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/razorpay/create-order", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	newTestRouter(os, nil, nil, &stubVerifier{ident: &domain.Identity{SubjectID: "u1"}}).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	os.AssertExpectations(t)
}

// --- verify ---

func TestVerify_Success(t *testing.T) {
	ps := &mockPaymentService{}
	ps.On("Verify", mock.Anything, mock.AnythingOfType("payment.VerifyRequest")).Return(&domain.VerificationRecord{
		OrderID: "order_ABC123",
		Outcome: domain.OutcomeVerified,
	}, nil)

	body := `{"orderId":"order_ABC123","paymentReference":"pay_123","signature":"deadbeef"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/razorpay/verify", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(nil, ps, nil, nil).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var env VerifyEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestVerify_SignatureMismatch_400SuccessFalse(t *testing.T) {
	ps := &mockPaymentService{}
	ps.On("Verify", mock.Anything, mock.Anything).Return(&domain.VerificationRecord{
		OrderID:       "order_ABC123",
		Outcome:       domain.OutcomeFailed,
		FailureReason: domain.FailureSignatureMismatch,
	}, nil)

	body := `{"orderId":"order_ABC123","paymentReference":"pay_123","signature":"tampered-signature"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/razorpay/verify", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(nil, ps, nil, nil).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var env VerifyEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, domain.FailureSignatureMismatch, env.Message)
}

func TestVerify_UnknownOrder_404(t *testing.T) {
	ps := &mockPaymentService{}
	ps.On("Verify", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("order order_GHOST: %w", domain.ErrNotFound))

	body := `{"orderId":"order_GHOST","paymentReference":"pay_123","signature":"deadbeef"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/razorpay/verify", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(nil, ps, nil, nil).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- checkout ---

func TestCheckout_ReturnsDescriptor(t *testing.T) {
	ps := &mockPaymentService{}
	ps.On("GetOrder", mock.Anything, "order_ABC123").Return(&domain.Order{
		OrderID:      "order_ABC123",
		Amount:       996,
		Currency:     "INR",
		GatewayKeyID: "rzp_test_key",
		Status:       domain.OrderCreated,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/razorpay/checkout/order_ABC123?method=upi", nil)
	rr := httptest.NewRecorder()
	newTestRouter(nil, ps, nil, nil).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var desc payment.CheckoutDescriptor
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &desc))
	assert.Equal(t, "rzp_test_key", desc.KeyID)
	assert.True(t, desc.Methods["upi"])
	assert.False(t, desc.Methods["card"])
}

func TestCheckout_UnknownMethod_400(t *testing.T) {
	ps := &mockPaymentService{}
	ps.On("GetOrder", mock.Anything, "order_ABC123").Return(&domain.Order{
		OrderID: "order_ABC123",
		Status:  domain.OrderCreated,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/razorpay/checkout/order_ABC123?method=crypto", nil)
	rr := httptest.NewRecorder()
	newTestRouter(nil, ps, nil, nil).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- credits ---

func TestCredits_RequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/credits", nil)
	rr := httptest.NewRecorder()
	newTestRouter(nil, nil, &mockLedgerService{}, &stubVerifier{}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCredits_ListsGrantsForSubject(t *testing.T) {
	ls := &mockLedgerService{}
	ls.On("ListBySubject", mock.Anything, "u1").Return([]domain.CreditGrant{
		{OrderID: "order_A", PackageID: "starter-pack", Credits: 10},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/credits", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	newTestRouter(nil, nil, ls, &stubVerifier{ident: &domain.Identity{SubjectID: "u1"}}).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var env GrantsEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, 10, env.Data[0].Credits)
}
