package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordersvc "github.com/maraneea/storefront-backend/internal/orders"
	"github.com/maraneea/storefront-backend/pkg/enums"
	pkgerrors "github.com/maraneea/storefront-backend/pkg/errors"
	"github.com/maraneea/storefront-backend/pkg/pagination"
)

type stubOrderService struct {
	order      *ordersvc.OrderDTO
	list       *ordersvc.OrderListResult
	err        error
	lastInput  *ordersvc.CheckoutInput
	lastParams pagination.Params
}

func (s *stubOrderService) Checkout(ctx context.Context, userID uuid.UUID, input ordersvc.CheckoutInput) (*ordersvc.OrderDTO, error) {
	s.lastInput = &input
	return s.order, s.err
}

func (s *stubOrderService) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersvc.OrderListResult, error) {
	s.lastParams = params
	return s.list, s.err
}

func sampleOrder() *ordersvc.OrderDTO {
	return &ordersvc.OrderDTO{
		ID:            uuid.New(),
		OrderNumber:   "MRN250901042",
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodBankTransfer,
		PaymentStatus: enums.PaymentStatusPending,
		Subtotal:      decimal.NewFromInt(150000),
		ShippingCost:  decimal.NewFromInt(15000),
		Total:         decimal.NewFromInt(165000),
	}
}

func checkoutBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"payment_method": "bank_transfer",
		"shipping_address": map[string]any{
			"name":        "Siti Rahma",
			"phone":       "+6281234567890",
			"street":      "Jl. Merdeka No. 45",
			"city":        "Bandung",
			"province":    "Jawa Barat",
			"postal_code": "40115",
		},
	})
	return body
}

func TestOrderCheckoutSuccess(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	handler := OrderCheckout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders/checkout", checkoutBody(), uuid.New()))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastInput == nil || svc.lastInput.PaymentMethod != "bank_transfer" {
		t.Fatalf("unexpected checkout input: %+v", svc.lastInput)
	}

	var envelope struct {
		Data ordersvc.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "MRN250901042" {
		t.Fatalf("unexpected order number: %s", envelope.Data.OrderNumber)
	}
}

func TestOrderCheckoutRejectsIncompleteAddress(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	handler := OrderCheckout(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"payment_method": "bank_transfer",
		"shipping_address": map[string]any{
			"name": "Siti Rahma",
		},
	})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders/checkout", body, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastInput != nil {
		t.Fatalf("service should not be reached on validation failure")
	}
}

func TestOrderCheckoutEmptyCartConflictSurface(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	handler := OrderCheckout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders/checkout", checkoutBody(), uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "cart is empty" {
		t.Fatalf("unexpected message: %q", envelope.Error.Message)
	}
}

func TestOrderListForwardsPagination(t *testing.T) {
	svc := &stubOrderService{list: &ordersvc.OrderListResult{Orders: []ordersvc.OrderSummaryDTO{}}}
	handler := OrderList(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders?limit=5&cursor=abc", nil, uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastParams.Limit != 5 || svc.lastParams.Cursor != "abc" {
		t.Fatalf("unexpected params: %+v", svc.lastParams)
	}
}

func TestOrderDetailInvalidID(t *testing.T) {
	handler := OrderDetail(&stubOrderService{}, nil)

	router := chi.NewRouter()
	router.Get("/api/v1/orders/{orderId}", handler)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderDetailNotFound(t *testing.T) {
	handler := OrderDetail(&stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}, nil)

	router := chi.NewRouter()
	router.Get("/api/v1/orders/{orderId}", handler)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil, uuid.New()))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
