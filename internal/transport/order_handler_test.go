package transport

import (
	"encoding/json"
	"net/http"
	"testing"

	"german-butchery/internal/domain"
	"german-butchery/internal/repository"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingGuard counts requests that pass through it
type countingGuard struct {
	hits int
}

func (g *countingGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.hits++
		next.ServeHTTP(w, r)
	})
}

func newOrderRouter(orders service.OrderService, checkout service.CheckoutService, guards Guards) http.Handler {
	router := chi.NewRouter()
	NewOrderHandler(orders, checkout, zap.NewNop()).RegisterRoutes(router, guards)
	return router
}

func TestOrderCreatePlacesOrder(t *testing.T) {
	steak := uuid.New()
	zone := uuid.New()
	var got service.OrderInput
	checkout := &stubCheckoutService{
		placeOrder: func(in service.OrderInput) (*service.CheckoutResult, error) {
			got = in
			return &service.CheckoutResult{
				Order:       &domain.Order{ID: uuid.New(), TotalAmount: decimal.NewFromInt(12000)},
				WhatsAppURL: "https://wa.me/250788000111?text=Hello",
			}, nil
		},
	}
	limiter := &countingGuard{}
	router := newOrderRouter(&stubOrderService{}, checkout, Guards{Checkout: []Middleware{limiter.middleware}})

	body := `{
		"customer_name": "Claudine",
		"phone": "0788123456",
		"delivery_type": "delivery",
		"delivery_address": "KG 11 Ave",
		"delivery_zone_id": "` + zone.String() + `",
		"payment_method": "mtn_momo",
		"items": [{"product_id": "` + steak.String() + `", "unit": "kg", "quantity": 2}]
	}`
	w := doJSON(t, router, http.MethodPost, "/api/orders", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, limiter.hits)

	var result struct {
		Order       domain.Order `json:"order"`
		WhatsAppURL string       `json:"whatsapp_url"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "https://wa.me/250788000111?text=Hello", result.WhatsAppURL)
	assert.True(t, result.Order.TotalAmount.Equal(decimal.NewFromInt(12000)))

	assert.Equal(t, "Claudine", got.CustomerName)
	assert.Equal(t, domain.DeliveryTypeDelivery, got.DeliveryType)
	assert.Equal(t, domain.PaymentMethodMTNMoMo, got.PaymentMethod)
	require.NotNil(t, got.DeliveryZoneID)
	assert.Equal(t, zone, *got.DeliveryZoneID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, steak, got.Items[0].ProductID)
	assert.True(t, got.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestOrderCreateRejectsBadBodies(t *testing.T) {
	checkout := &stubCheckoutService{}
	router := newOrderRouter(&stubOrderService{}, checkout, Guards{})
	item := `[{"product_id":"` + uuid.NewString() + `","quantity":1}]`

	tests := []struct {
		name string
		body string
	}{
		{"no items", `{"customer_name":"A","phone":"1","items":[]}`},
		{"missing phone", `{"customer_name":"A","items":` + item + `}`},
		{"client supplied price", `{"customer_name":"A","phone":"1","total_amount":1,"items":` + item + `}`},
		{"unknown payment method", `{"customer_name":"A","phone":"1","payment_method":"crypto","items":` + item + `}`},
		{"unknown delivery type", `{"customer_name":"A","phone":"1","delivery_type":"drone","items":` + item + `}`},
		{"zero quantity", `{"customer_name":"A","phone":"1","items":[{"product_id":"` + uuid.NewString() + `","quantity":0}]}`},
		{"missing product", `{"customer_name":"A","phone":"1","items":[{"quantity":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/orders", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestOrderCreateUnavailableProduct(t *testing.T) {
	checkout := &stubCheckoutService{
		placeOrder: func(service.OrderInput) (*service.CheckoutResult, error) {
			return nil, service.ErrProductUnavailable
		},
	}
	router := newOrderRouter(&stubOrderService{}, checkout, Guards{})

	w := doJSON(t, router, http.MethodPost, "/api/orders",
		`{"customer_name":"A","phone":"1","delivery_type":"pickup","items":[{"product_id":"`+uuid.NewString()+`","quantity":1}]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "product is not available")
}

func TestOrderStatusUpdate(t *testing.T) {
	confirmed := uuid.New()
	orders := &stubOrderService{
		updateStatus: func(id uuid.UUID, status string) (*domain.Order, error) {
			switch {
			case id == confirmed && status == "preparing":
				return &domain.Order{ID: id, Status: domain.OrderStatusPreparing}, nil
			case status == "shipped":
				return nil, service.ErrValidation
			case id == confirmed:
				return nil, service.ErrInvalidStatusTransition
			default:
				return nil, repository.ErrOrderNotFound
			}
		},
	}
	router := newOrderRouter(orders, &stubCheckoutService{}, Guards{})
	path := "/api/orders/" + confirmed.String() + "/status"

	w := doJSON(t, router, http.MethodPut, path, `{"status":"preparing"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"preparing"`)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodPut, path, `{"status":"shipped"}`, "").Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, router, http.MethodPut, path, `{"status":"pending"}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodPut, path, `{}`, "").Code)
	assert.Equal(t, http.StatusNotFound,
		doJSON(t, router, http.MethodPut, "/api/orders/"+uuid.NewString()+"/status", `{"status":"confirmed"}`, "").Code)
}

func TestOrderListAndNotifyLink(t *testing.T) {
	var gotStatus string
	orders := &stubOrderService{
		list: func(status string, page, limit int) (domain.Page[*domain.Order], error) {
			gotStatus = status
			return domain.NewPage([]*domain.Order{{ID: uuid.New()}}, domain.NewPageRequest(page, limit), 1), nil
		},
		notifyLink: func(uuid.UUID) (string, error) {
			return "https://wa.me/250788123456?text=Order", nil
		},
	}
	router := newOrderRouter(orders, &stubCheckoutService{}, Guards{})

	w := doJSON(t, router, http.MethodGet, "/api/orders?status=pending", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", gotStatus)

	w = doJSON(t, router, http.MethodGet, "/api/orders/"+uuid.NewString()+"/notify-link", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var link NotifyLinkResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&link))
	assert.Equal(t, "https://wa.me/250788123456?text=Order", link.WhatsAppURL)
}

func TestOrderDeskIsGuardedButPlacementIsNot(t *testing.T) {
	checkout := &stubCheckoutService{
		placeOrder: func(service.OrderInput) (*service.CheckoutResult, error) {
			return &service.CheckoutResult{Order: &domain.Order{ID: uuid.New()}}, nil
		},
	}
	router := newOrderRouter(&stubOrderService{}, checkout, Guards{Staff: []Middleware{blockAll}})

	w := doJSON(t, router, http.MethodPost, "/api/orders",
		`{"customer_name":"A","phone":"1","delivery_type":"pickup","items":[{"product_id":"`+uuid.NewString()+`","quantity":1}]}`, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, router, http.MethodGet, "/api/orders", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, router, http.MethodDelete, "/api/orders/"+uuid.NewString(), "", "").Code)
}
