package transport

import (
	"net/http"
	"time"

	"german-butchery/internal/cart"
	"german-butchery/internal/middleware"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddCartItemRequest adds a quantity of one unit of a product
type AddCartItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Unit      string          `json:"unit" validate:"omitempty,max=20"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// UpdateCartItemRequest sets the quantity of a line; zero removes it
type UpdateCartItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Unit      string          `json:"unit" validate:"required,max=20"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gte=0"`
}

// CartResponse is the cart with its computed totals
type CartResponse struct {
	ID         string          `json:"id"`
	Items      []cart.Item     `json:"items"`
	TotalItems decimal.Decimal `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func newCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		ID:         c.ID,
		Items:      c.Items,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		UpdatedAt:  c.UpdatedAt,
	}
}

// CartHandler exposes the client-held cart and its checkout
type CartHandler struct {
	cartService     service.CartService
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

func NewCartHandler(cartService service.CartService, checkoutService service.CheckoutService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/cart/{cartID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items", h.UpdateItem)
		r.Delete("/items/{productID}/{unit}", h.RemoveItem)
		r.With(guards.Checkout...).Post("/checkout", h.Checkout)
	})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.cartService.Get(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	c, err := h.cartService.AddItem(r.Context(), chi.URLParam(r, "cartID"), req.ProductID, req.Unit, req.Quantity)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to add cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	c, err := h.cartService.UpdateItem(r.Context(), chi.URLParam(r, "cartID"), req.ProductID, req.Unit, req.Quantity)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	c, err := h.cartService.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), productID, chi.URLParam(r, "unit"))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to remove cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.Clear(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		respondServiceError(w, h.logger, err, "failed to clear cart")
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, "cart cleared")
}

// Checkout turns the cart into an order and clears it
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CustomerDetails
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	cartID := chi.URLParam(r, "cartID")
	result, err := h.checkoutService.CheckoutCart(r.Context(), cartID, req.orderInput(nil))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to checkout cart")
		return
	}

	h.logger.Info("Cart checked out",
		zap.String("cart_id", cartID),
		zap.String("order_id", result.Order.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, result)
}
