// Package storefront renders the customer-facing shop as server-side HTML on
// top of the same services that back the JSON API.
package storefront

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"german-butchery/internal/cart"
	"german-butchery/internal/domain"
	"german-butchery/internal/repository"
	"german-butchery/internal/service"
	"german-butchery/internal/whatsapp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	cartCookieName   = "cart_id"
	cartCookieMaxAge = 7 * 24 * time.Hour
	catalogPageSize  = 12
)

// Services are the application services the shop pages read and write through
type Services struct {
	Products   service.ProductService
	Categories service.CategoryService
	Zones      service.DeliveryZoneService
	Settings   service.SettingService
	Carts      service.CartService
	Checkout   service.CheckoutService
}

// Handler serves the storefront pages
type Handler struct {
	svc    Services
	pages  map[string]*template.Template
	logger *zap.Logger
}

// New parses the embedded templates and returns the page handler
func New(svc Services, logger *zap.Logger) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{svc: svc, pages: pages, logger: logger}, nil
}

// RegisterRoutes registers all storefront routes. checkoutGuards wrap only the
// order-placing form post.
func (h *Handler) RegisterRoutes(r chi.Router, checkoutGuards ...func(http.Handler) http.Handler) {
	r.Get("/", h.Catalog)
	r.Get("/products/{id}", h.Product)
	r.Get("/cart", h.Cart)
	r.Post("/cart/add", h.AddToCart)
	r.Post("/cart/update", h.UpdateCart)
	r.With(checkoutGuards...).Post("/checkout", h.Checkout)
}

// Layout is the data every page shares
type Layout struct {
	Store     domain.StoreInfo
	CartCount decimal.Decimal
	Error     string
}

type catalogPage struct {
	Layout
	Products   []*domain.Product
	Categories []*domain.Category
	Search     string
	Category   string
	Pagination domain.Pagination
	PrevURL    string
	NextURL    string
}

type unitOption struct {
	Unit    string
	Price   decimal.Decimal
	Default bool
}

type productPage struct {
	Layout
	Product *domain.Product
	Units   []unitOption
}

// checkoutForm echoes submitted values back when checkout is rejected
type checkoutForm struct {
	CustomerName    string
	Phone           string
	Email           string
	DeliveryType    string
	DeliveryAddress string
	DeliveryZoneID  string
	PaymentMethod   string
	Notes           string
}

type cartPage struct {
	Layout
	Cart           *cart.Cart
	Currency       string
	Zones          []*domain.DeliveryZone
	PaymentMethods []domain.PaymentMethod
	Form           checkoutForm
}

type confirmationPage struct {
	Layout
	Order       *domain.Order
	Reference   string
	WhatsAppURL string
}

type errorPage struct {
	Layout
	Title string
}

// Catalog lists active products with search, category filter and pagination
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	category := q.Get("category")
	page, _ := strconv.Atoi(q.Get("page"))

	products, err := h.svc.Products.List(ctx, repository.ProductFilter{
		CategorySlug: category,
		Search:       search,
		SortBy:       "title",
		SortOrder:    repository.SortOrderAsc,
	}, page, catalogPageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	categories, err := h.svc.Categories.List(ctx, repository.CategoryFilter{}, 1, domain.MaxLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := catalogPage{
		Layout:     h.layout(r),
		Products:   products.Data,
		Categories: categories.Data,
		Search:     search,
		Category:   category,
		Pagination: products.Pagination,
	}
	if p := products.Pagination; p.Page > 1 {
		data.PrevURL = catalogURL(search, category, p.Page-1)
	}
	if p := products.Pagination; p.Page < p.TotalPages {
		data.NextURL = catalogURL(search, category, p.Page+1)
	}

	h.render(w, http.StatusOK, "catalog", data)
}

func catalogURL(search, category string, page int) string {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if category != "" {
		q.Set("category", category)
	}
	q.Set("page", strconv.Itoa(page))
	return "/?" + q.Encode()
}

// Product shows one active product with a price per unit option
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r)
		return
	}

	product, err := h.svc.Products.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !product.IsActive {
		h.notFound(w, r)
		return
	}

	defaultUnit := product.DefaultUnit()
	units := make([]unitOption, 0, len(product.Units))
	for _, u := range product.Units {
		units = append(units, unitOption{
			Unit:    u.Unit,
			Price:   domain.RoundMoney(product.PricePerBaseUnit.Mul(u.Multiplier)),
			Default: u.Unit == defaultUnit,
		})
	}
	if len(units) == 0 {
		units = append(units, unitOption{Unit: product.BaseUnit, Price: product.PricePerBaseUnit, Default: true})
	}

	h.render(w, http.StatusOK, "product", productPage{
		Layout:  h.layout(r),
		Product: product,
		Units:   units,
	})
}

// Cart shows the cart lines and the checkout form
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	h.renderCart(w, r, http.StatusOK, checkoutForm{}, "")
}

func (h *Handler) renderCart(w http.ResponseWriter, r *http.Request, status int, form checkoutForm, message string) {
	ctx := r.Context()

	c := cart.New("")
	if id, ok := existingCartID(r); ok {
		loaded, err := h.svc.Carts.Get(ctx, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		c = loaded
	}

	zones, err := h.svc.Zones.List(ctx, false, 1, domain.MaxLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	currency := domain.DefaultCurrency
	if len(c.Items) > 0 {
		currency = c.Items[0].Currency
	}

	layout := h.layout(r)
	layout.Error = message
	h.render(w, status, "cart", cartPage{
		Layout:   layout,
		Cart:     c,
		Currency: currency,
		Zones:    zones.Data,
		PaymentMethods: []domain.PaymentMethod{
			domain.PaymentMethodCashOnDelivery,
			domain.PaymentMethodMTNMoMo,
			domain.PaymentMethodAirtelMoney,
			domain.PaymentMethodBankTransfer,
		},
		Form: form,
	})
}

// AddToCart adds the posted product unit and returns to the cart
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "invalid form")
		return
	}

	productID, err := uuid.Parse(r.PostForm.Get("product_id"))
	if err != nil {
		h.badRequest(w, r, "invalid product")
		return
	}
	quantity, err := formQuantity(r.PostForm.Get("quantity"), decimal.NewFromInt(1))
	if err != nil {
		h.badRequest(w, r, "invalid quantity")
		return
	}

	cartID := h.ensureCartID(w, r)
	if _, err := h.svc.Carts.AddItem(r.Context(), cartID, productID, r.PostForm.Get("unit"), quantity); err != nil {
		h.fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// UpdateCart sets a line quantity; zero removes the line
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "invalid form")
		return
	}

	productID, err := uuid.Parse(r.PostForm.Get("product_id"))
	if err != nil {
		h.badRequest(w, r, "invalid product")
		return
	}
	quantity, err := formQuantity(r.PostForm.Get("quantity"), decimal.Zero)
	if err != nil {
		h.badRequest(w, r, "invalid quantity")
		return
	}

	cartID, ok := existingCartID(r)
	if !ok {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if _, err := h.svc.Carts.UpdateItem(r.Context(), cartID, productID, r.PostForm.Get("unit"), quantity); err != nil && !errors.Is(err, cart.ErrItemNotFound) {
		h.fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Checkout places the order from the cart and shows the WhatsApp handoff
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "invalid form")
		return
	}

	form := checkoutForm{
		CustomerName:    r.PostForm.Get("customer_name"),
		Phone:           r.PostForm.Get("phone"),
		Email:           r.PostForm.Get("email"),
		DeliveryType:    r.PostForm.Get("delivery_type"),
		DeliveryAddress: r.PostForm.Get("delivery_address"),
		DeliveryZoneID:  r.PostForm.Get("delivery_zone_id"),
		PaymentMethod:   r.PostForm.Get("payment_method"),
		Notes:           r.PostForm.Get("notes"),
	}

	cartID, ok := existingCartID(r)
	if !ok {
		h.renderCart(w, r, http.StatusBadRequest, form, validationMessage(service.ErrEmptyCart))
		return
	}

	in := service.OrderInput{
		CustomerName:    form.CustomerName,
		Phone:           form.Phone,
		Email:           form.Email,
		DeliveryType:    domain.DeliveryType(form.DeliveryType),
		DeliveryAddress: form.DeliveryAddress,
		PaymentMethod:   domain.PaymentMethod(form.PaymentMethod),
		Notes:           form.Notes,
	}
	if form.DeliveryZoneID != "" {
		zoneID, err := uuid.Parse(form.DeliveryZoneID)
		if err != nil {
			h.renderCart(w, r, http.StatusBadRequest, form, "invalid delivery zone")
			return
		}
		in.DeliveryZoneID = &zoneID
	}

	result, err := h.svc.Checkout.CheckoutCart(r.Context(), cartID, in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.renderCart(w, r, http.StatusBadRequest, form, validationMessage(err))
			return
		}
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Storefront order placed",
		zap.String("order_id", result.Order.ID.String()),
		zap.Bool("whatsapp_link", result.WhatsAppURL != ""),
	)

	layout := h.layout(r)
	layout.CartCount = decimal.Zero
	h.render(w, http.StatusOK, "confirmation", confirmationPage{
		Layout:      layout,
		Order:       result.Order,
		Reference:   whatsapp.ShortID(result.Order),
		WhatsAppURL: result.WhatsAppURL,
	})
}

// layout loads the store header data. Failures degrade to the configured
// store name and an empty cart badge.
func (h *Handler) layout(r *http.Request) Layout {
	ctx := r.Context()

	info, err := h.svc.Settings.StoreInfo(ctx)
	if err != nil {
		h.logger.Warn("Failed to load store info", zap.Error(err))
	}

	l := Layout{Store: info}
	if id, ok := existingCartID(r); ok {
		if c, err := h.svc.Carts.Get(ctx, id); err == nil {
			l.CartCount = c.TotalItems()
		}
	}
	return l
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		h.notFound(w, r)
	case errors.Is(err, service.ErrValidation):
		h.badRequest(w, r, validationMessage(err))
	default:
		h.logger.Error("Storefront request failed", zap.String("path", r.URL.Path), zap.Error(err))
		h.render(w, http.StatusInternalServerError, "error", errorPage{
			Layout: h.layout(r),
			Title:  "Something went wrong",
		})
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "error", errorPage{Layout: h.layout(r), Title: "Page not found"})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, message string) {
	layout := h.layout(r)
	layout.Error = message
	h.render(w, http.StatusBadRequest, "error", errorPage{Layout: layout, Title: "We could not do that"})
}

func existingCartID(r *http.Request) (string, bool) {
	c, err := r.Cookie(cartCookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// ensureCartID returns the cart cookie, issuing a fresh id when missing
func (h *Handler) ensureCartID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := existingCartID(r); ok {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cartCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func formQuantity(raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return decimal.NewFromString(raw)
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
}
