package transport

import (
	"context"
	"encoding/json"

	"german-butchery/internal/cart"
	"german-butchery/internal/domain"
	"german-butchery/internal/repository"
	"german-butchery/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stub services record calls through function fields. A nil field means the
// test does not expect that call.

type stubProductService struct {
	list       func(filter repository.ProductFilter, page, limit int) (domain.Page[*domain.Product], error)
	get        func(id uuid.UUID) (*domain.Product, error)
	create     func(in service.ProductInput) (*domain.Product, error)
	update     func(id uuid.UUID, in service.ProductUpdate) (*domain.Product, error)
	delete     func(id uuid.UUID) error
	bulkUpdate func(ids []uuid.UUID, patch repository.ProductPatch) (int64, error)
}

func (s *stubProductService) List(_ context.Context, filter repository.ProductFilter, page, limit int) (domain.Page[*domain.Product], error) {
	return s.list(filter, page, limit)
}

func (s *stubProductService) Get(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.get(id)
}

func (s *stubProductService) Create(_ context.Context, in service.ProductInput) (*domain.Product, error) {
	return s.create(in)
}

func (s *stubProductService) Update(_ context.Context, id uuid.UUID, in service.ProductUpdate) (*domain.Product, error) {
	return s.update(id, in)
}

func (s *stubProductService) Delete(_ context.Context, id uuid.UUID) error {
	return s.delete(id)
}

func (s *stubProductService) BulkUpdate(_ context.Context, ids []uuid.UUID, patch repository.ProductPatch) (int64, error) {
	return s.bulkUpdate(ids, patch)
}

type stubCategoryService struct {
	list   func(filter repository.CategoryFilter, page, limit int) (domain.Page[*domain.Category], error)
	get    func(id uuid.UUID) (*domain.Category, error)
	create func(in service.CategoryInput) (*domain.Category, error)
	update func(id uuid.UUID, in service.CategoryUpdate) (*domain.Category, error)
	delete func(id uuid.UUID) error
}

func (s *stubCategoryService) List(_ context.Context, filter repository.CategoryFilter, page, limit int) (domain.Page[*domain.Category], error) {
	return s.list(filter, page, limit)
}

func (s *stubCategoryService) Get(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.get(id)
}

func (s *stubCategoryService) Create(_ context.Context, in service.CategoryInput) (*domain.Category, error) {
	return s.create(in)
}

func (s *stubCategoryService) Update(_ context.Context, id uuid.UUID, in service.CategoryUpdate) (*domain.Category, error) {
	return s.update(id, in)
}

func (s *stubCategoryService) Delete(_ context.Context, id uuid.UUID) error {
	return s.delete(id)
}

type stubZoneService struct {
	list   func(includeInactive bool, page, limit int) (domain.Page[*domain.DeliveryZone], error)
	get    func(id uuid.UUID) (*domain.DeliveryZone, error)
	create func(name string, fee decimal.Decimal, isActive *bool) (*domain.DeliveryZone, error)
	update func(id uuid.UUID, in service.DeliveryZoneUpdate) (*domain.DeliveryZone, error)
	delete func(id uuid.UUID) error
}

func (s *stubZoneService) List(_ context.Context, includeInactive bool, page, limit int) (domain.Page[*domain.DeliveryZone], error) {
	return s.list(includeInactive, page, limit)
}

func (s *stubZoneService) Get(_ context.Context, id uuid.UUID) (*domain.DeliveryZone, error) {
	return s.get(id)
}

func (s *stubZoneService) Create(_ context.Context, name string, fee decimal.Decimal, isActive *bool) (*domain.DeliveryZone, error) {
	return s.create(name, fee, isActive)
}

func (s *stubZoneService) Update(_ context.Context, id uuid.UUID, in service.DeliveryZoneUpdate) (*domain.DeliveryZone, error) {
	return s.update(id, in)
}

func (s *stubZoneService) Delete(_ context.Context, id uuid.UUID) error {
	return s.delete(id)
}

type stubSettingService struct {
	list      func() (map[string]json.RawMessage, error)
	get       func(key string) (*domain.Setting, error)
	put       func(key string, value json.RawMessage) (*domain.Setting, error)
	delete    func(key string) error
	storeInfo func() (domain.StoreInfo, error)
}

func (s *stubSettingService) List(context.Context) (map[string]json.RawMessage, error) {
	return s.list()
}

func (s *stubSettingService) Get(_ context.Context, key string) (*domain.Setting, error) {
	return s.get(key)
}

func (s *stubSettingService) Put(_ context.Context, key string, value json.RawMessage) (*domain.Setting, error) {
	return s.put(key, value)
}

func (s *stubSettingService) Delete(_ context.Context, key string) error {
	return s.delete(key)
}

func (s *stubSettingService) StoreInfo(context.Context) (domain.StoreInfo, error) {
	return s.storeInfo()
}

type stubOrderService struct {
	create       func(in service.OrderInput) (*domain.Order, error)
	list         func(status string, page, limit int) (domain.Page[*domain.Order], error)
	get          func(id uuid.UUID) (*domain.Order, error)
	updateStatus func(id uuid.UUID, status string) (*domain.Order, error)
	delete       func(id uuid.UUID) error
	notifyLink   func(id uuid.UUID) (string, error)
}

func (s *stubOrderService) Create(_ context.Context, in service.OrderInput) (*domain.Order, error) {
	return s.create(in)
}

func (s *stubOrderService) List(_ context.Context, status string, page, limit int) (domain.Page[*domain.Order], error) {
	return s.list(status, page, limit)
}

func (s *stubOrderService) Get(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.get(id)
}

func (s *stubOrderService) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	return s.updateStatus(id, status)
}

func (s *stubOrderService) Delete(_ context.Context, id uuid.UUID) error {
	return s.delete(id)
}

func (s *stubOrderService) NotifyLink(_ context.Context, id uuid.UUID) (string, error) {
	return s.notifyLink(id)
}

type stubCheckoutService struct {
	placeOrder   func(in service.OrderInput) (*service.CheckoutResult, error)
	checkoutCart func(cartID string, in service.OrderInput) (*service.CheckoutResult, error)
}

func (s *stubCheckoutService) PlaceOrder(_ context.Context, in service.OrderInput) (*service.CheckoutResult, error) {
	return s.placeOrder(in)
}

func (s *stubCheckoutService) CheckoutCart(_ context.Context, cartID string, in service.OrderInput) (*service.CheckoutResult, error) {
	return s.checkoutCart(cartID, in)
}

type stubDashboardService struct {
	stats func() (*service.DashboardStats, error)
}

func (s *stubDashboardService) Stats(context.Context) (*service.DashboardStats, error) {
	return s.stats()
}

// memoryProducts is a read-only product repository for cart service tests
type memoryProducts struct {
	repository.ProductRepository
	products map[uuid.UUID]*domain.Product
}

func (m *memoryProducts) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func newCartTestProduct(title string, price int64) *domain.Product {
	id := uuid.New()
	return &domain.Product{
		ID:               id,
		Title:            title,
		Slug:             "slug-" + id.String()[:8],
		BaseUnit:         "kg",
		PricePerBaseUnit: decimal.NewFromInt(price),
		Currency:         domain.DefaultCurrency,
		IsActive:         true,
		Units: []domain.ProductUnit{
			{Unit: "kg", Multiplier: decimal.NewFromInt(1), IsDefault: true},
			{Unit: "pc", Multiplier: decimal.RequireFromString("0.25")},
		},
	}
}

func newMemoryCartService(products ...*domain.Product) service.CartService {
	repo := &memoryProducts{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return service.NewCartService(cart.NewMemoryStore(), repo)
}
