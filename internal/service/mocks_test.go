package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"german-butchery/internal/domain"
	"german-butchery/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[strings.ToLower(email)]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	n := 0
	for _, user := range m.users {
		if user.Role == role {
			n++
		}
	}
	return n, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	if time.Now().After(refreshToken.ExpiresAt) {
		return nil, repository.ErrRefreshTokenExpired
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

type mockProductRepository struct {
	products    map[uuid.UUID]*domain.Product
	lastReplace repository.ProductReplace
	bulkCalls   int
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, p := range m.products {
		if p.Slug == product.Slug {
			return repository.ErrSlugAlreadyExists
		}
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product, replace repository.ProductReplace) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.lastReplace = replace
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error) {
	all := []*domain.Product{}
	for _, p := range m.products {
		if p.IsActive || filter.IncludeInactive {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })

	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *mockProductRepository) BulkUpdate(ctx context.Context, ids []uuid.UUID, patch repository.ProductPatch) (int64, error) {
	m.bulkCalls++
	var n int64
	for _, id := range ids {
		p, ok := m.products[id]
		if !ok {
			continue
		}
		if patch.IsActive != nil {
			p.IsActive = *patch.IsActive
		}
		if patch.PricePerBaseUnit != nil {
			p.PricePerBaseUnit = *patch.PricePerBaseUnit
		}
		if patch.Currency != nil {
			p.Currency = *patch.Currency
		}
		n++
	}
	return n, nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if c.Slug == category.Slug {
			return repository.ErrSlugAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context, filter repository.CategoryFilter, page domain.PageRequest) ([]*domain.Category, int, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

type mockDeliveryZoneRepository struct {
	zones map[uuid.UUID]*domain.DeliveryZone
}

func newMockDeliveryZoneRepository(zones ...*domain.DeliveryZone) *mockDeliveryZoneRepository {
	m := &mockDeliveryZoneRepository{zones: make(map[uuid.UUID]*domain.DeliveryZone)}
	for _, z := range zones {
		m.zones[z.ID] = z
	}
	return m
}

func (m *mockDeliveryZoneRepository) Create(ctx context.Context, zone *domain.DeliveryZone) error {
	m.zones[zone.ID] = zone
	return nil
}

func (m *mockDeliveryZoneRepository) Update(ctx context.Context, zone *domain.DeliveryZone) error {
	if _, ok := m.zones[zone.ID]; !ok {
		return repository.ErrDeliveryZoneNotFound
	}
	m.zones[zone.ID] = zone
	return nil
}

func (m *mockDeliveryZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.zones[id]; !ok {
		return repository.ErrDeliveryZoneNotFound
	}
	delete(m.zones, id)
	return nil
}

func (m *mockDeliveryZoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryZone, error) {
	z, ok := m.zones[id]
	if !ok {
		return nil, repository.ErrDeliveryZoneNotFound
	}
	copied := *z
	return &copied, nil
}

func (m *mockDeliveryZoneRepository) List(ctx context.Context, includeInactive bool, page domain.PageRequest) ([]*domain.DeliveryZone, int, error) {
	out := []*domain.DeliveryZone{}
	for _, z := range m.zones {
		if z.IsActive || includeInactive {
			out = append(out, z)
		}
	}
	return out, len(out), nil
}

type mockSettingRepository struct {
	settings map[string]json.RawMessage
}

func newMockSettingRepository() *mockSettingRepository {
	return &mockSettingRepository{settings: make(map[string]json.RawMessage)}
}

func (m *mockSettingRepository) List(ctx context.Context) ([]*domain.Setting, error) {
	out := []*domain.Setting{}
	for k, v := range m.settings {
		out = append(out, &domain.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (m *mockSettingRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	v, ok := m.settings[key]
	if !ok {
		return nil, repository.ErrSettingNotFound
	}
	return &domain.Setting{Key: key, Value: v}, nil
}

func (m *mockSettingRepository) Upsert(ctx context.Context, key string, value json.RawMessage) (*domain.Setting, error) {
	m.settings[key] = value
	return &domain.Setting{Key: key, Value: value, UpdatedAt: time.Now()}, nil
}

func (m *mockSettingRepository) Delete(ctx context.Context, key string) error {
	if _, ok := m.settings[key]; !ok {
		return repository.ErrSettingNotFound
	}
	delete(m.settings, key)
	return nil
}

type mockOrderRepository struct {
	orders map[uuid.UUID]*domain.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockOrderRepository) List(ctx context.Context, status *domain.OrderStatus, page domain.PageRequest) ([]*domain.Order, int, error) {
	out := []*domain.Order{}
	for _, o := range m.orders {
		if status == nil || o.Status == *status {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != from {
		return repository.ErrOrderStatusChanged
	}
	o.Status = to
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats := &domain.OrderStats{Revenue: decimal.Zero}
	for _, o := range m.orders {
		stats.TotalOrders++
		if o.Status == domain.OrderStatusPending {
			stats.PendingOrders++
		}
		if o.Status != domain.OrderStatusCancelled {
			stats.Revenue = stats.Revenue.Add(o.TotalAmount)
		}
	}
	return stats, nil
}

// newTestProduct returns an active product sold per kg and per piece (0.25 kg)
func newTestProduct(title string, price int64) *domain.Product {
	id := uuid.New()
	return &domain.Product{
		ID:               id,
		Title:            title,
		Slug:             Slugify(title),
		BaseUnit:         "kg",
		PricePerBaseUnit: decimal.NewFromInt(price),
		Currency:         domain.DefaultCurrency,
		IsActive:         true,
		Units: []domain.ProductUnit{
			{ProductID: id, Unit: "kg", Multiplier: decimal.NewFromInt(1), IsDefault: true},
			{ProductID: id, Unit: "pc", Multiplier: decimal.RequireFromString("0.25")},
		},
	}
}
