package transport

import (
	"encoding/json"
	"net/http"
	"testing"

	"german-butchery/internal/domain"
	"german-butchery/internal/middleware"
	"german-butchery/internal/repository"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func blockAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.RespondWithError(w, http.StatusUnauthorized, "blocked")
	})
}

func newProductRouter(svc service.ProductService, guards Guards) http.Handler {
	router := chi.NewRouter()
	NewProductHandler(svc, zap.NewNop()).RegisterRoutes(router, guards)
	return router
}

func TestProductListPassesQueryThrough(t *testing.T) {
	var gotFilter repository.ProductFilter
	var gotPage, gotLimit int
	svc := &stubProductService{
		list: func(filter repository.ProductFilter, page, limit int) (domain.Page[*domain.Product], error) {
			gotFilter, gotPage, gotLimit = filter, page, limit
			req := domain.NewPageRequest(page, limit)
			return domain.NewPage([]*domain.Product{{ID: uuid.New(), Title: "Ribeye"}}, req, 41), nil
		},
	}

	w := doJSON(t, newProductRouter(svc, Guards{}), http.MethodGet,
		"/api/products?category=beef&search=rib&include_inactive=true&sort_by=price&sort_order=asc&page=2&limit=20", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "beef", gotFilter.CategorySlug)
	assert.Equal(t, "rib", gotFilter.Search)
	assert.True(t, gotFilter.IncludeInactive)
	assert.Equal(t, "price", gotFilter.SortBy)
	assert.Equal(t, repository.SortOrderAsc, gotFilter.SortOrder)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 20, gotLimit)

	var body struct {
		Data       []map[string]any  `json:"data"`
		Pagination domain.Pagination `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 41, body.Pagination.Total)
	assert.Equal(t, 3, body.Pagination.TotalPages)
}

func TestProductGet(t *testing.T) {
	known := uuid.New()
	svc := &stubProductService{
		get: func(id uuid.UUID) (*domain.Product, error) {
			if id == known {
				return &domain.Product{ID: id, Title: "Bratwurst"}, nil
			}
			return nil, repository.ErrProductNotFound
		},
	}
	router := newProductRouter(svc, Guards{})

	w := doJSON(t, router, http.MethodGet, "/api/products/"+known.String(), "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bratwurst")

	w = doJSON(t, router, http.MethodGet, "/api/products/"+uuid.NewString(), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/products/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductCreate(t *testing.T) {
	var got service.ProductInput
	svc := &stubProductService{
		create: func(in service.ProductInput) (*domain.Product, error) {
			got = in
			return &domain.Product{ID: uuid.New(), Title: in.Title, Slug: "beef-fillet"}, nil
		},
	}
	router := newProductRouter(svc, Guards{})

	body := `{
		"title": "Beef Fillet",
		"base_unit": "kg",
		"price_per_base_unit": "24000",
		"units": [{"unit": "pc", "multiplier": "0.3", "is_default": true}],
		"images": [{"image_url": "https://cdn.example/fillet.jpg"}]
	}`
	w := doJSON(t, router, http.MethodPost, "/api/products", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, "Beef Fillet", got.Title)
	assert.True(t, got.PricePerBaseUnit.Equal(decimal.NewFromInt(24000)))
	require.Len(t, got.Units, 1)
	assert.True(t, got.Units[0].Multiplier.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, got.Units[0].IsDefault)
	require.Len(t, got.Images, 1)
}

func TestProductCreateRejectsBadBodies(t *testing.T) {
	svc := &stubProductService{}
	router := newProductRouter(svc, Guards{})

	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"title":"X","base_unit":"kg","price_per_base_unit":1,"colour":"red"}`},
		{"missing title", `{"base_unit":"kg","price_per_base_unit":1}`},
		{"negative price", `{"title":"X","base_unit":"kg","price_per_base_unit":-5}`},
		{"zero multiplier", `{"title":"X","base_unit":"kg","price_per_base_unit":5,"units":[{"unit":"pc","multiplier":0}]}`},
		{"bad category id", `{"title":"X","base_unit":"kg","price_per_base_unit":5,"category_ids":["nope"]}`},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/products", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestProductCreateConflict(t *testing.T) {
	svc := &stubProductService{
		create: func(service.ProductInput) (*domain.Product, error) {
			return nil, repository.ErrSlugAlreadyExists
		},
	}

	w := doJSON(t, newProductRouter(svc, Guards{}), http.MethodPost, "/api/products",
		`{"title":"Ribeye","base_unit":"kg","price_per_base_unit":18000}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductUpdateOnlyForwardsSuppliedCollections(t *testing.T) {
	var got service.ProductUpdate
	svc := &stubProductService{
		update: func(id uuid.UUID, in service.ProductUpdate) (*domain.Product, error) {
			got = in
			return &domain.Product{ID: id}, nil
		},
	}

	w := doJSON(t, newProductRouter(svc, Guards{}), http.MethodPut, "/api/products/"+uuid.NewString(),
		`{"title":"Smoked Brisket","units":[]}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, got.Title)
	assert.Equal(t, "Smoked Brisket", *got.Title)
	assert.NotNil(t, got.Units, "an empty list still replaces the units")
	assert.Nil(t, got.Images)
	assert.Nil(t, got.CategoryIDs)
	assert.Nil(t, got.PricePerBaseUnit)
}

func TestProductBulkUpdate(t *testing.T) {
	var gotIDs []uuid.UUID
	var gotPatch repository.ProductPatch
	svc := &stubProductService{
		bulkUpdate: func(ids []uuid.UUID, patch repository.ProductPatch) (int64, error) {
			gotIDs, gotPatch = ids, patch
			if len(ids) == 0 {
				return 0, service.ErrValidation
			}
			return int64(len(ids)), nil
		},
	}
	router := newProductRouter(svc, Guards{})

	a, b := uuid.New(), uuid.New()
	w := doJSON(t, router, http.MethodPost, "/api/products/bulk-update",
		`{"product_ids":["`+a.String()+`","`+b.String()+`"],"updates":{"is_active":false}}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var msg middleware.MessageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&msg))
	assert.Equal(t, "2 products updated successfully", msg.Message)
	assert.Equal(t, []uuid.UUID{a, b}, gotIDs)
	require.NotNil(t, gotPatch.IsActive)
	assert.False(t, *gotPatch.IsActive)

	w = doJSON(t, router, http.MethodPost, "/api/products/bulk-update", `{"product_ids":[],"updates":{"is_active":true}}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductWriteRoutesAreGuarded(t *testing.T) {
	svc := &stubProductService{
		list: func(repository.ProductFilter, int, int) (domain.Page[*domain.Product], error) {
			return domain.NewPage[*domain.Product](nil, domain.NewPageRequest(1, 20), 0), nil
		},
	}
	router := newProductRouter(svc, Guards{Staff: []Middleware{blockAll}})

	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/api/products", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, router, http.MethodPost, "/api/products", `{}`, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, router, http.MethodPost, "/api/products/bulk-update", `{}`, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, router, http.MethodDelete, "/api/products/"+uuid.NewString(), "", "").Code)
}

func TestCategoryListParentFilter(t *testing.T) {
	var got repository.CategoryFilter
	svc := &stubCategoryService{
		list: func(filter repository.CategoryFilter, page, limit int) (domain.Page[*domain.Category], error) {
			got = filter
			return domain.NewPage[*domain.Category](nil, domain.NewPageRequest(page, limit), 0), nil
		},
	}
	router := chi.NewRouter()
	NewCategoryHandler(svc, zap.NewNop()).RegisterRoutes(router, Guards{})

	parent := uuid.New()
	w := doJSON(t, router, http.MethodGet, "/api/categories?parent="+parent.String(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent, *got.ParentID)
	assert.False(t, got.IncludeInactive)

	w = doJSON(t, router, http.MethodGet, "/api/categories?parent=beef", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryUpdateClearParent(t *testing.T) {
	var got service.CategoryUpdate
	svc := &stubCategoryService{
		update: func(id uuid.UUID, in service.CategoryUpdate) (*domain.Category, error) {
			got = in
			return &domain.Category{ID: id}, nil
		},
	}
	router := chi.NewRouter()
	NewCategoryHandler(svc, zap.NewNop()).RegisterRoutes(router, Guards{})

	w := doJSON(t, router, http.MethodPut, "/api/categories/"+uuid.NewString(), `{"clear_parent":true,"display_order":2}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, got.ClearParent)
	require.NotNil(t, got.DisplayOrder)
	assert.Equal(t, 2, *got.DisplayOrder)
}

func TestDeliveryZoneCreateAndDelete(t *testing.T) {
	svc := &stubZoneService{
		create: func(name string, fee decimal.Decimal, isActive *bool) (*domain.DeliveryZone, error) {
			return &domain.DeliveryZone{ID: uuid.New(), Name: name, Fee: fee, IsActive: true}, nil
		},
		delete: func(uuid.UUID) error { return repository.ErrDeliveryZoneNotFound },
	}
	router := chi.NewRouter()
	NewDeliveryZoneHandler(svc, zap.NewNop()).RegisterRoutes(router, Guards{})

	w := doJSON(t, router, http.MethodPost, "/api/delivery-zones", `{"name":"Kicukiro","fee":2000}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var zone domain.DeliveryZone
	require.NoError(t, json.NewDecoder(w.Body).Decode(&zone))
	assert.True(t, zone.Fee.Equal(decimal.NewFromInt(2000)))

	w = doJSON(t, router, http.MethodPost, "/api/delivery-zones", `{"name":"Remera","fee":-1}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/delivery-zones/"+uuid.NewString(), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsRoutes(t *testing.T) {
	var putKey string
	var putValue json.RawMessage
	svc := &stubSettingService{
		list: func() (map[string]json.RawMessage, error) {
			return map[string]json.RawMessage{
				"store_info": json.RawMessage(`{"name":"German Butchery"}`),
				"banner":     json.RawMessage(`"Fresh today"`),
			}, nil
		},
		get: func(key string) (*domain.Setting, error) {
			return nil, repository.ErrSettingNotFound
		},
		put: func(key string, value json.RawMessage) (*domain.Setting, error) {
			putKey, putValue = key, value
			return &domain.Setting{Key: key, Value: value}, nil
		},
	}
	router := chi.NewRouter()
	NewSettingHandler(svc, zap.NewNop()).RegisterRoutes(router, Guards{})

	w := doJSON(t, router, http.MethodGet, "/api/settings", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
	assert.JSONEq(t, `{"name":"German Butchery"}`, string(all["store_info"]))

	w = doJSON(t, router, http.MethodGet, "/api/settings/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/settings/store_info", `{"value":{"name":"Metzgerei","whatsapp":"0788000111"}}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "store_info", putKey)
	assert.JSONEq(t, `{"name":"Metzgerei","whatsapp":"0788000111"}`, string(putValue))

	w = doJSON(t, router, http.MethodPut, "/api/settings/store_info", `{"name":"no wrapper"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardStats(t *testing.T) {
	svc := &stubDashboardService{
		stats: func() (*service.DashboardStats, error) {
			return &service.DashboardStats{TotalOrders: 3, PendingOrders: 1, TotalProducts: 12, Revenue: decimal.NewFromInt(45000)}, nil
		},
	}
	router := chi.NewRouter()
	NewDashboardHandler(svc, zap.NewNop()).RegisterRoutes(router, Guards{})

	w := doJSON(t, router, http.MethodGet, "/api/admin/dashboard", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_orders":3,"pending_orders":1,"total_products":12,"revenue":"45000"}`, w.Body.String())
}
