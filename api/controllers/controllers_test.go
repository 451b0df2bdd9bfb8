package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/catalog/importer"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// stubCatalog panics on any method a test does not override.
type stubCatalog struct {
	catalog.Service
	listListings func(ctx context.Context, filter catalog.ListingFilter) (pagination.Page[catalog.ListingDTO], error)
	setState     func(ctx context.Context, userID, shopID int64, state bool) (*catalog.ShopDTO, error)
}

func (s *stubCatalog) ListListings(ctx context.Context, filter catalog.ListingFilter) (pagination.Page[catalog.ListingDTO], error) {
	return s.listListings(ctx, filter)
}

func (s *stubCatalog) SetShopState(ctx context.Context, userID, shopID int64, state bool) (*catalog.ShopDTO, error) {
	return s.setState(ctx, userID, shopID, state)
}

type stubImporter struct {
	fileName string
	body     []byte
	err      error
}

func (s *stubImporter) Import(ctx context.Context, userID int64, fileName string, body []byte) (*importer.Result, error) {
	s.fileName = fileName
	s.body = body
	if s.err != nil {
		return nil, s.err
	}
	return &importer.Result{ShopID: 1, Shop: "Связной", Source: "request", Products: 2}, nil
}

type stubRegister struct {
	calls int
}

func (s *stubRegister) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.calls++
	if req.Username == "taken" {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already registered")
	}
	return &users.UserDTO{ID: 10, Username: req.Username, Email: req.Email}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func withUser(req *http.Request, userID int64) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func withParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestProductListParsesFilters(t *testing.T) {
	var got catalog.ListingFilter
	svc := &stubCatalog{
		listListings: func(ctx context.Context, filter catalog.ListingFilter) (pagination.Page[catalog.ListingDTO], error) {
			got = filter
			return pagination.Page[catalog.ListingDTO]{}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/products?shop_id=3&category_id=4&parameter_id=5&model=apple/iphone&search=iphone&ordering=-price&limit=5", nil)
	rec := httptest.NewRecorder()
	ProductList(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), got.ShopID)
	assert.Equal(t, int64(4), got.CategoryID)
	assert.Equal(t, int64(5), got.ParameterID)
	assert.Zero(t, got.ProductID)
	assert.Equal(t, "apple/iphone", got.Model)
	assert.Equal(t, "iphone", got.Search)
	assert.Equal(t, "-price", got.Ordering)
	assert.Equal(t, 5, got.Limit)
}

func TestProductListRejectsBadID(t *testing.T) {
	svc := &stubCatalog{}
	req := httptest.NewRequest(http.MethodGet, "/products?shop_id=-1", nil)
	rec := httptest.NewRecorder()
	ProductList(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShopStateRequiresState(t *testing.T) {
	svc := &stubCatalog{
		setState: func(ctx context.Context, userID, shopID int64, state bool) (*catalog.ShopDTO, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	req := httptest.NewRequest(http.MethodPatch, "/shops/2/state", strings.NewReader(`{}`))
	req = withParams(withUser(req, 7), map[string]string{"id": "2"})
	rec := httptest.NewRecorder()
	ShopState(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShopStateClosesShop(t *testing.T) {
	svc := &stubCatalog{
		setState: func(ctx context.Context, userID, shopID int64, state bool) (*catalog.ShopDTO, error) {
			assert.Equal(t, int64(7), userID)
			assert.Equal(t, int64(2), shopID)
			assert.False(t, state)
			return &catalog.ShopDTO{ID: shopID, State: state}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPatch, "/shops/2/state", strings.NewReader(`{"state":false}`))
	req = withParams(withUser(req, 7), map[string]string{"id": "2"})
	rec := httptest.NewRecorder()
	ShopState(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogUpdate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		maxBytes   int64
		importErr  error
		wantStatus int
		wantCalled bool
	}{
		{name: "inline document", body: "shop: Связной\n", maxBytes: 1024, wantStatus: http.StatusOK, wantCalled: true},
		{name: "empty body fetches by name", maxBytes: 1024, wantStatus: http.StatusOK, wantCalled: true},
		{name: "body too large", body: strings.Repeat("x", 64), maxBytes: 16, wantStatus: http.StatusBadRequest},
		{name: "foreign shop", body: "shop: Other\n", maxBytes: 1024, importErr: pkgerrors.New(pkgerrors.CodeConflict, "shop belongs to another contact"), wantStatus: http.StatusConflict, wantCalled: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			imp := &stubImporter{err: tc.importErr}
			req := httptest.NewRequest(http.MethodPost, "/update/shop1.yaml", strings.NewReader(tc.body))
			req = withParams(withUser(req, 7), map[string]string{"file_name": "shop1.yaml"})
			rec := httptest.NewRecorder()
			CatalogUpdate(imp, tc.maxBytes, logger.Nop())(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantCalled {
				assert.Equal(t, "shop1.yaml", imp.fileName)
				assert.Equal(t, tc.body, string(imp.body))
			} else {
				assert.Empty(t, imp.fileName)
			}
		})
	}
}

func TestCatalogUpdateRequiresUser(t *testing.T) {
	imp := &stubImporter{}
	req := withParams(httptest.NewRequest(http.MethodPost, "/update/a.yaml", nil), map[string]string{"file_name": "a.yaml"})
	rec := httptest.NewRecorder()
	CatalogUpdate(imp, 1024, logger.Nop())(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeUnauthorized), errorCode(t, rec))
}

func TestRegister(t *testing.T) {
	reg := &stubRegister{}

	rec := httptest.NewRecorder()
	body := `{"username":"ivan","email":"ivan@example.com","password":"s3cret-Pass"}`
	Register(reg, logger.Nop())(rec, httptest.NewRequest(http.MethodPost, "/registration", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	body = `{"username":"taken","email":"t@example.com","password":"s3cret-Pass"}`
	Register(reg, logger.Nop())(rec, httptest.NewRequest(http.MethodPost, "/registration", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	Register(reg, logger.Nop())(rec, httptest.NewRequest(http.MethodPost, "/registration", strings.NewReader(`{"username":"x","email":"nope"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 2, reg.calls)
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Storefront-Env"))

	rec = httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("dial tcp: refused")}})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}
