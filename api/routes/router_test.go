package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/catalog/importer"
	"github.com/angelmondragon/storefront-backend/internal/contacts"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const (
	buyerUserID     int64 = 1
	shopUserID      int64 = 2
	noContactUserID int64 = 3
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

// stubContacts resolves fixed contacts per user id.
type stubContacts struct {
	contacts.Service
}

func (stubContacts) Resolve(ctx context.Context, userID int64) (*models.Contact, error) {
	switch userID {
	case buyerUserID:
		return &models.Contact{ID: 11, UserID: userID, Type: enums.ContactTypeBuyer}, nil
	case shopUserID:
		return &models.Contact{ID: 12, UserID: userID, Type: enums.ContactTypeShop}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
	}
}

type stubCatalog struct {
	catalog.Service
}

func (stubCatalog) ListShops(ctx context.Context, filter catalog.ShopFilter) (pagination.Page[catalog.ShopDTO], error) {
	return pagination.Page[catalog.ShopDTO]{Items: []catalog.ShopDTO{{ID: 1, Name: "Связной", State: true}}}, nil
}

type stubImporter struct {
	calls int
}

func (s *stubImporter) Import(ctx context.Context, userID int64, fileName string, body []byte) (*importer.Result, error) {
	s.calls++
	return &importer.Result{ShopID: 1, Shop: "Связной", Source: "request"}, nil
}

type stubOrders struct {
	orders.Service
	deleted []int64
}

func (s *stubOrders) Delete(ctx context.Context, orderID int64) error {
	s.deleted = append(s.deleted, orderID)
	return nil
}

func (s *stubOrders) List(ctx context.Context, userID int64, params pagination.Params) (pagination.Page[orders.OrderDTO], error) {
	return pagination.Page[orders.OrderDTO]{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-secret",
			Issuer:            "storefront-test",
			ExpirationMinutes: 30,
		},
	}
}

type testRouter struct {
	handler  http.Handler
	importer *stubImporter
	orders   *stubOrders
	registry *prometheus.Registry
}

func newTestRouter(cfg *config.Config) testRouter {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: "debug", Output: io.Discard})
	reg := prometheus.NewRegistry()
	imp := &stubImporter{}
	ord := &stubOrders{}
	handler := NewRouter(cfg, logg, Deps{
		DB:          stubPinger{},
		Sessions:    stubSessionManager{},
		Contacts:    stubContacts{},
		Catalog:     stubCatalog{},
		Importer:    imp,
		Orders:      ord,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
	})
	return testRouter{handler: handler, importer: imp, orders: ord, registry: reg}
}

func buildToken(t *testing.T, cfg *config.Config, userID int64, role *enums.SystemRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID:     userID,
		Username:   "router-user",
		SystemRole: role,
		JTI:        session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthLiveAcceptsTrailingSlash(t *testing.T) {
	router := newTestRouter(testConfig()).handler
	for _, path := range []string{"/health/live", "/health/live/"} {
		resp := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(testConfig()).handler
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicCatalogReadsNeedNoToken(t *testing.T) {
	router := newTestRouter(testConfig()).handler
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/shops/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public shop list got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Связной") {
		t.Fatalf("expected shop in body, got %s", resp.Body.String())
	}
}

func TestBasketRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig()).handler
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/basket/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestBuyerRoutesRejectShopAndMissingContact(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg).handler

	for _, tc := range []struct {
		name   string
		userID int64
	}{
		{name: "shop", userID: shopUserID},
		{name: "no contact", userID: noContactUserID},
	} {
		for _, path := range []string{"/basket/", "/new_order/", "/confirm_order/5/", "/orders/"} {
			method := http.MethodPost
			if path == "/basket/" || path == "/orders/" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, path, nil)
			req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, tc.userID, nil))
			resp := serve(router, req)
			if resp.Code != http.StatusForbidden {
				t.Fatalf("%s: expected 403 for %s %s got %d", tc.name, method, path, resp.Code)
			}
		}
	}
}

func TestBuyerCanListOrders(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg).handler

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, buyerUserID, nil))
	resp := serve(router, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for buyer orders got %d", resp.Code)
	}
}

func TestCatalogUpdateIsShopOnly(t *testing.T) {
	cfg := testConfig()
	tr := newTestRouter(cfg)

	buyer := httptest.NewRequest(http.MethodPost, "/update/shop1.yaml/", strings.NewReader("shop: Связной\n"))
	buyer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, buyerUserID, nil))
	if resp := serve(tr.handler, buyer); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer import got %d", resp.Code)
	}
	if tr.importer.calls != 0 {
		t.Fatalf("importer must not run for a buyer")
	}

	shop := httptest.NewRequest(http.MethodPost, "/update/shop1.yaml/", strings.NewReader("shop: Связной\n"))
	shop.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, shopUserID, nil))
	if resp := serve(tr.handler, shop); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for shop import got %d", resp.Code)
	}
	if tr.importer.calls != 1 {
		t.Fatalf("expected one import, got %d", tr.importer.calls)
	}
}

func TestAdminOrdersRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	tr := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodDelete, "/admin/orders/5", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, buyerUserID, nil))
	if resp := serve(tr.handler, nonAdmin); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	role := enums.SystemRoleAdmin
	admin := httptest.NewRequest(http.MethodDelete, "/admin/orders/5/", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, noContactUserID, &role))
	if resp := serve(tr.handler, admin); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
	if len(tr.orders.deleted) != 1 || tr.orders.deleted[0] != 5 {
		t.Fatalf("expected order 5 deleted, got %v", tr.orders.deleted)
	}
}

func TestMetricsEndpointExposesRequestCounter(t *testing.T) {
	tr := newTestRouter(testConfig())
	serve(tr.handler, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := serve(tr.handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `storefront_http_requests_total{code="200",method="GET",route="/health/live"}`) {
		t.Fatalf("expected request counter for /health/live, got:\n%s", resp.Body.String())
	}
}
