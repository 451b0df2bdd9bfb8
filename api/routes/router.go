package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/basket"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/contacts"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Deps carries everything the HTTP surface talks to. Nil services answer
// with an internal error instead of panicking.
type Deps struct {
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth     auth.Service
	Register auth.RegisterService
	Users    users.Service
	Contacts contacts.Service
	Catalog  catalog.Service
	Importer controllers.CatalogImporter
	Basket   basket.Service
	Orders   orders.Service

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.StripSlashes,
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentityLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterIdentityLimit,
	)
	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return middleware.AuthRateLimit(policy, nil, logg)
		}
		return middleware.AuthRateLimit(policy, deps.Redis, logg)
	}
	idempotency := middleware.Idempotency(nil, logg)
	if deps.Redis != nil {
		idempotency = middleware.Idempotency(deps.Redis, logg)
	}

	readiness := map[string]controllers.Pinger{"db": deps.DB}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Public surface.
	r.With(rateLimit(registerPolicy)).Post("/registration", controllers.Register(deps.Register, logg))
	r.With(rateLimit(loginPolicy)).Post("/login", controllers.Login(deps.Auth, logg))
	r.Post("/refresh", controllers.Refresh(deps.Auth, logg))

	r.Get("/shops", controllers.ShopList(deps.Catalog, logg))
	r.Get("/shops/{id}", controllers.ShopGet(deps.Catalog, logg))
	r.Get("/categories", controllers.CategoryList(deps.Catalog, logg))
	r.Get("/categories/{id}", controllers.CategoryGet(deps.Catalog, logg))
	r.Get("/products", controllers.ProductList(deps.Catalog, logg))
	r.Get("/products/{id}", controllers.ProductGet(deps.Catalog, logg))
	r.Get("/parameters", controllers.ParameterList(deps.Catalog, logg))
	r.Get("/parameters/{id}", controllers.ParameterGet(deps.Catalog, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(idempotency)

		r.Post("/logout", controllers.Logout(deps.Auth, logg))
		r.Patch("/registration", controllers.UpdateProfile(deps.Users, logg))

		r.Route("/contact", func(r chi.Router) {
			r.Get("/", controllers.ContactGet(deps.Contacts, logg))
			r.Post("/", controllers.ContactCreate(deps.Contacts, logg))
			r.Patch("/", controllers.ContactUpdate(deps.Contacts, logg))
			r.Delete("/", controllers.ContactDelete(deps.Contacts, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireContactType(deps.Contacts, logg, enums.ContactTypeBuyer))

			r.Route("/basket", func(r chi.Router) {
				r.Get("/", ordercontrollers.BasketView(deps.Basket, logg))
				r.Put("/", ordercontrollers.BasketAdd(deps.Basket, logg))
				r.Patch("/", ordercontrollers.BasketUpdate(deps.Basket, logg))
				r.Delete("/", ordercontrollers.BasketRemove(deps.Basket, logg))
			})
			r.Post("/new_order", ordercontrollers.NewOrder(deps.Orders, logg))
			r.Post("/confirm_order/{id}", ordercontrollers.ConfirmOrder(deps.Orders, logg))
			r.Get("/orders", ordercontrollers.List(deps.Orders, logg))
			r.Get("/orders/{id}", ordercontrollers.Detail(deps.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireContactType(deps.Contacts, logg, enums.ContactTypeShop))

			r.Post("/update/{file_name}", controllers.CatalogUpdate(deps.Importer, cfg.Catalog.MaxDocumentBytes(), logg))

			r.Post("/shops", controllers.ShopCreate(deps.Catalog, logg))
			r.Patch("/shops/{id}", controllers.ShopUpdate(deps.Catalog, logg))
			r.Patch("/shops/{id}/state", controllers.ShopState(deps.Catalog, logg))
			r.Delete("/shops/{id}", controllers.ShopDelete(deps.Catalog, logg))

			r.Post("/categories", controllers.CategoryCreate(deps.Catalog, logg))
			r.Patch("/categories/{id}", controllers.CategoryUpdate(deps.Catalog, logg))
			r.Delete("/categories/{id}", controllers.CategoryDelete(deps.Catalog, logg))

			r.Post("/products", controllers.ProductCreate(deps.Catalog, logg))
			r.Patch("/products/{id}", controllers.ProductUpdate(deps.Catalog, logg))
			r.Delete("/products/{id}", controllers.ProductDelete(deps.Catalog, logg))

			r.Post("/parameters", controllers.ParameterCreate(deps.Catalog, logg))
			r.Patch("/parameters/{id}", controllers.ParameterUpdate(deps.Catalog, logg))
			r.Delete("/parameters/{id}", controllers.ParameterDelete(deps.Catalog, logg))
		})

		r.Route("/admin/orders", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Patch("/{id}/status", ordercontrollers.AdminOverrideStatus(deps.Orders, logg))
			r.Delete("/{id}", ordercontrollers.AdminDeleteOrder(deps.Orders, logg))
		})
	})

	return r
}
