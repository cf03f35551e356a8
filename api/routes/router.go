package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danielcastellanos/peptidehub-backend/api/controllers"
	"github.com/danielcastellanos/peptidehub-backend/api/middleware"
	cartsvc "github.com/danielcastellanos/peptidehub-backend/internal/cart"
	"github.com/danielcastellanos/peptidehub-backend/internal/groupbuy"
	"github.com/danielcastellanos/peptidehub-backend/internal/media"
	ordersvc "github.com/danielcastellanos/peptidehub-backend/internal/orders"
	"github.com/danielcastellanos/peptidehub-backend/internal/products"
	"github.com/danielcastellanos/peptidehub-backend/internal/profiles"
	"github.com/danielcastellanos/peptidehub-backend/internal/subgroups"
	"github.com/danielcastellanos/peptidehub-backend/pkg/config"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	"github.com/danielcastellanos/peptidehub-backend/pkg/metrics"
	pkgredis "github.com/danielcastellanos/peptidehub-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	Pingers        map[string]controllers.Pinger
	KV             pkgredis.KVStore

	Profiles  profiles.Service
	Products  products.Service
	Cart      cartsvc.Service
	GroupBuy  groupbuy.Service
	Orders    ordersvc.Service
	SubGroups subgroups.Service
	Media     media.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	var resolver middleware.ProfileResolver = deps.Profiles

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront reads.
		r.Get("/regions", controllers.RegionsList(deps.SubGroups, logg))
		r.Get("/products", controllers.ProductsList(deps.Products, logg))
		r.Get("/products/{productKey}", controllers.ProductGet(deps.Products, logg))

		// Session carts work for anonymous and signed-in callers alike; the
		// auth middleware only runs when a bearer token is present.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.Identity, logg))
			r.Get("/cart", controllers.CartGet(deps.Cart, logg))
			r.Post("/cart/items", controllers.CartAddItem(deps.Cart, logg))
			r.Put("/cart/items", controllers.CartUpdateQuantity(deps.Cart, logg))
			r.Delete("/cart/items", controllers.CartRemoveItem(deps.Cart, logg))
			r.Delete("/cart", controllers.CartClear(deps.Cart, logg))
		})

		// Pooled-order submission accepts guest checkouts but records the
		// profile when one resolves.
		r.Group(func(r chi.Router) {
			r.Use(
				middleware.OptionalAuth(cfg.Identity, logg),
				middleware.ProfileContext(resolver, logg),
				middleware.Idempotency(deps.KV, logg),
			)
			r.Post("/group-orders", controllers.GroupOrderSubmit(deps.GroupBuy, logg))
		})

		// Signed-in surface.
		r.Route("/me", func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.Identity, logg),
				middleware.ProfileContext(resolver, logg),
			)
			r.Get("/ping", controllers.PrivatePing())
			r.Get("/profile", controllers.ProfileMe(deps.Profiles, logg))
			r.Get("/orders", controllers.OrdersList(deps.Orders, logg))
			r.Get("/orders/summary", controllers.OrdersSummary(deps.Orders, logg))
		})

		// Host dashboard.
		r.Route("/host", func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.Identity, logg),
				middleware.ProfileContext(resolver, logg),
				middleware.RequireAnyRole(logg, string(enums.UserRoleHost), string(enums.UserRoleAdmin)),
				middleware.Idempotency(deps.KV, logg),
			)
			r.Post("/batches", controllers.HostBatchCreate(deps.SubGroups, logg))
			r.Post("/batches/{batchId}/close", controllers.HostBatchClose(deps.SubGroups, logg))
			r.Post("/batches/{batchId}/cancel", controllers.HostBatchCancel(deps.SubGroups, logg))
		})

		// Admin surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.Identity, logg),
				middleware.ProfileContext(resolver, logg),
				middleware.RequireRole(string(enums.UserRoleAdmin), logg),
			)
			r.Get("/ping", controllers.AdminPing())
			r.Patch("/profiles/{profileId}/role", controllers.ProfileUpdateRole(deps.Profiles, logg))
			r.Patch("/orders/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
			r.Patch("/orders/{orderId}/payment-status", controllers.AdminOrderUpdatePaymentStatus(deps.Orders, logg))
			r.Post("/media/uploads", controllers.MediaUpload(deps.Media, deps.Products, cfg.Media.MaxUploadBytes(), logg))
		})
	})

	return r
}
