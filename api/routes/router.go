package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftroots/storefront-backend/api/controllers"
	"github.com/craftroots/storefront-backend/api/middleware"
	"github.com/craftroots/storefront-backend/internal/cart"
	"github.com/craftroots/storefront-backend/internal/catalog"
	"github.com/craftroots/storefront-backend/internal/orders"
	"github.com/craftroots/storefront-backend/pkg/config"
	"github.com/craftroots/storefront-backend/pkg/logger"
	pkgredis "github.com/craftroots/storefront-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: public catalog reads, authenticated
// cart and order operations, and an admin subtree.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *pkgredis.Client,
	catalogService catalog.Service,
	cartService cart.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(),
		middleware.CORS(cfg.CORS),
	)

	var redisPinger controllers.Pinger
	var idempotencyStore pkgredis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(logg, dbPinger, redisPinger))
	})

	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Get("/{productID}", controllers.GetProduct(catalogService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(cartService, logg))
			r.Delete("/", controllers.ClearCart(cartService, logg))
			r.Post("/items", controllers.AddCartItem(cartService, logg))
			r.Put("/items", controllers.UpdateCartItem(cartService, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(cartService, logg))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/", controllers.ListMyOrders(ordersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(ordersService, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(ordersService, logg))
		})

		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(catalogService, logg))
				r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
				r.Get("/low-stock", controllers.AdminListLowStock(catalogService, logg))
				r.Patch("/{productID}", controllers.AdminUpdateProduct(catalogService, logg))
				r.Delete("/{productID}", controllers.AdminDeactivateProduct(catalogService, logg))
				r.Put("/{productID}/stock", controllers.AdminSetProductStock(catalogService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(ordersService, logg))
				r.Get("/{orderID}", controllers.AdminGetOrder(ordersService, logg))
				r.Put("/{orderID}/status", controllers.AdminUpdateOrderStatus(ordersService, logg))
				r.Post("/{orderID}/cancel", controllers.AdminCancelOrder(ordersService, logg))
			})

			r.Put("/payments/{transactionID}", controllers.AdminUpdatePaymentStatus(ordersService, logg))
		})
	})

	return r
}
