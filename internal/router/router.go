package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/livingroomcafe/api/internal/auth"
	"github.com/livingroomcafe/api/internal/config"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/handler"
	mw "github.com/livingroomcafe/api/internal/middleware"
	"github.com/livingroomcafe/api/internal/notify"
	"github.com/livingroomcafe/api/internal/service"
	"github.com/livingroomcafe/api/internal/ws"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
// limiter may be nil, in which case order tracking is not rate limited.
func New(cfg *config.Config, queries *database.Queries, hub *ws.Hub, notifier *notify.Notifier, limiter mw.Limiter, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Live order feed for the admin dashboard (token checked in ServeWS)
	r.Get("/ws/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	orderService := service.NewOrderService(queries, log.Named("orders"))
	cateringHandler := handler.NewCateringHandler(queries, notifier, log)

	var trackLimit func(http.Handler) http.Handler
	if limiter != nil {
		trackLimit = mw.RateLimit(limiter, "track", log)
	}

	r.Route("/api", func(r chi.Router) {
		// Storefront (public)
		handler.NewMenuHandler(queries, log).RegisterRoutes(r)
		handler.NewOrderHandler(orderService, queries, notifier, hub, log).RegisterRoutes(r)
		handler.NewTrackingHandler(queries, trackLimit, log).RegisterRoutes(r)
		r.Route("/payment", handler.NewPaymentHandler(queries, hub, log).RegisterRoutes)
		r.Route("/catering-inquiry", func(r chi.Router) {
			cateringHandler.RegisterRoutes(r)
			r.With(mw.RequireAdmin(cfg.JWTSecret)).Get("/", cateringHandler.List)
		})
		r.Route("/auth", handler.NewCustomerAuthHandler(queries, log).RegisterRoutes)
		r.Route("/addresses", handler.NewAddressHandler(queries, log).RegisterRoutes)
		r.Route("/cart", handler.NewCartHandler().RegisterRoutes)

		r.Route("/admin", func(r chi.Router) {
			passwords := auth.NewPasswordChecker(cfg.AdminPassword, cfg.AdminPasswordHash)
			r.Route("/auth", handler.NewAdminAuthHandler(passwords, cfg.JWTSecret, log).RegisterRoutes)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireAdmin(cfg.JWTSecret))

				r.Route("/menu", handler.NewAdminMenuHandler(queries, log).RegisterRoutes)
				r.Route("/categories", handler.NewCategoryHandler(queries, log).RegisterRoutes)
				r.Route("/orders", handler.NewAdminOrderHandler(orderService, queries, hub, log).RegisterRoutes)
				r.Route("/dashboard", handler.NewDashboardHandler(queries, log).RegisterRoutes)
			})
		})
	})

	log.Debug("router initialized")
	return r
}
