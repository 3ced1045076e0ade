package router

import (
	"log"
	"net/http"

	"github.com/devicesales/api/internal/config"
	"github.com/devicesales/api/internal/handler"
	"github.com/devicesales/api/internal/service"
	"github.com/devicesales/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// hub may be nil, in which case mutations are not broadcast and /ws is not served.
func New(cfg *config.Config, svc *service.SaleService, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	opts := handler.Options{
		Location: svc.Location(),
		Locale:   cfg.Locale(),
	}

	var notifier handler.Notifier
	if hub != nil {
		notifier = hub
	}

	saleHandler := handler.NewSaleHandler(svc, notifier, opts)
	r.Route("/sales", saleHandler.RegisterRoutes)

	viewHandler := handler.NewViewHandler(svc, opts)
	viewHandler.RegisterRoutes(r)

	if hub != nil {
		greet := viewHandler.Greeting()
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWS(hub, greet, w, r)
		})
	}

	log.Println("Router initialized with all handlers")
	return r
}
