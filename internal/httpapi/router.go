package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the full route tree. The websocket route sits outside the
// Timeout middleware because the stream is long-lived.
func NewRouter(cart Cart, catalog Catalog, sessions Sessions, conn Connectivity, requestTimeout time.Duration) chi.Router {
	cartHandler := NewCartHandler(cart, catalog)
	productHandler := NewProductHandler(catalog)
	sessionHandler := NewSessionHandler(sessions)
	syncHandler := NewSyncHandler(cart, conn)
	wsHandler := NewWSHandler(cart)
	resolveSession := SessionMiddleware(sessions)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(resolveSession).Get("/api/v1/ws", wsHandler.Stream)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(resolveSession)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/", sessionHandler.SignIn)
			r.Delete("/", sessionHandler.SignOut)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{itemID}", cartHandler.UpdateQuantity)
			r.Delete("/items/{itemID}", cartHandler.RemoveItem)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/", syncHandler.GetStatus)
			r.Put("/online", syncHandler.SetOnline)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetProducts)
			r.Get("/{productID}", productHandler.GetProduct)
		})
	})

	return r
}
