package cartsvc

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"MiniCart/pkg/kit"
)

type HTTPDeps struct {
	kit.HTTPDeps

	// SessionsPerMinute limits session creation per client IP; zero disables it.
	SessionsPerMinute int
	// TrustedProxies are peers whose X-Forwarded-For is used to key the
	// limiter, normally the gateway.
	TrustedProxies []netip.Prefix
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := kit.NewRouter(deps.HTTPDeps)
	limiter := kit.NewIPRateLimiter(deps.SessionsPerMinute, time.Minute).TrustProxies(deps.TrustedProxies...)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.readyz)

	r.With(limiter.Middleware).Post("/sessions", s.createSession)

	r.Group(func(pr chi.Router) {
		pr.Use(RequireSession(s.Tokens))

		pr.Delete("/sessions/current", s.endSession)

		pr.Get("/cart", s.viewCart)
		pr.Get("/cart.html", s.viewCartHTML)
		pr.Delete("/cart", s.clearCart)
		pr.Post("/cart/confirm", s.confirm)

		pr.Post("/cart/items", s.addItem)
		pr.Put("/cart/items/{id}", s.setQuantity)
		pr.Delete("/cart/items/{id}", s.removeItem)
		pr.Post("/cart/items/{id}/increment", s.increment)
		pr.Post("/cart/items/{id}/decrement", s.decrement)

		pr.Get("/catalog", s.viewCatalog)
		pr.Post("/catalog/{id}/select/increase", s.selectIncrease)
		pr.Post("/catalog/{id}/select/decrease", s.selectDecrease)
	})

	return r
}
