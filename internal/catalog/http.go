package catalog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCart/pkg/kit"
)

// catalogMaxAge is how long clients may cache listings; the catalog only
// changes on redeploy.
const catalogMaxAge = "public, max-age=60"

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.readyz)

	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)

	return r
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed: store", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "store not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// listProducts returns the catalog in display order, optionally narrowed to
// one category (?category=Cake, case-insensitive).
func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.logger().Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if cat := strings.TrimSpace(r.URL.Query().Get("category")); cat != "" {
		filtered := products[:0:0]
		for _, p := range products {
			if strings.EqualFold(p.Category, cat) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	w.Header().Set("Cache-Control", catalogMaxAge)
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	switch {
	case err != nil:
		s.logger().Error("get product failed", zap.Error(err), zap.String("product_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	case !ok:
		kit.WriteError(w, r, http.StatusNotFound, "unknown product", map[string]any{"product_id": id})
	default:
		w.Header().Set("Cache-Control", catalogMaxAge)
		kit.WriteJSON(w, http.StatusOK, p)
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
