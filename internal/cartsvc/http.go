package cartsvc

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCart/internal/cart"
	"MiniCart/internal/catalog"
	"MiniCart/internal/presenter"
	"MiniCart/internal/session"
	"MiniCart/internal/view"
	"MiniCart/pkg/kit"
)

const DefaultTokenTTL = 12 * time.Hour

type Server struct {
	Sessions *session.Registry
	Tokens   *session.TokenMaker
	Catalog  catalog.Store
	Log      *zap.Logger

	TokenTTL time.Duration
}

type createSessionResp struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	presenter.Result
}

type addReq struct {
	ProductID string `json:"product_id"`
	Qty       *int   `json:"qty,omitempty"`
}

type qtyReq struct {
	Qty *int `json:"qty"`
}

type stepReq struct {
	By *int `json:"by,omitempty"`
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Catalog.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed: catalog", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, res, err := s.Sessions.Create(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("create session failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
		return
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	tok, exp, err := s.Tokens.New(sess.ID, ttl)
	if err != nil {
		s.Sessions.Delete(sess.ID)
		if s.Log != nil {
			s.Log.Error("token issue", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, createSessionResp{
		SessionID: sess.ID,
		Token:     tok,
		ExpiresAt: exp.UTC(),
		Result:    res,
	})
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id, _ := SessionFromContext(r.Context())
	s.Sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) viewCart(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, presenter.Intent{Kind: presenter.KindView})
}

func (s *Server) viewCatalog(w http.ResponseWriter, r *http.Request) {
	res, ok := s.apply(w, r, presenter.Intent{Kind: presenter.KindView})
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, res.Catalog)
}

func (s *Server) viewCartHTML(w http.ResponseWriter, r *http.Request) {
	res, ok := s.apply(w, r, presenter.Intent{Kind: presenter.KindView})
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := view.WriteHTML(&buf, res.Cart); err != nil {
		if s.Log != nil {
			s.Log.Error("render cart html failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, presenter.Intent{Kind: presenter.KindClear})
}

func (s *Server) confirm(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, presenter.Intent{Kind: presenter.KindConfirm})
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := kit.DecodeJSON(w, r, &req, false); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	pid := strings.TrimSpace(req.ProductID)
	if pid == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required", nil)
		return
	}

	s.dispatch(w, r, presenter.Intent{Kind: presenter.KindAdd, ProductID: pid, Quantity: req.Qty})
}

func (s *Server) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req qtyReq
	if err := kit.DecodeJSON(w, r, &req, false); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.Qty == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "qty required", nil)
		return
	}

	s.dispatch(w, r, presenter.Intent{Kind: presenter.KindSet, ProductID: chi.URLParam(r, "id"), Quantity: req.Qty})
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, presenter.Intent{Kind: presenter.KindRemove, ProductID: chi.URLParam(r, "id")})
}

func (s *Server) increment(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, presenter.KindIncrement)
}

func (s *Server) decrement(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, presenter.KindDecrement)
}

func (s *Server) selectIncrease(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, presenter.KindSelectIncrease)
}

func (s *Server) selectDecrease(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, presenter.KindSelectDecrease)
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, kind presenter.Kind) {
	var req stepReq
	if err := kit.DecodeJSON(w, r, &req, true); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	s.dispatch(w, r, presenter.Intent{Kind: kind, ProductID: chi.URLParam(r, "id"), Quantity: req.By})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, in presenter.Intent) {
	res, ok := s.apply(w, r, in)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, in presenter.Intent) (presenter.Result, bool) {
	id, ok := SessionFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return presenter.Result{}, false
	}

	res, err := s.Sessions.Dispatch(id, in)
	if err != nil {
		s.writeDispatchError(w, r, in, err)
		return presenter.Result{}, false
	}
	return res, true
}

func (s *Server) writeDispatchError(w http.ResponseWriter, r *http.Request, in presenter.Intent, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		kit.WriteError(w, r, http.StatusUnauthorized, "session expired", nil)
	case errors.Is(err, cart.ErrInvalidQuantity):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid quantity", nil)
	case errors.Is(err, cart.ErrInvalidPrice):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid price", nil)
	case errors.Is(err, cart.ErrUnknownProduct):
		kit.WriteError(w, r, http.StatusNotFound, "unknown product", map[string]any{"product_id": in.ProductID})
	case errors.Is(err, presenter.ErrUnknownIntent):
		kit.WriteError(w, r, http.StatusBadRequest, "unknown intent", nil)
	default:
		if s.Log != nil {
			s.Log.Error("dispatch failed", zap.Error(err), zap.String("intent", string(in.Kind)))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
