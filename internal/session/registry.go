// Package session owns the carts of open storefront page views. Each session
// holds one cart store and its presenter; intents on a session are applied
// one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniCart/internal/catalog"
	"MiniCart/internal/presenter"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrEmptyCatalog = errors.New("catalog is empty")
)

const (
	DefaultIdleTTL       = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	catalogLoadTimeout   = 3 * time.Second
)

type Config struct {
	// IdleTTL is a sliding timeout: every intent on a session restarts it.
	IdleTTL   time.Duration
	Presenter presenter.Options
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	presenter *presenter.Presenter
	lastSeen  time.Time
}

type Registry struct {
	catalog catalog.Store
	cfg     Config
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store catalog.Store, cfg Config, log *zap.Logger, m *Metrics) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Registry{
		catalog:  store,
		cfg:      cfg,
		log:      log,
		metrics:  m,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a page session with an empty cart. The catalog is read once
// here; the session keeps that listing for its whole life.
func (r *Registry) Create(ctx context.Context) (*Session, presenter.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, catalogLoadTimeout)
	defer cancel()

	products, err := r.catalog.List(ctx)
	if err != nil {
		return nil, presenter.Result{}, fmt.Errorf("load catalog: %w", err)
	}
	if len(products) == 0 {
		return nil, presenter.Result{}, ErrEmptyCatalog
	}

	now := r.now()
	s := &Session{
		ID:        "s_" + uuid.NewString(),
		CreatedAt: now,
		presenter: presenter.New(products, r.cfg.Presenter, r.log),
		lastSeen:  now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.setActive(n)
	r.log.Info("session created", zap.String("session_id", s.ID), zap.Int("products", len(products)))

	return s, s.presenter.Render(), nil
}

// Dispatch applies one intent to the session's cart and returns the
// re-rendered state.
func (r *Registry) Dispatch(id string, in presenter.Intent) (presenter.Result, error) {
	s, err := r.get(id)
	if err != nil {
		return presenter.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.presenter.Dispatch(in)
	r.metrics.observe(in.Kind, err)
	if err != nil {
		r.log.Debug("intent rejected",
			zap.String("session_id", id),
			zap.String("intent", string(in.Kind)),
			zap.String("product_id", in.ProductID),
			zap.Error(err),
		)
	}
	return res, err
}

func (r *Registry) View(id string) (presenter.Result, error) {
	return r.Dispatch(id, presenter.Intent{Kind: presenter.KindView})
}

// Delete ends a session and drops its cart. Deleting an unknown session is
// not an error.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.metrics.setActive(n)
		r.log.Info("session ended", zap.String("session_id", id))
	}
}

func (r *Registry) IdleTTL() time.Duration { return r.cfg.IdleTTL }

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops every session idle for longer than the TTL and returns how
// many it removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		r.metrics.setActive(n)
		r.metrics.expired(removed)
		r.log.Info("sessions expired", zap.Int("removed", removed), zap.Int("active", n))
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

func (r *Registry) get(id string) (*Session, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if now.Sub(s.lastSeen) > r.cfg.IdleTTL {
		delete(r.sessions, id)
		r.metrics.setActive(len(r.sessions))
		r.metrics.expired(1)
		return nil, fmt.Errorf("%w: %s expired", ErrNotFound, id)
	}
	s.lastSeen = now
	return s, nil
}
