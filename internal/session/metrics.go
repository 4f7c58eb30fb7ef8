package session

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"MiniCart/internal/cart"
	"MiniCart/internal/presenter"
)

type Metrics struct {
	Active  prometheus.Gauge
	Expired prometheus.Counter
	Intents *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cart_sessions_active",
			Help: "Open cart sessions",
		}),
		Expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_sessions_expired_total",
			Help: "Cart sessions evicted after being idle",
		}),
		Intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_intents_total",
				Help: "Cart intents by kind and outcome",
			},
			[]string{"intent", "result"},
		),
	}

	reg.MustRegister(m.Active, m.Expired, m.Intents)
	return m
}

func (m *Metrics) observe(kind presenter.Kind, err error) {
	if m == nil {
		return
	}
	m.Intents.WithLabelValues(string(kind), resultLabel(err)).Inc()
}

func (m *Metrics) setActive(n int) {
	if m == nil {
		return
	}
	m.Active.Set(float64(n))
}

func (m *Metrics) expired(n int) {
	if m == nil || n == 0 {
		return
	}
	m.Expired.Add(float64(n))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, cart.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, cart.ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, presenter.ErrUnknownIntent):
		return "unknown_intent"
	default:
		return "error"
	}
}
