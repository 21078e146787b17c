package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	SpamVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spam_verdicts_total",
			Help: "Total number of spam verdicts by reason",
		},
		[]string{"reason"},
	)

	EscalationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalation_actions_total",
			Help: "Total number of escalation actions taken",
		},
		[]string{"action"},
	)

	LoginEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_events_total",
			Help: "Total number of admin login handshake events by outcome",
		},
		[]string{"outcome"},
	)
)

// Server exposes prometheus metrics over HTTP.
type Server struct {
	srv *http.Server
}

func NewServer(addr string) *Server {
	prometheus.MustRegister(SpamVerdictsTotal, EscalationActionsTotal, LoginEventsTotal)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Start(_ context.Context) error {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
