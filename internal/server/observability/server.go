// Package observability serves the gateway's Prometheus metrics and health
// probes on a listener separate from gRPC.
package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values for RequestsTotal.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics contains the gateway's custom metrics.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the gateway metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "securemvp_gateway_requests_total",
				Help: "Total number of gateway requests by method and result",
			},
			[]string{"method", "result"},
		),
	}

	reg.MustRegister(m.RequestsTotal)

	return m
}

// ObserveRequest counts one finished request. A nil receiver is a no-op.
func (m *Metrics) ObserveRequest(method, result string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, result).Inc()
}

// Server exposes /metrics and /healthz/liveness.
type Server struct {
	addr     string
	registry *prometheus.Registry
	metrics  *Metrics
	logger   logging.Logger
}

// NewServer creates a server with its own registry holding the Go runtime,
// process and gateway metrics.
func NewServer(addr string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Server{
		addr:     addr,
		registry: registry,
		metrics:  NewMetrics(registry),
		logger:   logger.With("module", "observability"),
	}
}

// Metrics returns the metrics recorded by the gRPC server.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the HTTP handler serving the observability endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz/liveness", handleLiveness)
	return mux
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "observability server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting observability server", "address", lis.Addr().String())

	if err := httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // client may disconnect
	w.Write([]byte("ok\n"))
}
