package prometheus

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var reqMetrics = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "request_duration_seconds",
		Help:    "Request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"status", "op"},
)

var reqCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "request_count",
		Help: "Request count",
	},
	[]string{"status", "op"},
)

func init() {
	prometheus.MustRegister(reqMetrics, reqCount)
}

func ObserveRequest(dur time.Duration, status int, op string) {
	reqMetrics.With(
		prometheus.Labels{
			"status": fmt.Sprintf("%d", status),
			"op":     op,
		},
	).Observe(dur.Seconds())

	reqCount.With(
		prometheus.Labels{
			"status": fmt.Sprintf("%d", status),
			"op":     op,
		},
	).Inc()
}

type Server struct {
	srv *http.Server
}

func New(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}
}

func (s *Server) Start(ctx context.Context) {
	go func() {
		zap.L().Info("Starting metrics server", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Error("Metrics server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(sCtx); err != nil {
		zap.L().Debug("Error shutting down metrics server", zap.Error(err))
	}
	zap.L().Info("Metrics server has been stopped")
}
