// Package webui 以JSON形式向展示层提供输出表，并提供实时日志
package webui

import (
	"AirlineSafety/src/config"
	"AirlineSafety/src/metrics"
	"AirlineSafety/src/processor"
	"AirlineSafety/src/storage"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportSource 提供计算好的输出表
type ReportSource interface {
	Get(ctx context.Context) (*processor.Report, error)
}

type Server struct {
	reports ReportSource
	peers   processor.PeerFinder // 为nil时在内存中排名
	logger  *storage.Logger
	cfg     config.ServerConfig
}

func NewServer(reports ReportSource, peers processor.PeerFinder, logger *storage.Logger, cfg config.ServerConfig) *Server {
	if logger == nil {
		logger = storage.Discard()
	}
	return &Server{reports: reports, peers: peers, logger: logger, cfg: cfg}
}

// Router 注册全部路由
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/logs", s.handleLogs)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/airlines", s.handleAirlines)
		r.Get("/enriched", s.handleEnriched)
		r.Get("/long", s.handleLong)
		r.Get("/long/pivot", s.handlePivot)

		r.Route("/periods", func(r chi.Router) {
			r.Get("/means", s.handlePeriodMeans)
			r.Get("/totals", s.handlePeriodTotals)
			r.Get("/change", s.handlePeriodChange)
		})

		r.Get("/rate-change/{family}", s.handleRateChanges)
		r.Get("/rate-change/{family}/{airline}", s.handleRateChange)
		r.Get("/peers/{airline}", s.handlePeers)
		r.Get("/compare/{family}/{airline}", s.handleCompare)
		r.Get("/correlation/{family}", s.handleCorrelation)
	})
	return r
}

// instrument 记录每个路由的请求数和耗时
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t1 := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(t1).Seconds())
	})
}

// ListenAndServe 阻塞直到ctx取消，随后优雅关闭
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(fmt.Sprintf("HTTP服务已启动: %s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("HTTP服务正在关闭")
		return srv.Shutdown(shutdownCtx)
	}
}
