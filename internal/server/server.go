// Package server exposes the predictor over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/artifact"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/config"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/observability"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/predict"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/preprocess"
)

// Server serves single and batch predictions
type Server struct {
	cfg       *config.Config
	provider  *artifact.Provider
	bundle    *artifact.Bundle
	predictor *predict.Predictor
	sessions  *sessionStore
	logger    *zap.Logger
	started   time.Time
}

// New loads the artifact bundle and builds the server. A bundle that fails to
// load is returned as an error; the server never starts without one.
func New(ctx context.Context, cfg *config.Config, provider *artifact.Provider, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "server"))

	bundle, err := provider.Get(ctx)
	if err != nil {
		return nil, err
	}

	pre, err := preprocess.New(bundle,
		preprocess.WithConfig(cfg.Preprocess),
		preprocess.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	predictor, err := predict.New(bundle, pre,
		predict.WithWorkers(cfg.Batch.GetWorkers()),
		predict.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		provider:  provider,
		bundle:    bundle,
		predictor: predictor,
		sessions:  newSessionStore(cfg.Server.SessionTTL),
		logger:    logger,
		started:   time.Now(),
	}, nil
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "GET /v1/features", s.handleFeatures)
	s.route(mux, "POST /v1/predict", s.handlePredict)
	s.route(mux, "GET /v1/predict/last", s.handleLast)
	s.route(mux, "POST /v1/predict/batch", s.handleBatch)
	s.route(mux, "GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	if s.cfg.Observability.EnableTracing {
		h = observability.TracingMiddleware(s.cfg.Observability.ServiceName)(h)
	}
	h = s.logRequests(h)
	h = s.requestID(h)
	h = s.recoverPanics(h)
	return h
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if n := s.cfg.Server.MaxConnections; n > 0 {
		ln = netutil.LimitListener(ln, n)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, errors.ErrorTypeInternal, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "http server shutdown")
	}
	<-errCh
	return nil
}

// ListenAndServe listens on the configured address and calls Serve
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "listen").
			WithDetail("addr", s.cfg.Server.Addr)
	}
	return s.Serve(ctx, ln)
}
