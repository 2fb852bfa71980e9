// Package server hosts the local HTTP endpoints of the console (metrics).
package server

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// ShutdownTimeout bounds the graceful stop.
const ShutdownTimeout = 5 * time.Second

// Logging logs every request: method, path, status and duration, never bodies.
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("dur", time.Since(start)),
				zap.String("peer", r.RemoteAddr),
			)
		})
	}
}

// Recover turns a handler panic into a 500 and logs it with the stack.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic",
						zap.Any("reason", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("path", r.URL.Path),
					)
					http.Error(w, "internal", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Server is a small HTTP server with logging and panic recovery.
type Server struct {
	srv  *http.Server
	log  *zap.Logger
	done chan struct{}
}

// New wraps h with Recover and Logging.
func New(addr string, h http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Recover(log)(Logging(log)(h)),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log:  log,
		done: make(chan struct{}),
	}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		defer close(s.done)
		s.log.Info("listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", zap.Error(err))
		}
	}()
}

// Stop shuts down gracefully, then forcibly after ShutdownTimeout.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		_ = s.srv.Close()
	}
	<-s.done
	s.log.Info("shutdown complete")
}
