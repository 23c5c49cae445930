package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"compressd/internal/compressor"
	"compressd/internal/pool"
	"compressd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Compress(ctx context.Context, req types.CompressRequest) (types.CompressResponse, error)
	Reconfigure(ctx context.Context, cfg types.PoolConfig) error
	Status() types.StatusResponse
	Health() types.HealthResponse
	Ready() bool
}

// NewMux builds the router: /compress, /reconfigure, /status, /health,
// /healthz, /readyz, /metrics, plus swagger when built with -tags=swagger.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	if limiter := throttleLimiter(); limiter != nil {
		r.Use(throttleMiddleware(limiter))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/compress", handleCompress(svc))
	r.Post("/reconfigure", handleReconfigure(svc))

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Health()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("initializing"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleCompress implements POST /compress.
//
// @Summary      Compress prompts
// @Accept       json
// @Produce      json
// @Param        request body types.CompressRequest true "prompts and compression parameters"
// @Success      200 {object} types.CompressResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      429 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse
// @Router       /compress [post]
func handleCompress(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.CompressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(req.Prompts) == 0 {
			writeJSONError(w, http.StatusBadRequest, "prompts is required")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo {
			if zlog != nil {
				z := zlog.Info().Str("path", r.URL.Path).Int("prompts", len(req.Prompts))
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("compress start")
			} else {
				log.Printf("compress start path=%s prompts=%d", r.URL.Path, len(req.Prompts))
			}
		}

		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Compress(joinedCtx, req)
		if err != nil {
			// If context was canceled (client disconnect or shutdown), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := compressErrorStatus(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("pool_exhausted")
			}
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo {
				if zlog != nil {
					z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
					if rid := middleware.GetReqID(r.Context()); rid != "" {
						z = z.Str("request_id", rid)
					}
					z.Err(err).Msg("compress end")
				} else {
					log.Printf("compress end status=%d dur=%s err=%v", status, time.Since(start), err)
				}
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		if lvl >= LevelInfo {
			if zlog != nil {
				z := zlog.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).
					Int("original_tokens", resp.OriginalTokens).Int("compressed_tokens", resp.CompressedTokens)
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("compress end")
			} else {
				log.Printf("compress end status=200 dur=%s tokens=%d->%d", time.Since(start), resp.OriginalTokens, resp.CompressedTokens)
			}
		}
	}
}

// handleReconfigure implements POST /reconfigure.
//
// @Summary      Swap the worker pool onto a new model/device
// @Accept       json
// @Produce      json
// @Param        request body types.PoolConfig true "new pool configuration; empty fields inherit"
// @Success      200 {object} types.StatusResponse
// @Failure      500 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse
// @Router       /reconfigure [post]
func handleReconfigure(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var cfg types.PoolConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		start := time.Now()
		if zlog != nil {
			zlog.Info().Str("model", cfg.Model).Str("device", cfg.Device).Msg("reconfigure start")
		} else {
			log.Printf("reconfigure start model=%s device=%s", cfg.Model, cfg.Device)
		}

		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := svc.Reconfigure(joinedCtx, cfg); err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := http.StatusInternalServerError
			if pool.IsClosed(err) || compressor.IsBackendUnavailable(err) {
				status = http.StatusServiceUnavailable
			}
			writeJSONError(w, status, err.Error())
			if zlog != nil {
				zlog.Error().Err(err).Int("status", status).Dur("dur", time.Since(start)).Msg("reconfigure end")
			} else {
				log.Printf("reconfigure end status=%d dur=%s err=%v", status, time.Since(start), err)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		if zlog != nil {
			zlog.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).Msg("reconfigure end")
		} else {
			log.Printf("reconfigure end status=200 dur=%s", time.Since(start))
		}
	}
}

// compressErrorStatus maps well-known service errors to HTTP status codes.
func compressErrorStatus(err error) int {
	switch {
	case pool.IsExhausted(err):
		return http.StatusTooManyRequests
	case pool.IsClosed(err), compressor.IsBackendUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
