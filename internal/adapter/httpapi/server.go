// Package httpapi exposes the prediction API plus health, readiness, and
// metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greencell/hydrozone/internal/domain"
	"github.com/greencell/hydrozone/internal/serving"
)

// PredictionService is the inference surface exposed over HTTP.
type PredictionService interface {
	Predict(ctx context.Context, lat, lng float64) (domain.Prediction, error)
	PredictBatch(ctx context.Context, coords []domain.Coordinate) ([]domain.Prediction, error)
	CheckReadiness(ctx context.Context) error
	ModelsLoaded() bool
}

// Server exposes the prediction API over HTTP.
type Server struct {
	httpServer *http.Server
	service    PredictionService
	logger     *slog.Logger
}

// batchRequest mirrors the batch endpoint's request body.
type batchRequest struct {
	Locations []domain.Coordinate `json:"locations"`
}

// NewServer creates an HTTP server with prediction, health, readiness, and
// metrics routes.
func NewServer(addr string, service PredictionService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /predict-zones", s.handlePredict)
	mux.HandleFunc("POST /predict-zones/batch", s.handleBatch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "hydrozone",
		"endpoints": map[string]string{
			"predict":       "/predict-zones?lat=...&lng=...",
			"batch_predict": "/predict-zones/batch",
			"health":        "/healthz",
		},
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lng, err := queryFloat(r, "lng")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pred, err := s.service.Predict(r.Context(), lat, lng)
	if err != nil {
		s.writePredictionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Locations) == 0 {
		writeError(w, http.StatusBadRequest, "locations must not be empty")
		return
	}

	preds, err := s.service.PredictBatch(r.Context(), req.Locations)
	if err != nil {
		s.writePredictionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": preds})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"models_loaded": s.service.ModelsLoaded(),
		"timestamp":     domain.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writePredictionError maps pipeline failures to HTTP responses: validation
// problems are the caller's fault, everything else is a server-side failure
// reported by stage only.
func (s *Server) writePredictionError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrDataValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stage := "unknown"
	var se *serving.StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	s.logger.Error("prediction failed", "stage", stage, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "prediction failed",
		"stage": stage,
	})
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing query parameter %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
