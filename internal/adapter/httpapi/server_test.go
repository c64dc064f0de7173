package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencell/hydrozone/internal/domain"
	"github.com/greencell/hydrozone/internal/serving"
)

type mockService struct {
	predictErr   error
	batchErr     error
	readyErr     error
	modelsLoaded bool
}

func (m *mockService) Predict(_ context.Context, lat, lng float64) (domain.Prediction, error) {
	if m.predictErr != nil {
		return domain.Prediction{}, m.predictErr
	}
	return domain.Prediction{
		Lat:        lat,
		Lng:        lng,
		Efficiency: 0.75,
		Cost:       2.1,
		Zone:       domain.ZoneYellow,
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockService) PredictBatch(ctx context.Context, coords []domain.Coordinate) ([]domain.Prediction, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	preds := make([]domain.Prediction, len(coords))
	for i, c := range coords {
		p, err := m.Predict(ctx, c.Lat, c.Lng)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

func (m *mockService) CheckReadiness(_ context.Context) error { return m.readyErr }
func (m *mockService) ModelsLoaded() bool                     { return m.modelsLoaded }

func newTestServer(svc PredictionService) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", svc, logger)
}

func doRequest(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_Predict(t *testing.T) {
	s := newTestServer(&mockService{modelsLoaded: true})

	rec := doRequest(t, s, http.MethodGet, "/predict-zones?lat=40.5&lng=-100.25", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pred domain.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pred))
	assert.Equal(t, 40.5, pred.Lat)
	assert.Equal(t, -100.25, pred.Lng)
	assert.Equal(t, domain.ZoneYellow, pred.Zone)
}

func TestServer_Predict_BadParams(t *testing.T) {
	s := newTestServer(&mockService{})

	tests := []struct {
		name   string
		target string
	}{
		{"missing lat", "/predict-zones?lng=10"},
		{"missing lng", "/predict-zones?lat=10"},
		{"non-numeric lat", "/predict-zones?lat=abc&lng=10"},
		{"non-numeric lng", "/predict-zones?lat=10&lng=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_Predict_ValidationError(t *testing.T) {
	svc := &mockService{
		predictErr: &serving.StageError{
			Stage: serving.StageValidate,
			Err:   fmt.Errorf("%w: latitude 99 out of range", domain.ErrDataValidation),
		},
	}
	s := newTestServer(svc)

	rec := doRequest(t, s, http.MethodGet, "/predict-zones?lat=99&lng=10", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "out of range")
}

func TestServer_Predict_StageError(t *testing.T) {
	svc := &mockService{
		predictErr: &serving.StageError{
			Stage: serving.StageInfer,
			Err:   fmt.Errorf("%w: feature mismatch", domain.ErrPrediction),
		},
	}
	s := newTestServer(svc)

	rec := doRequest(t, s, http.MethodGet, "/predict-zones?lat=40&lng=10", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "infer", body["stage"])
	assert.NotContains(t, body["error"], "feature mismatch")
}

func TestServer_Batch(t *testing.T) {
	s := newTestServer(&mockService{})

	body := `{"locations":[{"lat":10,"lng":20},{"lat":30,"lng":40}]}`
	rec := doRequest(t, s, http.MethodPost, "/predict-zones/batch", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Predictions []domain.Prediction `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Predictions, 2)
	assert.Equal(t, 10.0, resp.Predictions[0].Lat)
	assert.Equal(t, 30.0, resp.Predictions[1].Lat)
}

func TestServer_Batch_BadBody(t *testing.T) {
	s := newTestServer(&mockService{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"locations":`},
		{"empty locations", `{"locations":[]}`},
		{"missing field", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/predict-zones/batch", strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(&mockService{modelsLoaded: true})

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["models_loaded"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestServer_Health_TimestampUsesPackageClock(t *testing.T) {
	frozen := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	defer domain.SetClock(nil)

	s := newTestServer(&mockService{modelsLoaded: true})
	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, frozen.Format(time.RFC3339), body["timestamp"])
}

func TestServer_Ready(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		s := newTestServer(&mockService{})
		rec := doRequest(t, s, http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		s := newTestServer(&mockService{readyErr: fmt.Errorf("models unavailable")})
		rec := doRequest(t, s, http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "models unavailable")
	})
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(&mockService{})

	rec := doRequest(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_Root(t *testing.T) {
	s := newTestServer(&mockService{})

	rec := doRequest(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hydrozone")
}
