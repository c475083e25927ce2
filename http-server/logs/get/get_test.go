package get

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"esp-tracker/internal/storage"
)

type MockTracking struct {
	mock.Mock
}

func (m *MockTracking) ProcessStatus(ctx context.Context, workPlanID int64) ([]storage.StatusRow, error) {
	args := m.Called(ctx, workPlanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.StatusRow), args.Error(1)
}

func (m *MockTracking) ProductionSummary(ctx context.Context, date string) ([]storage.SummaryRow, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.SummaryRow), args.Error(1)
}

func TestProcessStatus_Success(t *testing.T) {
	mockTracking := new(MockTracking)

	desc := "Нарезка"
	rows := []storage.StatusRow{
		{ProcessNumber: 1, Status: storage.StatusStop, Timestamp: time.Date(2025, 7, 16, 9, 0, 0, 0, time.UTC), ProcessDescription: &desc},
		{ProcessNumber: 2, Status: storage.StatusStart, Timestamp: time.Date(2025, 7, 16, 8, 5, 0, 0, time.UTC)},
	}

	mockTracking.On("ProcessStatus", mock.Anything, int64(1)).Return(rows, nil)

	handler := ProcessStatus(slog.Default(), mockTracking)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/logs/work-plan/1/status", nil), "workPlanId", "1")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    []storage.StatusRow `json:"data"`
	}
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 1, resp.Data[0].ProcessNumber)
	assert.Equal(t, storage.StatusStop, resp.Data[0].Status)
	assert.Equal(t, "Нарезка", *resp.Data[0].ProcessDescription)
	assert.Nil(t, resp.Data[1].ProcessDescription)

	mockTracking.AssertExpectations(t)
}

func TestProductionSummary_Success(t *testing.T) {
	mockTracking := new(MockTracking)

	rows := []storage.SummaryRow{
		{
			JobCode:          "J1",
			JobName:          "Работа J1",
			ProcessesStarted: 2,
			TotalStarts:      2,
			TotalStops:       1,
			FirstStart:       time.Date(2025, 7, 16, 8, 0, 0, 0, time.UTC),
			LastActivity:     time.Date(2025, 7, 16, 9, 0, 0, 0, time.UTC),
		},
	}

	mockTracking.On("ProductionSummary", mock.Anything, "2025-07-16").Return(rows, nil)

	handler := ProductionSummary(slog.Default(), mockTracking)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/logs/summary/2025-07-16", nil), "date", "2025-07-16")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    []storage.SummaryRow `json:"data"`
	}
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)

	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Data[0].ProcessesStarted)
	assert.Equal(t, 2, resp.Data[0].TotalStarts)
	assert.Equal(t, 1, resp.Data[0].TotalStops)

	mockTracking.AssertExpectations(t)
}

func TestProcessStatus_InvalidID(t *testing.T) {
	mockTracking := new(MockTracking)

	handler := ProcessStatus(slog.Default(), mockTracking)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/logs/work-plan/abc/status", nil), "workPlanId", "abc")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockTracking.AssertNotCalled(t, "ProcessStatus")
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
