package get

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"esp-tracker/internal/storage"
)

// MockWorkPlans реализует интерфейс WorkPlans для тестов
type MockWorkPlans struct {
	mock.Mock
}

func (m *MockWorkPlans) GetWorkPlans(ctx context.Context, date string) ([]*storage.WorkPlanRow, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.WorkPlanRow), args.Error(1)
}

func (m *MockWorkPlans) GetWorkPlan(ctx context.Context, id int64) (*storage.WorkPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.WorkPlan), args.Error(1)
}

func TestGetWorkPlans_Success(t *testing.T) {
	mockStorage := new(MockWorkPlans)

	plans := []*storage.WorkPlanRow{
		{
			ID:             1,
			ProductionDate: "2025-07-16",
			JobCode:        "J1",
			JobName:        "Работа J1",
			StartTime:      "08:00:00",
			EndTime:        "17:00:00",
			Operators:      []string{"Иванов", "Петров"},
			OperatorCodes:  []string{"E1", "E2"},
		},
	}

	mockStorage.On("GetWorkPlans", mock.Anything, "2025-07-16").Return(plans, nil)

	handler := GetWorkPlans(slog.Default(), mockStorage)

	req := httptest.NewRequest(http.MethodGet, "/api/work-plans?date=2025-07-16", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool                   `json:"success"`
		Data    []*storage.WorkPlanRow `json:"data"`
	}
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "J1", resp.Data[0].JobCode)
	assert.Equal(t, []string{"Иванов", "Петров"}, resp.Data[0].Operators)

	mockStorage.AssertExpectations(t)
}

func TestGetWorkPlans_DBError(t *testing.T) {
	mockStorage := new(MockWorkPlans)

	mockStorage.On("GetWorkPlans", mock.Anything, "").Return(nil, errors.New("connection timeout"))

	handler := GetWorkPlans(slog.Default(), mockStorage)

	req := httptest.NewRequest(http.MethodGet, "/api/work-plans", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal server error")

	mockStorage.AssertExpectations(t)
}

func TestGetWorkPlanByID_NotFound(t *testing.T) {
	mockStorage := new(MockWorkPlans)

	mockStorage.On("GetWorkPlan", mock.Anything, int64(99)).
		Return(nil, fmt.Errorf("storage.mysql.GetWorkPlan: id=99: %w", storage.ErrWorkPlanNotFound))

	handler := GetWorkPlanByID(slog.Default(), mockStorage)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/work-plans/99", nil), "id", "99")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Work plan not found")

	mockStorage.AssertExpectations(t)
}

func TestGetWorkPlanByID_InvalidID(t *testing.T) {
	mockStorage := new(MockWorkPlans)

	handler := GetWorkPlanByID(slog.Default(), mockStorage)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/work-plans/abc", nil), "id", "abc")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockStorage.AssertNotCalled(t, "GetWorkPlan")
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
