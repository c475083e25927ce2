package update

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"esp-tracker/internal/storage"
)

type MockUpdateWorkPlan struct {
	mock.Mock
}

func (m *MockUpdateWorkPlan) UpdateWorkPlan(ctx context.Context, id int64, req storage.SaveWorkPlan) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *MockUpdateWorkPlan) GetWorkPlan(ctx context.Context, id int64) (*storage.WorkPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.WorkPlan), args.Error(1)
}

func (m *MockUpdateWorkPlan) SetFinished(ctx context.Context, id int64, finished bool) error {
	args := m.Called(ctx, id, finished)
	return args.Error(0)
}

// Поле operators не прислали — набор назначений не трогаем: в хранилище
// должен уйти nil, а не пустой срез.
func TestUpdateWorkPlan_OperatorsOmitted(t *testing.T) {
	mockStorage := new(MockUpdateWorkPlan)

	mockStorage.On("UpdateWorkPlan", mock.Anything, int64(5), mock.MatchedBy(func(req storage.SaveWorkPlan) bool {
		return req.Operators == nil
	})).Return(nil)
	mockStorage.On("GetWorkPlan", mock.Anything, int64(5)).
		Return(&storage.WorkPlan{ID: 5, JobCode: "J1"}, nil)

	body := `{"production_date": "2025-07-16", "job_code": "J1"}`

	handler := UpdateWorkPlanOperation(slog.Default(), mockStorage)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/work-plans/5", strings.NewReader(body)), "id", "5")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockStorage.AssertExpectations(t)
}

// operators: [] — явная очистка набора: в хранилище уходит пустой срез.
func TestUpdateWorkPlan_OperatorsCleared(t *testing.T) {
	mockStorage := new(MockUpdateWorkPlan)

	mockStorage.On("UpdateWorkPlan", mock.Anything, int64(5), mock.MatchedBy(func(req storage.SaveWorkPlan) bool {
		return req.Operators != nil && len(*req.Operators) == 0
	})).Return(nil)
	mockStorage.On("GetWorkPlan", mock.Anything, int64(5)).
		Return(&storage.WorkPlan{ID: 5, JobCode: "J1"}, nil)

	body := `{"production_date": "2025-07-16", "job_code": "J1", "operators": []}`

	handler := UpdateWorkPlanOperation(slog.Default(), mockStorage)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/work-plans/5", strings.NewReader(body)), "id", "5")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockStorage.AssertExpectations(t)
}

func TestUpdateWorkPlan_NotFound(t *testing.T) {
	mockStorage := new(MockUpdateWorkPlan)

	mockStorage.On("UpdateWorkPlan", mock.Anything, int64(99), mock.Anything).
		Return(fmt.Errorf("storage.mysql.UpdateWorkPlan: id=99: %w", storage.ErrWorkPlanNotFound))

	body := `{"production_date": "2025-07-16", "job_code": "J1"}`

	handler := UpdateWorkPlanOperation(slog.Default(), mockStorage)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/work-plans/99", strings.NewReader(body)), "id", "99")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Work plan not found")
	mockStorage.AssertExpectations(t)
}

func TestMarkFinished(t *testing.T) {
	mockStorage := new(MockUpdateWorkPlan)

	mockStorage.On("SetFinished", mock.Anything, int64(3), true).Return(nil)

	handler := MarkFinished(slog.Default(), mockStorage)

	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/api/work-plans/3/finish", nil), "id", "3")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "marked as finished")
	mockStorage.AssertExpectations(t)
}

func TestMarkUnfinished(t *testing.T) {
	mockStorage := new(MockUpdateWorkPlan)

	mockStorage.On("SetFinished", mock.Anything, int64(3), false).Return(nil)

	handler := MarkUnfinished(slog.Default(), mockStorage)

	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/api/work-plans/3/unfinish", nil), "id", "3")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "marked as unfinished")
	mockStorage.AssertExpectations(t)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
