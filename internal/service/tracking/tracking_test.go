package tracking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"esp-tracker/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetWorkPlanEvents(ctx context.Context, workPlanID int64) ([]*storage.Event, error) {
	args := m.Called(ctx, workPlanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.Event), args.Error(1)
}

func (m *MockStorage) GetWorkPlan(ctx context.Context, id int64) (*storage.WorkPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.WorkPlan), args.Error(1)
}

func (m *MockStorage) GetProcessStepsByJobCode(ctx context.Context, jobCode string) ([]*storage.ProcessStep, error) {
	args := m.Called(ctx, jobCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.ProcessStep), args.Error(1)
}

func (m *MockStorage) GetEventsForDate(ctx context.Context, date string) ([]*storage.JobEvent, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.JobEvent), args.Error(1)
}

func ts(hour, min int) time.Time {
	return time.Date(2025, 7, 16, hour, min, 0, 0, time.UTC)
}

func event(id int64, process int, status string, t time.Time) *storage.Event {
	return &storage.Event{
		ID:            id,
		WorkPlanID:    1,
		ProcessNumber: process,
		Status:        status,
		Timestamp:     t,
	}
}

// Сценарий: старт 1, старт 2, стоп 1 — по одной строке на операцию,
// побеждает последнее дописанное событие.
func TestDeriveStatus_LatestAppendedWins(t *testing.T) {
	events := []*storage.Event{
		event(1, 1, storage.StatusStart, ts(8, 0)),
		event(2, 2, storage.StatusStart, ts(8, 5)),
		event(3, 1, storage.StatusStop, ts(9, 0)),
	}

	rows := deriveStatus(events, nil)

	assert.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].ProcessNumber)
	assert.Equal(t, storage.StatusStop, rows[0].Status)
	assert.Equal(t, ts(9, 0), rows[0].Timestamp)
	assert.Equal(t, 2, rows[1].ProcessNumber)
	assert.Equal(t, storage.StatusStart, rows[1].Status)
	assert.Equal(t, ts(8, 5), rows[1].Timestamp)
}

// Часы планшета ушли вперед: у раннего события timestamp позже. Статус все
// равно определяет больший id, не время.
func TestDeriveStatus_IgnoresClockSkew(t *testing.T) {
	events := []*storage.Event{
		event(10, 1, storage.StatusStart, ts(12, 0)),
		event(11, 1, storage.StatusStop, ts(9, 0)),
	}

	rows := deriveStatus(events, nil)

	assert.Len(t, rows, 1)
	assert.Equal(t, storage.StatusStop, rows[0].Status)
	assert.Equal(t, ts(9, 0), rows[0].Timestamp)
}

// Двойной старт и стоп без старта журнал принимает как есть.
func TestDeriveStatus_PermissiveSequences(t *testing.T) {
	events := []*storage.Event{
		event(1, 1, storage.StatusStart, ts(8, 0)),
		event(2, 1, storage.StatusStart, ts(8, 1)),
		event(3, 2, storage.StatusStop, ts(8, 2)),
	}

	rows := deriveStatus(events, nil)

	assert.Len(t, rows, 2)
	assert.Equal(t, storage.StatusStart, rows[0].Status)
	assert.Equal(t, storage.StatusStop, rows[1].Status)
}

func TestDeriveStatus_JoinsDescriptions(t *testing.T) {
	events := []*storage.Event{
		event(1, 1, storage.StatusStart, ts(8, 0)),
		event(2, 7, storage.StatusStart, ts(8, 1)),
	}
	steps := []*storage.ProcessStep{
		{JobCode: "J1", ProcessNumber: 1, ProcessDescription: "Нарезка"},
		{JobCode: "J1", ProcessNumber: 2, ProcessDescription: "Фасовка"},
	}

	rows := deriveStatus(events, steps)

	assert.Len(t, rows, 2)
	assert.NotNil(t, rows[0].ProcessDescription)
	assert.Equal(t, "Нарезка", *rows[0].ProcessDescription)
	// Операция 7 в техкарте не описана — статус есть, описания нет.
	assert.Nil(t, rows[1].ProcessDescription)
}

func TestDeriveStatus_Empty(t *testing.T) {
	rows := deriveStatus(nil, nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func jobEvent(id int64, job string, process int, status string, t time.Time) *storage.JobEvent {
	return &storage.JobEvent{
		ID:            id,
		WorkPlanID:    1,
		ProcessNumber: process,
		Status:        status,
		Timestamp:     t,
		JobCode:       job,
		JobName:       "Работа " + job,
	}
}

func TestSummarize_Scenario(t *testing.T) {
	events := []*storage.JobEvent{
		jobEvent(1, "J1", 1, storage.StatusStart, ts(8, 0)),
		jobEvent(2, "J1", 2, storage.StatusStart, ts(8, 5)),
		jobEvent(3, "J1", 1, storage.StatusStop, ts(9, 0)),
	}

	rows := summarize(events)

	assert.Len(t, rows, 1)
	assert.Equal(t, "J1", rows[0].JobCode)
	assert.Equal(t, 2, rows[0].ProcessesStarted)
	assert.Equal(t, 2, rows[0].TotalStarts)
	assert.Equal(t, 1, rows[0].TotalStops)
	assert.Equal(t, ts(8, 0), rows[0].FirstStart)
	assert.Equal(t, ts(9, 0), rows[0].LastActivity)
}

// События чужой работы не меняют итоги J1 — суммы строго аддитивны по
// работам.
func TestSummarize_AdditivePerJob(t *testing.T) {
	base := []*storage.JobEvent{
		jobEvent(1, "J1", 1, storage.StatusStart, ts(8, 0)),
		jobEvent(2, "J1", 1, storage.StatusStop, ts(9, 0)),
	}

	withOther := append([]*storage.JobEvent{}, base...)
	for i := 0; i < 5; i++ {
		withOther = append(withOther, jobEvent(int64(10+i), "J2", 1, storage.StatusStart, ts(10, i)))
	}

	before := summarize(base)
	after := summarize(withOther)

	assert.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, "J2", after[1].JobCode)
	assert.Equal(t, 5, after[1].TotalStarts)
}

// Операция, по которой за день были только стопы, в processes_started не
// попадает.
func TestSummarize_StopOnlyProcessNotStarted(t *testing.T) {
	events := []*storage.JobEvent{
		jobEvent(1, "J1", 1, storage.StatusStop, ts(8, 0)),
		jobEvent(2, "J1", 2, storage.StatusStart, ts(8, 5)),
	}

	rows := summarize(events)

	assert.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ProcessesStarted)
	assert.Equal(t, 1, rows[0].TotalStarts)
	assert.Equal(t, 1, rows[0].TotalStops)
	// Первое событие дня — стоп, FirstStart все равно указывает на него.
	assert.Equal(t, ts(8, 0), rows[0].FirstStart)
}

func TestSummarize_Empty(t *testing.T) {
	rows := summarize(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestProcessStatus_DeletedPlanReturnsEmpty(t *testing.T) {
	mockStorage := new(MockStorage)

	mockStorage.On("GetWorkPlanEvents", mock.Anything, int64(42)).Return([]*storage.Event{}, nil)
	mockStorage.On("GetWorkPlan", mock.Anything, int64(42)).
		Return(nil, fmt.Errorf("storage.mysql.GetWorkPlan: id=42: %w", storage.ErrWorkPlanNotFound))

	service := NewService(mockStorage)

	rows, err := service.ProcessStatus(context.Background(), 42)

	assert.NoError(t, err)
	assert.Empty(t, rows)
	mockStorage.AssertExpectations(t)
}

// Осиротевшие события (план удален после записи) выводятся без описаний.
func TestProcessStatus_OrphanedEvents(t *testing.T) {
	mockStorage := new(MockStorage)

	events := []*storage.Event{event(1, 3, storage.StatusStart, ts(8, 0))}
	mockStorage.On("GetWorkPlanEvents", mock.Anything, int64(7)).Return(events, nil)
	mockStorage.On("GetWorkPlan", mock.Anything, int64(7)).
		Return(nil, fmt.Errorf("storage.mysql.GetWorkPlan: id=7: %w", storage.ErrWorkPlanNotFound))

	service := NewService(mockStorage)

	rows, err := service.ProcessStatus(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].ProcessNumber)
	assert.Nil(t, rows[0].ProcessDescription)
	mockStorage.AssertExpectations(t)
}

func TestProcessStatus_WithCatalog(t *testing.T) {
	mockStorage := new(MockStorage)

	events := []*storage.Event{
		event(1, 1, storage.StatusStart, ts(8, 0)),
		event(2, 1, storage.StatusStop, ts(9, 0)),
	}
	plan := &storage.WorkPlan{ID: 1, JobCode: "J1", JobName: "Работа J1"}
	steps := []*storage.ProcessStep{
		{JobCode: "J1", ProcessNumber: 1, ProcessDescription: "Нарезка"},
	}

	mockStorage.On("GetWorkPlanEvents", mock.Anything, int64(1)).Return(events, nil)
	mockStorage.On("GetWorkPlan", mock.Anything, int64(1)).Return(plan, nil)
	mockStorage.On("GetProcessStepsByJobCode", mock.Anything, "J1").Return(steps, nil)

	service := NewService(mockStorage)

	rows, err := service.ProcessStatus(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, storage.StatusStop, rows[0].Status)
	assert.Equal(t, "Нарезка", *rows[0].ProcessDescription)
	mockStorage.AssertExpectations(t)
}

func TestProductionSummary(t *testing.T) {
	mockStorage := new(MockStorage)

	events := []*storage.JobEvent{
		jobEvent(1, "J1", 1, storage.StatusStart, ts(8, 0)),
	}
	mockStorage.On("GetEventsForDate", mock.Anything, "2025-07-16").Return(events, nil)

	service := NewService(mockStorage)

	rows, err := service.ProductionSummary(context.Background(), "2025-07-16")

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalStarts)
	mockStorage.AssertExpectations(t)
}
