package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"esp-tracker/internal/storage"
)

type Storage interface {
	GetWorkPlanEvents(ctx context.Context, workPlanID int64) ([]*storage.Event, error)
	GetWorkPlan(ctx context.Context, id int64) (*storage.WorkPlan, error)
	GetProcessStepsByJobCode(ctx context.Context, jobCode string) ([]*storage.ProcessStep, error)
	GetEventsForDate(ctx context.Context, date string) ([]*storage.JobEvent, error)
}

// Service выводит текущие статусы и дневные сводки из журнала событий.
// Журнал только читает.
type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// ProcessStatus — текущий статус каждой операции плана: последнее
// ДОПИСАННОЕ событие группы, то есть событие с максимальным id. Не
// максимальный timestamp: часы планшетов расходятся и события задним числом
// не должны менять ответ на вопрос "что произошло последним".
//
// Для удаленного или несуществующего плана возвращает пустой список, а
// осиротевшие события отдает без описаний операций.
func (s *Service) ProcessStatus(ctx context.Context, workPlanID int64) ([]storage.StatusRow, error) {
	const op = "service.tracking.ProcessStatus"

	var (
		events []*storage.Event
		steps  []*storage.ProcessStep
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		events, err = s.storage.GetWorkPlanEvents(gCtx, workPlanID)
		if err != nil {
			return fmt.Errorf("ошибка получения событий плана: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		plan, err := s.storage.GetWorkPlan(gCtx, workPlanID)
		if err != nil {
			// План мог быть удален после записи событий — статус тогда
			// выводим без техкарты.
			if errors.Is(err, storage.ErrWorkPlanNotFound) {
				return nil
			}
			return fmt.Errorf("ошибка получения плана: %w", err)
		}

		steps, err = s.storage.GetProcessStepsByJobCode(gCtx, plan.JobCode)
		if err != nil {
			return fmt.Errorf("ошибка получения техкарты: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: work_plan_id=%d: %w", op, workPlanID, err)
	}

	return deriveStatus(events, steps), nil
}

// ProductionSummary — сводка за дату по работам: сколько операций запускали,
// сколько всего стартов и стопов, первое и последнее событие дня. Работы без
// событий в сводку не попадают.
func (s *Service) ProductionSummary(ctx context.Context, date string) ([]storage.SummaryRow, error) {
	const op = "service.tracking.ProductionSummary"

	events, err := s.storage.GetEventsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: date=%s: %w", op, date, err)
	}

	return summarize(events), nil
}

// deriveStatus сворачивает журнал до последнего события на номер операции.
// При равных id быть не может, при равных timestamp побеждает больший id —
// порядок поступления авторитетен.
func deriveStatus(events []*storage.Event, steps []*storage.ProcessStep) []storage.StatusRow {
	latest := make(map[int]*storage.Event)
	for _, e := range events {
		cur, ok := latest[e.ProcessNumber]
		if !ok || e.ID > cur.ID {
			latest[e.ProcessNumber] = e
		}
	}

	descriptions := make(map[int]string, len(steps))
	for _, step := range steps {
		descriptions[step.ProcessNumber] = step.ProcessDescription
	}

	numbers := make([]int, 0, len(latest))
	for n := range latest {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	rows := make([]storage.StatusRow, 0, len(numbers))
	for _, n := range numbers {
		e := latest[n]
		row := storage.StatusRow{
			ProcessNumber: n,
			Status:        e.Status,
			Timestamp:     e.Timestamp,
		}
		if desc, ok := descriptions[n]; ok {
			row.ProcessDescription = &desc
		}
		rows = append(rows, row)
	}

	return rows
}

func summarize(events []*storage.JobEvent) []storage.SummaryRow {
	type jobKey struct {
		code string
		name string
	}

	type jobAgg struct {
		row     storage.SummaryRow
		started map[int]struct{}
	}

	groups := make(map[jobKey]*jobAgg)

	for _, e := range events {
		key := jobKey{code: e.JobCode, name: e.JobName}

		agg, ok := groups[key]
		if !ok {
			agg = &jobAgg{
				row: storage.SummaryRow{
					JobCode:      e.JobCode,
					JobName:      e.JobName,
					FirstStart:   e.Timestamp,
					LastActivity: e.Timestamp,
				},
				started: make(map[int]struct{}),
			}
			groups[key] = agg
		}

		switch e.Status {
		case storage.StatusStart:
			agg.row.TotalStarts++
			agg.started[e.ProcessNumber] = struct{}{}
		case storage.StatusStop:
			agg.row.TotalStops++
		}

		// FirstStart — минимальный timestamp любого события дня, имя поля
		// историческое.
		if e.Timestamp.Before(agg.row.FirstStart) {
			agg.row.FirstStart = e.Timestamp
		}
		if e.Timestamp.After(agg.row.LastActivity) {
			agg.row.LastActivity = e.Timestamp
		}
	}

	rows := make([]storage.SummaryRow, 0, len(groups))
	for _, agg := range groups {
		agg.row.ProcessesStarted = len(agg.started)
		rows = append(rows, agg.row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].JobCode != rows[j].JobCode {
			return rows[i].JobCode < rows[j].JobCode
		}
		return rows[i].JobName < rows[j].JobName
	})

	return rows
}
