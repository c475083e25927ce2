package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"esp-tracker/internal/storage"
)

// AppendEvent дописывает событие в журнал. Журнал ничего не валидирует и не
// дедуплицирует: двойной start, stop без start и повтор от ретрая клиента
// записываются как есть — это зафиксированное намерение оператора, а не
// машина состояний.
func (s *Storage) AppendEvent(ctx context.Context, req storage.AppendEvent) (*storage.Event, error) {
	const op = "storage.mysql.AppendEvent"

	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO logs (work_plan_id, process_number, status, timestamp)
		VALUES (?, ?, ?, ?)`,
		req.WorkPlanID, req.ProcessNumber, req.Status, ts,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1452 {
			return nil, fmt.Errorf("%s: work_plan_id=%d: %w", op, req.WorkPlanID, storage.ErrWorkPlanNotFound)
		}
		return nil, fmt.Errorf("%s: ошибка вставки события: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return &storage.Event{
		ID:            id,
		WorkPlanID:    req.WorkPlanID,
		ProcessNumber: req.ProcessNumber,
		Status:        req.Status,
		Timestamp:     ts,
	}, nil
}

func (s *Storage) GetEvents(ctx context.Context, filter storage.EventFilter) ([]*storage.LogEntry, error) {
	const op = "storage.mysql.GetEvents"

	query := `
		SELECT
			l.id, l.work_plan_id, l.process_number, l.status, l.timestamp,
			wp.job_code, wp.job_name,
			DATE_FORMAT(wp.production_date, '%Y-%m-%d') AS production_date,
			ps.process_description
		FROM logs l
		LEFT JOIN work_plans wp ON l.work_plan_id = wp.id
		LEFT JOIN process_steps ps ON wp.job_code = ps.job_code AND l.process_number = ps.process_number
	`

	var conditions []string
	var args []interface{}

	if filter.WorkPlanID != 0 {
		conditions = append(conditions, "l.work_plan_id = ?")
		args = append(args, filter.WorkPlanID)
	}
	if filter.Date != "" {
		conditions = append(conditions, "DATE(l.timestamp) = ?")
		args = append(args, storage.NormalizeDate(filter.Date))
	}
	if filter.Status != "" {
		conditions = append(conditions, "l.status = ?")
		args = append(args, filter.Status)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY l.timestamp DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения журнала: %w", op, err)
	}
	defer rows.Close()

	entries, err := scanLogEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (*storage.LogEntry, error) {
	const op = "storage.mysql.GetEvent"

	query := `
		SELECT
			l.id, l.work_plan_id, l.process_number, l.status, l.timestamp,
			wp.job_code, wp.job_name,
			DATE_FORMAT(wp.production_date, '%Y-%m-%d') AS production_date,
			ps.process_description
		FROM logs l
		LEFT JOIN work_plans wp ON l.work_plan_id = wp.id
		LEFT JOIN process_steps ps ON wp.job_code = ps.job_code AND l.process_number = ps.process_number
		WHERE l.id = ?`

	entry := &storage.LogEntry{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.WorkPlanID,
		&entry.ProcessNumber,
		&entry.Status,
		&entry.Timestamp,
		&entry.JobCode,
		&entry.JobName,
		&entry.ProductionDate,
		&entry.ProcessDescription,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrLogNotFound)
		}
		return nil, fmt.Errorf("%s: ошибка получения события id=%d: %w", op, id, err)
	}

	return entry, nil
}

// GetEventsByWorkPlan — журнал плана для отображения, сгруппированный по
// номеру операции.
func (s *Storage) GetEventsByWorkPlan(ctx context.Context, workPlanID int64) ([]*storage.LogEntry, error) {
	const op = "storage.mysql.GetEventsByWorkPlan"

	query := `
		SELECT
			l.id, l.work_plan_id, l.process_number, l.status, l.timestamp,
			wp.job_code, wp.job_name,
			DATE_FORMAT(wp.production_date, '%Y-%m-%d') AS production_date,
			ps.process_description
		FROM logs l
		LEFT JOIN work_plans wp ON l.work_plan_id = wp.id
		LEFT JOIN process_steps ps ON wp.job_code = ps.job_code AND l.process_number = ps.process_number
		WHERE l.work_plan_id = ?
		ORDER BY l.process_number, l.timestamp`

	rows, err := s.db.QueryContext(ctx, query, workPlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения журнала плана id=%d: %w", op, workPlanID, err)
	}
	defer rows.Close()

	entries, err := scanLogEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

// UpdateEvent — административная правка записи. Логика вывода статуса ею не
// пользуется, для нее журнал append-only.
func (s *Storage) UpdateEvent(ctx context.Context, id int64, req storage.AppendEvent) error {
	const op = "storage.mysql.UpdateEvent"

	var probe int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM logs WHERE id = ?`, id).Scan(&probe)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrLogNotFound)
		}
		return fmt.Errorf("%s: ошибка проверки события id=%d: %w", op, id, err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE logs
		SET work_plan_id = ?, process_number = ?, status = ?, timestamp = ?
		WHERE id = ?`,
		req.WorkPlanID, req.ProcessNumber, req.Status, req.Timestamp, id,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1452 {
			return fmt.Errorf("%s: work_plan_id=%d: %w", op, req.WorkPlanID, storage.ErrWorkPlanNotFound)
		}
		return fmt.Errorf("%s: ошибка обновления события id=%d: %w", op, id, err)
	}

	return nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	const op = "storage.mysql.DeleteEvent"

	res, err := s.db.ExecContext(ctx, `DELETE FROM logs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка удаления события id=%d: %w", op, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	return affected > 0, nil
}

// GetWorkPlanEvents — сырые события плана в порядке поступления (по id).
// Кормит вывод текущего статуса.
func (s *Storage) GetWorkPlanEvents(ctx context.Context, workPlanID int64) ([]*storage.Event, error) {
	const op = "storage.mysql.GetWorkPlanEvents"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, work_plan_id, process_number, status, timestamp
		FROM logs
		WHERE work_plan_id = ?
		ORDER BY id`, workPlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения событий плана id=%d: %w", op, workPlanID, err)
	}
	defer rows.Close()

	var events []*storage.Event

	for rows.Next() {
		e := &storage.Event{}
		if err := rows.Scan(&e.ID, &e.WorkPlanID, &e.ProcessNumber, &e.Status, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования события: %w", op, err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return events, nil
}

// GetEventsForDate — события за дату вместе с работой владеющего плана.
// Кормит дневную сводку, планы без событий сюда не попадают.
func (s *Storage) GetEventsForDate(ctx context.Context, date string) ([]*storage.JobEvent, error) {
	const op = "storage.mysql.GetEventsForDate"

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.work_plan_id, l.process_number, l.status, l.timestamp,
		       wp.job_code, wp.job_name
		FROM logs l
		JOIN work_plans wp ON l.work_plan_id = wp.id
		WHERE DATE(l.timestamp) = ?
		ORDER BY l.id`, storage.NormalizeDate(date))
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения событий за дату %s: %w", op, date, err)
	}
	defer rows.Close()

	var events []*storage.JobEvent

	for rows.Next() {
		e := &storage.JobEvent{}
		err := rows.Scan(&e.ID, &e.WorkPlanID, &e.ProcessNumber, &e.Status, &e.Timestamp, &e.JobCode, &e.JobName)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования события: %w", op, err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return events, nil
}

func scanLogEntries(rows *sql.Rows) ([]*storage.LogEntry, error) {
	var entries []*storage.LogEntry

	for rows.Next() {
		entry := &storage.LogEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.WorkPlanID,
			&entry.ProcessNumber,
			&entry.Status,
			&entry.Timestamp,
			&entry.JobCode,
			&entry.JobName,
			&entry.ProductionDate,
			&entry.ProcessDescription,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return entries, nil
}
