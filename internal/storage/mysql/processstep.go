package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"esp-tracker/internal/storage"
)

func (s *Storage) GetProcessSteps(ctx context.Context, filter storage.ProcessStepFilter) ([]*storage.ProcessStep, error) {
	const op = "storage.mysql.GetProcessSteps"

	query := `
		SELECT id, job_code, job_name,
		       DATE_FORMAT(date_recorded, '%Y-%m-%d') AS date_recorded,
		       worker_count, process_number, process_description
		FROM process_steps
	`

	var conditions []string
	var args []interface{}

	if filter.JobCode != "" {
		conditions = append(conditions, "job_code = ?")
		args = append(args, filter.JobCode)
	}
	if filter.DateRecorded != "" {
		conditions = append(conditions, "date_recorded = ?")
		args = append(args, storage.NormalizeDate(filter.DateRecorded))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY job_code, process_number"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения техкарт: %w", op, err)
	}
	defer rows.Close()

	steps, err := scanProcessSteps(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return steps, nil
}

func (s *Storage) GetProcessStepsByJobCode(ctx context.Context, jobCode string) ([]*storage.ProcessStep, error) {
	const op = "storage.mysql.GetProcessStepsByJobCode"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_code, job_name,
		       DATE_FORMAT(date_recorded, '%Y-%m-%d') AS date_recorded,
		       worker_count, process_number, process_description
		FROM process_steps
		WHERE job_code = ?
		ORDER BY process_number`, jobCode)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения техкарты job_code=%s: %w", op, jobCode, err)
	}
	defer rows.Close()

	steps, err := scanProcessSteps(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return steps, nil
}

func (s *Storage) GetProcessStep(ctx context.Context, id int64) (*storage.ProcessStep, error) {
	const op = "storage.mysql.GetProcessStep"

	step := &storage.ProcessStep{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_code, job_name,
		       DATE_FORMAT(date_recorded, '%Y-%m-%d') AS date_recorded,
		       worker_count, process_number, process_description
		FROM process_steps
		WHERE id = ?`, id).Scan(
		&step.ID,
		&step.JobCode,
		&step.JobName,
		&step.DateRecorded,
		&step.WorkerCount,
		&step.ProcessNumber,
		&step.ProcessDescription,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrProcessStepNotFound)
		}
		return nil, fmt.Errorf("%s: ошибка получения операции id=%d: %w", op, id, err)
	}

	return step, nil
}

func (s *Storage) CreateProcessStep(ctx context.Context, step storage.ProcessStep) (int64, error) {
	const op = "storage.mysql.CreateProcessStep"

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO process_steps (job_code, job_name, date_recorded, worker_count, process_number, process_description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		step.JobCode,
		step.JobName,
		storage.NormalizeDate(step.DateRecorded),
		step.WorkerCount,
		step.ProcessNumber,
		step.ProcessDescription,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка вставки операции: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return id, nil
}

// CreateProcessStepsBulk грузит техкарту работы целиком одной транзакцией.
func (s *Storage) CreateProcessStepsBulk(ctx context.Context, req storage.SaveProcessSteps) ([]*storage.ProcessStep, error) {
	const op = "storage.mysql.CreateProcessStepsBulk"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO process_steps (job_code, job_name, date_recorded, worker_count, process_number, process_description)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка подготовки запроса: %w", op, err)
	}
	defer stmt.Close()

	dateRecorded := storage.NormalizeDate(req.DateRecorded)
	created := make([]*storage.ProcessStep, 0, len(req.Steps))

	for _, item := range req.Steps {
		res, err := stmt.ExecContext(ctx,
			req.JobCode,
			req.JobName,
			dateRecorded,
			item.WorkerCount,
			item.ProcessNumber,
			item.ProcessDescription,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка вставки операции номер=%d: %w", op, item.ProcessNumber, err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("%s: last insert id: %w", op, err)
		}

		created = append(created, &storage.ProcessStep{
			ID:                 id,
			JobCode:            req.JobCode,
			JobName:            req.JobName,
			DateRecorded:       dateRecorded,
			WorkerCount:        item.WorkerCount,
			ProcessNumber:      item.ProcessNumber,
			ProcessDescription: item.ProcessDescription,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return created, nil
}

func (s *Storage) GetJobCodes(ctx context.Context) ([]*storage.JobCode, error) {
	const op = "storage.mysql.GetJobCodes"

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT job_code, job_name
		FROM process_steps
		ORDER BY job_code`)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения кодов работ: %w", op, err)
	}
	defer rows.Close()

	var codes []*storage.JobCode

	for rows.Next() {
		c := &storage.JobCode{}
		if err := rows.Scan(&c.JobCode, &c.JobName); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования кода работы: %w", op, err)
		}
		codes = append(codes, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return codes, nil
}

func (s *Storage) SearchJobs(ctx context.Context, query string) ([]*storage.JobCode, error) {
	const op = "storage.mysql.SearchJobs"

	term := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT job_code, job_name
		FROM process_steps
		WHERE job_code LIKE ? OR job_name LIKE ?
		ORDER BY job_code
		LIMIT 10`, term, term)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка поиска работ: %w", op, err)
	}
	defer rows.Close()

	var codes []*storage.JobCode

	for rows.Next() {
		c := &storage.JobCode{}
		if err := rows.Scan(&c.JobCode, &c.JobName); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования кода работы: %w", op, err)
		}
		codes = append(codes, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return codes, nil
}

func scanProcessSteps(rows *sql.Rows) ([]*storage.ProcessStep, error) {
	var steps []*storage.ProcessStep

	for rows.Next() {
		step := &storage.ProcessStep{}
		err := rows.Scan(
			&step.ID,
			&step.JobCode,
			&step.JobName,
			&step.DateRecorded,
			&step.WorkerCount,
			&step.ProcessNumber,
			&step.ProcessDescription,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования операции: %w", err)
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return steps, nil
}
