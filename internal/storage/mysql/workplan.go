package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"esp-tracker/internal/storage"
)

func (s *Storage) GetWorkPlans(ctx context.Context, date string) ([]*storage.WorkPlanRow, error) {
	const op = "storage.mysql.GetWorkPlans"

	query := `
		SELECT
			wp.id,
			DATE_FORMAT(wp.production_date, '%Y-%m-%d') AS production_date,
			wp.job_code,
			wp.job_name,
			wp.start_time,
			wp.end_time,
			ff.is_finished,
			ff.updated_at AS finished_at,
			GROUP_CONCAT(DISTINCT u.name ORDER BY u.name) AS operators,
			GROUP_CONCAT(DISTINCT wpo.id_code ORDER BY wpo.id_code) AS operator_codes
		FROM work_plans wp
		LEFT JOIN finished_flags ff ON wp.id = ff.work_plan_id
		LEFT JOIN work_plan_operators wpo ON wp.id = wpo.work_plan_id
		LEFT JOIN users u ON wpo.user_id = u.id OR wpo.id_code = u.id_code
	`

	var args []interface{}
	if date != "" {
		query += ` WHERE DATE(wp.production_date) = ?`
		args = append(args, storage.NormalizeDate(date))
	}

	query += ` GROUP BY wp.id ORDER BY wp.production_date DESC, wp.start_time ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения списка планов: %w", op, err)
	}
	defer rows.Close()

	var plans []*storage.WorkPlanRow

	for rows.Next() {
		plan := &storage.WorkPlanRow{}
		var isFinished sql.NullBool
		var finishedAt sql.NullTime
		var operators, operatorCodes sql.NullString

		err := rows.Scan(
			&plan.ID,
			&plan.ProductionDate,
			&plan.JobCode,
			&plan.JobName,
			&plan.StartTime,
			&plan.EndTime,
			&isFinished,
			&finishedAt,
			&operators,
			&operatorCodes,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки плана: %w", op, err)
		}

		if isFinished.Valid {
			plan.IsFinished = &isFinished.Bool
		}
		if finishedAt.Valid {
			plan.FinishedAt = &finishedAt.Time
		}
		plan.Operators = splitConcat(operators)
		plan.OperatorCodes = splitConcat(operatorCodes)

		plans = append(plans, plan)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return plans, nil
}

func (s *Storage) GetWorkPlan(ctx context.Context, id int64) (*storage.WorkPlan, error) {
	const op = "storage.mysql.GetWorkPlan"

	query := `
		SELECT
			wp.id,
			DATE_FORMAT(wp.production_date, '%Y-%m-%d') AS production_date,
			wp.job_code,
			wp.job_name,
			wp.start_time,
			wp.end_time,
			ff.is_finished,
			ff.updated_at AS finished_at
		FROM work_plans wp
		LEFT JOIN finished_flags ff ON wp.id = ff.work_plan_id
		WHERE wp.id = ?`

	plan := &storage.WorkPlan{}
	var isFinished sql.NullBool
	var finishedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.ProductionDate,
		&plan.JobCode,
		&plan.JobName,
		&plan.StartTime,
		&plan.EndTime,
		&isFinished,
		&finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrWorkPlanNotFound)
		}
		return nil, fmt.Errorf("%s: ошибка получения плана id=%d: %w", op, id, err)
	}

	if isFinished.Valid {
		plan.IsFinished = &isFinished.Bool
	}
	if finishedAt.Valid {
		plan.FinishedAt = &finishedAt.Time
	}

	operatorQuery := `
		SELECT wpo.id, wpo.user_id, wpo.id_code, u.name
		FROM work_plan_operators wpo
		LEFT JOIN users u ON wpo.user_id = u.id OR wpo.id_code = u.id_code
		WHERE wpo.work_plan_id = ?`

	rows, err := s.db.QueryContext(ctx, operatorQuery, id)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения операторов плана id=%d: %w", op, id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o storage.Operator
		var userID sql.NullInt64
		var idCode, name sql.NullString

		if err := rows.Scan(&o.ID, &userID, &idCode, &name); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования оператора: %w", op, err)
		}

		if userID.Valid {
			o.UserID = &userID.Int64
		}
		if idCode.Valid {
			o.IDCode = &idCode.String
		}
		if name.Valid {
			o.Name = &name.String
		}

		plan.Operators = append(plan.Operators, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по операторам: %w", op, err)
	}

	return plan, nil
}

// CreateWorkPlan вставляет план и его назначения одной транзакцией: падение
// любой вставки оператора откатывает и сам план.
func (s *Storage) CreateWorkPlan(ctx context.Context, req storage.SaveWorkPlan) (int64, error) {
	const op = "storage.mysql.CreateWorkPlan"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO work_plans (production_date, job_code, job_name, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)`,
		storage.NormalizeDate(req.ProductionDate),
		req.JobCode,
		req.JobName,
		req.StartTime,
		req.EndTime,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка вставки плана: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	if req.Operators != nil {
		if err := insertOperators(ctx, tx, id, *req.Operators); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return id, nil
}

// UpdateWorkPlan обновляет скалярные поля. Назначения трогает только когда
// req.Operators != nil: тогда весь набор удаляется и вставляется заново,
// пустой срез очищает назначения.
func (s *Storage) UpdateWorkPlan(ctx context.Context, id int64, req storage.SaveWorkPlan) error {
	const op = "storage.mysql.UpdateWorkPlan"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	// RowsAffected у MySQL равен нулю и для неизмененных значений, поэтому
	// существование проверяем явно.
	var probe int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM work_plans WHERE id = ? FOR UPDATE`, id).Scan(&probe)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrWorkPlanNotFound)
		}
		return fmt.Errorf("%s: ошибка проверки плана id=%d: %w", op, id, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE work_plans
		SET production_date = ?, job_code = ?, job_name = ?, start_time = ?, end_time = ?
		WHERE id = ?`,
		storage.NormalizeDate(req.ProductionDate),
		req.JobCode,
		req.JobName,
		req.StartTime,
		req.EndTime,
		id,
	)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления плана id=%d: %w", op, id, err)
	}

	if req.Operators != nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM work_plan_operators WHERE work_plan_id = ?`, id)
		if err != nil {
			return fmt.Errorf("%s: ошибка удаления старых назначений id=%d: %w", op, id, err)
		}

		if err := insertOperators(ctx, tx, id, *req.Operators); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

// DeleteWorkPlan удаляет флаг завершения, назначения и сам план — строго в
// этом порядке, иначе падают внешние ключи.
func (s *Storage) DeleteWorkPlan(ctx context.Context, id int64) (bool, error) {
	const op = "storage.mysql.DeleteWorkPlan"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM finished_flags WHERE work_plan_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка удаления флага завершения id=%d: %w", op, id, err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM work_plan_operators WHERE work_plan_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка удаления назначений id=%d: %w", op, id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM work_plans WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка удаления плана id=%d: %w", op, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return affected > 0, nil
}

// SetFinished — upsert единственной текущей строки finished_flags. Повторный
// вызов обновляет только updated_at, истории переключений нет.
func (s *Storage) SetFinished(ctx context.Context, id int64, finished bool) error {
	const op = "storage.mysql.SetFinished"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO finished_flags (work_plan_id, is_finished, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE is_finished = VALUES(is_finished), updated_at = NOW()`,
		id, finished,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1452 {
			return fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrWorkPlanNotFound)
		}
		return fmt.Errorf("%s: ошибка обновления флага завершения id=%d: %w", op, id, err)
	}

	return nil
}

func insertOperators(ctx context.Context, tx *sql.Tx, workPlanID int64, operators []storage.OperatorRef) error {
	if len(operators) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO work_plan_operators (work_plan_id, user_id, id_code)
		VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса вставки операторов: %w", err)
	}
	defer stmt.Close()

	for i, o := range operators {
		if _, err := stmt.ExecContext(ctx, workPlanID, o.UserID, o.IDCode); err != nil {
			return fmt.Errorf("ошибка вставки оператора index=%d: %w", i, err)
		}
	}

	return nil
}

func splitConcat(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	return strings.Split(s.String, ",")
}
