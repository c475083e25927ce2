package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"esp-tracker/internal/storage"
)

// Служебные/тестовые учетки, которые не показываем на планшетах цеха.
var systemIDCodes = []string{
	"EMP001", "EMP002", "EMP003", "EMP004", "EMP005",
	"EMP006", "EMP007", "EMP008", "EMP009",
}

func (s *Storage) GetUsers(ctx context.Context) ([]*storage.User, error) {
	const op = "storage.mysql.GetUsers"

	query := `
		SELECT id, id_code, name
		FROM users
		WHERE id_code NOT IN (` + placeholders(len(systemIDCodes)) + `)
		ORDER BY name`

	args := make([]interface{}, len(systemIDCodes))
	for i, code := range systemIDCodes {
		args[i] = code
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения справочника операторов: %w", op, err)
	}
	defer rows.Close()

	var users []*storage.User

	for rows.Next() {
		u := &storage.User{}
		if err := rows.Scan(&u.ID, &u.IDCode, &u.Name); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования оператора: %w", op, err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return users, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*storage.User, error) {
	const op = "storage.mysql.GetUserByID"

	u := &storage.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, id_code, name FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.IDCode, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: ошибка получения оператора id=%d: %w", op, id, err)
	}

	return u, nil
}

func (s *Storage) GetUserByIDCode(ctx context.Context, idCode string) (*storage.User, error) {
	const op = "storage.mysql.GetUserByIDCode"

	u := &storage.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, id_code, name FROM users WHERE id_code = ?`, idCode).
		Scan(&u.ID, &u.IDCode, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id_code=%s: %w", op, idCode, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: ошибка получения оператора id_code=%s: %w", op, idCode, err)
	}

	return u, nil
}

func (s *Storage) CreateUser(ctx context.Context, req storage.SaveUser) (int64, error) {
	const op = "storage.mysql.CreateUser"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id_code, name) VALUES (?, ?)`, req.IDCode, req.Name)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, fmt.Errorf("%s: id_code=%s: %w", op, req.IDCode, storage.ErrDuplicateIDCode)
		}
		return 0, fmt.Errorf("%s: ошибка создания оператора: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return id, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id int64, req storage.SaveUser) error {
	const op = "storage.mysql.UpdateUser"

	var probe int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, id).Scan(&probe)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrUserNotFound)
		}
		return fmt.Errorf("%s: ошибка проверки оператора id=%d: %w", op, id, err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET id_code = ?, name = ? WHERE id = ?`, req.IDCode, req.Name, id)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return fmt.Errorf("%s: id_code=%s: %w", op, req.IDCode, storage.ErrDuplicateIDCode)
		}
		return fmt.Errorf("%s: ошибка обновления оператора id=%d: %w", op, id, err)
	}

	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) (bool, error) {
	const op = "storage.mysql.DeleteUser"

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка удаления оператора id=%d: %w", op, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	return affected > 0, nil
}

// GetUserWorkPlans — планы, где оператор назначен по user_id либо по
// табельному номеру; ссылка ровно одного вида.
func (s *Storage) GetUserWorkPlans(ctx context.Context, ref storage.OperatorRef, date string) ([]*storage.UserWorkPlan, error) {
	const op = "storage.mysql.GetUserWorkPlans"

	query := `
		SELECT
			wp.id,
			DATE_FORMAT(wp.production_date, '%Y-%m-%d') AS production_date,
			wp.job_code,
			wp.job_name,
			wp.start_time,
			wp.end_time,
			ff.is_finished
		FROM work_plans wp
		JOIN work_plan_operators wpo ON wp.id = wpo.work_plan_id
		LEFT JOIN finished_flags ff ON wp.id = ff.work_plan_id
	`

	var args []interface{}
	switch {
	case ref.UserID != nil:
		query += ` WHERE wpo.user_id = ?`
		args = append(args, *ref.UserID)
	case ref.IDCode != nil:
		query += ` WHERE wpo.id_code = ?`
		args = append(args, *ref.IDCode)
	default:
		return nil, fmt.Errorf("%s: пустая ссылка на оператора", op)
	}

	if date != "" {
		query += ` AND wp.production_date = ?`
		args = append(args, storage.NormalizeDate(date))
	}

	query += ` ORDER BY wp.production_date DESC, wp.start_time ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения планов оператора: %w", op, err)
	}
	defer rows.Close()

	var plans []*storage.UserWorkPlan

	for rows.Next() {
		p := &storage.UserWorkPlan{}
		var isFinished sql.NullBool

		err := rows.Scan(&p.ID, &p.ProductionDate, &p.JobCode, &p.JobName, &p.StartTime, &p.EndTime, &isFinished)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования плана: %w", op, err)
		}

		if isFinished.Valid {
			p.IsFinished = &isFinished.Bool
		}

		plans = append(plans, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return plans, nil
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}

	out := "?"
	for i := 1; i < n; i++ {
		out += ", ?"
	}
	return out
}
