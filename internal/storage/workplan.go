package storage

import (
	"errors"
	"strings"
	"time"
)

// WorkPlan — план работ на производственную дату. is_finished/finished_at
// приходят из finished_flags, отсутствие строки = не завершен.
type WorkPlan struct {
	ID             int64      `json:"id"`
	ProductionDate string     `json:"production_date"`
	JobCode        string     `json:"job_code"`
	JobName        string     `json:"job_name"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
	IsFinished     *bool      `json:"is_finished"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Operators      []Operator `json:"operators,omitempty"`
}

// Operator — строка назначения с именем, подтянутым из справочника users.
type Operator struct {
	ID     int64   `json:"id"`
	UserID *int64  `json:"user_id"`
	IDCode *string `json:"id_code"`
	Name   *string `json:"name"`
}

// WorkPlanRow — строка списка планов, имена и табельные номера операторов
// склеены через GROUP_CONCAT.
type WorkPlanRow struct {
	ID             int64      `json:"id"`
	ProductionDate string     `json:"production_date"`
	JobCode        string     `json:"job_code"`
	JobName        string     `json:"job_name"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
	IsFinished     *bool      `json:"is_finished"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Operators      []string   `json:"operators"`
	OperatorCodes  []string   `json:"operator_codes"`
}

// OperatorRef указывает оператора ровно одним из двух способов: числовой id
// из users либо сырой табельный номер. Номер может еще не существовать в
// справочнике — это допустимо.
type OperatorRef struct {
	UserID *int64  `json:"user_id,omitempty"`
	IDCode *string `json:"id_code,omitempty"`
}

func (o OperatorRef) Validate() error {
	if o.UserID == nil && o.IDCode == nil {
		return errors.New("operator must have user_id or id_code")
	}
	if o.UserID != nil && o.IDCode != nil {
		return errors.New("operator must have only one of user_id, id_code")
	}
	return nil
}

// SaveWorkPlan — тело запроса create/update.
//
// Operators == nil означает "не трогать назначения" (только при update);
// пустой срез — удалить всех. Контракт полной замены набора, а не диффа.
type SaveWorkPlan struct {
	ProductionDate string         `json:"production_date"`
	JobCode        string         `json:"job_code"`
	JobName        string         `json:"job_name"`
	StartTime      string         `json:"start_time"`
	EndTime        string         `json:"end_time"`
	Operators      *[]OperatorRef `json:"operators"`
}

// NormalizeDate отбрасывает время суток из ISO-даты: фронт шлет и
// "2025-07-16", и "2025-07-16T00:00:00.000Z".
func NormalizeDate(date string) string {
	if i := strings.IndexByte(date, 'T'); i > 0 {
		return date[:i]
	}
	return date
}
