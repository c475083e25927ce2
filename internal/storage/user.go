package storage

// User — оператор из справочника.
type User struct {
	ID     int64  `json:"id"`
	IDCode string `json:"id_code"`
	Name   string `json:"name"`
}

type SaveUser struct {
	IDCode string `json:"id_code"`
	Name   string `json:"name"`
}

// UserWorkPlan — план из выборки "планы оператора", без строк назначений.
type UserWorkPlan struct {
	ID             int64  `json:"id"`
	ProductionDate string `json:"production_date"`
	JobCode        string `json:"job_code"`
	JobName        string `json:"job_name"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	IsFinished     *bool  `json:"is_finished"`
}
