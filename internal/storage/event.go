package storage

import "time"

const (
	StatusStart = "start"
	StatusStop  = "stop"
)

// Event — неизменяемая запись старт/стоп в журнале. id назначается базой,
// порядок id = порядок поступления и только он авторитетен для вывода
// текущего статуса (не timestamp).
type Event struct {
	ID            int64     `json:"id"`
	WorkPlanID    int64     `json:"work_plan_id"`
	ProcessNumber int       `json:"process_number"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// AppendEvent — запрос на добавление события. Нулевой Timestamp заменяется
// серверным временем.
type AppendEvent struct {
	WorkPlanID    int64     `json:"work_plan_id"`
	ProcessNumber int       `json:"process_number"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
}

// LogEntry — событие с данными плана и описанием операции для списков.
type LogEntry struct {
	ID                 int64     `json:"id"`
	WorkPlanID         int64     `json:"work_plan_id"`
	ProcessNumber      int       `json:"process_number"`
	Status             string    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
	JobCode            *string   `json:"job_code,omitempty"`
	JobName            *string   `json:"job_name,omitempty"`
	ProductionDate     *string   `json:"production_date,omitempty"`
	ProcessDescription *string   `json:"process_description"`
}

type EventFilter struct {
	WorkPlanID int64
	Date       string
	Status     string
}

// JobEvent — событие с кодом/именем работы владеющего плана, сырье для
// дневной сводки.
type JobEvent struct {
	ID            int64
	WorkPlanID    int64
	ProcessNumber int
	Status        string
	Timestamp     time.Time
	JobCode       string
	JobName       string
}

// StatusRow — выведенный текущий статус одной операции плана.
type StatusRow struct {
	ProcessNumber      int       `json:"process_number"`
	Status             string    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
	ProcessDescription *string   `json:"process_description"`
}

// SummaryRow — сводка производства по работе за день. FirstStart исторически
// называется так, но это минимальный timestamp любого события дня.
type SummaryRow struct {
	JobCode          string    `json:"job_code"`
	JobName          string    `json:"job_name"`
	ProcessesStarted int       `json:"processes_started"`
	TotalStarts      int       `json:"total_starts"`
	TotalStops       int       `json:"total_stops"`
	FirstStart       time.Time `json:"first_start"`
	LastActivity     time.Time `json:"last_activity"`
}
