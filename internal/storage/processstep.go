package storage

// ProcessStep — справочная операция техкарты. Номера операций задает
// заполняющий, подряд идти не обязаны.
type ProcessStep struct {
	ID                 int64  `json:"id"`
	JobCode            string `json:"job_code"`
	JobName            string `json:"job_name"`
	DateRecorded       string `json:"date_recorded"`
	WorkerCount        int    `json:"worker_count"`
	ProcessNumber      int    `json:"process_number"`
	ProcessDescription string `json:"process_description"`
}

type ProcessStepFilter struct {
	JobCode      string
	DateRecorded string
}

type JobCode struct {
	JobCode string `json:"job_code"`
	JobName string `json:"job_name"`
}

// SaveProcessSteps — массовая загрузка техкарты одной работы.
type SaveProcessSteps struct {
	JobCode      string         `json:"job_code"`
	JobName      string         `json:"job_name"`
	DateRecorded string         `json:"date_recorded"`
	Steps        []SaveStepItem `json:"steps"`
}

type SaveStepItem struct {
	ProcessNumber      int    `json:"process_number"`
	ProcessDescription string `json:"process_description"`
	WorkerCount        int    `json:"worker_count"`
}
