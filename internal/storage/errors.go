package storage

import "errors"

// Типизированные ошибки хранилища. Хендлеры матчат их через errors.Is
// и переводят в коды ответа.
var (
	ErrWorkPlanNotFound    = errors.New("work plan not found")
	ErrLogNotFound         = errors.New("log not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrProcessStepNotFound = errors.New("process step not found")

	// ErrDuplicateIDCode — уникальный табельный номер уже занят.
	ErrDuplicateIDCode = errors.New("id code already exists")
)
