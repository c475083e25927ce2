package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"esp-tracker/internal/storage"
)

type AppendLog interface {
	AppendEvent(ctx context.Context, req storage.AppendEvent) (*storage.Event, error)
}

// CreateLog дописывает событие в журнал. Повтор запроса при ретрае клиента
// создаст дубликат — журнал не дедуплицирует, это осознанно.
func CreateLog(log *slog.Logger, logs AppendLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.save.CreateLog"

		var req storage.AppendEvent
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if msg := validateAppend(req); msg != "" {
			log.Warn("Невалидное событие", slog.String("op", op), slog.String("reason", msg))
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		appendEvent(w, r, log, logs, req, op)
	}
}

// StartProcess и StopProcess — кнопки планшета цеха: короткое тело без
// статуса и времени, сервер подставляет сам.
func StartProcess(log *slog.Logger, logs AppendLog) http.HandlerFunc {
	return shortcut(log, logs, storage.StatusStart, "handlers.logs.save.StartProcess")
}

func StopProcess(log *slog.Logger, logs AppendLog) http.HandlerFunc {
	return shortcut(log, logs, storage.StatusStop, "handlers.logs.save.StopProcess")
}

func shortcut(log *slog.Logger, logs AppendLog, status string, op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			WorkPlanID    int64 `json:"work_plan_id"`
			ProcessNumber int   `json:"process_number"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.WorkPlanID <= 0 {
			http.Error(w, "work_plan_id must be a positive integer", http.StatusBadRequest)
			return
		}
		if req.ProcessNumber <= 0 {
			http.Error(w, "process_number must be a positive integer", http.StatusBadRequest)
			return
		}

		appendEvent(w, r, log, logs, storage.AppendEvent{
			WorkPlanID:    req.WorkPlanID,
			ProcessNumber: req.ProcessNumber,
			Status:        status,
		}, op)
	}
}

func appendEvent(w http.ResponseWriter, r *http.Request, log *slog.Logger, logs AppendLog, req storage.AppendEvent, op string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	event, err := logs.AppendEvent(ctx, req)
	if err != nil {
		if errors.Is(err, storage.ErrWorkPlanNotFound) {
			log.Warn("Событие для несуществующего плана",
				slog.String("op", op), slog.Int64("work_plan_id", req.WorkPlanID))
			http.Error(w, "Work plan not found", http.StatusNotFound)
			return
		}

		log.Error("Ошибка записи события", slog.String("op", op), slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.Info("Событие записано",
		slog.Int64("id", event.ID),
		slog.Int64("work_plan_id", event.WorkPlanID),
		slog.Int("process_number", event.ProcessNumber),
		slog.String("status", event.Status),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"data":    event,
	})
}

func validateAppend(req storage.AppendEvent) string {
	if req.WorkPlanID <= 0 {
		return "work_plan_id must be a positive integer"
	}
	if req.ProcessNumber <= 0 {
		return "process_number must be a positive integer"
	}
	if req.Status != storage.StatusStart && req.Status != storage.StatusStop {
		return `status must be either "start" or "stop"`
	}
	return ""
}
