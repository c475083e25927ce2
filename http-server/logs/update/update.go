package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"esp-tracker/internal/storage"
)

// Административная правка журнала. Рабочий процесс цеха этим не пользуется:
// для вывода статуса журнал append-only.
type CorrectLog interface {
	UpdateEvent(ctx context.Context, id int64, req storage.AppendEvent) error
	DeleteEvent(ctx context.Context, id int64) (bool, error)
}

func UpdateLog(log *slog.Logger, logs CorrectLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.update.UpdateLog"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req storage.AppendEvent
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.Status != storage.StatusStart && req.Status != storage.StatusStop {
			http.Error(w, `status must be either "start" or "stop"`, http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = logs.UpdateEvent(ctx, id, req)
		if err != nil {
			if errors.Is(err, storage.ErrLogNotFound) {
				http.Error(w, "Log not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, storage.ErrWorkPlanNotFound) {
				http.Error(w, "Work plan not found", http.StatusNotFound)
				return
			}

			log.Error("Ошибка правки события", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("Событие исправлено", slog.Int64("id", id))

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"message": "Log updated successfully",
		})
	}
}

func DeleteLog(log *slog.Logger, logs CorrectLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.update.DeleteLog"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		deleted, err := logs.DeleteEvent(ctx, id)
		if err != nil {
			log.Error("Ошибка удаления события", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !deleted {
			http.Error(w, "Log not found", http.StatusNotFound)
			return
		}

		log.Info("Событие удалено", slog.Int64("id", id))

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"message": "Log deleted successfully",
		})
	}
}
