package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"esp-tracker/internal/storage"
)

const maxOperators = 4

type UpdateWorkPlan interface {
	UpdateWorkPlan(ctx context.Context, id int64, req storage.SaveWorkPlan) error
	GetWorkPlan(ctx context.Context, id int64) (*storage.WorkPlan, error)
	SetFinished(ctx context.Context, id int64, finished bool) error
}

func UpdateWorkPlanOperation(log *slog.Logger, plans UpdateWorkPlan) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workplan.update.UpdateWorkPlanOperation"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req storage.SaveWorkPlan
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if msg := validateUpdate(req); msg != "" {
			log.Warn("Невалидный план", slog.String("op", op), slog.String("reason", msg))
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = plans.UpdateWorkPlan(ctx, id, req)
		if err != nil {
			if errors.Is(err, storage.ErrWorkPlanNotFound) {
				log.Warn("План не найден", slog.String("op", op), slog.Int64("id", id))
				http.Error(w, "Work plan not found", http.StatusNotFound)
				return
			}

			log.Error("Ошибка обновления плана", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		plan, err := plans.GetWorkPlan(ctx, id)
		if err != nil {
			log.Error("Ошибка чтения обновленного плана", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("План обновлен", slog.Int64("id", id))

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    plan,
			"message": "Work plan updated successfully",
		})
	}
}

// MarkFinished и MarkUnfinished идемпотентны: флаг — единственная текущая
// строка, повторное нажатие меняет только updated_at.
func MarkFinished(log *slog.Logger, plans UpdateWorkPlan) http.HandlerFunc {
	return setFinished(log, plans, true, "handlers.workplan.update.MarkFinished")
}

func MarkUnfinished(log *slog.Logger, plans UpdateWorkPlan) http.HandlerFunc {
	return setFinished(log, plans, false, "handlers.workplan.update.MarkUnfinished")
}

func setFinished(log *slog.Logger, plans UpdateWorkPlan, finished bool, op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = plans.SetFinished(ctx, id, finished)
		if err != nil {
			if errors.Is(err, storage.ErrWorkPlanNotFound) {
				log.Warn("План не найден", slog.String("op", op), slog.Int64("id", id))
				http.Error(w, "Work plan not found", http.StatusNotFound)
				return
			}

			log.Error("Ошибка обновления флага завершения", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		message := "Work plan marked as finished"
		if !finished {
			message = "Work plan marked as unfinished"
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"message": message,
		})
	}
}

func validateUpdate(req storage.SaveWorkPlan) string {
	if req.ProductionDate == "" {
		return "production_date is required"
	}
	if req.JobCode == "" {
		return "job_code is required"
	}
	if len(req.JobCode) > 50 {
		return "job_code must not exceed 50 characters"
	}

	if req.Operators != nil {
		if len(*req.Operators) > maxOperators {
			return fmt.Sprintf("no more than %d operators allowed", maxOperators)
		}
		for i, o := range *req.Operators {
			if err := o.Validate(); err != nil {
				return fmt.Sprintf("operator %d: %s", i, err)
			}
		}
	}

	return ""
}
