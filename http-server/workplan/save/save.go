package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"esp-tracker/internal/storage"
)

// До четырех операторов на план — больше на одном участке не работает.
const maxOperators = 4

type SaveWorkPlan interface {
	CreateWorkPlan(ctx context.Context, req storage.SaveWorkPlan) (int64, error)
	GetWorkPlan(ctx context.Context, id int64) (*storage.WorkPlan, error)
}

func CreateWorkPlan(log *slog.Logger, plans SaveWorkPlan) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workplan.save.CreateWorkPlan"

		var req storage.SaveWorkPlan
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if msg := validateSaveWorkPlan(req); msg != "" {
			log.Warn("Невалидный план", slog.String("op", op), slog.String("reason", msg))
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := plans.CreateWorkPlan(ctx, req)
		if err != nil {
			log.Error("Ошибка создания плана", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		plan, err := plans.GetWorkPlan(ctx, id)
		if err != nil {
			log.Error("Ошибка чтения созданного плана", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("План создан", slog.Int64("id", id), slog.String("job_code", req.JobCode))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    plan,
			"message": "Work plan created successfully",
		})
	}
}

func validateSaveWorkPlan(req storage.SaveWorkPlan) string {
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
