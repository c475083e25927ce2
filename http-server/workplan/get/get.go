package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"esp-tracker/internal/storage"
)

type WorkPlans interface {
	GetWorkPlans(ctx context.Context, date string) ([]*storage.WorkPlanRow, error)
	GetWorkPlan(ctx context.Context, id int64) (*storage.WorkPlan, error)
}

func GetWorkPlans(log *slog.Logger, plans WorkPlans) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workplan.get.GetWorkPlans"

		date := r.URL.Query().Get("date")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := plans.GetWorkPlans(ctx, date)
		if err != nil {
			log.Error("Ошибка получения списка планов", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if result == nil {
			result = []*storage.WorkPlanRow{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}
}

func GetWorkPlanByID(log *slog.Logger, plans WorkPlans) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workplan.get.GetWorkPlanByID"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plan, err := plans.GetWorkPlan(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrWorkPlanNotFound) {
				log.Warn("План не найден", slog.String("op", op), slog.Int64("id", id))
				http.Error(w, "Work plan not found", http.StatusNotFound)
				return
			}

			log.Error("Ошибка получения плана", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    plan,
		})
	}
}
