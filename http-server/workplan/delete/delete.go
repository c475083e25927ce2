package delete

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type DeleteWorkPlan interface {
	DeleteWorkPlan(ctx context.Context, id int64) (bool, error)
}

func DeleteWorkPlanOperation(log *slog.Logger, plans DeleteWorkPlan) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workplan.delete.DeleteWorkPlanOperation"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		deleted, err := plans.DeleteWorkPlan(ctx, id)
		if err != nil {
			log.Error("Ошибка удаления плана", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !deleted {
			log.Warn("План не найден", slog.String("op", op), slog.Int64("id", id))
			http.Error(w, "Work plan not found", http.StatusNotFound)
			return
		}

		log.Info("План удален", slog.Int64("id", id))

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"message": "Work plan deleted successfully",
		})
	}
}
