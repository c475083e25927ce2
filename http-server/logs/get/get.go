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

type Logs interface {
	GetEvents(ctx context.Context, filter storage.EventFilter) ([]*storage.LogEntry, error)
	GetEvent(ctx context.Context, id int64) (*storage.LogEntry, error)
	GetEventsByWorkPlan(ctx context.Context, workPlanID int64) ([]*storage.LogEntry, error)
}

type Tracking interface {
	ProcessStatus(ctx context.Context, workPlanID int64) ([]storage.StatusRow, error)
	ProductionSummary(ctx context.Context, date string) ([]storage.SummaryRow, error)
}

func GetLogs(log *slog.Logger, logs Logs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.get.GetLogs"

		var filter storage.EventFilter

		if idStr := r.URL.Query().Get("work_plan_id"); idStr != "" {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				http.Error(w, "Invalid work_plan_id", http.StatusBadRequest)
				return
			}
			filter.WorkPlanID = id
		}
		filter.Date = r.URL.Query().Get("date")
		filter.Status = r.URL.Query().Get("status")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := logs.GetEvents(ctx, filter)
		if err != nil {
			log.Error("Ошибка получения журнала", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if entries == nil {
			entries = []*storage.LogEntry{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    entries,
		})
	}
}

func GetLogByID(log *slog.Logger, logs Logs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.get.GetLogByID"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entry, err := logs.GetEvent(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrLogNotFound) {
				http.Error(w, "Log not found", http.StatusNotFound)
				return
			}

			log.Error("Ошибка получения события", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    entry,
		})
	}
}

func GetLogsByWorkPlan(log *slog.Logger, logs Logs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.get.GetLogsByWorkPlan"

		idStr := chi.URLParam(r, "workPlanId")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid work plan ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := logs.GetEventsByWorkPlan(ctx, id)
		if err != nil {
			log.Error("Ошибка получения журнала плана", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if entries == nil {
			entries = []*storage.LogEntry{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    entries,
		})
	}
}

// ProcessStatus — текущий статус операций плана. Для плана без событий
// (в том числе удаленного) отдает пустой список, не ошибку.
func ProcessStatus(log *slog.Logger, tracking Tracking) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.get.ProcessStatus"

		idStr := chi.URLParam(r, "workPlanId")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid work plan ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rows, err := tracking.ProcessStatus(ctx, id)
		if err != nil {
			log.Error("Ошибка вывода статуса", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    rows,
		})
	}
}

func ProductionSummary(log *slog.Logger, tracking Tracking) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.get.ProductionSummary"

		date := chi.URLParam(r, "date")
		if date == "" {
			http.Error(w, "Date is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rows, err := tracking.ProductionSummary(ctx, date)
		if err != nil {
			log.Error("Ошибка построения сводки", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    rows,
		})
	}
}
