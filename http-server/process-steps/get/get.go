package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"esp-tracker/internal/storage"
)

type ProcessSteps interface {
	GetProcessSteps(ctx context.Context, filter storage.ProcessStepFilter) ([]*storage.ProcessStep, error)
	GetProcessStepsByJobCode(ctx context.Context, jobCode string) ([]*storage.ProcessStep, error)
	GetJobCodes(ctx context.Context) ([]*storage.JobCode, error)
	SearchJobs(ctx context.Context, query string) ([]*storage.JobCode, error)
}

func GetProcessSteps(log *slog.Logger, steps ProcessSteps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.process-steps.get.GetProcessSteps"

		filter := storage.ProcessStepFilter{
			JobCode:      r.URL.Query().Get("job_code"),
			DateRecorded: r.URL.Query().Get("date_recorded"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := steps.GetProcessSteps(ctx, filter)
		if err != nil {
			log.Error("Ошибка получения техкарт", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if result == nil {
			result = []*storage.ProcessStep{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}
}

func GetProcessStepsByJobCode(log *slog.Logger, steps ProcessSteps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.process-steps.get.GetProcessStepsByJobCode"

		jobCode := chi.URLParam(r, "jobCode")
		if jobCode == "" {
			http.Error(w, "Job code is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := steps.GetProcessStepsByJobCode(ctx, jobCode)
		if err != nil {
			log.Error("Ошибка получения техкарты", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if result == nil {
			result = []*storage.ProcessStep{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}
}

func GetJobCodes(log *slog.Logger, steps ProcessSteps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.process-steps.get.GetJobCodes"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		codes, err := steps.GetJobCodes(ctx)
		if err != nil {
			log.Error("Ошибка получения кодов работ", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if codes == nil {
			codes = []*storage.JobCode{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    codes,
		})
	}
}

// SearchJobs — подсказки при вводе кода работы; пустой запрос отдает пустой
// список, не ошибку.
func SearchJobs(log *slog.Logger, steps ProcessSteps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.process-steps.get.SearchJobs"

		query := r.URL.Query().Get("query")
		if query == "" {
			render.JSON(w, r, map[string]interface{}{
				"success": true,
				"data":    []*storage.JobCode{},
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		codes, err := steps.SearchJobs(ctx, query)
		if err != nil {
			log.Error("Ошибка поиска работ", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if codes == nil {
			codes = []*storage.JobCode{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    codes,
		})
	}
}
