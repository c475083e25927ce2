package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"esp-tracker/internal/storage"
)

type SaveProcessSteps interface {
	CreateProcessStep(ctx context.Context, step storage.ProcessStep) (int64, error)
	CreateProcessStepsBulk(ctx context.Context, req storage.SaveProcessSteps) ([]*storage.ProcessStep, error)
}

func CreateProcessStep(log *slog.Logger, steps SaveProcessSteps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.process-steps.save.CreateProcessStep"

		var req storage.ProcessStep
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.JobCode == "" {
			http.Error(w, "job_code is required", http.StatusBadRequest)
			return
		}
		if req.ProcessNumber <= 0 {
			http.Error(w, "process_number must be a positive integer", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := steps.CreateProcessStep(ctx, req)
		if err != nil {
			log.Error("Ошибка создания операции", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		req.ID = id

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    req,
		})
	}
}

func CreateProcessStepsBulk(log *slog.Logger, steps SaveProcessSteps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.process-steps.save.CreateProcessStepsBulk"

		var req storage.SaveProcessSteps
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.JobCode == "" {
			http.Error(w, "job_code is required", http.StatusBadRequest)
			return
		}
		if len(req.Steps) == 0 {
			log.Warn("Пустая техкарта", slog.String("op", op), slog.String("job_code", req.JobCode))
			http.Error(w, "No steps provided", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		created, err := steps.CreateProcessStepsBulk(ctx, req)
		if err != nil {
			log.Error("Ошибка загрузки техкарты", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("Техкарта загружена",
			slog.String("job_code", req.JobCode),
			slog.Int("steps", len(created)),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    created,
		})
	}
}
