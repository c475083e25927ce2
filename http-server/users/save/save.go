package save

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

type SaveUsers interface {
	CreateUser(ctx context.Context, req storage.SaveUser) (int64, error)
	UpdateUser(ctx context.Context, id int64, req storage.SaveUser) error
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

func CreateUser(log *slog.Logger, users SaveUsers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.save.CreateUser"

		var req storage.SaveUser
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.IDCode == "" || req.Name == "" {
			http.Error(w, "id_code and name are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := users.CreateUser(ctx, req)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateIDCode) {
				log.Warn("Табельный номер занят", slog.String("op", op), slog.String("id_code", req.IDCode))
				http.Error(w, "ID code already exists", http.StatusConflict)
				return
			}

			log.Error("Ошибка создания оператора", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data": storage.User{
				ID:     id,
				IDCode: req.IDCode,
				Name:   req.Name,
			},
		})
	}
}

func UpdateUser(log *slog.Logger, users SaveUsers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.save.UpdateUser"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req storage.SaveUser
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.IDCode == "" || req.Name == "" {
			http.Error(w, "id_code and name are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = users.UpdateUser(ctx, id, req)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				http.Error(w, "User not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, storage.ErrDuplicateIDCode) {
				http.Error(w, "ID code already exists", http.StatusConflict)
				return
			}

			log.Error("Ошибка обновления оператора", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"message": "User updated successfully",
		})
	}
}

func DeleteUser(log *slog.Logger, users SaveUsers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.save.DeleteUser"

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		deleted, err := users.DeleteUser(ctx, id)
		if err != nil {
			log.Error("Ошибка удаления оператора", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !deleted {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"message": "User deleted successfully",
		})
	}
}
