package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"esp-tracker/internal/storage"
)

type Users interface {
	GetUsers(ctx context.Context) ([]*storage.User, error)
	GetUserWorkPlans(ctx context.Context, ref storage.OperatorRef, date string) ([]*storage.UserWorkPlan, error)
}

func GetUsers(log *slog.Logger, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.get.GetUsers"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := users.GetUsers(ctx)
		if err != nil {
			log.Error("Ошибка получения справочника операторов", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if result == nil {
			result = []*storage.User{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}
}

// GetUserWorkPlans принимает в {id} и числовой id, и табельный номер —
// оператор на планшете вводит то, что у него есть.
func GetUserWorkPlans(log *slog.Logger, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.get.GetUserWorkPlans"

		idStr := chi.URLParam(r, "id")
		if idStr == "" {
			http.Error(w, "Operator ID is required", http.StatusBadRequest)
			return
		}

		var ref storage.OperatorRef
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			ref.UserID = &id
		} else {
			ref.IDCode = &idStr
		}

		date := r.URL.Query().Get("date")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plans, err := users.GetUserWorkPlans(ctx, ref, date)
		if err != nil {
			log.Error("Ошибка получения планов оператора", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if plans == nil {
			plans = []*storage.UserWorkPlan{}
		}

		render.JSON(w, r, map[string]interface{}{
			"success": true,
			"data":    plans,
		})
	}
}
