package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type DailyReport interface {
	GenerateDailyReport(ctx context.Context, date string) ([]byte, error)
}

func GenerateReportExcel(log *slog.Logger, report DailyReport) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

		date := r.URL.Query().Get("date")
		if date == "" {
			http.Error(w, "Missing required query parameter 'date'", http.StatusBadRequest)
			return
		}

		// Сборка книги может пережевывать большой день, таймаут шире
		// обычного.
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		data, err := report.GenerateDailyReport(ctx, date)
		if err != nil {
			log.Error("Ошибка генерации отчета", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("production-report-%s.xlsx", date)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		w.Write(data)
	}
}
