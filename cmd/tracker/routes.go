package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	getlogs "esp-tracker/http-server/logs/get"
	savelogs "esp-tracker/http-server/logs/save"
	uplogs "esp-tracker/http-server/logs/update"
	getsteps "esp-tracker/http-server/process-steps/get"
	savesteps "esp-tracker/http-server/process-steps/save"
	generate_excel "esp-tracker/http-server/report/generate-excel"
	getusers "esp-tracker/http-server/users/get"
	saveusers "esp-tracker/http-server/users/save"
	delworkplan "esp-tracker/http-server/workplan/delete"
	getworkplan "esp-tracker/http-server/workplan/get"
	saveworkplan "esp-tracker/http-server/workplan/save"
	upworkplan "esp-tracker/http-server/workplan/update"
	"esp-tracker/internal/config"
	"esp-tracker/internal/middleware/auth"
	"esp-tracker/internal/service/report"
	"esp-tracker/internal/service/tracking"
	"esp-tracker/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, trackingService *tracking.Service, reportService *report.Service) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]interface{}{
			"success":   true,
			"message":   "ESP Tracker API is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Планы работ
	router.Get("/api/work-plans", getworkplan.GetWorkPlans(log, storage))
	router.Get("/api/work-plans/{id}", getworkplan.GetWorkPlanByID(log, storage))
	router.Post("/api/work-plans", saveworkplan.CreateWorkPlan(log, storage))
	router.Put("/api/work-plans/{id}", upworkplan.UpdateWorkPlanOperation(log, storage))
	router.Delete("/api/work-plans/{id}", delworkplan.DeleteWorkPlanOperation(log, storage))
	router.Patch("/api/work-plans/{id}/finish", upworkplan.MarkFinished(log, storage))
	router.Patch("/api/work-plans/{id}/unfinish", upworkplan.MarkUnfinished(log, storage))

	// Журнал событий: кнопки старт/стоп с планшетов и выборки
	router.Get("/api/logs", getlogs.GetLogs(log, storage))
	router.Get("/api/logs/work-plan/{workPlanId}", getlogs.GetLogsByWorkPlan(log, storage))
	router.Get("/api/logs/work-plan/{workPlanId}/status", getlogs.ProcessStatus(log, trackingService))
	router.Get("/api/logs/summary/{date}", getlogs.ProductionSummary(log, trackingService))
	router.Get("/api/logs/{id}", getlogs.GetLogByID(log, storage))
	router.Post("/api/logs", savelogs.CreateLog(log, storage))
	router.Post("/api/logs/start", savelogs.StartProcess(log, storage))
	router.Post("/api/logs/stop", savelogs.StopProcess(log, storage))

	// Техкарты
	router.Get("/api/process-steps", getsteps.GetProcessSteps(log, storage))
	router.Get("/api/process-steps/search", getsteps.SearchJobs(log, storage))
	router.Get("/api/process-steps/job-codes", getsteps.GetJobCodes(log, storage))
	router.Get("/api/process-steps/job/{jobCode}", getsteps.GetProcessStepsByJobCode(log, storage))

	// Справочник операторов
	router.Get("/api/users", getusers.GetUsers(log, storage))
	router.Get("/api/users/{id}/work-plans", getusers.GetUserWorkPlans(log, storage))

	// Дневной отчет
	router.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, reportService))

	// Админка: правка журнала, справочника и техкарт
	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Post("/process-steps", savesteps.CreateProcessStep(log, storage))
	adminRouter.Post("/process-steps/bulk", savesteps.CreateProcessStepsBulk(log, storage))
	adminRouter.Put("/logs/{id}", uplogs.UpdateLog(log, storage))
	adminRouter.Delete("/logs/{id}", uplogs.DeleteLog(log, storage))
	adminRouter.Post("/users", saveusers.CreateUser(log, storage))
	adminRouter.Put("/users/{id}", saveusers.UpdateUser(log, storage))
	adminRouter.Delete("/users/{id}", saveusers.DeleteUser(log, storage))

	router.Mount("/api/admin", adminRouter)

	return router
}
