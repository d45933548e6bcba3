package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/app"
	"github.com/sih-tools/evalportal/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	submissionHandler := handlers.NewSubmissionHandler(service)
	evaluationHandler := handlers.NewEvaluationHandler(service)
	juryHandler := handlers.NewJuryHandler(service)
	adminHandler := handlers.NewAdminHandler(service)

	http.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})

	http.HandleFunc("GET /api/problems", submissionHandler.HandleProblems)
	http.HandleFunc("POST /api/submit", submissionHandler.HandleSubmit)
	http.HandleFunc("GET /api/submissions", submissionHandler.HandleListSubmissions)
	http.HandleFunc("GET /api/submissions/{team_id}", submissionHandler.HandleTeamSubmissions)
	http.HandleFunc("PATCH /api/submissions/{id}/presented", submissionHandler.HandleMarkPresented)
	http.HandleFunc("DELETE /api/submissions/{id}", submissionHandler.HandleDeleteSubmission)

	http.HandleFunc("POST /api/evaluations", evaluationHandler.HandleEvaluate)
	http.HandleFunc("POST /api/jury/login", evaluationHandler.HandleJuryLogin)
	http.HandleFunc("GET /api/jury/{jury_id}/assigned-teams", evaluationHandler.HandleAssignedTeams)

	http.HandleFunc("POST /api/admin/scores", adminHandler.HandleScores)
	http.HandleFunc("GET /api/admin/juries", juryHandler.HandleListJuries)
	http.HandleFunc("POST /api/admin/juries", juryHandler.HandleUpsertJury)
	http.HandleFunc("DELETE /api/admin/juries/{jury_id}", juryHandler.HandleDeleteJury)
	http.HandleFunc("GET /api/admin/assignments/{jury_id}", adminHandler.HandleGetAssignments)
	http.HandleFunc("POST /api/admin/assignments/{jury_id}", adminHandler.HandleSetAssignments)
	http.HandleFunc("POST /api/admin/jury-mapping", adminHandler.HandleImportMapping)

	http.HandleFunc("GET /admin", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "static/index.html")
	})

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting evalportal server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Evalportal server failed: %v", err)
	}
}
