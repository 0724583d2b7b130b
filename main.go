package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"nutrition-assistant/internal/config"
	Iservices "nutrition-assistant/internal/domain/interfaces/services"
	"nutrition-assistant/internal/infra/handlers"
	"nutrition-assistant/internal/infra/logger"
	"nutrition-assistant/internal/infra/provider"
	"nutrition-assistant/internal/infra/routes"
	"nutrition-assistant/internal/infra/services"
	"nutrition-assistant/internal/middleware"

	"github.com/gorilla/mux"
)

func main() {
	config.LoadEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.NewLogger(ctx, true)

	sessionTimeout := config.GetEnvDuration("SESSION_TIMEOUT", time.Hour)
	cleanupInterval := config.GetEnvDuration("SESSION_CLEANUP_INTERVAL", 15*time.Minute)
	llmTimeout := config.GetEnvDuration("LLM_TIMEOUT", 60*time.Second)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	textGenerator := provider.NewGeminiProvider(
		log,
		config.GetEnv("GEMINI_API_KEY"),
		config.GetEnvOr("GEMINI_BASE_URL", provider.DefaultBaseURL),
		config.GetEnvOr("GEMINI_MODEL", provider.DefaultModel),
		llmTimeout,
	)

	sessionService := services.NewSessionService(sessionTimeout, log)
	sessionService.StartCleanup(ctx, cleanupInterval)

	planService := services.NewPlanService(log, textGenerator, llmTimeout)

	var assistantService Iservices.IAssistantService = services.NewAssistantService(log, sessionService, planService, textGenerator, llmTimeout)
	var pdfService Iservices.IDocumentRenderer = services.NewPdfService(log)

	httpHandlers := handlers.NewHttpHandlers(log, sessionService, assistantService)
	pdfHandlers := handlers.NewPdfHandlers(log, pdfService)

	routes := routes.NewRoutes(
		router,
		httpHandlers,
		pdfHandlers,
	)

	routes.Init()

	port := config.GetEnvOr("PORT", "3000")
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}
}
