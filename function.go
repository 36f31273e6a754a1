package cloudfunctions

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/gorilla/mux"

	"github.com/pep299/newsletter-generator/internal/application"
	"github.com/pep299/newsletter-generator/internal/config"
	"github.com/pep299/newsletter-generator/internal/logging"
	"github.com/pep299/newsletter-generator/internal/response"
)

func init() {
	// Register HTTP function for the newsletter API
	functions.HTTP("GenerateNewsletter", GenerateNewsletter)
}

var (
	routerOnce sync.Once
	router     *mux.Router
	routerErr  error
)

// loadRouter builds the application once per function instance
func loadRouter() (*mux.Router, error) {
	routerOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			routerErr = err
			return
		}

		logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			routerErr = err
			return
		}

		app, err := application.New(context.Background(), cfg, logger)
		if err != nil {
			routerErr = err
			return
		}
		router = app.Server.SetupRoutes()
	})
	return router, routerErr
}

// GenerateNewsletter serves the /api/v1 routes as a Cloud Function
func GenerateNewsletter(w http.ResponseWriter, r *http.Request) {
	router, err := loadRouter()
	if err != nil {
		log.Printf("Failed to initialize application: %v", err)
		response.WriteInternalError(w, "failed to initialize application")
		return
	}

	router.ServeHTTP(w, r)
}
