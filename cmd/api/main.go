package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/andresuchdata/reorder/internal/config"
	"github.com/andresuchdata/reorder/internal/drive"
	"github.com/andresuchdata/reorder/internal/repository/postgres"
)

// Standalone ingestion server: exposes Drive browsing and demand sync
// without the full scheduling API.
func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize Google Drive service
	driveService, err := drive.NewService(cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	// Initialize Database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewScheduleRepository(db)
	demandSync := drive.NewDemandSync(driveService, repo, cfg.Drive.DemandFolderID, cfg.App.UploadDir)

	// Create router and register routes
	r := mux.NewRouter()
	driveHandler := drive.NewHandler(driveService, demandSync)
	driveHandler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
