package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"showroom-etl/extractor"
	"showroom-etl/internal/config"
	"showroom-etl/internal/metrics"
	"showroom-etl/internal/types"
	"showroom-etl/store"
)

// APIRequest represents the request body for the API
type APIRequest struct {
	Showroom   string `json:"showroom"`
	ListingURL string `json:"listing_url"`
	DryRun     bool   `json:"dry_run"`
}

// APIResponse represents the response from the API
type APIResponse struct {
	Success bool             `json:"success"`
	Data    *types.RunResult `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Server holds the API server configuration
type Server struct {
	logger *logrus.Logger
	config *types.Config
	store  extractor.RecordStore
	// runs are strictly sequential
	mu sync.Mutex
}

// NewServer creates a new API server
func NewServer(cfg *types.Config, logger *logrus.Logger, recordStore extractor.RecordStore) *Server {
	return &Server{
		logger: logger,
		config: cfg,
		store:  recordStore,
	}
}

// handleExtract runs one pipeline pass for the requested showroom
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := *s.config
	if showroom := strings.TrimSpace(req.Showroom); showroom != "" {
		cfg.Showroom = showroom
	}
	if listingURL := strings.TrimSpace(req.ListingURL); listingURL != "" {
		cfg.ListingURL = listingURL
	}
	cfg.ScrapeTime = time.Now()

	s.logger.Infof("API request received for showroom %s (%s)", cfg.Showroom, cfg.ListingURL)

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Minute)
	defer cancel()

	showroomExtractor := extractor.NewShowroomExtractor(&cfg, s.logger)
	defer showroomExtractor.Close()

	var recordStore extractor.RecordStore
	if !req.DryRun {
		recordStore = s.store
	}

	result, err := extractor.NewPipeline(&cfg, s.logger, showroomExtractor, recordStore).Run(ctx)
	if err != nil {
		s.logger.Warnf("Run for %s failed: %v", cfg.Showroom, err)
		s.sendError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: true, Data: result}); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode error response: %v", err)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Routes returns the API handler
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", s.handleExtract)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// Start starts the API server
func (s *Server) Start(port string) error {
	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /extract - Scrape a showroom and append it to the store")
	s.logger.Info("  GET  /health  - Health check")
	s.logger.Info("  GET  /metrics - Prometheus metrics")

	return http.ListenAndServe(":"+port, s.Routes())
}

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
	}

	db, err := store.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	server := NewServer(cfg, logger, db)
	log.Fatal(server.Start(serverPort))
}
