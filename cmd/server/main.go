package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/inamate/canvas-go/internal/asset"
	"github.com/inamate/inamate/canvas-go/internal/auth"
	"github.com/inamate/inamate/canvas-go/internal/collab"
	"github.com/inamate/inamate/canvas-go/internal/config"
	"github.com/inamate/inamate/canvas-go/internal/db"
	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/export"
	mw "github.com/inamate/inamate/canvas-go/internal/middleware"
	"github.com/inamate/inamate/canvas-go/internal/project"
	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

// sampleSceneID is served from the built-in sample and open to anyone.
const sampleSceneID = "scene_sample"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	gg.SetLogger(logger.With("component", "raster"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open scene store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	assets, err := asset.NewStore(cfg.AssetDir)
	if err != nil {
		slog.Error("open asset store", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(cfg.AdminPasswordHash, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)
	if cfg.AdminPasswordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH not set, operator login disabled")
	}

	projectService := project.NewService(store,
		project.WithImages(assets),
		project.WithDefaultSize(cfg.DefaultWidth, cfg.DefaultHeight),
		project.WithLimits(cfg.Limits()),
	)
	projectHandler := project.NewHandler(projectService)

	// Document loader for the live viewer hub
	docLoader := func(ctx context.Context, sceneID string) (*document.Scene, error) {
		if sceneID == sampleSceneID {
			return document.NewSampleScene(sceneID), nil
		}
		return projectService.Document(ctx, sceneID)
	}

	hub := collab.NewHub(docLoader, collab.WithImages(assets))
	hubCtx, stopHub := context.WithCancel(ctx)
	go hub.Run(hubCtx)

	assetHandler := asset.NewHandler(assets)
	exportHandler := export.NewHandler(projectService, export.NewRenderer(assets, export.WithLimits(cfg.Limits())), export.NewEncoder(cfg.FfmpegPath))

	protected := func(h http.HandlerFunc) http.Handler {
		return authService.AuthMiddleware(h)
	}

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Assets: reads are public, writes need the operator token
	r.Handle("/assets/upload", protected(assetHandler.Upload)).Methods("POST", "OPTIONS")
	r.Handle("/assets/{assetId}", protected(assetHandler.Delete)).Methods("DELETE", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Export renders offscreen
	r.HandleFunc("/export/image", exportHandler.ExportImage).Methods("POST", "OPTIONS")
	r.HandleFunc("/export/video", exportHandler.ExportVideo).Methods("POST", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scenes", projectHandler.List).Methods("GET")
	api.Handle("/scenes", protected(projectHandler.Create)).Methods("POST", "OPTIONS")
	api.HandleFunc("/scenes/{sceneId}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/scenes/{sceneId}/document", projectHandler.Document).Methods("GET")
	api.Handle("/scenes/{sceneId}", protected(projectHandler.Update)).Methods("PUT", "OPTIONS")
	api.Handle("/scenes/{sceneId}", protected(projectHandler.Delete)).Methods("DELETE")

	// WebSocket endpoint
	r.HandleFunc("/ws/scene/{sceneId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, cfg.OriginHosts())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so viewers get a clean close
		stopHub()
		<-hub.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "default_size", fmt.Sprintf("%dx%d", cfg.DefaultWidth, cfg.DefaultHeight))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects to Postgres, or keeps scenes in memory when no
// database is configured.
func openStore(ctx context.Context, cfg *config.Config) (project.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, scenes are kept in memory")
		return project.NewMemoryStore(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return project.NewPGStore(pool), pool.Close, nil
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, origins []string) {
	sceneID := mux.Vars(r)["sceneId"]

	var userID, displayName string

	if sceneID == sampleSceneID {
		// Anonymous viewer for the sample scene
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Viewer"
	} else {
		// Stored scenes need the operator token
		var err error
		userID, err = authSvc.Authenticate(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		displayName = "Operator"
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn, userID, displayName, sceneID, typeid.NewClientID())
	client.Serve(r.Context())
}
