package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"testament/api/internal/app"
	"testament/api/internal/catalog"
	"testament/api/internal/config"
	"testament/api/internal/search"
	"testament/api/internal/session"
	"testament/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	cat, err := catalog.Load(cfg.ClausesDir)
	if err != nil {
		log.Fatalf("clause catalog failed: %v", err)
	}

	var blobs store.BlobStore
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		log.Printf("Using MinIO for document storage")
		minioStore, err := store.NewMinio(ctx, store.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("minio connection failed: %v", err)
		}
		blobs = minioStore
	} else {
		log.Printf("Using local disk for document storage")
		fsStore, err := store.NewFilesystem(cfg.UploadsDir)
		if err != nil {
			log.Fatalf("uploads dir failed: %v", err)
		}
		blobs = fsStore
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
		if err := meiliClient.IndexCatalog(cat.Templates()); err != nil {
			log.Printf("WARNING: catalog indexing failed (search falls back to memory): %v", err)
		}
	}
	searchService := search.NewService(meiliClient, cat)

	// Editing-session state: Redis when configured, process memory otherwise.
	var sessions session.TrackerStore
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for editing-session state")
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
	} else {
		log.Printf("Using in-memory editing-session state")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	service := app.New(cfg, blobs, cat, searchService, sessions)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Testament API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
