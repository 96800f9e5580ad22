package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	UploadsDir string
	ClausesDir string
	CORSOrigin string
	// Meilisearch Configuration (catalog search, optional)
	MeiliURL       string
	MeiliMasterKey string
	// Redis Configuration (editing-session state, optional)
	RedisURL   string
	SessionTTL time.Duration
	// MinIO Configuration (object storage; empty endpoint = local disk)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	// Upload limits
	MaxUploadBytes int64
}

func Load() Config {
	return Config{
		Addr:       getenv("API_ADDR", ":8080"),
		UploadsDir: getenv("TESTAMENT_UPLOADS_DIR", "./data/uploads"),
		ClausesDir: getenv("TESTAMENT_CLAUSES_DIR", "./assets/clauses"),
		CORSOrigin: getenv("TESTAMENT_CORS_ORIGIN", "*"),
		// Meilisearch - empty by default, catalog search falls back to memory
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		// Redis - empty by default, editing-session state kept in memory
		RedisURL:   getenv("REDIS_URL", ""),
		SessionTTL: time.Duration(getenvInt("TESTAMENT_SESSION_TTL_SECONDS", 86400)) * time.Second,
		// MinIO - empty by default, documents stored on local disk
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "testament-documents"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "") == "true",
		MaxUploadBytes: int64(getenvInt("TESTAMENT_MAX_UPLOAD_BYTES", 25<<20)),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
