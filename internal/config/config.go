package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// FileBackendGridFS stores uploads in MongoDB GridFS next to the users collection.
	FileBackendGridFS = "gridfs"
	// FileBackendMinIO stores uploads as objects in a MinIO / S3 bucket.
	FileBackendMinIO = "minio"
)

// CORSConfig is the cross-origin policy applied to every route.
type CORSConfig struct {
	AllowOrigins     []string `toml:"allow_origins"`
	AllowCredentials bool     `toml:"allow_credentials"`
}

// MinIOConfig holds connection settings for the MinIO file backend.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `toml:"server_port"`

	MongoURI               string `toml:"mongo_uri"`
	MongoDatabase          string `toml:"mongo_database"`
	MongoPasswordSecretARN string `toml:"mongo_password_secret_arn"`
	MongoConnectTimeout    int    `toml:"mongo_connect_timeout_seconds"`
	AWSRegion              string `toml:"aws_region"`

	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	RedisPass string `toml:"redis_password"`

	FileBackend    string      `toml:"file_backend"`
	MinIO          MinIOConfig `toml:"minio"`
	MaxUploadBytes int64       `toml:"max_upload_bytes"`

	BcryptCost int        `toml:"bcrypt_cost"`
	CORS       CORSConfig `toml:"cors"`

	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	SwaggerHost string `toml:"swagger_host"`
}

// Default returns the configuration used when neither a file nor the environment sets a value.
func Default() *Config {
	return &Config{
		ServerPort:          "8000",
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "CommunicationDb",
		MongoConnectTimeout: 10,
		AWSRegion:           "us-east-1",
		RedisAddr:           "localhost:6379",
		FileBackend:         FileBackendGridFS,
		MinIO: MinIOConfig{
			Endpoint: "localhost:9000",
			Bucket:   "communication-files",
		},
		BcryptCost: 10,
		CORS: CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowCredentials: true,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds Config from environment with sensible defaults. When CONFIG_FILE
// names a TOML file it is applied first and the environment overrides it.
func Load() (*Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes the TOML file at path on top of cfg.
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.FileBackend {
	case FileBackendGridFS, FileBackendMinIO:
	default:
		return fmt.Errorf("unknown file backend %q", c.FileBackend)
	}
	if c.FileBackend == FileBackendMinIO && c.MinIO.Bucket == "" {
		return fmt.Errorf("minio bucket must be set")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("mongo database must be set")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("max upload bytes must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", cfg.MongoDatabase)
	cfg.MongoPasswordSecretARN = getEnv("MONGO_PASSWORD_SECRET_ARN", cfg.MongoPasswordSecretARN)
	cfg.MongoConnectTimeout = getEnvInt("MONGO_CONNECT_TIMEOUT_SECONDS", cfg.MongoConnectTimeout)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)
	cfg.FileBackend = strings.ToLower(getEnv("FILE_BACKEND", cfg.FileBackend))
	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.CORS.AllowOrigins = getEnvList("CORS_ALLOW_ORIGINS", cfg.CORS.AllowOrigins)
	cfg.CORS.AllowCredentials = getEnvBool("CORS_ALLOW_CREDENTIALS", cfg.CORS.AllowCredentials)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
