package configuration

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Server    ServerConfig
	Downloads DownloadConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Tracing   TracingConfig
	NATSURL   string
	CLAMAVURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MinConns int
	MaxConns int
}

// MinIOConfig is optional; an empty Endpoint disables the archive mirror.
type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

type ServerConfig struct {
	Host  string
	Port  string
	Debug bool
}

type DownloadConfig struct {
	Dir         string
	MaxFileSize int64
	YtDlpPath   string
	Timeout     time.Duration
}

type AuthConfig struct {
	// APISecretKey is the legacy shared secret accepted in the API key header.
	APISecretKey   string
	SecretWasGiven bool
	AdminUsername  string
	AdminPassword  string
	SessionTTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

func Load() *Config {
	secret := getEnv("API_SECRET_KEY", "")
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "videouser"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "social_video_db"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MinConns: getEnvInt("DB_MIN_CONN", 1),
			MaxConns: getEnvInt("DB_MAX_CONN", 20),
		},
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", ""),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: getEnv("MINIO_BUCKET", "videos"),
			UseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Server: ServerConfig{
			Host:  getEnv("HOST", "0.0.0.0"),
			Port:  getEnv("PORT", "5000"),
			Debug: getEnvBool("DEBUG", false),
		},
		Downloads: DownloadConfig{
			Dir:         getEnv("DOWNLOAD_DIR", "/downloads"),
			MaxFileSize: int64(getEnvInt("MAX_FILE_SIZE", 300*1024*1024)),
			YtDlpPath:   getEnv("YTDLP_PATH", "yt-dlp"),
			Timeout:     time.Duration(getEnvInt("YTDLP_TIMEOUT", 300)) * time.Second,
		},
		Auth: AuthConfig{
			APISecretKey:   secret,
			SecretWasGiven: secret != "",
			AdminUsername:  strings.TrimSpace(getEnv("ADMIN_USERNAME", "")),
			AdminPassword:  strings.TrimSpace(getEnv("ADMIN_PASSWORD", "")),
			SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("DD_TRACE_ENABLED", false),
			ServiceName: getEnv("SERVICE_NAME", "video-service"),
		},
		NATSURL:   getEnv("NATS_URL", ""),
		CLAMAVURL: getEnv("CLAMAV_URL", ""),
	}
}

// Validate reports every missing or malformed setting at once. In debug mode
// a missing API secret is replaced with a random one.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.APISecretKey == "" {
		if c.Server.Debug {
			c.Auth.APISecretKey = randomSecret()
		} else {
			errs = append(errs, errors.New("API_SECRET_KEY must be set in production"))
		}
	}

	required := map[string]string{
		"DB_HOST":      c.Database.Host,
		"DB_USER":      c.Database.User,
		"DB_PASSWORD":  c.Database.Password,
		"DB_NAME":      c.Database.DBName,
		"DOWNLOAD_DIR": c.Downloads.Dir,
	}
	for _, key := range []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DOWNLOAD_DIR"} {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Server.Port))
	}
	if c.Downloads.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}
	if c.Downloads.Timeout <= 0 {
		errs = append(errs, errors.New("YTDLP_TIMEOUT must be positive"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_HOURS must be positive"))
	}
	if c.Database.MaxConns < 1 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Errorf("invalid pool bounds DB_MIN_CONN=%d DB_MAX_CONN=%d",
			c.Database.MinConns, c.Database.MaxConns))
	}

	return errors.Join(errs...)
}

func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
