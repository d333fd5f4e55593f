package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jakubkanna/labguy-manager/internal/adminui"
	httpapi "github.com/jakubkanna/labguy-manager/internal/api/http"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/auth"
	"github.com/jakubkanna/labguy-manager/internal/bucket"
	"github.com/jakubkanna/labguy-manager/internal/ratelimit"
	"github.com/jakubkanna/labguy-manager/internal/requester"
	"github.com/jakubkanna/labguy-manager/internal/revalidation"
	"github.com/jakubkanna/labguy-manager/internal/store"
	"github.com/jakubkanna/labguy-manager/log"
	"github.com/spf13/viper"
)

// Config represents the global configuration for the service.
type Config struct {
	DB           store.Config        `mapstructure:"mysql"`
	Logger       log.Config          `mapstructure:"logger"`
	HTTP         httpapi.Config      `mapstructure:"http"`
	Auth         auth.Config         `mapstructure:"auth"`
	Bucket       bucket.Config       `mapstructure:"bucket"`
	Revalidation revalidation.Config `mapstructure:"revalidation"`
	RateLimit    ratelimit.Config    `mapstructure:"rate_limit"`
	UI           adminui.Config      `mapstructure:"ui"`
	// Requester is how the admin pages reach the API. It defaults to this process.
	Requester requester.Config `mapstructure:"requester"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested keys use double underscore, e.g. MYSQL__DSN for mysql.dsn; the common ones
// are also bound to flat names, e.g. MYSQL_DSN.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	bindEnvVars(v)

	v.SetDefault("http.port", "8081")
	v.SetDefault("logger.level", 0)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			// a missing file means env only
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/labguy-manager")
		v.AddConfigPath("/etc/labguy-manager")
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	if config.DB.DSN == "" {
		config.DB.DSN = dsnFromParts()
	}
	return &config, nil
}

// dsnFromParts builds the MySQL DSN from MYSQL_HOST and friends when no DSN is set.
func dsnFromParts() string {
	host := os.Getenv("MYSQL_HOST")
	user := os.Getenv("MYSQL_USER")
	password := os.Getenv("MYSQL_PASSWORD")
	database := os.Getenv("MYSQL_DATABASE")
	if host == "" || user == "" || database == "" {
		return ""
	}
	port := os.Getenv("MYSQL_PORT")
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true", user, password, host, port, database)
}

func bindEnvVars(v *viper.Viper) {
	// MySQL
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	v.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	v.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")
	v.BindEnv("mysql.tls_ca_path", "MYSQL_TLS_CA_PATH")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("http.address", "HTTP_ADDRESS")
	v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
	v.BindEnv("http.shutdown_grace", "HTTP_SHUTDOWN_GRACE")

	// Auth
	v.BindEnv("auth.jwtSecret", "AUTH_JWT_SECRET")
	v.BindEnv("auth.masterPassword", "AUTH_MASTER_PASSWORD")
	v.BindEnv("auth.jwtttl", "AUTH_JWT_TTL")
	v.BindEnv("auth.bcryptCost", "AUTH_BCRYPT_COST")

	// Bucket
	v.BindEnv("bucket.s3AccessKey", "BUCKET_S3_ACCESS_KEY")
	v.BindEnv("bucket.s3SecretAccessKey", "BUCKET_S3_SECRET_ACCESS_KEY")
	v.BindEnv("bucket.s3Endpoint", "BUCKET_S3_ENDPOINT")
	v.BindEnv("bucket.s3BucketName", "BUCKET_S3_BUCKET_NAME")
	v.BindEnv("bucket.s3BucketLocation", "BUCKET_S3_BUCKET_LOCATION")
	v.BindEnv("bucket.baseFolder", "BUCKET_BASE_FOLDER")
	v.BindEnv("bucket.subdomainEndpoint", "BUCKET_SUBDOMAIN_ENDPOINT")
	v.BindEnv("bucket.insecure", "BUCKET_INSECURE")
	v.BindEnv("bucket.thumbnailWidth", "BUCKET_THUMBNAIL_WIDTH")

	// Revalidation
	v.BindEnv("revalidation.project_id", "REVALIDATION_PROJECT_ID")
	v.BindEnv("revalidation.vercel_api_token", "REVALIDATION_VERCEL_API_TOKEN")
	v.BindEnv("revalidation.revalidate_secret", "REVALIDATION_REVALIDATE_SECRET")
	v.BindEnv("revalidation.http_timeout", "REVALIDATION_HTTP_TIMEOUT")
	v.BindEnv("revalidation.deployments", "REVALIDATION_DEPLOYMENTS")

	// Rate limits
	v.BindEnv("rate_limit.login_per_minute", "RATE_LIMIT_LOGIN_PER_MINUTE")
	v.BindEnv("rate_limit.upload_per_minute", "RATE_LIMIT_UPLOAD_PER_MINUTE")

	// Admin UI
	v.BindEnv("ui.cookie_name", "UI_COOKIE_NAME")
	v.BindEnv("ui.cookie_secure", "UI_COOKIE_SECURE")
	v.BindEnv("ui.cookie_ttl", "UI_COOKIE_TTL")
	v.BindEnv("requester.base_url", "REQUESTER_BASE_URL")
	v.BindEnv("requester.timeout", "REQUESTER_TIMEOUT")
}
