package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env            string              `yaml:"env" env:"APP_ENV" env-default:"local"`
	LogLevel       string              `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTP           HTTPConfig          `yaml:"http"`
	Database       DatabaseConfig      `yaml:"database"`
	Redis          RedisConfig         `yaml:"redis"`
	OIDC           OIDCConfig          `yaml:"oidc"`
	AfricasTalking AfricaTalkingConfig `yaml:"africastalking"`
	Email          EmailConfig         `yaml:"email"`
}

type HTTPConfig struct {
	Addr          string   `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	SessionName   string   `yaml:"session_name" env:"SESSION_NAME" env-default:"flowersess"`
	SessionSecret string   `yaml:"session_secret" env:"SESSION_SECRET" env-default:"change-me"`
	CORSOrigins   []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
}

type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	URL      string `yaml:"url" env:"DATABASE_URL"`
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"test"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"test"`
	Name     string `yaml:"name" env:"POSTGRES_DB" env-default:"flowers"`
	TimeZone string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	// SQLitePath is used when Driver is "sqlite".
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"flowers.db"`
}

// DSN builds the postgres connection string unless URL is set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.TimeZone,
	)
}

type RedisConfig struct {
	// Empty Addr disables the catalog cache.
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"CATALOG_CACHE_TTL" env-default:"10m"`
}

type OIDCConfig struct {
	Issuer       string `yaml:"issuer" env:"OIDC_ISSUER"`
	ClientID     string `yaml:"client_id" env:"OIDC_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"OIDC_CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirect_url" env:"OIDC_REDIRECT_URL"`
}

func (o OIDCConfig) Enabled() bool {
	return o.Issuer != "" && o.ClientID != ""
}

type AfricaTalkingConfig struct {
	Username string `yaml:"username" env:"AT_USERNAME"`
	APIKey   string `yaml:"api_key" env:"AT_API_KEY"`
	SMSURL   string `yaml:"sms_url" env:"AT_SMS_URL" env-default:"https://api.sandbox.africastalking.com/version1/messaging"` // Sandbox URL
	SenderID string `yaml:"sender_id" env:"AT_SENDER_ID" env-default:"AFRICASTKNG"`                                           // Default sandbox sender ID
}

func (a AfricaTalkingConfig) Enabled() bool {
	return a.Username != "" && a.APIKey != ""
}

type EmailConfig struct {
	AWSAccessKeyID     string `yaml:"aws_access_key_id" env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `yaml:"aws_region" env:"AWS_REGION" env-default:"us-east-1"`
	SenderEmail        string `yaml:"sender_email" env:"AWS_SENDER_ADDRESS"`
}

func (e EmailConfig) Enabled() bool {
	return e.SenderEmail != ""
}

// Load reads the YAML file named by CONFIG_PATH when it exists and
// overlays environment variables. Without a file only the environment is used.
func Load() (*Config, error) {
	var cfg Config

	path := getEnvOrDefault("CONFIG_PATH", "./configs/local.yaml")
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}

	return &cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
