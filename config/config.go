package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Login identity modes. Older deployments authenticated by username, newer
// ones by email with a mandatory device MAC; both remain supported.
const (
	IdentityUsername = "username"
	IdentityEmail    = "email"
)

// Config holds application configuration loaded from environment variables.
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// JWT
	JWTSecret string
	TokenTTL  time.Duration

	// Login behavior
	LoginIdentityField string // "username" or "email"
	MACRequired        bool

	// Simulator artifact
	SimulatorURL string // explicit externally reachable URL, preferred
	ArtifactPath string // object/file name of the encrypted artifact
	FilesDir     string // local directory served at /files
	AESKeyB64    string // base64 master key handed out as hex after login

	// Google Cloud Storage (optional signed-URL artifact hosting)
	GCSBucket              string
	GCSCredentialsJSONPath string
	SignedURLTTL           time.Duration

	// Redis (rate limiting)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ (welcome mail queue)
	RabbitMQURL        string
	RabbitMQEmailQueue string
	MailSendEnabled    bool

	// Mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	// Elasticsearch (best-effort account index)
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESAccountsIndex    string

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "simgate"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "4001"),
		GinMode: getenv("GIN_MODE", "release"),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "simgate"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		// No default on purpose: Validate rejects an empty secret.
		JWTSecret: getenv("JWT_SECRET", ""),
		TokenTTL:  getdur("JWT_TTL", 12*time.Hour),

		LoginIdentityField: getenv("LOGIN_IDENTITY_FIELD", IdentityUsername),
		MACRequired:        getbool("MAC_REQUIRED", false),

		SimulatorURL: getenv("SIMULATOR_URL", ""),
		ArtifactPath: getenv("ARTIFACT_PATH", "Zuppa_Drone_Sim_V2.enc"),
		FilesDir:     getenv("FILES_DIR", "public"),
		AESKeyB64:    getenv("AES_KEY_B64", ""),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),
		SignedURLTTL:           getdur("SIGNED_URL_TTL", 12*time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),
		MailSendEnabled:    getbool("MAIL_SEND_ENABLED", true),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", ""),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESAccountsIndex:    getenv("ES_ACCOUNTS_INDEX", "accounts"),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// Validate rejects configurations the server must not start with.
// The signing secret in particular has no fallback: a well-known default
// would make every issued token forgeable.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	switch c.LoginIdentityField {
	case IdentityUsername, IdentityEmail:
	default:
		return errors.New(`LOGIN_IDENTITY_FIELD must be "username" or "email"`)
	}
	return nil
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	parts := strings.Split(c.ElasticsearchAddrs, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
