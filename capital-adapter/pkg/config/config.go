package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Checker-Finance/adapters/pkg/config"
)

// Credential sources for the Capital.com login.
const (
	CredentialsSourceEnv = "env"
	CredentialsSourceAWS = "aws"
)

// Config holds the runtime configuration for the capital-adapter.
type Config struct {
	ServiceName string
	Env         string
	Venue       string
	LogLevel    string
	AWSRegion   string

	Port             int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	CacheTTL    time.Duration
	CleanupFreq time.Duration

	// NATSURL enables the request/reply responder when set.
	NATSURL           string
	NATSSubjectPrefix string

	// Capital.com-specific configuration.
	CapitalBaseURL            string
	CapitalRequestTimeout     time.Duration
	CapitalInsecureSkipVerify bool

	// CredentialsSource selects where the login credentials come from:
	// "env" reads CAPITAL_IDENTIFIER / CAPITAL_PASSWORD / CAPITAL_API_KEY,
	// "aws" reads the secret {env}/{CapitalAccount}/capital.
	CredentialsSource string
	CapitalAccount    string
	CapitalIdentifier string
	CapitalPassword   string
	CapitalAPIKey     string
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:               pkgconfig.GetEnv("SERVICE_NAME", "capital-adapter"),
		Venue:                     "capital",
		Env:                       pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:                  pkgconfig.GetEnv("LOG_LEVEL", "info"),
		AWSRegion:                 pkgconfig.GetEnv("AWS_REGION", "us-east-2"),
		Port:                      pkgconfig.GetEnvInt("CAPITAL_PORT", 9040),
		HTTPReadTimeout:           pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout:          pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPIdleTimeout:           pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:             pkgconfig.GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),
		CacheTTL:                  pkgconfig.GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CleanupFreq:               pkgconfig.GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),
		NATSURL:                   pkgconfig.GetEnv("NATS_URL", ""),
		NATSSubjectPrefix:         pkgconfig.GetEnv("NATS_SUBJECT_PREFIX", "cmd.capital"),
		CapitalBaseURL:            pkgconfig.GetEnv("CAPITAL_BASE_URL", "https://api-capital.backend-capital.com/api/v1/"),
		CapitalRequestTimeout:     pkgconfig.GetEnvDuration("CAPITAL_REQUEST_TIMEOUT", 15*time.Second),
		CapitalInsecureSkipVerify: pkgconfig.GetEnvBool("CAPITAL_INSECURE_SKIP_VERIFY", false),
		CredentialsSource:         pkgconfig.GetEnv("CREDENTIALS_SOURCE", CredentialsSourceEnv),
		CapitalAccount:            pkgconfig.GetEnv("CAPITAL_ACCOUNT", "default"),
		CapitalIdentifier:         pkgconfig.GetEnv("CAPITAL_IDENTIFIER", ""),
		CapitalPassword:           pkgconfig.GetEnv("CAPITAL_PASSWORD", ""),
		CapitalAPIKey:             pkgconfig.GetEnv("CAPITAL_API_KEY", ""),
	}
}
