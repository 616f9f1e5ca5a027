// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the
// HTTP server, logging, the identity provider, the document store, the
// generative model (including its prompt templates), rate limiting, and
// observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-companion-backend/internal/sysutil"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
)

// Voice token modes accepted by VOICE_TOKEN_MODE.
const (
	VoiceTokenMint        = "mint"
	VoiceTokenPlaceholder = "placeholder"
)

// Default prompt templates. Each can be overridden through the environment.
const (
	DefaultChatSystemPrompt = `You are a compassionate and supportive mental health companion AI.
Your role is to:
- Listen actively and empathetically to the user
- Provide emotional support and validation
- Offer helpful coping strategies and mindfulness techniques
- Encourage professional help when appropriate
- NEVER provide medical diagnoses or replace professional therapy
- Maintain a warm, understanding, and non-judgmental tone
- Ask clarifying questions to better understand the user's feelings
- Remember context from the conversation to provide personalized support

Important guidelines:
- If someone expresses thoughts of self-harm or suicide, encourage them to contact emergency services or a crisis helpline immediately
- Be supportive but maintain appropriate boundaries
- Focus on emotional support rather than giving medical advice`

	DefaultJournalInsightPrompt = `You are a thoughtful mental health companion reviewing a journal entry.
Provide a brief, supportive reflection (2-3 sentences) that:
- Acknowledges the emotions expressed
- Offers a gentle insight or perspective
- Encourages continued self-reflection

Be warm and supportive, not clinical. Avoid giving advice unless asked.`

	DefaultMoodAnalysisPrompt = `You are a mental health companion analyzing mood patterns.
Based on the mood data provided, give a brief, supportive analysis (3-4 sentences) that:
- Summarizes the overall trend
- Highlights any notable patterns
- Offers encouragement or gentle suggestions

Be supportive and encouraging, not clinical or judgmental.`
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// FirebaseConfig identifies the Firebase project used for both token
// verification and Firestore.
type FirebaseConfig struct {
	ProjectID       string // FIREBASE_PROJECT_ID
	CredentialsPath string // GOOGLE_APPLICATION_CREDENTIALS; empty means ADC
}

// ModelConfig configures the generative language API.
type ModelConfig struct {
	APIKey    string // GOOGLE_AI_API_KEY (or GEMINI_API_KEY)
	Name      string // GEMINI_MODEL
	LiveModel string // GEMINI_LIVE_MODEL

	ChatSystemPrompt     string
	JournalInsightPrompt string
	MoodAnalysisPrompt   string

	VoiceTokenTTL  time.Duration // lifetime of minted voice credentials
	VoiceTokenMode string        // mint|placeholder
}

// Config holds all configuration values for the application.
type Config struct {
	// Environment
	AppEnv string // development|staging|production
	Debug  bool

	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // must outlive a full chat stream
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route

	// Storage
	StoreDriver string // firestore|sqlite
	DBPath      string // SQLite path when StoreDriver=sqlite

	Firebase FirebaseConfig
	Model    ModelConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)
	RedisAddr string  // shared limiter backend; empty keeps limits in-process

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c Config) IsProduction() bool { return c.AppEnv == "production" }

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		AppEnv: strings.ToLower(getenv("APP_ENV", "development")),
		Debug:  getbool("DEBUG", true),

		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 2*time.Minute),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		// Storage
		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", StoreFirestore)),
		DBPath:      getenv("DB_PATH", "companion.db"),

		Firebase: FirebaseConfig{
			ProjectID:       getenv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath: getenv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Model: ModelConfig{
			APIKey:               sysutil.FirstNonEmpty(os.Getenv("GOOGLE_AI_API_KEY"), os.Getenv("GEMINI_API_KEY")),
			Name:                 getenv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
			LiveModel:            getenv("GEMINI_LIVE_MODEL", "models/gemini-2.0-flash-exp"),
			ChatSystemPrompt:     getenv("CHAT_SYSTEM_PROMPT", DefaultChatSystemPrompt),
			JournalInsightPrompt: getenv("JOURNAL_INSIGHT_PROMPT", DefaultJournalInsightPrompt),
			MoodAnalysisPrompt:   getenv("MOOD_ANALYSIS_PROMPT", DefaultMoodAnalysisPrompt),
			VoiceTokenTTL:        getdur("VOICE_TOKEN_TTL", 10*time.Minute),
			VoiceTokenMode:       strings.ToLower(getenv("VOICE_TOKEN_MODE", VoiceTokenMint)),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),
		RedisAddr: getenv("REDIS_ADDR", ""),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "companion-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.StoreDriver {
	case StoreFirestore:
	case StoreSQLite:
		if strings.TrimSpace(cfg.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty when STORE_DRIVER=sqlite")
		}
	default:
		return cfg, errors.New("STORE_DRIVER must be one of: firestore, sqlite")
	}
	switch cfg.Model.VoiceTokenMode {
	case VoiceTokenMint, VoiceTokenPlaceholder:
	default:
		return cfg, errors.New("VOICE_TOKEN_MODE must be one of: mint, placeholder")
	}
	if cfg.Model.VoiceTokenTTL <= 0 {
		return cfg, errors.New("VOICE_TOKEN_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.Model.Name) == "" {
		return cfg, errors.New("GEMINI_MODEL must not be empty")
	}
	if cfg.IsProduction() {
		if cfg.StoreDriver == StoreSQLite {
			return cfg, errors.New("STORE_DRIVER=sqlite is not allowed in production")
		}
		if cfg.Model.VoiceTokenMode == VoiceTokenPlaceholder {
			return cfg, errors.New("VOICE_TOKEN_MODE=placeholder is not allowed in production")
		}
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
