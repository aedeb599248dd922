package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/notes-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr         string        `env:"SERVER_ADDR" envDefault:":8000"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
	ServerIdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	HandlerTimeout     time.Duration `env:"HANDLER_TIMEOUT" envDefault:"110s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// AI provider configuration
	OpenAICfg OpenAIConfig       `envPrefix:"OPENAI_"`
	LLMCfg    LLMConnectorConfig `envPrefix:"LLM_"`
	RAGCfg    RAGConnectorConfig `envPrefix:"RAG_"`
	TTSCfg    TTSConnectorConfig `envPrefix:"TTS_"`

	// Pipeline configuration
	AnalyzerCfg   AnalyzerConfig   `envPrefix:"ANALYZER_"`
	PipelineCfg   PipelineConfig   `envPrefix:"PIPELINE_"`
	SessionCfg    SessionConfig    `envPrefix:"SESSION_"`
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// OpenAIConfig is shared by every connector talking to the provider
type OpenAIConfig struct {
	HTTPClientConfig
	APIKey       string `env:"API_KEY"`
	Organization string `env:"ORGANIZATION"`
}

type LLMConnectorConfig struct {
	Model string               `env:"MODEL" envDefault:"gpt-4o"`
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type RAGConnectorConfig struct {
	Model             string               `env:"MODEL" envDefault:"gpt-4o-mini"`
	ResponsesEndpoint string               `env:"RESPONSES_ENDPOINT" envDefault:"/responses"`
	MaxConcurrency    int                  `env:"MAX_CONCURRENCY" envDefault:"5"`
	Retry             pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type TTSConnectorConfig struct {
	Model         string               `env:"MODEL" envDefault:"tts-1"`
	DefaultVoice  string               `env:"DEFAULT_VOICE" envDefault:"alloy"`
	MaxTextLength int                  `env:"MAX_TEXT_LENGTH" envDefault:"4000"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"90s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"80s"`
	TLSHandshakeTimeout   time.Duration `env:"TLS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	MaxIdleConns          int           `env:"MAX_IDLE_CONNS" envDefault:"100"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
	Url                   string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
}

// AnalyzerConfig holds the heuristic analyzer tuning constants
type AnalyzerConfig struct {
	WordsPerMinute    int `env:"WORDS_PER_MINUTE" envDefault:"200"`
	MaxTopics         int `env:"MAX_TOPICS" envDefault:"8"`
	IntermediateWords int `env:"INTERMEDIATE_WORDS" envDefault:"5000"`
	AdvancedWords     int `env:"ADVANCED_WORDS" envDefault:"10000"`
	AdvancedTopics    int `env:"ADVANCED_TOPICS" envDefault:"5"`
	SlidesPerSection  int `env:"SLIDES_PER_SECTION" envDefault:"2"`
	MinSlides         int `env:"MIN_SLIDES" envDefault:"4"`
	MaxSlides         int `env:"MAX_SLIDES" envDefault:"12"`
}

type PipelineConfig struct {
	SummaryMaxInputChars int `env:"SUMMARY_MAX_INPUT_CHARS" envDefault:"15000"`
	MaxQuestions         int `env:"MAX_QUESTIONS" envDefault:"7"`
	MaxReferences        int `env:"MAX_REFERENCES" envDefault:"10"`
	NarrationConcurrency int `env:"NARRATION_CONCURRENCY" envDefault:"3"`
}

type SessionConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"6h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	MaxLiveUpdates  int           `env:"MAX_LIVE_UPDATES" envDefault:"200"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`   // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"11534336"` // 11 MiB, multipart overhead
}

// AIEnabled reports whether provider-backed connectors can be built
func (c *Config) AIEnabled() bool {
	return c.EnableMocks || c.OpenAICfg.APIKey != ""
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.RAGCfg.MaxConcurrency < 1 || cfg.RAGCfg.MaxConcurrency > 50 {
		errors = append(errors, fmt.Sprintf("RAG_MAX_CONCURRENCY must be between 1 and 50, got %d", cfg.RAGCfg.MaxConcurrency))
	}

	if cfg.TTSCfg.MaxTextLength < 1 {
		errors = append(errors, fmt.Sprintf("TTS_MAX_TEXT_LENGTH must be positive, got %d", cfg.TTSCfg.MaxTextLength))
	}

	if cfg.AnalyzerCfg.WordsPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("ANALYZER_WORDS_PER_MINUTE must be positive, got %d", cfg.AnalyzerCfg.WordsPerMinute))
	}

	if cfg.AnalyzerCfg.MinSlides < 1 || cfg.AnalyzerCfg.MinSlides > cfg.AnalyzerCfg.MaxSlides {
		errors = append(errors, fmt.Sprintf("ANALYZER_MIN_SLIDES must be between 1 and ANALYZER_MAX_SLIDES(%d), got %d", cfg.AnalyzerCfg.MaxSlides, cfg.AnalyzerCfg.MinSlides))
	}

	if cfg.AnalyzerCfg.IntermediateWords > cfg.AnalyzerCfg.AdvancedWords {
		errors = append(errors, fmt.Sprintf("ANALYZER_INTERMEDIATE_WORDS(%d) must not exceed ANALYZER_ADVANCED_WORDS(%d)", cfg.AnalyzerCfg.IntermediateWords, cfg.AnalyzerCfg.AdvancedWords))
	}

	if cfg.PipelineCfg.MaxQuestions < 1 {
		errors = append(errors, fmt.Sprintf("PIPELINE_MAX_QUESTIONS must be positive, got %d", cfg.PipelineCfg.MaxQuestions))
	}
	if cfg.PipelineCfg.MaxReferences < 1 {
		errors = append(errors, fmt.Sprintf("PIPELINE_MAX_REFERENCES must be positive, got %d", cfg.PipelineCfg.MaxReferences))
	}

	if cfg.PipelineCfg.NarrationConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("PIPELINE_NARRATION_CONCURRENCY must be positive, got %d", cfg.PipelineCfg.NarrationConcurrency))
	}

	if cfg.FileUploadCfg.MaxFileSize <= 0 || cfg.FileUploadCfg.MaxUploadSize < cfg.FileUploadCfg.MaxFileSize {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_UPLOAD_SIZE(%d) must be at least FILE_UPLOAD_MAX_FILE_SIZE(%d)", cfg.FileUploadCfg.MaxUploadSize, cfg.FileUploadCfg.MaxFileSize))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
