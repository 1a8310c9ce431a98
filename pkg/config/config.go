package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Backend    BackendConfig
	Cloudinary CloudinaryConfig
	GCP        GCPConfig
	Google     GoogleConfig
	Drafts     DraftsConfig
	Submission SubmissionConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if !cfg.JWT.Verify() {
		return nil, fmt.Errorf("%s must not be blank", EnvJWTSecret)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"UNIFORMHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"UNIFORMHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"UNIFORMHUB_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"UNIFORMHUB_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"UNIFORMHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"UNIFORMHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"UNIFORMHUB_REDIS_ADDR"`
	Password     string        `envconfig:"UNIFORMHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"UNIFORMHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"UNIFORMHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"UNIFORMHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"UNIFORMHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"UNIFORMHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"UNIFORMHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes how backend-issued access tokens are verified. The
// secret is shared with the backend that signs them.
type JWTConfig struct {
	Secret     string `envconfig:"UNIFORMHUB_JWT_SECRET" required:"true"`
	Issuer     string `envconfig:"UNIFORMHUB_JWT_ISSUER"`
	CookieName string `envconfig:"UNIFORMHUB_JWT_COOKIE" default:"access_token"`
}

// Verify reports whether a signing secret is available.
func (j JWTConfig) Verify() bool {
	return strings.TrimSpace(j.Secret) != ""
}

type BackendConfig struct {
	BaseURL string        `envconfig:"UNIFORMHUB_BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"UNIFORMHUB_BACKEND_TIMEOUT" default:"15s"`
}

func (b BackendConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(b.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvBackendBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvBackendBaseURL)
	}
	return nil
}

type CloudinaryConfig struct {
	CloudName    string        `envconfig:"UNIFORMHUB_CLOUDINARY_CLOUD_NAME" required:"true"`
	APIKey       string        `envconfig:"UNIFORMHUB_CLOUDINARY_API_KEY" required:"true"`
	UploadPreset string        `envconfig:"UNIFORMHUB_CLOUDINARY_UPLOAD_PRESET" required:"true"`
	Folder       string        `envconfig:"UNIFORMHUB_CLOUDINARY_FOLDER" default:"uniformhub"`
	BaseURL      string        `envconfig:"UNIFORMHUB_CLOUDINARY_BASE_URL" default:"https://api.cloudinary.com/v1_1"`
	Timeout      time.Duration `envconfig:"UNIFORMHUB_CLOUDINARY_TIMEOUT" default:"30s"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"UNIFORMHUB_GCP_PROJECT_ID" required:"true"`
	CredentialsFile string `envconfig:"UNIFORMHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GoogleConfig struct {
	UserInfoURL string        `envconfig:"UNIFORMHUB_GOOGLE_USERINFO_URL" default:"https://www.googleapis.com/oauth2/v3/userinfo"`
	Timeout     time.Duration `envconfig:"UNIFORMHUB_GOOGLE_TIMEOUT" default:"10s"`
}

type DraftsConfig struct {
	TTL              time.Duration `envconfig:"UNIFORMHUB_DRAFT_TTL" default:"2h"`
	FabricsCacheTTL  time.Duration `envconfig:"UNIFORMHUB_FABRICS_CACHE_TTL" default:"10m"`
	MaxMultipartSize int64         `envconfig:"UNIFORMHUB_MAX_MULTIPART_MB" default:"64"`
}

// MaxMultipartBytes converts the configured multipart ceiling into bytes.
func (d DraftsConfig) MaxMultipartBytes() int64 {
	if d.MaxMultipartSize <= 0 {
		return 64 << 20
	}
	return d.MaxMultipartSize << 20
}

type SubmissionConfig struct {
	LockTTL       time.Duration `envconfig:"UNIFORMHUB_SUBMIT_LOCK_TTL" default:"2m"`
	RedirectDelay time.Duration `envconfig:"UNIFORMHUB_SUBMIT_REDIRECT_DELAY" default:"1500ms"`
	RedirectPath  string        `envconfig:"UNIFORMHUB_SUBMIT_REDIRECT_PATH" default:"/school/design"`
	FetchLimit    int           `envconfig:"UNIFORMHUB_MILESTONE_FETCH_LIMIT" default:"8"`
}

type RateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"UNIFORMHUB_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"UNIFORMHUB_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SubmitWindow time.Duration `envconfig:"UNIFORMHUB_RATE_LIMIT_SUBMIT_WINDOW" default:"1m"`
	SubmitLimit  int           `envconfig:"UNIFORMHUB_RATE_LIMIT_SUBMIT_LIMIT" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"UNIFORMHUB_CORS_ORIGINS" default:"http://localhost:3000"`
}
