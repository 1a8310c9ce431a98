package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so the
// prefix only matters for fields added without one.
const EnvPrefix = "UNIFORMHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv              = "UNIFORMHUB_APP_ENV"
	EnvPort                = "UNIFORMHUB_APP_PORT"
	EnvRedisURL            = "UNIFORMHUB_REDIS_URL"
	EnvJWTSecret           = "UNIFORMHUB_JWT_SECRET"
	EnvBackendBaseURL      = "UNIFORMHUB_BACKEND_BASE_URL"
	EnvCloudinaryCloudName = "UNIFORMHUB_CLOUDINARY_CLOUD_NAME"
	EnvCloudinaryAPIKey    = "UNIFORMHUB_CLOUDINARY_API_KEY"
	EnvCloudinaryPreset    = "UNIFORMHUB_CLOUDINARY_UPLOAD_PRESET"
	EnvGCPProjectID        = "UNIFORMHUB_GCP_PROJECT_ID"
	EnvDraftTTL            = "UNIFORMHUB_DRAFT_TTL"
	EnvSubmitRedirectDelay = "UNIFORMHUB_SUBMIT_REDIRECT_DELAY"
	EnvCORSOrigins         = "UNIFORMHUB_CORS_ORIGINS"
)
