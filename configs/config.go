package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// OAuthApp holds one provider's registered application credentials.
type OAuthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Config struct {
	Google              OAuthApp
	Instagram           OAuthApp
	Facebook            OAuthApp
	Twitter             OAuthApp
	LinkedIn            OAuthApp
	MetaGraphVersion    string
	PostgresURI         string
	RedisURI            string
	FrontendURL         string
	ServerAddr          string
	MigrationsPath      string
	R2                  R2
	SecretKey           string
	CookieName          string
	PublishConcurrency  int
	ProviderHTTPTimeout time.Duration
	OAuthStateTTL       time.Duration
	ScheduleSweepEvery  string
}

func LoadConfig() *Config {
	return &Config{
		Google: OAuthApp{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/callback"),
		},
		Instagram: OAuthApp{
			ClientID:     getEnv("INSTAGRAM_APP_ID", ""),
			ClientSecret: getEnv("INSTAGRAM_APP_SECRET", ""),
			RedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", "http://localhost:3000/auth/instagram/callback"),
		},
		Facebook: OAuthApp{
			ClientID:     getEnv("FACEBOOK_APP_ID", ""),
			ClientSecret: getEnv("FACEBOOK_APP_SECRET", ""),
			RedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", "http://localhost:3000/auth/facebook/callback"),
		},
		Twitter: OAuthApp{
			ClientID:     getEnv("TWITTER_CLIENT_ID", ""),
			ClientSecret: getEnv("TWITTER_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("TWITTER_REDIRECT_URI", "http://localhost:3000/auth/twitter/callback"),
		},
		LinkedIn: OAuthApp{
			ClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", "http://localhost:3000/auth/linkedin/callback"),
		},
		MetaGraphVersion: getEnv("META_GRAPH_VERSION", "v18.0"),
		PostgresURI:      getEnv("POSTGRES_URI", ""),
		RedisURI:         getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "file://migrations"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:           getEnv("SECRET_KEY", ""),
		CookieName:          getEnv("COOKIE_NAME", "socialpro_session"),
		PublishConcurrency:  getEnvInt("PUBLISH_CONCURRENCY", 4),
		ProviderHTTPTimeout: getEnvDuration("PROVIDER_HTTP_TIMEOUT", 30*time.Second),
		OAuthStateTTL:       getEnvDuration("OAUTH_STATE_TTL", 10*time.Minute),
		ScheduleSweepEvery:  getEnv("SCHEDULE_SWEEP_EVERY", "@every 00h10m00s"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
