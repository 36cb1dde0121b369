package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	PostgresURI   string
	RedisURI      string
	AIBackendURL  string
	AIBackendKey  string
	SubmissionURL string
	SubmissionKey string
	FrontendURL   string
	R2            R2
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:   getEnv("POSTGRES_URI", ""),
		RedisURI:      getEnv("REDIS_URI", ""),
		AIBackendURL:  getEnv("AI_BACKEND_URL", ""),
		AIBackendKey:  getEnv("AI_BACKEND_KEY", ""),
		SubmissionURL: getEnv("SUBMISSION_URL", ""),
		SubmissionKey: getEnv("SUBMISSION_KEY", ""),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
