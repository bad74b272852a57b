package config

import "os"

// Config holds the externally supplied service configuration
type Config struct {
	Port          string
	Env           string
	PostgresURL   string
	JWTSecret     string
	CloudinaryURL string
	CORSOrigin    string
	UploadDir     string
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PostgresURL:   getEnv("POSTGRES_CONN_STR", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:3000"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
