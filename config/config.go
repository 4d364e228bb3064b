package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string

	// Default admin seeded on first login when no admin exists yet.
	AdminEmail    string
	AdminPassword string

	// Fine charged per day of late return, in currency units.
	FinePerDay float64

	// Optional report archive (S3). Empty bucket disables it.
	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string

	// Optional SMTP settings for overdue reminders. Empty host disables them.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func Load() (*Config, error) {
	finePerDay := 1.0
	if v := getEnv("FINE_PER_DAY", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			finePerDay = f
		}
	}
	smtpPort := 587
	if v := getEnv("SMTP_PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			smtpPort = n
		}
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("MONGODB_DB", "biblioteca"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@biblioteca.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		FinePerDay:    finePerDay,
		S3Bucket:      getEnv("AWS_S3_BUCKET", ""),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      smtpPort,
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      getEnv("SMTP_FROM", "biblioteca@localhost"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
