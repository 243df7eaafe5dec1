package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the incident service.
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// Moderation service configuration
	ModerationURL     string
	ModerationTimeout time.Duration

	// Number of historical incident texts sent to the moderation
	// service as deduplication context.
	ContextWindow int

	// Uploaded photo storage
	UploadsDir string

	// RabbitMQ configuration. Publishing is disabled when AMQPURL is
	// empty.
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "campusapp"),

		// Server defaults
		Port: getEnv("PORT", "8080"),

		// Moderation defaults
		ModerationURL:     getEnv("MODERATION_SERVICE_URL", "http://localhost:5000"),
		ModerationTimeout: getDurationEnv("MODERATION_TIMEOUT", 5*time.Second),

		ContextWindow: getIntEnv("CONTEXT_WINDOW", 50),

		UploadsDir: getEnv("UPLOADS_DIR", "./uploads"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "campusapp"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "incident.created"),
	}
}

// MySQLAddress builds the DSN for the incident database.
func (c *Config) MySQLAddress() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
