package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr      string
	MySQLDSN      string
	RedisAddr     string
	RabbitMQURL   string
	OrderExchange string
}

// Load reads configuration from the environment. RedisAddr and RabbitMQURL
// may be empty, in which case the stock cache and event publishing are
// disabled.
func Load() *Config {
	return &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:      getEnvFromFile("MYSQL_DSN_FILE", "MYSQL_DSN", "root:root@tcp(localhost:3306)/comanda?parseTime=true"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RabbitMQURL:   getEnvFromFile("RABBITMQ_URL_FILE", "RABBITMQ_URL", ""),
		OrderExchange: getEnv("ORDER_EXCHANGE", "pos_events"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(envKey, defaultValue)
}
