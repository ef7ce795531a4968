package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration

	// Payment gateway redirect + notification settings.
	GatewayURL         string
	GatewayMerchantID  string
	GatewayMerchantKey string
	GatewayReturnURL   string
	GatewayCancelURL   string
	GatewayNotifyURL   string

	// Notification transport.
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	MailFrom    string
	OrdersEmail string // business inbox for fulfilment alerts

	DeliveryFee float64

	// Optional infrastructure; empty means disabled.
	RedisAddr   string
	KafkaBroker string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "communitysite"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),

		GatewayURL:         getEnvOrDefault("GATEWAY_URL", "https://sandbox.payfast.co.za/eng/process"),
		GatewayMerchantID:  getEnvOrDefault("GATEWAY_MERCHANT_ID", ""),
		GatewayMerchantKey: getEnvOrDefault("GATEWAY_MERCHANT_KEY", ""),
		GatewayReturnURL:   getEnvOrDefault("GATEWAY_RETURN_URL", ""),
		GatewayCancelURL:   getEnvOrDefault("GATEWAY_CANCEL_URL", ""),
		GatewayNotifyURL:   getEnvOrDefault("GATEWAY_NOTIFY_URL", ""),

		SMTPHost:    getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:    getIntEnv("SMTP_PORT", 587),
		SMTPUser:    getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:    getEnvOrDefault("SMTP_PASS", ""),
		MailFrom:    getEnvOrDefault("MAIL_FROM", "noreply@localhost"),
		OrdersEmail: getEnvOrDefault("ORDERS_EMAIL", ""),

		DeliveryFee: getFloatEnv("DELIVERY_FEE", 0),

		RedisAddr:   getEnvOrDefault("REDIS_ADDR", ""),
		KafkaBroker: getEnvOrDefault("KAFKA_BROKER", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
