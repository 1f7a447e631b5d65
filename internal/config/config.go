package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Scheduling window and granularity
	BusinessHoursStart     int    // local hour, inclusive
	BusinessHoursEnd       int    // local hour, exclusive
	SlotStrideMinutes      int    // candidate slot spacing
	DefaultDurationMinutes int    // used when the message has no duration
	Timezone               string // IANA zone all slot arithmetic happens in
	DefaultMeetingTitle    string

	// Calendar backend selection: "memory" or "google"
	CalendarBackend       string
	GoogleCalendarID      string
	GoogleCredentialsJSON string // path to a service-account credentials file

	// Conversation transcript store (optional)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Booking log (optional)
	DatabaseURL string

	// Booking confirmation email (optional)
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OwnerEmail        string
	OwnerName         string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		BusinessHoursStart:     getEnvAsInt("BUSINESS_HOURS_START", 9),
		BusinessHoursEnd:       getEnvAsInt("BUSINESS_HOURS_END", 21),
		SlotStrideMinutes:      getEnvAsInt("SLOT_STRIDE_MINUTES", 30),
		DefaultDurationMinutes: getEnvAsInt("DEFAULT_DURATION_MINUTES", 60),
		Timezone:               getEnv("TIMEZONE", "Asia/Kolkata"),
		DefaultMeetingTitle:    getEnv("DEFAULT_MEETING_TITLE", "Meeting"),

		CalendarBackend:       strings.ToLower(strings.TrimSpace(getEnv("CALENDAR_BACKEND", "memory"))),
		GoogleCalendarID:      getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Bookwise"),
		OwnerEmail:        getEnv("OWNER_EMAIL", ""),
		OwnerName:         getEnv("OWNER_NAME", ""),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice retrieves a comma-separated environment variable as a string slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
