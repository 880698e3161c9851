package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the matcher reads from the environment.
type Config struct {
	// Matching tunables.
	RadiusKm          float64
	TopK              int
	GatePermissive    bool
	CacheTTL          time.Duration
	MaxInFlight       int
	DispatchSpacing   time.Duration
	CallTimeout       time.Duration
	FallbackSpeedKmh  float64
	MinFallbackETASec int

	// Kafka.
	KafkaBroker  string
	RequestTopic string
	ResultTopic  string
	GroupID      string

	// Archive storage.
	ArchiveEndpoint  string
	ArchiveAccessKey string
	ArchiveSecretKey string
	ArchiveBucket    string
	ArchiveUseSSL    bool

	// Driving-time API.
	RoutingKeyID string
	RoutingKey   string

	// Geocoding.
	GeocodeBaseURL string

	// Preference extraction.
	LLMEndpoint string
	LLMModel    string
	LLMAPIKey   string
}

// Load reads the configuration from the environment. A .env file, when
// present, seeds variables that are not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set directly.")
	}

	cfg := &Config{
		RadiusKm:          getEnvFloat("MATCH_RADIUS_KM", 15.0),
		TopK:              getEnvInt("MATCH_TOP_K", 5),
		GatePermissive:    getEnvBool("GATE_PERMISSIVE", false),
		CacheTTL:          getEnvDuration("ETA_CACHE_TTL", 10*time.Minute),
		MaxInFlight:       getEnvInt("ETA_MAX_IN_FLIGHT", 3),
		DispatchSpacing:   getEnvDuration("ETA_DISPATCH_SPACING", 200*time.Millisecond),
		CallTimeout:       getEnvDuration("ETA_CALL_TIMEOUT", 10*time.Second),
		FallbackSpeedKmh:  getEnvFloat("ETA_FALLBACK_SPEED_KMH", 30.0),
		MinFallbackETASec: getEnvInt("ETA_MIN_FALLBACK_SEC", 60),

		KafkaBroker:  os.Getenv("KAFKA_BROKER"),
		RequestTopic: getEnv("KAFKA_REQUEST_TOPIC", "match-requests"),
		ResultTopic:  getEnv("KAFKA_RESULT_TOPIC", "match-results"),
		GroupID:      getEnv("KAFKA_GROUP_ID", "matcher"),

		ArchiveEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		ArchiveAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		ArchiveSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		ArchiveBucket:    getEnv("MINIO_BUCKET", "match-archive"),
		ArchiveUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		RoutingKeyID: os.Getenv("NCP_API_KEY_ID"),
		RoutingKey:   os.Getenv("NCP_API_KEY"),

		GeocodeBaseURL: getEnv("GEOCODE_BASE_URL", ""),

		LLMEndpoint: getEnv("LLM_ENDPOINT", "https://openrouter.ai/api/v1/chat/completions"),
		LLMModel:    getEnv("LLM_MODEL", "openai/gpt-4o-mini"),
		LLMAPIKey:   os.Getenv("LLM_API_KEY"),
	}

	for name, v := range map[string]string{
		"KAFKA_BROKER":     cfg.KafkaBroker,
		"MINIO_ENDPOINT":   cfg.ArchiveEndpoint,
		"MINIO_ACCESS_KEY": cfg.ArchiveAccessKey,
		"MINIO_SECRET_KEY": cfg.ArchiveSecretKey,
		"NCP_API_KEY_ID":   cfg.RoutingKeyID,
		"NCP_API_KEY":      cfg.RoutingKey,
	} {
		if v == "" {
			return nil, fmt.Errorf("environment variable %s not set", name)
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid integer for %s: %q, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid number for %s: %q, using default %v", key, v, def)
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return v == "true" || v == "1"
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using default %v", key, v, def)
		return def
	}
	return d
}
