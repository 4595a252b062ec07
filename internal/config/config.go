package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"progress-service/internal/engine"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	GinMode  string
	MongoURI string
	MongoDB  string

	RabbitMQURI      string
	RabbitMQExchange string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	ServiceName    string
	ServiceVersion string

	Engine engine.Config
}

var AppConfig *Config

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Port:             getEnvOrDefault("PORT", "6677"),
		GinMode:          getEnvOrDefault("GIN_MODE", "debug"),
		MongoURI:         getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:          getEnvOrDefault("MONGO_DATABASE", "progress_service"),
		RabbitMQURI:      getEnvOrDefault("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnvOrDefault("RABBITMQ_EXCHANGE", ""),
		LLMBaseURL:       getEnvOrDefault("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:        getEnvOrDefault("LLM_API_KEY", ""),
		LLMModel:         getEnvOrDefault("LLM_MODEL", "qwen3:1.7b"),
		ServiceName:      getEnvOrDefault("SERVICE_NAME", "progress-service"),
		ServiceVersion:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Engine:           loadEngineConfig(),
	}
}

func loadEngineConfig() engine.Config {
	ec := engine.DefaultConfig()
	ec.QuestionCount = getEnvInt("QUIZ_QUESTION_COUNT", ec.QuestionCount)
	ec.OptionCount = getEnvInt("QUIZ_OPTION_COUNT", ec.OptionCount)
	ec.ModulePassScore = getEnvInt("QUIZ_MODULE_PASS_SCORE", ec.ModulePassScore)
	ec.GenerationTimeout = time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 60)) * time.Second
	ec.WeightCompletion = getEnvFloat("READINESS_WEIGHT_COMPLETION", ec.WeightCompletion)
	ec.WeightAssignments = getEnvFloat("READINESS_WEIGHT_ASSIGNMENTS", ec.WeightAssignments)
	ec.WeightQuizzes = getEnvFloat("READINESS_WEIGHT_QUIZZES", ec.WeightQuizzes)
	ec.OnTrackThreshold = getEnvFloat("READINESS_ON_TRACK", ec.OnTrackThreshold)
	ec.NeedsAttentionThreshold = getEnvFloat("READINESS_NEEDS_ATTENTION", ec.NeedsAttentionThreshold)

	if err := ec.Validate(); err != nil {
		log.Fatalf("Invalid engine configuration: %v", err)
	}
	return ec
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid value for %s, using default %g", key, defaultValue)
	}
	return defaultValue
}
