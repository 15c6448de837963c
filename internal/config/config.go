package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del worker de extracción.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8081"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIKey      string `env:"LLM_API_KEY,required"`
	LLMBaseURL     string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel       string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	LLMRPM         int    `env:"LLM_RPM" envDefault:"60"`

	RetrievalTopK    int `env:"RETRIEVAL_TOP_K" envDefault:"5"`
	RetryMaxAttempts int `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseDelayMS int `env:"RETRY_BASE_DELAY_MS" envDefault:"1000"`

	RangeRulesPath string  `env:"RANGE_RULES_PATH"`
	PillarWeightE  float64 `env:"PILLAR_WEIGHT_E" envDefault:"1"`
	PillarWeightS  float64 `env:"PILLAR_WEIGHT_S" envDefault:"1"`
	PillarWeightG  float64 `env:"PILLAR_WEIGHT_G" envDefault:"1"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	TaskQueue     string `env:"TASK_QUEUE" envDefault:"esg:tasks"`
	ParkedQueue   string `env:"PARKED_QUEUE" envDefault:"esg:parked"`
	MaxDeliveries int    `env:"MAX_DELIVERIES" envDefault:"3"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	AlertTo      string `env:"ALERT_TO"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
