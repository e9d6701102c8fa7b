// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	StaticDir               string `yaml:"static_dir" env:"STATIC_DIR" env-default:"./static"`
	ClientURL               string `yaml:"client_url" env:"CLIENT_URL" env-default:"http://localhost:5173"`
	SiteURL                 string `yaml:"site_url" env:"SITE_URL" env-default:"https://stockfortress.com"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	AI                      `yaml:"ai"`
	Stripe                  `yaml:"stripe"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"120s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес означает, что durable-уровень кеша не сконфигурирован —
// сервис продолжает работать только на локальном уровне.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_URL"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"5s"`
}

// AI структура для настройки провайдера генерации.
type AI struct {
	Provider         string  `yaml:"provider" env:"AI_PROVIDER" env-default:"gemini"`
	Model            string  `yaml:"model" env:"AI_MODEL" env-default:"gemini-2.5-flash"`
	BlogModel        string  `yaml:"blog_model" env:"AI_BLOG_MODEL"`
	Temperature      float32 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.4"`
	GeminiAPIKey     string  `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey     string  `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	PerplexityAPIKey string  `yaml:"perplexity_api_key" env:"PERPLEXITY_API_KEY"`
}

// Stripe структура для настройки платёжного процессора.
type Stripe struct {
	SecretKey      string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret  string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	ProMonthly     string `yaml:"pro_monthly" env:"STRIPE_PRO_MONTHLY" env-default:"price_pro_monthly"`
	ProYearly      string `yaml:"pro_yearly" env:"STRIPE_PRO_YEARLY" env-default:"price_pro_yearly"`
	PremiumMonthly string `yaml:"premium_monthly" env:"STRIPE_PREMIUM_MONTHLY" env-default:"price_premium_monthly"`
	PremiumYearly  string `yaml:"premium_yearly" env:"STRIPE_PREMIUM_YEARLY" env-default:"price_premium_yearly"`
}

// MustLoad загружает конфиг из файла CONFIG_PATH либо из переменных окружения.
func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Fatalf("file: %s - does not exist", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
		return &cfg
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}
	return &cfg
}

// TeaserModel возвращает модель для генерации тизеров;
// по умолчанию совпадает с моделью отчётов.
func (a AI) TeaserModel() string {
	if a.BlogModel != "" {
		return a.BlogModel
	}
	return a.Model
}
