package config

import (
	"os"
	"strconv"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// WorkerPort is where the worker binary serves its health endpoints.
	WorkerPort string `yaml:"worker_port"`
}

// ClassifierConfig points at the OpenAI-compatible categorization service.
type ClassifierConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// WebhookConfig holds the outbound notification sink endpoints.
type WebhookConfig struct {
	ChatURL       string `yaml:"chat_url"`
	GenericURL    string `yaml:"generic_url"`
	SigningSecret string `yaml:"signing_secret"`
}

func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.DB = n
		}
	}
}

func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
	if port := os.Getenv("WORKER_PORT"); port != "" {
		cfg.WorkerPort = port
	}
}

func OverrideClassifierFromEnv(cfg *ClassifierConfig) {
	if url := os.Getenv("CLASSIFIER_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
	if key := os.Getenv("CLASSIFIER_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if model := os.Getenv("CLASSIFIER_MODEL"); model != "" {
		cfg.Model = model
	}
}

func OverrideWebhookFromEnv(cfg *WebhookConfig) {
	if url := os.Getenv("WEBHOOK_CHAT_URL"); url != "" {
		cfg.ChatURL = url
	}
	if url := os.Getenv("WEBHOOK_GENERIC_URL"); url != "" {
		cfg.GenericURL = url
	}
	if secret := os.Getenv("WEBHOOK_SIGNING_SECRET"); secret != "" {
		cfg.SigningSecret = secret
	}
}
