// Package config предоставляет структуры и функции для загрузки конфигурации клиента заметок.
//
// Конфиг читается из YAML-файла (путь из флага --config или CONFIG_PATH), а недостающие значения
// берутся из переменных окружения и значений по умолчанию. Файл .env, если он есть,
// подгружается в окружение перед чтением.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Платёжные шлюзы.
const (
	GatewayTerminal  = "terminal"
	GatewaySimulated = "simulated"
)

// Бэкенды хранения токена сессии.
const (
	SessionFile   = "file"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"NOTES_ENV" env-default:"local"`
	API             `yaml:"api"`
	Session         `yaml:"session"`
	RedisConnection `yaml:"redis_connection"`
	Checkout        `yaml:"checkout"`
	Sandbox         `yaml:"sandbox"`
}

// API структура для настройки HTTP-клиента к удалённому API
type API struct {
	BaseURL   string        `yaml:"base_url" env:"NOTES_API_URL" env-default:"http://localhost:5000/api"`
	Timeout   time.Duration `yaml:"timeout" env:"NOTES_API_TIMEOUT" env-default:"10s"`
	RateLimit float64       `yaml:"rate_limit" env:"NOTES_API_RATE_LIMIT" env-default:"10"`
	Burst     int           `yaml:"burst" env:"NOTES_API_BURST" env-default:"5"`
}

// Session структура для настройки хранилища токена
type Session struct {
	Backend  string `yaml:"backend" env:"NOTES_SESSION_BACKEND" env-default:"file"`
	FilePath string `yaml:"file_path" env:"NOTES_SESSION_FILE"`
	Key      string `yaml:"key" env:"NOTES_SESSION_KEY" env-default:"notes:session:token"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"NOTES_REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"NOTES_REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"NOTES_REDIS_USER"`
	DB           int           `yaml:"db" env:"NOTES_REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Checkout структура для настройки платёжного шлюза
type Checkout struct {
	Gateway string `yaml:"gateway" env:"NOTES_CHECKOUT_GATEWAY" env-default:"terminal"`
	Secret  string `yaml:"secret" env:"NOTES_CHECKOUT_SECRET"`
}

// Sandbox структура для настройки локальной имитации API
type Sandbox struct {
	Addr string `yaml:"addr" env:"NOTES_SANDBOX_ADDR" env-default:"127.0.0.1:5000"`
}

// Load читает конфиг из path; пустой path означает только окружение и значения по умолчанию.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: load .env: %w", op, err)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, cfg.validate()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: file %s: %w", op, path, err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Backend {
	case SessionFile, SessionRedis, SessionMemory:
	default:
		return fmt.Errorf("config: unknown session backend %q", c.Backend)
	}
	if c.BaseURL == "" {
		return errors.New("config: api base_url is empty")
	}
	switch c.Gateway {
	case GatewayTerminal:
	case GatewaySimulated:
		if c.Secret == "" {
			return errors.New("config: simulated checkout requires a secret")
		}
	default:
		return fmt.Errorf("config: unknown checkout gateway %q", c.Gateway)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"API:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"  RateLimit: %g\n"+
			"  Burst: %d\n"+
			"Session:\n"+
			"  Backend: %s\n"+
			"  FilePath: %s\n"+
			"  Key: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"Checkout:\n"+
			"  Gateway: %s\n"+
			"Sandbox:\n"+
			"  Addr: %s\n",
		c.Env,
		c.BaseURL,
		c.Timeout,
		c.RateLimit,
		c.Burst,
		c.Backend,
		c.FilePath,
		c.Key,
		c.AddressRedis,
		c.User,
		c.DB,
		c.Gateway,
		c.Addr,
	)
}
