package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"` // local, dev, prod
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Store      StoreConfig      `yaml:"store"`
	Payment    PaymentConfig    `yaml:"payment"`
	Mail       MailConfig       `yaml:"mail"`
	CORS       CORSConfig       `yaml:"cors"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
	SSLMode  string `yaml:"ssl_mode" env-default:"disable"`
}

// DSN для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// JWTConfig настройка jwt
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"` // минуты
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// StoreConfig - витрина: валюта, адрес сайта для ссылок оплаты, ящик для новых заказов
type StoreConfig struct {
	Name          string `yaml:"name" env-default:"Seven Green"`
	Currency      string `yaml:"currency" env-default:"AED"`
	StorefrontURL string `yaml:"storefront_url" env:"STOREFRONT_URL" env-required:"true"`
	Inbox         string `yaml:"inbox" env:"STORE_INBOX"`
}

const (
	PaymentZiina  = "ziina"
	PaymentStripe = "stripe"
)

type PaymentConfig struct {
	Provider string        `yaml:"provider" env:"PAYMENT_PROVIDER" env-default:"ziina"`
	APIURL   string        `yaml:"api_url"`
	APIKey   string        `yaml:"-" env:"PAYMENT_API_KEY"`
	TestMode bool          `yaml:"test_mode" env:"PAYMENT_TEST_MODE"`
	Timeout  time.Duration `yaml:"timeout" env-default:"10s"`
}

const (
	MailResend = "resend"
	MailSMTP   = "smtp"
	MailLog    = "log"
)

type MailConfig struct {
	Provider     string        `yaml:"provider" env:"MAIL_PROVIDER" env-default:"log"`
	From         string        `yaml:"from" env-default:"Seven Green <orders@localhost>"`
	APIKey       string        `yaml:"-" env:"MAIL_API_KEY"`
	SMTPHost     string        `yaml:"smtp_host"`
	SMTPPort     int           `yaml:"smtp_port" env-default:"587"`
	SMTPUser     string        `yaml:"smtp_user"`
	SMTPPassword string        `yaml:"-" env:"SMTP_PASSWORD"`
	SendTimeout  time.Duration `yaml:"send_timeout" env-default:"10s"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// запас на запись в БД и ответ, пока обработчик отправки ждёт письмо
const sendTimeoutMargin = 2 * time.Second

// регистрируется один раз, чтобы cmd/migrator мог добавить свои флаги
var configFlag = flag.String("config", "", "path to config file")

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	if !flag.Parsed() {
		flag.Parse()
	}

	path := *configFlag
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	cfg, err := LoadByPath(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadByPath читает .env (если есть), затем YAML и переменные окружения
func LoadByPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// .env необязателен, уже заданные переменные не перезаписываются
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет сочетания, которые cleanenv проверить не может
func (c *Config) Validate() error {
	switch c.Payment.Provider {
	case PaymentZiina, PaymentStripe:
	default:
		return fmt.Errorf("unknown payment provider %q", c.Payment.Provider)
	}

	switch c.Mail.Provider {
	case MailLog:
	case MailResend:
		if c.Mail.APIKey == "" {
			return fmt.Errorf("MAIL_API_KEY is required for mail provider %q", c.Mail.Provider)
		}
	case MailSMTP:
		if c.Mail.SMTPHost == "" {
			return fmt.Errorf("mail.smtp_host is required for mail provider %q", c.Mail.Provider)
		}
	default:
		return fmt.Errorf("unknown mail provider %q", c.Mail.Provider)
	}

	// отправка заказа ждёт письмо в рамках запроса и должна успеть до WriteTimeout
	if c.Mail.SendTimeout <= 0 || c.Mail.SendTimeout+sendTimeoutMargin > c.HTTPServer.Timeout {
		return fmt.Errorf("mail.send_timeout (%s) must be at least %s below http_server.timeout (%s)",
			c.Mail.SendTimeout, sendTimeoutMargin, c.HTTPServer.Timeout)
	}

	if len(c.Store.Currency) != 3 {
		return fmt.Errorf("store.currency must be an ISO 4217 code, got %q", c.Store.Currency)
	}
	return nil
}
