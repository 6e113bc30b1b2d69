package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"` // empty disables the cross-instance bridge
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Channel  string `yaml:"channel"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // hours
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		TemplatesDir string `yaml:"templates_dir"`
	} `yaml:"email"`

	SMS struct {
		AccountSID string `yaml:"account_sid"`
		AuthToken  string `yaml:"auth_token"`
		FromNumber string `yaml:"from_number"`
	} `yaml:"sms"`

	Push struct {
		VAPIDPublicKey  string `yaml:"vapid_public_key"`
		VAPIDPrivateKey string `yaml:"vapid_private_key"`
		Subscriber      string `yaml:"subscriber"` // mailto: contact for the push service
	} `yaml:"push"`

	Websocket struct {
		SendBuffer int `yaml:"send_buffer"`
	} `yaml:"websocket"`

	Retention struct {
		Days          int `yaml:"days"`           // purge read notifications older than this
		IntervalHours int `yaml:"interval_hours"` // how often the purge worker runs
	} `yaml:"retention"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, or builds the config from environment
// variables when DATABASE_URL is set (tests, containers).
func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = envOr("SERVER_ENV", "development")
	cfg.Server.Host = envOr("SERVER_HOST", "0.0.0.0")
	cfg.Server.Port = envIntOr("SERVER_PORT", 8080)
	cfg.JWT.Secret = envOr("JWT_SECRET", "")
	cfg.JWT.TTL = envIntOr("JWT_TTL", 24)
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Channel = envOr("REDIS_CHANNEL", "dealercrm:notifications")
	cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.Email.SMTPPort = envIntOr("SMTP_PORT", 587)
	cfg.Email.SMTPUsername = os.Getenv("SMTP_USER")
	cfg.Email.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.Email.FromEmail = os.Getenv("SMTP_FROM")
	cfg.Email.FromName = envOr("SMTP_FROM_NAME", "Dealer CRM")
	cfg.Email.TemplatesDir = envOr("EMAIL_TEMPLATES_DIR", "templates/email")
	cfg.SMS.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.SMS.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.SMS.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	cfg.Push.VAPIDPublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	cfg.Push.VAPIDPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	cfg.Push.Subscriber = os.Getenv("VAPID_SUBSCRIBER")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func applyDefaults(cfg *Config) {
	if cfg.Websocket.SendBuffer <= 0 {
		cfg.Websocket.SendBuffer = 256
	}
	if cfg.Retention.Days <= 0 {
		cfg.Retention.Days = 30
	}
	if cfg.Retention.IntervalHours <= 0 {
		cfg.Retention.IntervalHours = 6
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "dealercrm:notifications"
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
