package config

import (
	"flag"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Address     string `env:"ADDRESS"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"` // только для флага Secure у cookie; TLS терминирует прокси

	// Хранилище
	Storage     string `env:"STORAGE"` // json | sqlite | postgres
	DatabaseDSN string `env:"DATABASE_URI"`
	DataDir     string `env:"DATA_DIR"`
	UploadDir   string `env:"UPLOAD_DIR"`
	UploadMaxMB int    `env:"UPLOAD_MAX_MB"`

	// Сессии и администратор
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL"`
	AdminUsername string        `env:"ADMIN_USERNAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги берут значение из env как умолчание
	flag.StringVar(&cfg.Address, "a", cfg.Address, "адрес HTTP-сервера host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "ставить Secure у session cookie")
	flag.StringVar(&cfg.Storage, "storage", cfg.Storage, "бэкенд хранилища: json, sqlite, postgres")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "каталог с data.json и users.json")
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "каталог загруженных файлов")
	flag.IntVar(&cfg.UploadMaxMB, "upload-max-mb", cfg.UploadMaxMB, "максимальный размер формы с файлами, МБ")
	flag.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "секрет для подписи cookie сессии")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "окно неактивности сессии")
	flag.StringVar(&cfg.AdminUsername, "admin-user", cfg.AdminUsername, "логин администратора")
	flag.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "пароль администратора при первом запуске")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if !hostPortRe.MatchString(c.Address) {
		c.Address = "localhost:3000"
	}
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case "json", "sqlite", "postgres":
	default:
		c.Storage = "json"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.UploadMaxMB <= 0 {
		c.UploadMaxMB = 20
	}
	if c.SessionSecret == "" {
		c.SessionSecret = "dev-secret-key"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = time.Hour
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.AdminPassword == "" {
		c.AdminPassword = "admin123"
	}
}
