// Package config собирает настройки клиента из .env, окружения и флагов.
// Приоритет: флаг, затем переменная окружения, затем значение по умолчанию.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Бэкенды хранилища клиентского состояния.
const (
	StoreMemory   = "memory"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

const (
	DefaultAPIURL        = "http://localhost:8080"
	DefaultProfile       = "default"
	DefaultSessionCookie = "JSESSIONID"
	DefaultTimeout       = 5 * time.Second
	DefaultPageSize      = 9
)

type Config struct {
	APIURL        string
	Store         string
	DataDir       string
	Profile       string
	DatabaseURL   string
	SessionCookie string
	Timeout       time.Duration
	PageSize      int
	Debug         bool
}

// LoadEnv подгружает переменные из файлов .env. Отсутствующий файл не ошибка.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv читает настройки из окружения.
func FromEnv() (Config, error) {
	cfg := Config{
		APIURL:        getEnv("BLOG_API_URL", DefaultAPIURL),
		Store:         getEnv("BLOG_STORE", StoreBolt),
		DataDir:       getEnv("BLOG_DATA_DIR", defaultDataDir()),
		Profile:       getEnv("BLOG_PROFILE", DefaultProfile),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SessionCookie: getEnv("BLOG_SESSION_COOKIE", DefaultSessionCookie),
		Timeout:       DefaultTimeout,
		PageSize:      DefaultPageSize,
	}

	var err error
	if v := os.Getenv("BLOG_TIMEOUT"); v != "" {
		if cfg.Timeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("config: BLOG_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("BLOG_PAGE_SIZE"); v != "" {
		if cfg.PageSize, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("config: BLOG_PAGE_SIZE: %w", err)
		}
	}
	if v := os.Getenv("BLOG_DEBUG"); v != "" {
		if cfg.Debug, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("config: BLOG_DEBUG: %w", err)
		}
	}
	return cfg, nil
}

// RegisterFlags привязывает поля к флагам; текущие значения становятся значениями по умолчанию.
func (c *Config) RegisterFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.APIURL, "api", c.APIURL, "blog backend base URL")
	flags.StringVar(&c.Store, "store", c.Store, "client state storage (memory, bolt or postgres)")
	flags.StringVar(&c.DataDir, "data-dir", c.DataDir, "directory for the bolt file and the log")
	flags.StringVar(&c.Profile, "profile", c.Profile, "client state profile")
	flags.DurationVar(&c.Timeout, "timeout", c.Timeout, "backend request timeout")
	flags.IntVar(&c.PageSize, "page-size", c.PageSize, "posts per board page")
	flags.BoolVar(&c.Debug, "debug", c.Debug, "log debug messages")
}

// Load читает окружение и разбирает args. Возвращает оставшиеся аргументы.
func Load(name string, args []string, output io.Writer) (Config, []string, error) {
	cfg, err := FromEnv()
	if err != nil {
		return cfg, nil, err
	}
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)
	cfg.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return cfg, nil, err
	}
	return cfg, flags.Args(), cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreBolt:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set for postgres storage")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page size must be positive, got %d", c.PageSize)
	}
	if strings.TrimSpace(c.Profile) == "" {
		return errors.New("config: profile is empty")
	}
	return nil
}

// BoltPath - файл bolt внутри каталога данных.
func (c Config) BoltPath() string { return filepath.Join(c.DataDir, "blogfront.db") }

// LogPath - файл лога терминального интерфейса.
func (c Config) LogPath() string { return filepath.Join(c.DataDir, "blogfront.log") }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".blogfront"
	}
	return filepath.Join(dir, "blogfront")
}
