package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Models          ModelsConfig    `yaml:"models"`
	S3              S3Config        `yaml:"s3"`
	ImageProcessing ImageProcConfig `yaml:"image_processing"`
	App             AppSpecific     `yaml:"app"`
	Server          ServerConfig    `yaml:"server"`
	Auth            AuthConfig      `yaml:"auth"`
	Store           StoreConfig     `yaml:"store"`
	Flows           FlowsConfig     `yaml:"flows"`
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultVision string              `yaml:"default_vision"` // Алиас для disease_detection (нужна vision модель)
	DefaultChat   string              `yaml:"default_chat"`   // Алиас для остальных flow
	Definitions   map[string]ModelDef `yaml:"definitions"`    // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "zai", "deepseek", "googleai"
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`   // Для OpenAI-совместимых провайдеров
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`    // Go умеет парсить строки вида "60s", "1m"
	RateLimit   int           `yaml:"rate_limit"` // Запросов в минуту, 0 = без ограничения
	BurstLimit  int           `yaml:"burst_limit"`
}

// S3Config — настройки объектного хранилища (документы заявок).
type S3Config struct {
	Endpoint      string        `yaml:"endpoint"`
	Region        string        `yaml:"region"`
	Bucket        string        `yaml:"bucket"`
	AccessKey     string        `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey     string        `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL        bool          `yaml:"use_ssl"`
	PublicBaseURL string        `yaml:"public_base_url"` // Если задан — URL документа строится от него
	URLExpiry     time.Duration `yaml:"url_expiry"`      // Срок presigned URL, если public_base_url пуст
}

// ImageProcConfig — настройки обработки фото листьев перед vision моделью.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug           bool   `yaml:"debug"`
	LogLevel        string `yaml:"log_level"`
	LogFile         string `yaml:"log_file"`
	DefaultLanguage string `yaml:"default_language"`
	TraceStdout     bool   `yaml:"trace_stdout"` // Печатать OpenTelemetry спаны в stdout
}

// ServerConfig — HTTP шлюз.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// AuthConfig — проверка JWT сессий.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"` // Поддерживает ${VAR}
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// StoreConfig — документное хранилище заявок.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" или "postgres"
	DSN    string `yaml:"dsn"`
}

// FlowsConfig — параметры исполнения flow.
type FlowsConfig struct {
	MaxToolIterations int                   `yaml:"max_tool_iterations"`
	GenerationTimeout time.Duration         `yaml:"generation_timeout"`
	Overrides         map[string]FlowConfig `yaml:"overrides"`
}

// FlowConfig — переопределения для конкретного flow.
type FlowConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// LoadEnvFiles подгружает .env файлы в окружение процесса.
//
// Отсутствующие файлы пропускаются; уже заданные переменные не перезаписываются.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(rawBytes)
}

// Parse разбирает YAML из памяти (ENV подстановка, дефолты, валидация).
func Parse(raw []byte) (*AppConfig, error) {
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(raw))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults заполняет незаданные поля.
func (c *AppConfig) applyDefaults() {
	c.Server = c.Server.GetDefaults()
	c.Flows = c.Flows.GetDefaults()

	if c.App.DefaultLanguage == "" {
		c.App.DefaultLanguage = "English"
	}
	if c.ImageProcessing.Quality == 0 {
		c.ImageProcessing.Quality = 85
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Driver == "sqlite" && c.Store.DSN == "" {
		c.Store.DSN = filepath.Join("data", "agriai.db")
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "agriai"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.S3.URLExpiry == 0 {
		c.S3.URLExpiry = 7 * 24 * time.Hour
	}
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (s ServerConfig) GetDefaults() ServerConfig {
	result := s

	if result.Addr == "" {
		result.Addr = ":8080"
	}
	if result.ReadTimeout == 0 {
		result.ReadTimeout = 15 * time.Second
	}
	if result.WriteTimeout == 0 {
		result.WriteTimeout = 90 * time.Second // генерация может идти до минуты
	}
	if result.ShutdownTimeout == 0 {
		result.ShutdownTimeout = 30 * time.Second
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = 10 << 20
	}
	return result
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (f FlowsConfig) GetDefaults() FlowsConfig {
	result := f

	if result.MaxToolIterations == 0 {
		result.MaxToolIterations = 5
	}
	if result.GenerationTimeout == 0 {
		result.GenerationTimeout = 60 * time.Second
	}
	if result.Overrides == nil {
		result.Overrides = map[string]FlowConfig{}
	}
	return result
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if len(c.Models.Definitions) == 0 {
		return fmt.Errorf("models.definitions must define at least one model")
	}
	if c.Models.DefaultChat == "" {
		return fmt.Errorf("models.default_chat is required")
	}
	if _, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
		return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
	}
	if c.Models.DefaultVision != "" {
		if _, ok := c.Models.Definitions[c.Models.DefaultVision]; !ok {
			return fmt.Errorf("default_vision model '%s' is not defined in definitions", c.Models.DefaultVision)
		}
	}
	for name, override := range c.Flows.Overrides {
		if override.Model == "" {
			continue
		}
		if _, ok := c.Models.Definitions[override.Model]; !ok {
			return fmt.Errorf("flows.overrides.%s: model '%s' is not defined", name, override.Model)
		}
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver must be sqlite or postgres, got '%s'", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required")
	}
	if c.Flows.MaxToolIterations < 0 {
		return fmt.Errorf("flows.max_tool_iterations must not be negative")
	}
	return nil
}

// Helper методы для удобства доступа (Syntactic sugar)

// GetVisionModel возвращает имя vision модели; при отсутствии — чат модель.
func (c *AppConfig) GetVisionModel() string {
	if c.Models.DefaultVision != "" {
		return c.Models.DefaultVision
	}
	return c.Models.DefaultChat
}

// S3Enabled сообщает, настроено ли объектное хранилище.
func (c *AppConfig) S3Enabled() bool {
	return c.S3.Endpoint != "" && c.S3.Bucket != ""
}

// FindConfigPath ищет config.yaml: флаг, текущая директория, директория бинарника.
func FindConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "config.yaml"
}
