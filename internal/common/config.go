package common

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Text     TextConfig     `mapstructure:"text"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"`
	DSN              string        `mapstructure:"dsn"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	MaxConnLifetime  time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// TextConfig controls how page text is pulled out of documents.
type TextConfig struct {
	Method      string `mapstructure:"method"`
	PdfToText   string `mapstructure:"pdftotext_path"`
	PdfToPpm    string `mapstructure:"pdftoppm_path"`
	Tesseract   string `mapstructure:"tesseract_path"`
	OCRFallback bool   `mapstructure:"ocr_fallback"`
	OCRLanguage string `mapstructure:"ocr_language"`
	DPI         int    `mapstructure:"dpi"`
	MaxPages    int    `mapstructure:"max_pages"`
	TessdataDir string `mapstructure:"tessdata_dir"`
}

// BatchConfig holds batch processing configuration
type BatchConfig struct {
	Workers    int  `mapstructure:"workers"`
	SkipHidden bool `mapstructure:"skip_hidden"`
}

// ExportConfig controls where and how tables are written.
type ExportConfig struct {
	Dir       string `mapstructure:"dir"`
	BaseName  string `mapstructure:"base_name"`
	SheetName string `mapstructure:"sheet_name"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Supported values for DatabaseConfig.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// LoadConfig reads configuration from an optional config.yaml and FATURAS_* environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FATURAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "file:faturas.db")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))
	v.SetDefault("text.method", "auto")
	v.SetDefault("text.pdftotext_path", "pdftotext")
	v.SetDefault("text.pdftoppm_path", "pdftoppm")
	v.SetDefault("text.tesseract_path", "tesseract")
	v.SetDefault("text.ocr_fallback", true)
	v.SetDefault("text.ocr_language", "por")
	v.SetDefault("text.dpi", 300)
	v.SetDefault("text.max_pages", 10)
	v.SetDefault("text.tessdata_dir", "")
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.skip_hidden", true)
	v.SetDefault("export.dir", "saida")
	v.SetDefault("export.base_name", "extracao_faturas")
	v.SetDefault("export.sheet_name", "Extracao")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, WrapError(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, WrapError(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("database.driver", c.Database.Driver, Required, OneOf(DriverSQLite, DriverPostgres)).
		Field("database.dsn", c.Database.DSN, Required).
		Field("text.method", c.Text.Method, OneOf("auto", "pdftotext", "native")).
		Field("text.dpi", c.Text.DPI, Positive).
		Field("batch.workers", c.Batch.Workers, Positive).
		Field("export.sheet_name", c.Export.SheetName, Required, MaxLength(31)).
		Field("log.format", c.Log.Format, OneOf("json", "text"))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
