// Управление конфигурацией сервиса экспорта из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений в логах.
//   - Значения по умолчанию и ограничения для лимитов загрузки ассетов.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"
)

type Config struct {
	WebURLRaw string `env:"WEB_URL"`
	WebURL    *url.URL

	ServerAddr  string `env:"SERVER_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`
	BodyLimit   string `env:"BODY_LIMIT"`

	AWSAccessKey  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpoint   string `env:"AWS_S3_ENDPOINT_URL"`
	AWSBucketName string `env:"AWS_S3_BUCKET_NAME"`
	AWSUseSSL     bool   `env:"AWS_S3_USE_SSL"`
	StorageDir    string `env:"STORAGE_DIR"`

	ExportTTLHours  int `env:"EXPORT_TTL_HOURS"`
	AssetTimeoutSec int `env:"ASSET_TIMEOUT_SEC"`
	AssetMaxBytes   int `env:"ASSET_MAX_BYTES"`
	AssetMaxWidth   int `env:"ASSET_MAX_WIDTH"`

	PDFFontDir  string `env:"PDF_FONT_DIR"`
	ClassPrefix string `env:"CLASS_PREFIX"`

	MCPEnable     bool `env:"MCP_ENABLE"`
	SwaggerEnable bool `env:"SWAGGER"`
}

// ReadConfig загружает конфигурацию из переменных окружения. При некорректном WEB_URL
// приложение завершает работу с ошибкой.
func ReadConfig() *Config {
	config, err := Parse()
	if err != nil {
		slog.Error("Read config", "err", err)
		os.Exit(1)
	}
	return config
}

// Parse загружает конфигурацию и применяет значения по умолчанию.
func Parse() (*Config, error) {
	config := &Config{}

	envConfig("env", config)

	if config.WebURLRaw != "" {
		var err error
		config.WebURL, err = url.Parse(config.WebURLRaw)
		if err != nil {
			return nil, fmt.Errorf("WEB_URL incorrect: %w", err)
		}
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":2112"
	}
	if c.BodyLimit == "" {
		c.BodyLimit = "10M"
	}
	if c.ExportTTLHours <= 0 {
		c.ExportTTLHours = 24
	}
	if c.AssetTimeoutSec <= 0 || c.AssetTimeoutSec > 120 {
		c.AssetTimeoutSec = 10
	}
	if c.AssetMaxBytes <= 0 {
		c.AssetMaxBytes = 10 << 20
	}
	if c.AssetMaxWidth <= 0 {
		c.AssetMaxWidth = 1600
	}
}

// S3Enabled сообщает, что настроено объектное хранилище.
func (c *Config) S3Enabled() bool {
	return c.AWSEndpoint != "" && c.AWSBucketName != ""
}

// StorageEnabled сообщает, что артефакты экспорта можно сохранять: в объектное хранилище или в каталог.
func (c *Config) StorageEnabled() bool {
	return c.S3Enabled() || c.StorageDir != ""
}

// ExportTTL время жизни сохраненных артефактов.
func (c *Config) ExportTTL() time.Duration {
	return time.Duration(c.ExportTTLHours) * time.Hour
}

// AssetTimeout таймаут загрузки одного ассета.
func (c *Config) AssetTimeout() time.Duration {
	return time.Duration(c.AssetTimeoutSec) * time.Second
}

// envConfig заполняет поля структуры по тегу key. Значения, которые не удалось привести к типу поля,
// пропускаются, и для поля остается значение по умолчанию.
func envConfig(key string, s any) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := typeParam.Field(i)
		name := field.Tag.Get(key)
		if name == "" {
			continue
		}
		value, ok := lookupEnv(name)
		if !ok {
			continue
		}

		if err := setField(v.Field(i), value); err != nil {
			slog.Warn("Skip config value", "env", name, "err", err)
			continue
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+field.Name),
			slog.String("value", maskValue(field.Name, value)),
			slog.String("source", "ENVIRONMENT"),
		)
	}
}

// maskValue скрывает секреты в логах, оставляя первый и последний символ.
func maskValue(field, value string) string {
	name := strings.ToLower(field)
	if !strings.Contains(name, "pass") && !strings.Contains(name, "secret") && !strings.Contains(name, "token") {
		return value
	}
	runes := []rune(value)
	if len(runes) < 3 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
