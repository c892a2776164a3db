// Package config 提供 rpncalc 的配置加载
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"yqhp/rpncalc/pkg/logger"
)

// Config represents the complete configuration for rpncalc.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig controls how equation results are rendered.
type OutputConfig struct {
	Format string `yaml:"format" env:"RPN_OUTPUT_FORMAT"` // text, json
	Trace  bool   `yaml:"trace" env:"RPN_OUTPUT_TRACE"`
	Color  bool   `yaml:"color" env:"RPN_OUTPUT_COLOR"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `yaml:"address" env:"RPN_SERVER_ADDRESS"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"RPN_SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"RPN_SERVER_WRITE_TIMEOUT"`
	EnableCORS   bool          `yaml:"enable_cors" env:"RPN_SERVER_ENABLE_CORS"`
	MaxBodyBytes int           `yaml:"max_body_bytes" env:"RPN_SERVER_MAX_BODY_BYTES"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"RPN_LOG_LEVEL"`
	Format     string `yaml:"format" env:"RPN_LOG_FORMAT"`
	Output     string `yaml:"output" env:"RPN_LOG_OUTPUT"`
	FilePath   string `yaml:"file_path" env:"RPN_LOG_FILE_PATH"`
	MaxSize    int    `yaml:"max_size" env:"RPN_LOG_MAX_SIZE"`
	MaxBackups int    `yaml:"max_backups" env:"RPN_LOG_MAX_BACKUPS"`
	MaxAge     int    `yaml:"max_age" env:"RPN_LOG_MAX_AGE"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			EnableCORS:   false,
			MaxBodyBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "console",
			Output:     "stderr",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Logger converts the logging section into a logger.Config.
func (c *Config) Logger() *logger.Config {
	return &logger.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		Output:     c.Logging.Output,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("无效的输出格式: %q (可选 text, json)", c.Output.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("无效的日志级别: %q", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "stderr", "file", "both":
	default:
		return fmt.Errorf("无效的日志输出: %q (可选 stderr, file, both)", c.Logging.Output)
	}
	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		return fmt.Errorf("日志输出为 %s 时必须设置 file_path", c.Logging.Output)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes 必须大于 0")
	}
	return nil
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	configPath string
	cmdArgs    map[string]string
	getenv     func(string) string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		cmdArgs: make(map[string]string),
		getenv:  os.Getenv,
	}
}

// WithConfigPath sets the path to the YAML configuration file.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithCmdArgs sets command-line arguments for configuration override.
// Keys are dot-notation paths such as "output.format".
func (l *Loader) WithCmdArgs(args map[string]string) *Loader {
	l.cmdArgs = args
	return l
}

// WithEnv replaces the environment lookup function.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// Load loads configuration from all sources with proper precedence:
// defaults < YAML file < environment variables < command-line flags
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("从文件加载配置失败: %w", err)
		}
	}

	if err := l.applyEnvToStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("应用环境变量覆盖失败: %w", err)
	}

	for key, value := range l.cmdArgs {
		if err := setConfigValue(cfg, key, value); err != nil {
			return nil, fmt.Errorf("设置配置值 %s 失败: %w", key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}
	return nil
}

// applyEnvToStruct recursively applies environment variables to struct fields.
func (l *Loader) applyEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := l.applyEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envValue := l.getenv(envTag)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("从环境变量 %s 设置字段 %s 失败: %w", envTag, fieldType.Name, err)
		}
	}

	return nil
}

// setConfigValue sets a configuration value by dot-notation path, matching
// yaml tag names.
func setConfigValue(cfg *Config, path, value string) error {
	parts := strings.Split(path, ".")
	v := reflect.ValueOf(cfg).Elem()

	for i, part := range parts {
		field, ok := fieldByYAMLName(v, part)
		if !ok {
			return fmt.Errorf("未知的配置路径: %s", path)
		}

		if i == len(parts)-1 {
			return setFieldValue(field, value)
		}

		if field.Kind() != reflect.Struct {
			return fmt.Errorf("期望 %s 是结构体，实际是 %s", part, field.Kind())
		}
		v = field
	}

	return nil
}

func fieldByYAMLName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("yaml"), ",")[0]
		if tag == name || strings.EqualFold(t.Field(i).Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from a string value.
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("无法设置字段")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("无效的时间格式: %w", err)
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("无效的整数: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("无效的布尔值: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("不支持的字段类型: %s", field.Kind())
	}

	return nil
}

// Serialize serializes the configuration to YAML bytes.
func (c *Config) Serialize() ([]byte, error) {
	return yaml.Marshal(c)
}

// ParseConfig parses a YAML configuration from bytes on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}
