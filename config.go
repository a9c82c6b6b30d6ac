package aientity

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultModel       = "gpt-3.5-turbo"
	DefaultEndpoint    = "https://api.openai.com/v1/chat/completions"
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
)

// Config holds the model settings resolved once per descriptor.
type Config struct {
	Model       string        `mapstructure:"model"`
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the built-in defaults with no credential.
func DefaultConfig() Config {
	return Config{
		Model:       DefaultModel,
		Endpoint:    DefaultEndpoint,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// envBindings maps config keys to the environment variables overriding them.
var envBindings = map[string]string{
	"model":       "OPENAI_MODEL",
	"endpoint":    "OPENAI_API_URL",
	"api_key":     "OPENAI_API_KEY",
	"temperature": "OPENAI_TEMPERATURE",
	"timeout":     "OPENAI_TIMEOUT",
}

// ConfigOption configures LoadConfig.
type ConfigOption func(*configSources)

type configSources struct {
	configFile string
	envFile    string
}

// WithConfigFile reads settings from a YAML, JSON or TOML file. Environment
// variables still take precedence.
func WithConfigFile(path string) ConfigOption {
	return func(s *configSources) { s.configFile = path }
}

// WithEnvFile loads a .env file before reading the environment. Variables
// already set in the process are not overwritten.
func WithEnvFile(path string) ConfigOption {
	return func(s *configSources) { s.envFile = path }
}

// LoadConfig resolves Config from defaults, an optional file and the
// environment, in increasing order of precedence.
func LoadConfig(opts ...ConfigOption) (Config, error) {
	var src configSources
	for _, opt := range opts {
		opt(&src)
	}

	if src.envFile != "" {
		if err := godotenv.Load(src.envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", src.envFile, err)
		}
	}

	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("model", def.Model)
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("api_key", "")
	v.SetDefault("temperature", def.Temperature)
	v.SetDefault("timeout", def.Timeout)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if src.configFile != "" {
		v.SetConfigFile(src.configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", src.configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v must be between 0.0 and 2.0", c.Temperature)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %v must not be negative", c.Timeout)
	}
	return nil
}
