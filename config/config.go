package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ListenConfig for a TCP listener
type ListenConfig struct {
	Host string `mapstructure:"host"`
	Port uint16 `mapstructure:"port"`
}

// String ...
func (c ListenConfig) String() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ListenString for net.Listen / http.Server
func (c ListenConfig) ListenString() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ServerConfig for configuring HTTP server
type ServerConfig struct {
	HTTP ListenConfig `mapstructure:"http"`
}

// LogConfig for configuring zap
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Production bool   `mapstructure:"production"`
}

// AuthConfig for verifying bearer tokens from the identity provider
type AuthConfig struct {
	HMACSecret string `mapstructure:"hmac_secret"`
	Issuer     string `mapstructure:"issuer"`
}

// OtelConfig for configuring the OTLP trace exporter
type OtelConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// Config for configuring the whole server
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	Log    LogConfig    `mapstructure:"log"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Otel   OtelConfig   `mapstructure:"otel"`
}

func loadConfigFile(file string) Config {
	vip := viper.New()
	vip.SetConfigFile(file)
	vip.SetEnvPrefix("journal")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	err := vip.ReadInConfig()
	if err != nil {
		panic(err)
	}

	var conf Config
	err = vip.Unmarshal(&conf)
	if err != nil {
		panic(err)
	}
	return conf
}

// Load reads config.yml from the working directory
func Load() Config {
	return loadConfigFile("config.yml")
}

// LoadTestConfig reads config_test.yml from the repository root
func LoadTestConfig(rootDir string) Config {
	return loadConfigFile(path.Join(rootDir, "config_test.yml"))
}

// NewLogger creates a zap logger from config
func NewLogger(conf LogConfig) *zap.Logger {
	level := zap.InfoLevel
	if conf.Level != "" {
		err := level.Set(conf.Level)
		if err != nil {
			panic(err)
		}
	}

	var cfg zap.Config
	if conf.Production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
