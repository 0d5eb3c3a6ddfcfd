package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Mode string `mapstructure:"mode"`
	Port int    `mapstructure:"port"`

	// TLS listener served alongside the plain one when cert/key are set.
	TLSPort  int    `mapstructure:"tls_port"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`

	// ServerAddress is the address the media endpoint advertises in its ICE
	// candidates. MEDIA_SERVER_IP overrides it in containerized deployments.
	ServerAddress string `mapstructure:"server_address"`
	Debug         bool   `mapstructure:"debug"`
}

func (c *Config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("tls_port", 8443)
	v.SetDefault("server_address", "127.0.0.1")
	v.SetDefault("debug", false)

	_ = v.BindEnv("server_address", "MEDIA_SERVER_IP")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
