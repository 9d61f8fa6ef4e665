package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Paging  PagingConfig  `mapstructure:"paging"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL        string `mapstructure:"baseUrl"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type PagingConfig struct {
	PageSize    int `mapstructure:"pageSize"`
	InitialLoad int `mapstructure:"initialLoad"`
}

type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads appsettings.yaml from path. Missing file is not an error;
// defaults cover local use against a dev backend.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")

	v.SetDefault("api.baseUrl", "http://localhost:8080")
	v.SetDefault("api.timeoutSeconds", 15)
	v.SetDefault("paging.pageSize", 20)
	v.SetDefault("paging.initialLoad", 40)
	v.SetDefault("storage.bucket", "grveyard-assets")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
