// internal/config/config.go
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Weights struct {
	TitleNoun   float64 `yaml:"title_noun"`
	TitleProper float64 `yaml:"title_proper"`
	TitlePhrase float64 `yaml:"title_phrase"`
	Base        float64 `yaml:"base"`
}

type Config struct {
	App struct {
		DataDir  string `yaml:"data_dir"`
		Port     int    `yaml:"port"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Etsy struct {
		BaseURL           string  `yaml:"base_url"`
		PageLimit         int     `yaml:"page_limit"`
		MaxPages          int     `yaml:"max_pages"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		MaxRetries        int     `yaml:"max_retries"`
		ShopConcurrency   int     `yaml:"shop_concurrency"`
	} `yaml:"etsy"`

	Cache struct {
		Enabled    bool `yaml:"enabled"`
		TTLMinutes int  `yaml:"ttl_minutes"`
	} `yaml:"cache"`

	Analysis struct {
		MinScore    float64  `yaml:"min_score"`
		ExtraBanned []string `yaml:"extra_banned"`
		Weights     Weights  `yaml:"weights"`
	} `yaml:"analysis"`

	Output struct {
		Top   int `yaml:"top"`
		Width int `yaml:"width"`
	} `yaml:"output"`
}

func Default() Config {
	var cfg Config

	cfg.App.DataDir = "."
	cfg.App.Port = 38471
	cfg.App.LogLevel = "info"

	cfg.Etsy.BaseURL = "https://openapi.etsy.com/v3/application"
	cfg.Etsy.PageLimit = 100
	cfg.Etsy.MaxPages = 200
	cfg.Etsy.RequestsPerSecond = 5
	cfg.Etsy.Burst = 5
	cfg.Etsy.TimeoutSeconds = 20
	cfg.Etsy.MaxRetries = 3
	cfg.Etsy.ShopConcurrency = 4

	cfg.Cache.Enabled = false
	cfg.Cache.TTLMinutes = 60

	cfg.Analysis.MinScore = 50
	cfg.Analysis.Weights = Weights{TitleNoun: 100, TitleProper: 50, TitlePhrase: 300, Base: 1}

	cfg.Output.Top = 5
	cfg.Output.Width = 30
	return cfg
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// LoadOptional is Load, except a missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
