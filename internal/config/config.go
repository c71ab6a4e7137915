package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	SearchProviderNewsAPI = "newsapi"
	SearchProviderRSS     = "rss"

	maxConcurrency = 8
	maxResultLimit = 100
	maxTemperature = 2
)

type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	SearchProvider string `env:"SEARCH_PROVIDER" envDefault:"newsapi"`
	NewsAPIKey     string `env:"NEWS_API_KEY"`
	NewsAPIURL     string `env:"NEWS_API_URL"    envDefault:"https://newsapi.org/v2/everything"`
	RSSSearchURL   string `env:"RSS_SEARCH_URL"  envDefault:"https://news.google.com/rss/search"`
	NewsLanguage   string `env:"NEWS_LANGUAGE"   envDefault:"ko"`
	ResultLimit    int    `env:"RESULT_LIMIT"    envDefault:"5"`

	OpenAIAPIKey       string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string  `env:"OPENAI_BASE_URL"`
	OpenAIModel        string  `env:"OPENAI_MODEL"        envDefault:"gpt-3.5-turbo"`
	SummaryLanguage    string  `env:"SUMMARY_LANGUAGE"    envDefault:"Korean"`
	SummaryTemperature float64 `env:"SUMMARY_TEMPERATURE" envDefault:"0.2"`

	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT"   envDefault:"10s"`
	SearchTimeout  time.Duration `env:"SEARCH_TIMEOUT"  envDefault:"15s"`
	SummaryTimeout time.Duration `env:"SUMMARY_TIMEOUT" envDefault:"60s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"2m"`

	Concurrency int    `env:"PIPELINE_CONCURRENCY" envDefault:"1"`
	LogLevel    string `env:"LOG_LEVEL"            envDefault:"info"`
}

// Load reads the optional dotenv files (".env" when none are given) into the
// process environment and parses Config from it. Variables that are already
// set win over the file.
func Load(dotenvPaths ...string) (Config, error) {
	if err := godotenv.Load(dotenvPaths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.SearchProvider {
	case SearchProviderNewsAPI, SearchProviderRSS:
	default:
		errs = append(errs, fmt.Errorf("unknown search provider: %q", c.SearchProvider))
	}

	if c.ResultLimit <= 0 || c.ResultLimit > maxResultLimit {
		errs = append(errs, fmt.Errorf("result limit must be in 1..%d (got %d)", maxResultLimit, c.ResultLimit))
	}

	if c.Concurrency < 1 || c.Concurrency > maxConcurrency {
		errs = append(errs, fmt.Errorf("concurrency must be in 1..%d (got %d)", maxConcurrency, c.Concurrency))
	}

	if c.SummaryTemperature < 0 || c.SummaryTemperature > maxTemperature {
		errs = append(errs, fmt.Errorf("temperature must be in 0..%d (got %v)", maxTemperature, c.SummaryTemperature))
	}

	for name, d := range map[string]time.Duration{
		"fetch timeout":   c.FetchTimeout,
		"search timeout":  c.SearchTimeout,
		"summary timeout": c.SummaryTimeout,
		"request timeout": c.RequestTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive (got %s)", name, d))
		}
	}

	return errors.Join(errs...)
}
