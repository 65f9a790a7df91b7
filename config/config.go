package config

import (
	"strings"

	"github.com/Gobusters/ectoenv"
	"github.com/joho/godotenv"

	"github.com/Ramsey-B/clover/pkg/models"
)

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"clover"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// SQLite
	DatabasePath string `env:"DB_PATH" env-default:"data/clover.db"`

	// Matching
	ReviewSimilarity    float64  `env:"REVIEW_SIMILARITY" env-default:"0.95"`
	AutoMergeSimilarity float64  `env:"AUTO_MERGE_SIMILARITY" env-default:"0.98"`
	FallbackKeyWidth    int      `env:"FALLBACK_KEY_WIDTH" env-default:"2"`
	PhoneRegion         string   `env:"PHONE_REGION" env-default:"US"`
	PhoneStrict         bool     `env:"PHONE_STRICT" env-default:"false"`
	EnabledTiers        []string `env:"ENABLED_TIERS" env-default:"exact,composite,fuzzy,fingerprint"`
}

// Load reads .env (when present) then binds environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Thresholds maps the matching settings onto the engine's threshold set.
func (c *Config) Thresholds() models.Thresholds {
	tiers := make([]models.Tier, 0, len(c.EnabledTiers))
	for _, t := range c.EnabledTiers {
		tiers = append(tiers, models.Tier(strings.TrimSpace(t)))
	}
	return models.Thresholds{
		ReviewSimilarity:    c.ReviewSimilarity,
		AutoMergeSimilarity: c.AutoMergeSimilarity,
		FallbackKeyWidth:    c.FallbackKeyWidth,
		PhoneStrict:         c.PhoneStrict,
		PhoneRegion:         c.PhoneRegion,
		EnabledTiers:        tiers,
	}
}
