package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"review-metrics/internal/apperrors"
	"review-metrics/internal/domain"
	"review-metrics/internal/validation"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	Input      Input            `yaml:"input"`
	Periods    []PeriodConfig   `yaml:"periods" validate:"min=1,dive"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Importance ImportanceConfig `yaml:"importance"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type Input struct {
	PullRequestsPath string `yaml:"pull_requests_path" env:"PULL_REQUESTS_PATH"`
	EventsPath       string `yaml:"events_path" env:"EVENTS_PATH"`
	MaintainersPath  string `yaml:"maintainers_path" env:"MAINTAINERS_PATH"`
	OutputPath       string `yaml:"output_path" env:"OUTPUT_PATH"`
}

// PeriodConfig defines one era: a half-open interval with the review
// expectations that were in force during it.
type PeriodConfig struct {
	Name                   string    `yaml:"name" validate:"required"`
	Start                  time.Time `yaml:"start"`
	End                    time.Time `yaml:"end"`
	ZeroReviewThreshold    float64   `yaml:"zero_review_threshold" validate:"fraction"`
	FormalReviewsAvailable bool      `yaml:"formal_reviews_available"`
}

// ScoringConfig is the full quality-weighting table. Every cutoff and score is
// exposed so that aggregates can be recomputed under alternate tables for
// sensitivity analysis.
type ScoringConfig struct {
	Formal   FormalScoring   `yaml:"formal"`
	Ack      AckScoring      `yaml:"ack"`
	Freeform FreeformScoring `yaml:"freeform"`

	// Bounds used by the aggregator's timeline suppression: an event at or
	// above SubstantialMin counts as a substantial review, an event at or
	// below AckMax as a completion-style ACK.
	SubstantialMin float64 `yaml:"substantial_min" validate:"fraction"`
	AckMax         float64 `yaml:"ack_max" validate:"fraction"`
}

type FormalScoring struct {
	LongBodyChars    int     `yaml:"long_body_chars" validate:"gte=0"`
	ShortBodyChars   int     `yaml:"short_body_chars" validate:"gte=0"`
	LongScore        float64 `yaml:"long_score" validate:"fraction"`
	MediumScore      float64 `yaml:"medium_score" validate:"fraction"`
	ShortScore       float64 `yaml:"short_score" validate:"fraction"`
	RubberStampScore float64 `yaml:"rubber_stamp_score" validate:"fraction"`
}

type AckScoring struct {
	DetailedChars int     `yaml:"detailed_chars" validate:"gte=0"`
	StandardChars int     `yaml:"standard_chars" validate:"gte=0"`
	DetailedScore float64 `yaml:"detailed_score" validate:"fraction"`
	StandardScore float64 `yaml:"standard_score" validate:"fraction"`
	HashRefScore  float64 `yaml:"hash_ref_score" validate:"fraction"`
	BareScore     float64 `yaml:"bare_score" validate:"fraction"`
}

// FreeformScoring covers IRC and mailing-list messages. The cited cutoffs in
// the source findings disagree with each other, so these defaults are chosen
// midpoints and meant to be overridden per analysis run.
type FreeformScoring struct {
	SubstantiveChars int      `yaml:"substantive_chars" validate:"gte=0"`
	DetailedChars    int      `yaml:"detailed_chars" validate:"gte=0"`
	ReviewKeywords   []string `yaml:"review_keywords"`

	MaintainerLongScore    float64 `yaml:"maintainer_long_score" validate:"fraction"`
	MaintainerKeywordScore float64 `yaml:"maintainer_keyword_score" validate:"fraction"`
	KeywordScore           float64 `yaml:"keyword_score" validate:"fraction"`
	DetailedScore          float64 `yaml:"detailed_score" validate:"fraction"`
	FloorScore             float64 `yaml:"floor_score" validate:"fraction"`
}

type ImportanceConfig struct {
	CriticalPaths    []string `yaml:"critical_paths"`
	CriticalKeywords []string `yaml:"critical_keywords"`

	CriticalChurn int `yaml:"critical_churn" validate:"gt=0"`
	HighChurn     int `yaml:"high_churn" validate:"gt=0"`
	NormalChurn   int `yaml:"normal_churn" validate:"gt=0"`
	LowChurn      int `yaml:"low_churn" validate:"gt=0"`
}

type MetricsConfig struct {
	TopN []int `yaml:"top_n" validate:"dive,gt=0"`
}

// Default returns the documented default configuration: two eras split at the
// launch of the platform's formal review feature, with the thresholds and
// scoring table described in the findings.
func Default() *Config {
	return &Config{
		Env: "local",
		Periods: []PeriodConfig{
			{
				Name:                   "pre-formal-review",
				Start:                  time.Time{},
				End:                    time.Date(2016, 12, 1, 0, 0, 0, 0, time.UTC),
				ZeroReviewThreshold:    0.3,
				FormalReviewsAvailable: false,
			},
			{
				Name:                   "formal-review",
				Start:                  time.Date(2016, 12, 1, 0, 0, 0, 0, time.UTC),
				ZeroReviewThreshold:    0.5,
				FormalReviewsAvailable: true,
			},
		},
		Scoring: ScoringConfig{
			Formal: FormalScoring{
				LongBodyChars:    50,
				ShortBodyChars:   10,
				LongScore:        1.0,
				MediumScore:      0.8,
				ShortScore:       0.7,
				RubberStampScore: 0.5,
			},
			Ack: AckScoring{
				DetailedChars: 100,
				StandardChars: 20,
				DetailedScore: 0.5,
				StandardScore: 0.4,
				HashRefScore:  0.3,
				BareScore:     0.2,
			},
			Freeform: FreeformScoring{
				SubstantiveChars: 200,
				DetailedChars:    100,
				ReviewKeywords: []string{
					"utack", "tested", "reviewed", "concept ack", "looks good", "lgtm",
				},
				MaintainerLongScore:    1.0,
				MaintainerKeywordScore: 0.7,
				KeywordScore:           0.5,
				DetailedScore:          0.4,
				FloorScore:             0.2,
			},
			SubstantialMin: 0.7,
			AckMax:         0.3,
		},
		Importance: ImportanceConfig{
			CriticalPaths: []string{
				"src/consensus/", "src/validation.", "src/script/",
			},
			CriticalKeywords: []string{
				"consensus", "hardfork", "soft fork", "security", "cve",
			},
			CriticalChurn: 500,
			HighChurn:     200,
			NormalChurn:   50,
			LowChurn:      10,
		},
		Metrics: MetricsConfig{
			TopN: []int{1, 3, 5},
		},
	}
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	cfg := Default()
	if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}

// Validate checks tag-level constraints plus the structural invariants the
// tags cannot express: periods must be sorted, non-overlapping, and the churn
// bands must be strictly descending.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}

	for i := 1; i < len(c.Periods); i++ {
		prev, cur := c.Periods[i-1], c.Periods[i]

		if prev.End.IsZero() {
			return fmt.Errorf(
				"%w: period '%s' is unbounded but not last", apperrors.ErrInvalidConfig, prev.Name,
			)
		}

		if cur.Start.Before(prev.End) {
			return fmt.Errorf(
				"%w: period '%s' overlaps '%s'", apperrors.ErrInvalidConfig, cur.Name, prev.Name,
			)
		}
	}

	imp := c.Importance
	if !(imp.CriticalChurn > imp.HighChurn && imp.HighChurn > imp.NormalChurn && imp.NormalChurn > imp.LowChurn) {
		return fmt.Errorf("%w: importance churn bands must be strictly descending", apperrors.ErrInvalidConfig)
	}

	if c.Scoring.AckMax > c.Scoring.SubstantialMin {
		return fmt.Errorf("%w: ack_max cannot exceed substantial_min", apperrors.ErrInvalidConfig)
	}

	return nil
}

// DomainPeriods converts the configured periods into domain values, in order.
func (c *Config) DomainPeriods() []domain.Period {
	periods := make([]domain.Period, len(c.Periods))
	for i, p := range c.Periods {
		periods[i] = domain.Period{
			Name:                   p.Name,
			Start:                  p.Start,
			End:                    p.End,
			ZeroReviewThreshold:    p.ZeroReviewThreshold,
			FormalReviewsAvailable: p.FormalReviewsAvailable,
		}
	}

	return periods
}
