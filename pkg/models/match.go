package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Tier identifies the detection tier that produced a match edge
type Tier string

const (
	// TierExact matches on a shared normalized contact-point value
	TierExact Tier = "exact"
	// TierComposite matches on normalized name + job title, all required
	TierComposite Tier = "composite"
	// TierFuzzy matches on blocked full-name similarity above a threshold
	TierFuzzy Tier = "fuzzy"
	// TierFingerprint matches on equal token-sorted name fingerprints
	TierFingerprint Tier = "fingerprint"
)

// AllTiers returns every tier in increasing cost order.
func AllTiers() []Tier {
	return []Tier{TierExact, TierComposite, TierFuzzy, TierFingerprint}
}

func validTier(t Tier) bool {
	switch t {
	case TierExact, TierComposite, TierFuzzy, TierFingerprint:
		return true
	}
	return false
}

// MatchEdge is evidence that two contacts denote the same person. The pair is
// unordered; A/B are stored with A < B so the same pair always compares equal.
// Exact tiers carry score 1.0; the fuzzy tier carries its similarity score.
type MatchEdge struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Tier       Tier    `json:"tier"`
	Score      float64 `json:"score"`
	MatchValue string  `json:"match_value,omitempty"`
}

// NewMatchEdge builds an edge with the pair in canonical order.
func NewMatchEdge(a, b string, tier Tier, score float64, matchValue string) MatchEdge {
	if b < a {
		a, b = b, a
	}
	return MatchEdge{A: a, B: b, Tier: tier, Score: score, MatchValue: matchValue}
}

// PairKey returns the canonical "a\x1fb" key for the edge's pair.
func (e MatchEdge) PairKey() string {
	return e.A + "\x1f" + e.B
}

// Thresholds is the immutable per-run configuration for edge building. Each
// run is fully parameterized by its inputs; there is no global state.
type Thresholds struct {
	// ReviewSimilarity is the fuzzy cutoff for proposing matches for review.
	ReviewSimilarity float64 `json:"review_similarity" validate:"gte=0,lte=1"`
	// AutoMergeSimilarity is the stricter cutoff applied before unattended merges.
	AutoMergeSimilarity float64 `json:"auto_merge_similarity" validate:"gte=0,lte=1"`
	// FallbackKeyWidth is the uppercased-prefix width used as a blocking key
	// when the phonetic algorithm cannot encode a name.
	FallbackKeyWidth int `json:"fallback_key_width" validate:"gte=1"`
	// PhoneStrict normalizes unparsable phone numbers to empty (no signal)
	// instead of falling back to digits-only.
	PhoneStrict bool `json:"phone_strict"`
	// PhoneRegion is the region hint for E.164 parsing, e.g. "US".
	PhoneRegion string `json:"phone_region"`
	// EnabledTiers limits which detectors run. Empty means all tiers.
	EnabledTiers []Tier `json:"enabled_tiers,omitempty"`
}

// DefaultThresholds carries the operating defaults: 0.95 for review reporting,
// 0.98 for automatic merging, two-character blocking fallback, lenient phones.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ReviewSimilarity:    0.95,
		AutoMergeSimilarity: 0.98,
		FallbackKeyWidth:    2,
		PhoneStrict:         false,
		PhoneRegion:         "US",
	}
}

var thresholdsValidator = validator.New()

// Validate checks the configuration before any comparison work begins.
// Out-of-range thresholds and unknown tier names are fatal, never clamped.
func (t Thresholds) Validate() error {
	if err := thresholdsValidator.Struct(t); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	for _, tier := range t.EnabledTiers {
		if !validTier(tier) {
			return fmt.Errorf("invalid thresholds: unknown tier %q", tier)
		}
	}
	return nil
}

// TierEnabled reports whether a detector tier should run under this config.
func (t Thresholds) TierEnabled(tier Tier) bool {
	if len(t.EnabledTiers) == 0 {
		return true
	}
	for _, enabled := range t.EnabledTiers {
		if enabled == tier {
			return true
		}
	}
	return false
}
