package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// FeeTier is one band of the platform fee schedule: orders attributed while
// the affiliate's cumulative earnings sit at or above Threshold pay Rate.
type FeeTier struct {
	Threshold float64 `json:"threshold"`
	Rate      float64 `json:"rate"`
}

// FeeSchedule holds the tiers sorted by descending threshold. RateFor walks
// top-down and picks the first band the evaluation value reaches, so the
// order is part of the contract — NewFeeSchedule rejects anything unsorted.
type FeeSchedule struct {
	tiers []FeeTier
}

// DefaultFeeTiers is the volume-discount schedule: big affiliates pay a
// lower platform fee rate on each subsequent order.
var DefaultFeeTiers = []FeeTier{
	{Threshold: 250_000, Rate: 0.03},
	{Threshold: 50_000, Rate: 0.035},
	{Threshold: 10_000, Rate: 0.04},
	{Threshold: 0, Rate: 0.05},
}

// NewFeeSchedule validates and wraps a tier list.
func NewFeeSchedule(tiers []FeeTier) (*FeeSchedule, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("fee schedule is empty")
	}
	for i, t := range tiers {
		if t.Rate <= 0 || t.Rate > 1 {
			return nil, fmt.Errorf("tier %d: rate %v out of (0,1]", i, t.Rate)
		}
		if t.Threshold < 0 {
			return nil, fmt.Errorf("tier %d: negative threshold %v", i, t.Threshold)
		}
		if i > 0 && t.Threshold >= tiers[i-1].Threshold {
			return nil, fmt.Errorf("tier %d: thresholds must be strictly descending", i)
		}
	}
	if tiers[len(tiers)-1].Threshold != 0 {
		return nil, fmt.Errorf("lowest tier must have threshold 0")
	}
	out := make([]FeeTier, len(tiers))
	copy(out, tiers)
	return &FeeSchedule{tiers: out}, nil
}

// LoadFeeSchedule builds the schedule from the F0_FEE_TIERS env var
// (JSON array of {threshold, rate}) or falls back to DefaultFeeTiers.
func LoadFeeSchedule() (*FeeSchedule, error) {
	raw := os.Getenv("F0_FEE_TIERS")
	if raw == "" {
		return NewFeeSchedule(DefaultFeeTiers)
	}
	var tiers []FeeTier
	if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
		return nil, fmt.Errorf("F0_FEE_TIERS: %w", err)
	}
	sched, err := NewFeeSchedule(tiers)
	if err != nil {
		return nil, fmt.Errorf("F0_FEE_TIERS: %w", err)
	}
	return sched, nil
}

// RateFor returns the platform fee rate for a cumulative earnings value.
// Bands are inclusive on their lower bound: landing exactly on a threshold
// gets that threshold's rate.
func (s *FeeSchedule) RateFor(cumulative decimal.Decimal) float64 {
	for _, t := range s.tiers {
		if cumulative.GreaterThanOrEqual(decimal.NewFromFloat(t.Threshold)) {
			return t.Rate
		}
	}
	// Unreachable with a validated schedule (threshold 0 always matches),
	// but keep the original fallback.
	return s.tiers[len(s.tiers)-1].Rate
}

// Tiers returns a copy for display endpoints.
func (s *FeeSchedule) Tiers() []FeeTier {
	out := make([]FeeTier, len(s.tiers))
	copy(out, s.tiers)
	return out
}
