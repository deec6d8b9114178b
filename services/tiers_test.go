package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewFeeScheduleRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		tiers []FeeTier
	}{
		{"empty", nil},
		{"rate zero", []FeeTier{{Threshold: 0, Rate: 0}}},
		{"rate above one", []FeeTier{{Threshold: 0, Rate: 1.5}}},
		{"negative threshold", []FeeTier{{Threshold: -1, Rate: 0.05}, {Threshold: 0, Rate: 0.05}}},
		{"ascending order", []FeeTier{{Threshold: 0, Rate: 0.05}, {Threshold: 100, Rate: 0.04}}},
		{"duplicate threshold", []FeeTier{{Threshold: 100, Rate: 0.04}, {Threshold: 100, Rate: 0.05}}},
		{"no zero floor", []FeeTier{{Threshold: 100, Rate: 0.04}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewFeeSchedule(tc.tiers); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestRateForPicksFirstReachedBand(t *testing.T) {
	sched, err := NewFeeSchedule(DefaultFeeTiers)
	if err != nil {
		t.Fatalf("build schedule: %v", err)
	}

	cases := []struct {
		cumulative float64
		want       float64
	}{
		{0, 0.05},
		{60, 0.05},
		{9_999.99, 0.05},
		{10_000, 0.04},
		{49_999.99, 0.04},
		{50_000, 0.035},
		{249_999.99, 0.035},
		{250_000, 0.03},
		{1_000_000, 0.03},
	}
	for _, tc := range cases {
		got := sched.RateFor(decimal.NewFromFloat(tc.cumulative))
		if got != tc.want {
			t.Errorf("RateFor(%v) = %v, want %v", tc.cumulative, got, tc.want)
		}
	}
}

func TestLoadFeeScheduleFromEnv(t *testing.T) {
	t.Setenv("F0_FEE_TIERS", `[{"threshold":1000,"rate":0.02},{"threshold":0,"rate":0.06}]`)
	sched, err := LoadFeeSchedule()
	if err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	if got := sched.RateFor(decimal.NewFromInt(1500)); got != 0.02 {
		t.Errorf("RateFor(1500) = %v, want 0.02", got)
	}
	if got := sched.RateFor(decimal.NewFromInt(10)); got != 0.06 {
		t.Errorf("RateFor(10) = %v, want 0.06", got)
	}
}

func TestLoadFeeScheduleRejectsInvalidEnv(t *testing.T) {
	t.Setenv("F0_FEE_TIERS", `[{"threshold":0,"rate":9}]`)
	if _, err := LoadFeeSchedule(); err == nil {
		t.Fatal("expected error for out-of-range rate")
	}

	t.Setenv("F0_FEE_TIERS", `not json`)
	if _, err := LoadFeeSchedule(); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadFeeScheduleDefault(t *testing.T) {
	t.Setenv("F0_FEE_TIERS", "")
	sched, err := LoadFeeSchedule()
	if err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	if len(sched.Tiers()) != len(DefaultFeeTiers) {
		t.Errorf("tiers = %d, want %d", len(sched.Tiers()), len(DefaultFeeTiers))
	}
}
