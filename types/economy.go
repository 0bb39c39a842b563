package types

import (
	"os"
	"strconv"
	"time"
)

const (
	DEFAULT_STARTING_CREDITS = 100
	DEFAULT_STARTING_TRUST   = 70
	TRADE_TRUST_REWARD       = 5
	PURCHASE_TRUST_REWARD    = 3

	// Report penalty formula: min(total*PER_REPORT + recent*PER_RECENT, CAP)
	PENALTY_PER_REPORT        = 5
	PENALTY_PER_RECENT_REPORT = 10
	PENALTY_CAP               = 50

	MIN_TRUST_SCORE = 0
	MAX_TRUST_SCORE = 100
)

// EconomyConfig carries every tunable settlement constant. It is loaded once
// at startup; services never read the environment at call time.
type EconomyConfig struct {
	StartingCredits     int64
	StartingTrustScore  int
	TradeTrustReward    int
	PurchaseTrustReward int

	PenaltyPerReport       int
	PenaltyPerRecentReport int
	PenaltyCap             int
	RecentReportWindow     time.Duration

	OfferTTL      time.Duration
	SweepInterval time.Duration
}

func GetEconomyConfig() EconomyConfig {
	cfg := EconomyConfig{
		StartingCredits:     DEFAULT_STARTING_CREDITS,
		StartingTrustScore:  DEFAULT_STARTING_TRUST,
		TradeTrustReward:    TRADE_TRUST_REWARD,
		PurchaseTrustReward: PURCHASE_TRUST_REWARD,

		PenaltyPerReport:       PENALTY_PER_REPORT,
		PenaltyPerRecentReport: PENALTY_PER_RECENT_REPORT,
		PenaltyCap:             PENALTY_CAP,
		RecentReportWindow:     30 * 24 * time.Hour,

		OfferTTL:      7 * 24 * time.Hour,
		SweepInterval: time.Hour,
	}

	if v := envInt64("STARTING_CREDITS"); v != nil {
		cfg.StartingCredits = *v
	}
	if v := envInt64("STARTING_TRUST_SCORE"); v != nil {
		cfg.StartingTrustScore = int(*v)
	}
	if v := envInt64("OFFER_TTL_HOURS"); v != nil {
		cfg.OfferTTL = time.Duration(*v) * time.Hour
	}
	if v := envInt64("OFFER_SWEEP_INTERVAL_MINUTES"); v != nil {
		cfg.SweepInterval = time.Duration(*v) * time.Minute
	}

	return cfg
}

func envInt64(key string) *int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
