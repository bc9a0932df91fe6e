// Package pricing computes billing-window charges. It is pure: no I/O, no
// clocks, fully deterministic over its inputs.
package pricing

import (
	"fmt"
	"math"

	"github.com/orsta/orsta/internal/config"
)

// Calculator prices one billing window. The zero value is not usable; build
// it with New or FromConfig.
type Calculator struct {
	RateCentsPerHour  int64
	PromoDiscount     float64
	PromoDurationSecs int64
}

// New returns a calculator with the contract defaults: 48 cents/hour and a
// 30% discount during the first 5,184,000 seconds after user registration.
func New() Calculator {
	return Calculator{
		RateCentsPerHour:  config.DefaultRateCentsPerHour,
		PromoDiscount:     config.DefaultPromoDiscount,
		PromoDurationSecs: config.DefaultPromoDurationSecs,
	}
}

// FromConfig returns a calculator with configured overrides.
func FromConfig(cfg config.Config) Calculator {
	return Calculator{
		RateCentsPerHour:  cfg.RateCentsPerHour,
		PromoDiscount:     cfg.PromoDiscount,
		PromoDurationSecs: cfg.PromoDurationSecs,
	}
}

// ChargeCents prices a window of durationSecs seconds that opened at
// windowStartedAt for a user registered at userCreatedAt (unix seconds).
//
// The base charge is pro-rated by the second and rounded half away from
// zero; the promotion discount is applied to the already-rounded base and
// rounded again. The two-stage rounding is deliberate: 3600s at 48¢/h under
// promotion is base 48 → 33.6 → 34, not 33.
//
// A window that opened within PromoDurationSecs of registration is inside
// the promotion, boundary inclusive.
//
// durationSecs must be non-negative; the caller guarantees ended_at is
// never before started_at. A negative duration panics.
func (c Calculator) ChargeCents(durationSecs, userCreatedAt, windowStartedAt int64) int64 {
	if durationSecs < 0 {
		panic(fmt.Sprintf("pricing: negative duration %d", durationSecs))
	}

	base := math.Round(float64(durationSecs) / 3600.0 * float64(c.RateCentsPerHour))
	if windowStartedAt-userCreatedAt <= c.PromoDurationSecs {
		return int64(math.Round(base * (1.0 - c.PromoDiscount)))
	}
	return int64(base)
}

// ChargeCents prices a window with the default calculator.
func ChargeCents(durationSecs, userCreatedAt, windowStartedAt int64) int64 {
	return New().ChargeCents(durationSecs, userCreatedAt, windowStartedAt)
}
