package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const promoDuration = 5_184_000

func TestChargeCents(t *testing.T) {
	now := int64(1_700_000_000)

	tests := []struct {
		name          string
		durationSecs  int64
		userCreatedAt int64
		want          int64
	}{
		{"zero duration", 0, now - 1, 0},
		{"one hour inside promotion", 3600, now - 1, 34},
		{"one hour exactly at promotion boundary", 3600, now - promoDuration, 34},
		{"one hour one second past boundary", 3600, now - promoDuration - 1, 48},
		{"half hour no promotion", 1800, now - promoDuration - 1, 24},
		{"half hour inside promotion", 1800, now - 1, 17},
		{"two hours no promotion", 7200, now - promoDuration - 1, 96},
		{"one second no promotion", 1, now - promoDuration - 1, 0},
		{"38 seconds rounds up to one cent", 38, now - promoDuration - 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChargeCents(tt.durationSecs, tt.userCreatedAt, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChargeCentsMonotonic(t *testing.T) {
	now := int64(1_700_000_000)

	for _, createdAt := range []int64{now - 1, now - promoDuration - 1} {
		prev := int64(0)
		for duration := int64(0); duration <= 6*3600; duration += 37 {
			got := ChargeCents(duration, createdAt, now)
			assert.GreaterOrEqual(t, got, prev,
				"charge decreased at duration=%d createdAt=%d", duration, createdAt)
			prev = got
		}
	}
}

func TestChargeCentsDiscountRoundsAfterBase(t *testing.T) {
	now := int64(1_700_000_000)

	// 45 minutes: base 36, discounted 25.2 -> 25. A single combined formula
	// (2700/3600*48*0.7 = 25.2) happens to agree here; 3600s is the case
	// where the stages diverge (33.6 -> 34 vs a truncated 33).
	assert.Equal(t, int64(25), ChargeCents(2700, now-1, now))
	assert.Equal(t, int64(34), ChargeCents(3600, now-1, now))
}

func TestChargeCentsNegativeDurationPanics(t *testing.T) {
	assert.Panics(t, func() {
		ChargeCents(-1, 0, 0)
	})
}

func TestChargeCentsCustomRate(t *testing.T) {
	calc := Calculator{RateCentsPerHour: 100, PromoDiscount: 0.5, PromoDurationSecs: 10}
	now := int64(1_000)

	assert.Equal(t, int64(50), calc.ChargeCents(3600, now-10, now))
	assert.Equal(t, int64(100), calc.ChargeCents(3600, now-11, now))
}
