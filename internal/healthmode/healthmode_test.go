package healthmode

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"llama_lend/internal/models"
)

func intp(v int) *int { return &v }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		health string
		want   Level
	}{
		{"-3", LevelCritical},
		{"4.9", LevelCritical},
		{"4.999999", LevelCritical},
		{"5.0", LevelWarning},
		{"14.9", LevelWarning},
		{"15", LevelCaution},
		{"49.9", LevelCaution},
		{"50", LevelHealthy},
		{"120", LevelHealthy},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(d(tc.health)).Level, "health=%s", tc.health)
	}
}

func TestTiersAreOrdered(t *testing.T) {
	for i := 1; i < len(Tiers); i++ {
		assert.True(t, Tiers[i-1].Below.LessThan(Tiers[i].Below))
		assert.Greater(t, int(Tiers[i-1].Level), int(Tiers[i].Level))
	}
	custom := []Tier{{Below: decimal.NewFromInt(1), Level: LevelCritical}}
	assert.Equal(t, LevelHealthy, tierIn(custom, decimal.NewFromInt(1)).Level)
}

func TestClassify(t *testing.T) {
	base := Input{
		Health:          d("40"),
		HealthNotFull:   d("35"),
		Bands:           models.Bands{30, 21},
		OraclePriceBand: intp(10),
		Stablecoin:      decimal.Zero,
	}
	assert.Equal(t, Healthy, Classify(base))

	hard := base
	hard.HealthNotFull = d("-0.01")
	hard.Stablecoin = d("500")
	assert.Equal(t, HardLiquidation, Classify(hard))

	soft := base
	soft.Stablecoin = d("0.11")
	assert.Equal(t, SoftLiquidation, Classify(soft))

	dust := base
	dust.Stablecoin = d("0.1")
	assert.Equal(t, Healthy, Classify(dust))

	near := base
	near.Bands = models.Bands{20, 12}
	assert.Equal(t, CloseToLiquidation, Classify(near))
	near.Bands = models.Bands{20, 13}
	assert.Equal(t, Healthy, Classify(near))
}

func TestIsCloseToLiquidation(t *testing.T) {
	assert.True(t, IsCloseToLiquidation(12, nil, intp(10)))
	assert.False(t, IsCloseToLiquidation(13, nil, intp(10)))
	assert.False(t, IsCloseToLiquidation(-100, intp(5), nil))
	assert.False(t, IsCloseToLiquidation(-100, nil, nil))
}

func TestDisplayHealth(t *testing.T) {
	assert.Equal(t, "12", DisplayHealth(d("12"), d("3")).String())
	assert.Equal(t, "-1", DisplayHealth(d("12"), d("-1")).String())
}

func TestModeFor(t *testing.T) {
	in := ModeInput{
		Form:            FormCreateLoan,
		Amount:          "1,000",
		BorrowedSymbol:  "crvUSD",
		FirstBand:       11,
		OraclePriceBand: intp(10),
		Current:         Healthy,
		Next:            CloseToLiquidation,
	}
	m := ModeFor(in)
	assert.Equal(t, CloseToLiquidation, m.State)
	assert.Equal(t, "Borrowing 1,000 crvUSD will put you close to soft liquidation.", m.Message)
	assert.Equal(t, "Close to liquidation range!", m.WarningTitle)

	in.Form = FormCollateralDecrease
	assert.Equal(t, "Removing 1,000 collateral, will put you close to soft liquidation.", ModeFor(in).Message)

	in.Form = FormBorrowMore
	assert.Contains(t, ModeFor(in).Message, "Increasing your borrowed amount by 1,000 crvUSD")

	in.Current = SoftLiquidation
	assert.Equal(t, "You are still close to soft liquidation.", ModeFor(in).Message)

	in.FirstBand = 40
	assert.Equal(t, Healthy, ModeFor(in).State)
	assert.Empty(t, ModeFor(in).Message)
}

func TestWorse(t *testing.T) {
	assert.True(t, Worse(Healthy, LevelHealthy, CloseToLiquidation, LevelHealthy))
	assert.True(t, Worse(Healthy, LevelCaution, Healthy, LevelWarning))
	assert.False(t, Worse(SoftLiquidation, LevelCritical, CloseToLiquidation, LevelCritical))
	assert.False(t, Worse(Healthy, LevelWarning, Healthy, LevelWarning))
}
