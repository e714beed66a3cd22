package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_AllTiersPositive(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())

	for _, tier := range Tiers {
		p, ok := table[tier]
		require.True(t, ok, "tier %s missing", tier)
		assert.True(t, p.FlightBase.IsPositive(), tier)
		assert.True(t, p.LodgingPerNightBase.IsPositive(), tier)
		assert.True(t, p.DailyActivityBase.IsPositive(), tier)
		assert.True(t, p.MealBase.IsPositive(), tier)
	}
}

func TestTable_ValidateRejectsIncompleteTier(t *testing.T) {
	table := DefaultTable()
	p := table[Premium]
	p.MealBase = decimal.Zero
	table[Premium] = p
	delete(table, BudgetFriendly)

	err := table.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget-friendly is not defined")
	assert.Contains(t, err.Error(), "meal base must be positive")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Tier
	}{
		{"exact", "premium", Premium},
		{"mixed case and spaces", "  Budget-Friendly ", BudgetFriendly},
		{"alias low", "low", BudgetFriendly},
		{"alias high", "HIGH", Premium},
		{"unknown degrades", "platinum", MidRange},
		{"empty degrades", "", MidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestLookup_MidRangeValues(t *testing.T) {
	tier, p := DefaultTable().Lookup("something-else")
	assert.Equal(t, MidRange, tier)
	assert.True(t, p.LodgingPerNightBase.Equal(decimal.NewFromInt(12000)))
	assert.True(t, p.DailyActivityBase.Equal(decimal.NewFromInt(3000)))
	assert.True(t, p.MealBase.Equal(decimal.NewFromInt(2000)))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  []string
	}{
		{"even", 3000, 4, []string{"750", "750", "750", "750"}},
		{"thirds", 2000, 3, []string{"666.67", "666.67", "666.66"}},
		{"small", 1, 3, []string{"0.34", "0.33", "0.33"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := Split(decimal.NewFromInt(tt.total), tt.n)
			require.Len(t, parts, tt.n)
			for i, w := range tt.want {
				assert.True(t, parts[i].Equal(decimal.RequireFromString(w)), "part %d = %s, want %s", i, parts[i], w)
			}
			assert.True(t, Sum(parts).Equal(decimal.NewFromInt(tt.total)))
		})
	}
	assert.Nil(t, Split(decimal.NewFromInt(10), 0))
}
