package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := map[string][]string{
		"Units Sold":     {"units", "sold"},
		"UnitPrice":      {"unit", "price"},
		"unit_cost":      {"unit", "cost"},
		"Gross Margin %": {"gross", "margin", "%"},
		"margin%":        {"margin", "%"},
		"Q1Revenue":      {"q1", "revenue"},
		"  ":             nil,
	}
	for in, want := range tests {
		assert.Equal(t, want, tokenize(in), in)
	}
}

func TestContainsRun(t *testing.T) {
	assert.True(t, containsRun([]string{"avg", "unit", "cost"}, []string{"unit", "cost"}))
	assert.True(t, containsRun([]string{"total", "orders"}, []string{"order"}))
	assert.False(t, containsRun([]string{"cost", "unit"}, []string{"unit", "cost"}))
	assert.False(t, containsRun([]string{"personnel"}, []string{"per"}))
	assert.False(t, containsRun(nil, []string{"rate"}))
}
