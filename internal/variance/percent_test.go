package variance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent_JSON(t *testing.T) {
	tests := []struct {
		p    Percent
		want string
	}{
		{PercentChange(5, 0), `"undefined"`},
		{PercentChange(5, 10), `0.5`},
		{PercentChange(-3, 4), `-0.75`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.p)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(data))

		var back Percent
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, tt.p, back)
	}

	var p Percent
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &p))
}

func TestParsePercent(t *testing.T) {
	p, err := ParsePercent("undefined")
	require.NoError(t, err)
	assert.False(t, p.Defined)

	p, err = ParsePercent(PercentChange(1, 8).String())
	require.NoError(t, err)
	assert.Equal(t, PercentChange(1, 8), p)

	_, err = ParsePercent("12%")
	assert.Error(t, err)
}
