package variance

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
)

func TestSummarize(t *testing.T) {
	west := "Region:West"
	tbl := table([]string{"Sales", "Units"},
		rec("2024-01", east, "Sales", 100), rec("2024-02", east, "Sales", 40),
		rec("2024-01", west, "Sales", 100), rec("2024-02", west, "Sales", 160),
		rec("2024-01", east, "Units", 0), rec("2024-02", east, "Units", 5),
	)
	res := run(tbl)

	s := Summarize(res, 2)
	assert.Equal(t, "2024-02", s.LatestPeriod)
	assert.Equal(t, 3, s.TotalRecords)
	assert.Equal(t, 2, s.EntitiesAnalyzed)
	assert.Equal(t, 2, s.MetricsAnalyzed)
	require.Len(t, s.TopMovers, 2)
	assert.Equal(t, Mover{Entity: east, Metric: "Sales", AbsDelta: -60, PctDelta: PercentChange(-60, 100)}, s.TopMovers[0])
	assert.Equal(t, west, s.TopMovers[1].Entity)
	assert.Equal(t, 1, s.Counters.UndefinedPercents)

	empty := Summarize(&Result{}, DefaultTopMovers)
	assert.Empty(t, empty.LatestPeriod)
	assert.NotNil(t, empty.TopMovers)
}

func TestTable(t *testing.T) {
	res := run(scenario())

	tbl := Table(res.Records)
	assert.Equal(t, tableColumns, tbl.Columns)
	assert.Equal(t, []string{
		east, "Revenue", "2024-01", "2024-02", "1000", "1080", "80", "0.08", "200", "-100", "-20",
	}, tbl.Rows[0])
	assert.Equal(t, "", tbl.Rows[1][8])

	var buf bytes.Buffer
	require.NoError(t, dataset.WriteCSV(&buf, tbl))
	assert.Contains(t, buf.String(), "interaction_residual")
}
