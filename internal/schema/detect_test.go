package schema

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
)

func table(columns []string, rows ...[]string) *dataset.Table {
	return dataset.New("test", columns, rows)
}

func TestDetect_Scenario(t *testing.T) {
	tbl := table([]string{"Month", "Region", "Price", "Units"},
		[]string{"2024-01", "East", "10", "100"},
		[]string{"2024-02", "East", "12", "90"},
	)

	res, err := Detect(tbl, DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, "Month", res.Map.TimeColumn)
	assert.Equal(t, GranularityMonth, res.Map.TimeGranularity)
	assert.Equal(t, []string{"Region"}, res.Map.EntityColumns)
	assert.Equal(t, []string{"Price", "Units"}, res.Map.MeasureColumns)
	assert.Empty(t, res.Map.TextColumns)
	require.NoError(t, res.Map.CheckPartition(tbl.Columns))

	require.Len(t, res.Columns, 4)
	assert.Equal(t, RoleTime, res.Columns[0].Role)
	assert.Equal(t, RoleEntity, res.Columns[1].Role)
	assert.NotEmpty(t, res.Columns[1].Reason)
}

func TestDetect_FlagColumnIsEntity(t *testing.T) {
	tbl := table([]string{"Month", "Active", "Sales"},
		[]string{"2024-01", "0", "10.5"},
		[]string{"2024-01", "1", "11"},
		[]string{"2024-02", "1", "12"},
		[]string{"2024-02", "0", "9"},
	)

	res, err := Detect(tbl, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, []string{"Active"}, res.Map.EntityColumns)
	assert.Equal(t, []string{"Sales"}, res.Map.MeasureColumns)
}

func TestDetect_TwoValuedMeasureStaysMeasure(t *testing.T) {
	tbl := table([]string{"Month", "Price"},
		[]string{"2024-01", "10"},
		[]string{"2024-02", "12"},
		[]string{"2024-03", "10"},
	)

	res, err := Detect(tbl, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, []string{"Price"}, res.Map.MeasureColumns)
	assert.Empty(t, res.Map.EntityColumns)
}

func TestDetect_TextColumns(t *testing.T) {
	tbl := table([]string{"Month", "Invoice", "Notes", "Amount"},
		[]string{"2024-01", "INV-1", "", "10"},
		[]string{"2024-02", "INV-2", "", "20"},
		[]string{"2024-03", "INV-3", "", "30"},
	)

	res, err := Detect(tbl, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice", "Notes"}, res.Map.TextColumns)
	assert.Empty(t, res.Map.EntityColumns)
	require.NoError(t, res.Map.CheckPartition(tbl.Columns))
}

func TestDetect_ConstantColumnThreshold(t *testing.T) {
	tbl := table([]string{"Month", "Region", "Units"},
		[]string{"2024-01", "East", "100"},
		[]string{"2024-02", "East", "90"},
	)

	th := DefaultThresholds()
	th.MinDistinctValues = 2

	res, err := Detect(tbl, th)
	require.NoError(t, err)
	assert.Empty(t, res.Map.EntityColumns)
	assert.Equal(t, []string{"Region"}, res.Map.TextColumns)
	assert.Contains(t, res.Columns[1].Reason, "distinct value")
}

func TestDetect_DateOrder(t *testing.T) {
	t.Run("day first when only day first reads every value", func(t *testing.T) {
		tbl := table([]string{"Date", "Sales"},
			[]string{"05/01/2024", "1"},
			[]string{"13/01/2024", "2"},
			[]string{"20/01/2024", "3"},
			[]string{"03/02/2024", "4"},
		)
		res, err := Detect(tbl, DefaultThresholds())
		require.NoError(t, err)
		assert.Equal(t, "Date", res.Map.TimeColumn)
		assert.Equal(t, GranularityDay, res.Map.TimeGranularity)
		assert.Equal(t, DayFirst, res.Map.DateOrder)
		assert.Equal(t, 1.0, res.Columns[0].PeriodRatio)
		assert.Equal(t, 4, res.Columns[0].PeriodDistinct)
	})

	t.Run("month first when both orders read every value", func(t *testing.T) {
		tbl := table([]string{"Date", "Sales"},
			[]string{"05/01/2024", "1"},
			[]string{"06/01/2024", "2"},
		)
		res, err := Detect(tbl, DefaultThresholds())
		require.NoError(t, err)
		assert.Equal(t, MonthFirst, res.Map.DateOrder)
	})

	t.Run("month first when only month first reads every value", func(t *testing.T) {
		tbl := table([]string{"Date", "Sales"},
			[]string{"01/05/2024", "1"},
			[]string{"01/20/2024", "2"},
		)
		res, err := Detect(tbl, DefaultThresholds())
		require.NoError(t, err)
		assert.Equal(t, MonthFirst, res.Map.DateOrder)
	})
}

func TestDetect_TimeTieBreak(t *testing.T) {
	t.Run("time-like name wins", func(t *testing.T) {
		tbl := table([]string{"Created", "Period", "Amount"},
			[]string{"2024-01-03", "2024-01", "1"},
			[]string{"2024-02-09", "2024-02", "2"},
		)
		res, err := Detect(tbl, DefaultThresholds())
		require.NoError(t, err)
		assert.Equal(t, "Period", res.Map.TimeColumn)
		assert.Equal(t, []string{"Created"}, res.Map.TextColumns)
	})

	t.Run("column order otherwise", func(t *testing.T) {
		tbl := table([]string{"Opened", "Closed", "Amount"},
			[]string{"2024-01-03", "2024-01-05", "1"},
			[]string{"2024-02-09", "2024-02-11", "2"},
		)
		res, err := Detect(tbl, DefaultThresholds())
		require.NoError(t, err)
		assert.Equal(t, "Opened", res.Map.TimeColumn)
		assert.Equal(t, GranularityDay, res.Map.TimeGranularity)
	})

	t.Run("higher parse ratio wins", func(t *testing.T) {
		rows := make([][]string, 0, 20)
		for i := 1; i <= 20; i++ {
			date := fmt.Sprintf("2024-%02d", (i-1)%12+1)
			other := date
			if i == 20 {
				other = "unknown"
			}
			rows = append(rows, []string{other, date, strconv.Itoa(i)})
		}
		res, err := Detect(table([]string{"Date", "Booked", "Amount"}, rows...), DefaultThresholds())
		require.NoError(t, err)
		assert.Equal(t, "Booked", res.Map.TimeColumn)
	})
}

func TestDetect_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tbl    *dataset.Table
		target error
		kind   ErrorKind
		reason string
	}{
		{
			name: "no period column",
			tbl: table([]string{"Name", "Value"},
				[]string{"a", "1"},
				[]string{"b", "2"},
			),
			target: ErrNoTimeColumn,
			kind:   KindNoTimeColumnFound,
			reason: "period parse ratio 0.90",
		},
		{
			name: "single period",
			tbl: table([]string{"Month", "Value"},
				[]string{"2024-01", "1"},
				[]string{"2024-01", "2"},
			),
			target: ErrNoTimeColumn,
			kind:   KindNoTimeColumnFound,
			reason: "distinct period",
		},
		{
			name: "no numeric column",
			tbl: table([]string{"Month", "Region"},
				[]string{"2024-01", "East"},
				[]string{"2024-02", "West"},
			),
			target: ErrNoMeasures,
			kind:   KindNoMeasuresFound,
			reason: "numeric parse ratio 0.95",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Detect(tt.tbl, DefaultThresholds())
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.target)

			var de *DetectionError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.kind, de.Kind)
			assert.Contains(t, de.Reason, tt.reason)
		})
	}
}

func TestDetect_InvalidThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.TimeParseRatio = 1.5
	th.Workers = 0

	_, err := Detect(table([]string{"Month"}, []string{"2024-01"}), th)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time_parse_ratio")
	assert.Contains(t, err.Error(), "workers")
}

// randomTable builds a table mixing every kind of column the detector
// distinguishes.
func randomTable(r *rand.Rand) *dataset.Table {
	kinds := []string{"period", "entity", "measure", "flag", "text", "empty", "mixed"}
	width := 2 + r.IntN(6)
	rows := 4 + r.IntN(30)

	columns := make([]string, width)
	data := make([][]string, rows)
	for i := range data {
		data[i] = make([]string, width)
	}
	for c := 0; c < width; c++ {
		kind := kinds[r.IntN(len(kinds))]
		columns[c] = fmt.Sprintf("%s_%d", kind, c)
		for i := 0; i < rows; i++ {
			var v string
			switch kind {
			case "period":
				v = fmt.Sprintf("2023-%02d", r.IntN(12)+1)
			case "entity":
				v = []string{"East", "West", "North"}[r.IntN(3)]
			case "measure":
				v = strconv.FormatFloat(r.Float64()*1000, 'f', 2, 64)
			case "flag":
				v = strconv.Itoa(r.IntN(2))
			case "text":
				v = fmt.Sprintf("note %d-%d", i, r.IntN(1_000_000))
			case "empty":
				v = ""
			default:
				v = []string{"1", "x", "2024-01", "", "3.5"}[r.IntN(5)]
			}
			data[i][c] = v
		}
	}
	return dataset.New("random", columns, data)
}

func TestDetect_PartitionProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	succeeded := 0

	for i := 0; i < 300; i++ {
		tbl := randomTable(r)
		res, err := Detect(tbl, DefaultThresholds())
		if err != nil {
			var de *DetectionError
			require.ErrorAs(t, err, &de, "table %d", i)
			continue
		}
		succeeded++
		require.NoError(t, res.Map.CheckPartition(tbl.Columns), "table %d: %v", i, tbl.Columns)
		assert.NotEmpty(t, res.Map.MeasureColumns)
		assert.NotEmpty(t, res.Map.TimeColumn)
	}
	assert.Positive(t, succeeded)
}

func TestDetect_Deterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		tbl := randomTable(r)

		sequential := DefaultThresholds()
		sequential.Workers = 1
		first, err1 := Detect(tbl, sequential)
		second, err2 := Detect(tbl, DefaultThresholds())

		assert.Equal(t, err1, err2)
		assert.Equal(t, first, second)
	}
}

func TestMap_CheckPartition(t *testing.T) {
	m := Map{TimeColumn: "Month", EntityColumns: []string{"Region"}, MeasureColumns: []string{"Region"}}
	assert.ErrorContains(t, m.CheckPartition([]string{"Month", "Region"}), "more than one role")

	m = Map{TimeColumn: "Month", MeasureColumns: []string{"Units"}}
	assert.ErrorContains(t, m.CheckPartition([]string{"Month", "Units", "Notes"}), "has no role")
	assert.ErrorContains(t, m.CheckPartition([]string{"Month"}), "not in the table")
}
