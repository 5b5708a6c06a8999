package schema

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
)

// Role is the part a column plays in the analysis.
type Role string

const (
	RoleTime    Role = "time"
	RoleEntity  Role = "entity"
	RoleMeasure Role = "measure"
	RoleText    Role = "text"
)

// Map is the detected schema of one table. The four column sets partition
// the table's columns.
type Map struct {
	TimeColumn      string      `json:"time_column"`
	TimeGranularity Granularity `json:"time_granularity"`
	// DateOrder is how ambiguous numeric dates in the time column are read.
	DateOrder      DateOrder `json:"date_order,omitempty"`
	EntityColumns  []string  `json:"entity_columns"`
	MeasureColumns []string  `json:"measure_columns"`
	TextColumns    []string  `json:"text_columns"`
}

// Columns returns every column named by the map.
func (m Map) Columns() []string {
	cols := make([]string, 0, 1+len(m.EntityColumns)+len(m.MeasureColumns)+len(m.TextColumns))
	if m.TimeColumn != "" {
		cols = append(cols, m.TimeColumn)
	}
	cols = append(cols, m.EntityColumns...)
	cols = append(cols, m.MeasureColumns...)
	cols = append(cols, m.TextColumns...)
	return cols
}

// CheckPartition verifies that the map's column sets are disjoint and cover
// exactly the given columns.
func (m Map) CheckPartition(columns []string) error {
	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range m.Columns() {
		if seen[c] {
			return fmt.Errorf("column %q assigned more than one role", c)
		}
		if !want[c] {
			return fmt.Errorf("column %q is not in the table", c)
		}
		seen[c] = true
	}
	for _, c := range columns {
		if !seen[c] {
			return fmt.Errorf("column %q has no role", c)
		}
	}
	return nil
}

// ColumnProfile records the statistics and decision for one column.
type ColumnProfile struct {
	Name           string      `json:"name"`
	Role           Role        `json:"role"`
	Reason         string      `json:"reason"`
	NonNull        int         `json:"non_null"`
	Distinct       int         `json:"distinct"`
	DistinctRatio  float64     `json:"distinct_ratio"`
	PeriodRatio    float64     `json:"period_ratio"`
	PeriodDistinct int         `json:"period_distinct"`
	Granularity    Granularity `json:"granularity,omitempty"`
	DateOrder      DateOrder   `json:"date_order,omitempty"`
	NumericRatio   float64     `json:"numeric_ratio"`

	timeName bool
	flagLike bool
}

// Result is the output of Detect: the schema map plus per-column audit data.
type Result struct {
	Map     Map             `json:"schema"`
	Columns []ColumnProfile `json:"columns"`
}

var timeNameHints = []string{"date", "month", "year", "period", "time", "quarter", "week", "day"}

// Detect infers the schema of t. It is a pure function of t and th.
func Detect(t *dataset.Table, th Thresholds) (*Result, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}

	profiles := make([]ColumnProfile, t.Width())
	var g errgroup.Group
	g.SetLimit(th.Workers)
	for i, name := range t.Columns {
		g.Go(func() error {
			profiles[i] = profileColumn(name, t.Column(i), th)
			return nil
		})
	}
	_ = g.Wait()

	timeIdx := pickTimeColumn(profiles, th)
	if timeIdx < 0 {
		return nil, &DetectionError{
			Kind:   KindNoTimeColumnFound,
			Reason: noTimeReason(profiles, th),
		}
	}

	m := Map{
		TimeColumn:      profiles[timeIdx].Name,
		TimeGranularity: profiles[timeIdx].Granularity,
		DateOrder:       profiles[timeIdx].DateOrder,
		EntityColumns:   []string{},
		MeasureColumns:  []string{},
		TextColumns:     []string{},
	}
	profiles[timeIdx].Role = RoleTime
	profiles[timeIdx].Reason = fmt.Sprintf("%.0f%% of values parse as %s periods", profiles[timeIdx].PeriodRatio*100, profiles[timeIdx].Granularity)

	for i := range profiles {
		if i == timeIdx {
			continue
		}
		p := &profiles[i]
		classifyColumn(p, th)
		switch p.Role {
		case RoleEntity:
			m.EntityColumns = append(m.EntityColumns, p.Name)
		case RoleMeasure:
			m.MeasureColumns = append(m.MeasureColumns, p.Name)
		default:
			m.TextColumns = append(m.TextColumns, p.Name)
		}
	}

	if len(m.MeasureColumns) == 0 {
		return nil, &DetectionError{
			Kind:   KindNoMeasuresFound,
			Reason: fmt.Sprintf("no column reached numeric parse ratio %.2f", th.MeasureParseRatio),
		}
	}

	return &Result{Map: m, Columns: profiles}, nil
}

func profileColumn(name string, values []string, th Thresholds) ColumnProfile {
	p := ColumnProfile{Name: name}

	lower := strings.ToLower(name)
	for _, hint := range timeNameHints {
		if strings.Contains(lower, hint) {
			p.timeName = true
			break
		}
	}

	distinct := make(map[string]struct{})
	numbers := make(map[float64]struct{})
	orders := [2]DateOrder{MonthFirst, DayFirst}
	var grains [2]map[Granularity]int
	var periods [2]int
	for i := range grains {
		grains[i] = make(map[Granularity]int)
	}
	parsedNumbers := 0

	for _, v := range values {
		if IsNull(v) {
			continue
		}
		v = strings.TrimSpace(v)
		p.NonNull++
		distinct[v] = struct{}{}

		for i, order := range orders {
			if _, g, ok := ParsePeriodOrder(v, order); ok {
				periods[i]++
				grains[i][g]++
			}
		}
		if n, ok := ParseNumber(v); ok {
			parsedNumbers++
			numbers[n] = struct{}{}
		}
	}

	// One day/month order per column: the one that reads more values,
	// month first on ties.
	pick := 0
	if periods[1] > periods[0] {
		pick = 1
	}
	parsedPeriods := periods[pick]

	p.Distinct = len(distinct)
	if p.NonNull == 0 {
		return p
	}
	p.DistinctRatio = float64(p.Distinct) / float64(p.NonNull)
	p.PeriodRatio = float64(parsedPeriods) / float64(p.NonNull)
	p.NumericRatio = float64(parsedNumbers) / float64(p.NonNull)
	p.Granularity = dominantGranularity(grains[pick])
	if p.Granularity != "" {
		p.DateOrder = orders[pick]
		seen := make(map[string]struct{})
		for _, v := range values {
			if s, ok := NormalizePeriod(v, p.Granularity, p.DateOrder); ok {
				seen[s] = struct{}{}
			}
		}
		p.PeriodDistinct = len(seen)
	}

	if len(numbers) == 2 {
		p.flagLike = true
		for n := range numbers {
			if n != math.Trunc(n) || !th.isFlagValue(n) {
				p.flagLike = false
			}
		}
	}
	return p
}

// dominantGranularity returns the most frequent granularity, preferring the
// finer one on ties.
func dominantGranularity(counts map[Granularity]int) Granularity {
	var best Granularity
	for _, g := range []Granularity{GranularityDay, GranularityMonth, GranularityQuarter, GranularityYear} {
		if counts[g] > counts[best] {
			best = g
		}
	}
	return best
}

func pickTimeColumn(profiles []ColumnProfile, th Thresholds) int {
	best := -1
	for i, p := range profiles {
		if p.NonNull == 0 || p.PeriodRatio < th.TimeParseRatio || p.PeriodDistinct < 2 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := profiles[best]
		switch {
		case p.PeriodRatio > b.PeriodRatio:
			best = i
		case p.PeriodRatio == b.PeriodRatio && p.timeName && !b.timeName:
			best = i
		}
	}
	return best
}

func noTimeReason(profiles []ColumnProfile, th Thresholds) string {
	best := -1
	for i, p := range profiles {
		if best < 0 || p.PeriodRatio > profiles[best].PeriodRatio {
			best = i
		}
	}
	if best < 0 {
		return "table has no columns"
	}
	b := profiles[best]
	if b.PeriodRatio >= th.TimeParseRatio {
		return fmt.Sprintf("column %q parses as periods but has only %d distinct period(s); at least 2 are required",
			b.Name, b.PeriodDistinct)
	}
	return fmt.Sprintf("no column reached period parse ratio %.2f (best: %q at %.2f)",
		th.TimeParseRatio, b.Name, b.PeriodRatio)
}

func classifyColumn(p *ColumnProfile, th Thresholds) {
	switch {
	case p.NonNull == 0:
		p.Role = RoleText
		p.Reason = "all values are empty"

	case p.NumericRatio >= th.MeasureParseRatio && p.flagLike:
		p.Role = RoleEntity
		p.Reason = "two-valued numeric flag"

	case p.NumericRatio >= th.MeasureParseRatio:
		p.Role = RoleMeasure
		p.Reason = fmt.Sprintf("%.0f%% of values are numeric", p.NumericRatio*100)

	case p.DistinctRatio > th.EntityMinDistinctRatio &&
		p.DistinctRatio <= th.EntityMaxDistinctRatio &&
		p.Distinct >= th.MinDistinctValues:
		p.Role = RoleEntity
		p.Reason = fmt.Sprintf("repeating values (distinct ratio %.2f)", p.DistinctRatio)

	case p.Distinct < th.MinDistinctValues:
		p.Role = RoleText
		p.Reason = fmt.Sprintf("only %d distinct value(s); at least %d required for grouping", p.Distinct, th.MinDistinctValues)

	default:
		p.Role = RoleText
		p.Reason = fmt.Sprintf("high cardinality (distinct ratio %.2f)", p.DistinctRatio)
	}
}
