package variance

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
)

// DefaultTopMovers is the number of movers reported by Summarize callers
// that have no preference.
const DefaultTopMovers = 10

// Mover is one of the largest changes into the latest period.
type Mover struct {
	Entity   string  `json:"entity"`
	Metric   string  `json:"metric_name"`
	AbsDelta float64 `json:"abs_delta"`
	PctDelta Percent `json:"pct_delta"`
}

// Summary condenses a variance result.
type Summary struct {
	LatestPeriod     string   `json:"latest_period"`
	TotalRecords     int      `json:"total_variance_records"`
	EntitiesAnalyzed int      `json:"entities_analyzed"`
	MetricsAnalyzed  int      `json:"metrics_analyzed"`
	TopMovers        []Mover  `json:"top_movers"`
	Counters         Counters `json:"counters"`
}

// Summarize reports the latest period and its n largest movers by absolute
// change. Ties are broken by entity, then metric.
func Summarize(res *Result, n int) Summary {
	s := Summary{
		TotalRecords: len(res.Records),
		TopMovers:    []Mover{},
		Counters:     res.Counters,
	}

	entities := make(map[string]struct{})
	metrics := make(map[string]struct{})
	for _, r := range res.Records {
		entities[r.Entity] = struct{}{}
		metrics[r.Metric] = struct{}{}
		if r.PeriodTo > s.LatestPeriod {
			s.LatestPeriod = r.PeriodTo
		}
	}
	s.EntitiesAnalyzed = len(entities)
	s.MetricsAnalyzed = len(metrics)

	for _, r := range res.Records {
		if r.PeriodTo == s.LatestPeriod {
			s.TopMovers = append(s.TopMovers, Mover{
				Entity:   r.Entity,
				Metric:   r.Metric,
				AbsDelta: r.AbsDelta,
				PctDelta: r.PctDelta,
			})
		}
	}
	slices.SortFunc(s.TopMovers, func(a, b Mover) int {
		return cmp.Or(
			cmp.Compare(math.Abs(b.AbsDelta), math.Abs(a.AbsDelta)),
			strings.Compare(a.Entity, b.Entity),
			strings.Compare(a.Metric, b.Metric),
		)
	})
	if len(s.TopMovers) > n {
		s.TopMovers = s.TopMovers[:n]
	}
	return s
}

var tableColumns = []string{
	"entity", "metric_name", "period_from", "period_to",
	"value_from", "value_to", "abs_delta", "pct_delta",
	"price_effect", "volume_effect", "interaction_residual",
}

// Table renders records as a flat table. Undefined percents are written as
// "undefined" and absent effects as empty cells.
func Table(recs []Record) *dataset.Table {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{
			r.Entity, r.Metric, r.PeriodFrom, r.PeriodTo,
			formatFloat(r.ValueFrom), formatFloat(r.ValueTo), formatFloat(r.AbsDelta),
			r.PctDelta.String(),
			formatOptional(r.PriceEffect), formatOptional(r.VolumeEffect), formatOptional(r.InteractionResidual),
		}
	}
	return dataset.New("variance", tableColumns, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
