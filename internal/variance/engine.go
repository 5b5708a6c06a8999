package variance

import (
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/M4dhxv/Financial-Analysis/internal/canonical"
	"github.com/M4dhxv/Financial-Analysis/internal/metric"
)

// Record is the change of one metric for one entity between two adjacent
// periods. The effect fields are set only for decomposed flow metrics.
type Record struct {
	Entity     string  `json:"entity"`
	Metric     string  `json:"metric_name"`
	PeriodFrom string  `json:"period_from"`
	PeriodTo   string  `json:"period_to"`
	ValueFrom  float64 `json:"value_from"`
	ValueTo    float64 `json:"value_to"`
	AbsDelta   float64 `json:"abs_delta"`
	PctDelta   Percent `json:"pct_delta"`

	PriceEffect         *float64 `json:"price_effect,omitempty"`
	VolumeEffect        *float64 `json:"volume_effect,omitempty"`
	InteractionResidual *float64 `json:"interaction_residual,omitempty"`
}

// Decomposed reports whether the record carries price/volume effects.
func (r Record) Decomposed() bool {
	return r.PriceEffect != nil && r.VolumeEffect != nil && r.InteractionResidual != nil
}

// Counters tallies the non-fatal conditions met by the engine.
type Counters struct {
	MissingPeriodPairs int `json:"missing_period_pairs"`
	UndefinedPercents  int `json:"undefined_percents"`
	SkippedNonFinite   int `json:"skipped_non_finite"`
	Decomposed         int `json:"decomposed"`
	// UnexplainedDecompositions counts decomposed records whose effects do
	// not add up to abs_delta, i.e. the flow is not exactly price*volume.
	UnexplainedDecompositions int `json:"unexplained_decompositions"`
}

func (c *Counters) add(o Counters) {
	c.MissingPeriodPairs += o.MissingPeriodPairs
	c.UndefinedPercents += o.UndefinedPercents
	c.SkippedNonFinite += o.SkippedNonFinite
	c.Decomposed += o.Decomposed
	c.UnexplainedDecompositions += o.UnexplainedDecompositions
}

// Result is the output of the engine.
type Result struct {
	Periods  []string `json:"periods"`
	Records  []Record `json:"records"`
	Counters Counters `json:"counters"`
}

// Engine computes period-over-period variance. Workers bounds how many
// metrics are processed concurrently; values below 2 run sequentially.
// The output does not depend on Workers.
type Engine struct {
	Workers int
}

// Compute runs a sequential engine.
func Compute(t *canonical.Table, reg *metric.Registry) *Result {
	return Engine{}.Run(t, reg)
}

type seriesKey struct {
	metric string
	entity string
}

// series maps period to value for one (metric, entity).
type series map[string]float64

// Run compares every pair of adjacent periods on the table's global period
// axis, for every entity and registered metric observed in both periods.
// Records are ordered by metric priority, then entity, then period.
func (e Engine) Run(t *canonical.Table, reg *metric.Registry) *Result {
	res := &Result{Periods: t.Periods(), Records: []Record{}}

	index := make(map[seriesKey]series)
	entities := make(map[string][]string)
	for _, r := range t.Records {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			res.Counters.SkippedNonFinite++
			continue
		}
		k := seriesKey{r.Metric, r.Entity}
		s, ok := index[k]
		if !ok {
			s = make(series)
			index[k] = s
			entities[r.Metric] = append(entities[r.Metric], r.Entity)
		}
		if _, dup := s[r.Period]; !dup {
			s[r.Period] = r.Value
		}
	}
	for m := range entities {
		slices.Sort(entities[m])
	}

	ordered := reg.Ordered()
	parts := make([][]Record, len(ordered))
	counts := make([]Counters, len(ordered))

	workers := max(e.Workers, 1)
	var g errgroup.Group
	g.SetLimit(workers)
	for i, d := range ordered {
		g.Go(func() error {
			parts[i], counts[i] = computeMetric(d, entities[d.Name], index, res.Periods)
			return nil
		})
	}
	_ = g.Wait()

	for i := range ordered {
		res.Records = append(res.Records, parts[i]...)
		res.Counters.add(counts[i])
	}
	return res
}

func computeMetric(d metric.Descriptor, entities []string, index map[seriesKey]series, periods []string) ([]Record, Counters) {
	var (
		out []Record
		c   Counters
	)
	for _, entity := range entities {
		s := index[seriesKey{d.Name, entity}]
		var price, volume series
		if d.Decomposable {
			price = index[seriesKey{d.PriceMetric, entity}]
			volume = index[seriesKey{d.VolumeMetric, entity}]
		}

		for i := 0; i+1 < len(periods); i++ {
			from, to := periods[i], periods[i+1]
			vFrom, okFrom := s[from]
			vTo, okTo := s[to]
			if !okFrom || !okTo {
				if okFrom || okTo {
					c.MissingPeriodPairs++
				}
				continue
			}

			delta := vTo - vFrom
			if math.IsInf(delta, 0) || math.IsNaN(delta) {
				c.SkippedNonFinite++
				continue
			}

			rec := Record{
				Entity:     entity,
				Metric:     d.Name,
				PeriodFrom: from,
				PeriodTo:   to,
				ValueFrom:  vFrom,
				ValueTo:    vTo,
				AbsDelta:   delta,
				PctDelta:   PercentChange(delta, vFrom),
			}
			if !rec.PctDelta.Defined {
				c.UndefinedPercents++
			}
			if d.Decomposable {
				switch decompose(&rec, price, volume) {
				case decomposedExact:
					c.Decomposed++
				case decomposedUnexplained:
					c.Decomposed++
					c.UnexplainedDecompositions++
				}
			}
			out = append(out, rec)
		}
	}
	return out, c
}

type decomposition int

const (
	notDecomposed decomposition = iota
	decomposedExact
	decomposedUnexplained
)

// unexplainedTolerance is the relative gap between abs_delta and the sum of
// the three effects above which a decomposition is counted as unexplained.
const unexplainedTolerance = 1e-9

// decompose sets the price, volume and interaction effects of rec:
//
//	price_effect         = (P_to - P_from) * V_from
//	volume_effect        = (V_to - V_from) * P_from
//	interaction_residual = (P_to - P_from) * (V_to - V_from)
//
// The three sum to abs_delta only when the flow equals P*V; otherwise the
// record is reported as decomposedUnexplained. Nothing is set if a
// counterpart value is missing for either period.
func decompose(rec *Record, price, volume series) decomposition {
	pFrom, ok1 := price[rec.PeriodFrom]
	pTo, ok2 := price[rec.PeriodTo]
	vFrom, ok3 := volume[rec.PeriodFrom]
	vTo, ok4 := volume[rec.PeriodTo]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return notDecomposed
	}

	priceEffect := (pTo - pFrom) * vFrom
	volumeEffect := (vTo - vFrom) * pFrom
	cross := (pTo - pFrom) * (vTo - vFrom)
	for _, v := range []float64{priceEffect, volumeEffect, cross} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return notDecomposed
		}
	}

	rec.PriceEffect = &priceEffect
	rec.VolumeEffect = &volumeEffect
	rec.InteractionResidual = &cross

	gap := rec.AbsDelta - (priceEffect + volumeEffect + cross)
	if math.Abs(gap) > unexplainedTolerance*math.Max(1, math.Abs(rec.AbsDelta)) {
		return decomposedUnexplained
	}
	return decomposedExact
}
