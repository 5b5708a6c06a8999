package metric

import (
	"fmt"
	"math"
	"strings"

	"github.com/M4dhxv/Financial-Analysis/internal/canonical"
)

type cell struct {
	period string
	entity string
}

// Classify builds the registry for a canonical table. Every metric present
// in the table receives a descriptor.
func Classify(t *canonical.Table) *Registry {
	names := metricNames(t)

	values := make(map[string][]float64, len(names))
	seen := make(map[string]map[cell]bool, len(names))
	for _, r := range t.Records {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			continue
		}
		values[r.Metric] = append(values[r.Metric], r.Value)
		if seen[r.Metric] == nil {
			seen[r.Metric] = make(map[cell]bool)
		}
		seen[r.Metric][cell{r.Period, r.Entity}] = true
	}

	reg := newRegistry()
	var prices, volumes []string
	for i, name := range names {
		tokens := tokenize(name)
		semantic, rule := inferType(tokens, values[name])
		d := Descriptor{
			Name:           name,
			SemanticType:   semantic,
			DriverCategory: DriverOther,
			TypeRule:       rule,
			Order:          i,
		}
		if dr, ok := matchRule(tokens, driverRules); ok {
			d.DriverCategory = dr.result
		}
		switch d.DriverCategory {
		case DriverPrice:
			prices = append(prices, name)
		case DriverVolume:
			volumes = append(volumes, name)
		}
		reg.add(d)
	}

	for _, name := range names {
		d := reg.metrics[name]
		if d.SemanticType == Flow && d.DriverCategory != DriverPrice && d.DriverCategory != DriverVolume {
			switch {
			case len(prices) == 1 && len(volumes) == 1:
				if coObserved(seen[name], seen[prices[0]], seen[volumes[0]]) {
					d.Decomposable = true
					d.PriceMetric = prices[0]
					d.VolumeMetric = volumes[0]
				}
			case len(prices) > 1 || len(volumes) > 1:
				reg.notes = append(reg.notes, Note{
					Kind:   NoteAmbiguousDecomposition,
					Metric: name,
					Message: fmt.Sprintf("price candidates [%s], volume candidates [%s]; exactly one of each is required",
						strings.Join(prices, ", "), strings.Join(volumes, ", ")),
				})
			}
		}
		d.Priority = priorityOf(d.SemanticType, d.Decomposable)
		reg.metrics[name] = d
	}
	return reg
}

// metricNames returns the table's metric list followed by any metric seen
// only in the records.
func metricNames(t *canonical.Table) []string {
	names := make([]string, 0, len(t.Metrics))
	known := make(map[string]bool, len(t.Metrics))
	for _, m := range t.Metrics {
		if !known[m] {
			known[m] = true
			names = append(names, m)
		}
	}
	for _, r := range t.Records {
		if !known[r.Metric] {
			known[r.Metric] = true
			names = append(names, r.Metric)
		}
	}
	return names
}

func coObserved(flow, price, volume map[cell]bool) bool {
	for c := range flow {
		if price[c] && volume[c] {
			return true
		}
	}
	return false
}

// inferType applies the name rules, then the value-shape rules, and
// finally defaults to Flow.
func inferType(tokens []string, values []float64) (SemanticType, string) {
	if rule, ok := matchRule(tokens, typeKeywordRules); ok {
		return rule.result, rule.name
	}
	if len(values) == 0 {
		return Flow, "default"
	}

	n := float64(len(values))
	var unit, pct, nonNegInt int
	nonIntegral := false
	var sum float64
	for _, v := range values {
		sum += v
		integral := v == math.Trunc(v)
		if !integral {
			nonIntegral = true
		}
		if v >= 0 && v <= 1 {
			unit++
		}
		if v >= 0 && v <= percentageMax {
			pct++
		}
		if v >= 0 && integral {
			nonNegInt++
		}
	}

	if float64(unit)/n >= shapeShare {
		return Ratio, "values within [0,1]"
	}
	if nonIntegral && float64(pct)/n >= shapeShare {
		return Ratio, "fractional values within [0,100]"
	}
	if float64(nonNegInt)/n >= shapeShare {
		mean := sum / n
		var ss float64
		for _, v := range values {
			ss += (v - mean) * (v - mean)
		}
		std := math.Sqrt(ss / n)
		if mean > 0 && std/mean <= levelMaxCV {
			return Level, "low-variance non-negative integers"
		}
	}
	return Flow, "default"
}
