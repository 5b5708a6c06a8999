package metric

import (
	"cmp"
	"encoding/json"
	"slices"
)

// Registry maps metric names to descriptors. It is immutable once built by
// Classify.
type Registry struct {
	metrics map[string]Descriptor
	order   []string
	notes   []Note
}

func newRegistry() *Registry {
	return &Registry{metrics: make(map[string]Descriptor)}
}

func (r *Registry) add(d Descriptor) {
	if _, ok := r.metrics[d.Name]; !ok {
		r.order = append(r.order, d.Name)
	}
	r.metrics[d.Name] = d
}

// Get returns the descriptor for a metric.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.metrics[name]
	return d, ok
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns metric names in first-seen order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Ordered returns descriptors sorted by priority, then first-seen order.
func (r *Registry) Ordered() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.metrics[name])
	}
	slices.SortStableFunc(out, func(a, b Descriptor) int {
		return cmp.Or(cmp.Compare(a.Priority, b.Priority), cmp.Compare(a.Order, b.Order))
	})
	return out
}

// Decomposable returns the names of decomposable metrics in priority order.
func (r *Registry) Decomposable() []string {
	var out []string
	for _, d := range r.Ordered() {
		if d.Decomposable {
			out = append(out, d.Name)
		}
	}
	return out
}

// CountByType returns the number of metrics of each semantic type.
func (r *Registry) CountByType() map[SemanticType]int {
	counts := make(map[SemanticType]int)
	for _, d := range r.metrics {
		counts[d.SemanticType]++
	}
	return counts
}

// Notes returns the non-fatal findings recorded during classification.
func (r *Registry) Notes() []Note {
	return slices.Clone(r.notes)
}

// MarshalJSON encodes the registry as a mapping from metric name to
// descriptor.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.metrics)
}

// UnmarshalJSON restores a registry encoded by MarshalJSON. Notes are not
// part of the encoding.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var m map[string]Descriptor
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	ds := make([]Descriptor, 0, len(m))
	for name, d := range m {
		d.Name = name
		ds = append(ds, d)
	}
	slices.SortFunc(ds, func(a, b Descriptor) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.Name, b.Name))
	})

	*r = Registry{metrics: make(map[string]Descriptor, len(ds))}
	for _, d := range ds {
		r.add(d)
	}
	return nil
}
