package metric

// SemanticType says how a metric aggregates over time.
type SemanticType string

const (
	Level SemanticType = "level" // counts and quantities
	Flow  SemanticType = "flow"  // period-aggregatable amounts
	Ratio SemanticType = "ratio" // percentages, averages, rates
)

// DriverCategory is the business driver a metric represents.
type DriverCategory string

const (
	DriverPrice    DriverCategory = "price"
	DriverVolume   DriverCategory = "volume"
	DriverQuality  DriverCategory = "quality"
	DriverDiscount DriverCategory = "discount"
	DriverOther    DriverCategory = "other"
)

// Priority tiers, lower is more important.
const (
	PriorityDecomposableFlow = 1
	PriorityFlow             = 2
	PriorityRatio            = 3
	PriorityLevel            = 4
)

// Descriptor is the classification of one metric.
type Descriptor struct {
	Name           string         `json:"name"`
	SemanticType   SemanticType   `json:"semantic_type"`
	DriverCategory DriverCategory `json:"driver_category"`
	Decomposable   bool           `json:"decomposable"`
	Priority       int            `json:"priority"`

	// PriceMetric and VolumeMetric name the counterparts used to decompose
	// a decomposable flow metric.
	PriceMetric  string `json:"price_metric,omitempty"`
	VolumeMetric string `json:"volume_metric,omitempty"`

	// TypeRule records which rule decided SemanticType.
	TypeRule string `json:"type_rule"`

	// Order is the metric's first-seen position in the canonical table.
	Order int `json:"order"`
}

// NoteKind names a non-fatal classification finding.
type NoteKind string

const NoteAmbiguousDecomposition NoteKind = "AmbiguousDecomposition"

// Note is a non-fatal finding recorded while building a registry.
type Note struct {
	Kind    NoteKind `json:"kind"`
	Metric  string   `json:"metric"`
	Message string   `json:"message"`
}

func priorityOf(t SemanticType, decomposable bool) int {
	switch {
	case t == Flow && decomposable:
		return PriorityDecomposableFlow
	case t == Flow:
		return PriorityFlow
	case t == Ratio:
		return PriorityRatio
	default:
		return PriorityLevel
	}
}
