package metric

// Keyword tables are evaluated in slice order; the first matching rule wins.
// Each keyword is matched against whole tokens of the snake-cased metric
// name. Multi-word keywords ("unit_cost") match a run of consecutive tokens.

type keywordRule[T any] struct {
	name     string
	keywords []string
	result   T
}

var typeKeywordRules = []keywordRule[SemanticType]{
	{
		name: "ratio keyword",
		keywords: []string{
			"rate", "ratio", "pct", "percent", "percentage", "%",
			"avg", "average", "mean", "median", "margin", "discount",
			"share", "yield", "per",
		},
		result: Ratio,
	},
	{
		name:     "price keyword",
		keywords: []string{"price", "asp", "unit_cost", "cost_per"},
		result:   Ratio,
	},
	{
		name: "flow keyword",
		keywords: []string{
			"revenue", "sales", "amount", "cost", "spend", "expense",
			"income", "profit", "turnover", "gmv", "payment", "value", "gross",
		},
		result: Flow,
	},
	{
		name: "level keyword",
		keywords: []string{
			"count", "qty", "quantity", "units", "unit", "volume",
			"headcount", "inventory", "balance", "stock", "number", "orders",
		},
		result: Level,
	},
}

var driverRules = []keywordRule[DriverCategory]{
	{
		name:     "discount",
		keywords: []string{"discount", "promotion", "promo", "rebate", "markdown"},
		result:   DriverDiscount,
	},
	{
		name:     "price",
		keywords: []string{"price", "asp", "unit_cost", "cost_per"},
		result:   DriverPrice,
	},
	{
		name: "volume",
		keywords: []string{
			"quantity", "qty", "count", "volume", "units", "unit",
			"orders", "transactions", "shipments",
		},
		result: DriverVolume,
	},
	{
		name:     "quality",
		keywords: []string{"rating", "score", "satisfaction", "nps", "csat", "quality"},
		result:   DriverQuality,
	},
}

// Shape thresholds used when no name rule matches.
const (
	shapeShare    = 0.95
	levelMaxCV    = 0.5
	percentageMax = 100
)

func matchRule[T any](tokens []string, rules []keywordRule[T]) (keywordRule[T], bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if containsRun(tokens, tokenize(kw)) {
				return rule, true
			}
		}
	}
	return keywordRule[T]{}, false
}
