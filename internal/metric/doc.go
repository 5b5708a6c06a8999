// Package metric classifies canonical metrics by semantic type and business
// driver, and decides which flow metrics can be split into price and volume
// effects.
//
// Classification is rule based. Name rules are ordered keyword tables
// matched against whole tokens of the metric name; when no name rule
// matches, the shape of the observed values decides. The first matching
// rule wins and the rule's name is kept on the descriptor for audit.
//
// A flow metric is decomposable only when the table holds exactly one price
// metric and exactly one volume metric, observed together with it for at
// least one (period, entity). More candidates than that leave the metric
// non-decomposable and add an AmbiguousDecomposition note.
package metric
