// Package canonical reshapes a raw wide table into long format: one record
// per (period, entity, metric) triple.
//
// Periods are normalized to the detected granularity so they sort
// chronologically as strings. Entities are composite keys of "column:value"
// fragments joined by "|", or AllEntities when the schema has no grouping
// columns. Pivot is the inverse transform.
package canonical
