// Package schema infers the role of every column of a raw table.
//
// Detection is purely structural: a column's name is only consulted to
// break ties between equally good time axis candidates. Each column ends up
// in exactly one of four roles:
//
//   - time: the single period axis (highest period parse ratio)
//   - entity: repeating grouping keys, including 0/1 flag columns
//   - measure: numeric columns analysed downstream
//   - text: everything else, ignored downstream
//
// All cut-offs live in Thresholds and are passed in by the caller.
//
// Detection fails with a *DetectionError when no time axis or no measure
// column can be found; the error names the threshold that was not met.
package schema
