// Package dataset holds the raw tabular model consumed by the analysis
// pipeline and the file adapters that produce it.
//
// A Table is an ordered list of column names plus row-major string cells.
// Nothing in this package interprets cell contents: type inference belongs
// to the schema package. Readers only deal with the mechanics of getting
// cells out of a file:
//
//   - CSV: UTF-8 BOM removal, invalid UTF-8 replacement, ragged rows,
//     Excel formula prefixes (="...") and blank lines.
//   - Excel: first sheet by default, or a named sheet.
//
// Writers produce CSV from a Table, which is how pivoted canonical tables
// are exported for inspection.
package dataset
