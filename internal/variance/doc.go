// Package variance computes period-over-period changes for canonical
// metrics and splits the change of decomposable flow metrics into price,
// volume and interaction effects.
//
// Only adjacent periods of the table's global period axis are compared.
// A metric missing from either period of a pair yields no record; the gap
// is counted instead. A zero base value yields an undefined percent change,
// never an infinity.
package variance
