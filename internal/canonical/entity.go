package canonical

import (
	"errors"
	"fmt"
	"strings"
)

// AllEntities is the entity key used when the schema has no entity columns.
const AllEntities = "__all__"

const (
	fragmentSep = '|'
	valueSep    = ':'
	escapeChar  = '\\'
)

// Fragment is one "column:value" part of an entity key.
type Fragment struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// EntityKey joins column/value pairs into a composite key, in column order.
// Separators inside names or values are backslash-escaped, so keys built
// from clean values stay splittable on "|" and ParseEntity always recovers
// the original fragments.
func EntityKey(columns, values []string) string {
	if len(columns) == 0 {
		return AllEntities
	}
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteRune(fragmentSep)
		}
		writeEscaped(&b, col)
		b.WriteRune(valueSep)
		if i < len(values) {
			writeEscaped(&b, values[i])
		}
	}
	return b.String()
}

func writeEscaped(b *strings.Builder, s string) {
	for _, r := range s {
		if r == fragmentSep || r == valueSep || r == escapeChar {
			b.WriteRune(escapeChar)
		}
		b.WriteRune(r)
	}
}

var errTrailingEscape = errors.New("trailing escape character")

// ParseEntity splits an entity key back into its fragments.
// AllEntities yields no fragments.
func ParseEntity(key string) ([]Fragment, error) {
	if key == AllEntities {
		return nil, nil
	}

	var (
		frags    []Fragment
		col, val strings.Builder
		inValue  bool
		escaped  bool
	)
	flush := func() error {
		if !inValue {
			return fmt.Errorf("entity key %q: fragment %q has no %q separator", key, col.String(), valueSep)
		}
		frags = append(frags, Fragment{Column: col.String(), Value: val.String()})
		col.Reset()
		val.Reset()
		inValue = false
		return nil
	}

	for _, r := range key {
		cur := &col
		if inValue {
			cur = &val
		}
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == escapeChar:
			escaped = true
		case r == fragmentSep:
			if err := flush(); err != nil {
				return nil, err
			}
		case r == valueSep && !inValue:
			inValue = true
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("entity key %q: %w", key, errTrailingEscape)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return frags, nil
}
