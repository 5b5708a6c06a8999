package variance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Undefined is the marker emitted for a percent change from zero.
const Undefined = "undefined"

// Percent is a relative change expressed as a fraction. It is undefined
// when the base value is zero.
type Percent struct {
	Value   float64
	Defined bool
}

// PercentChange returns delta/from, or an undefined Percent when from is 0.
func PercentChange(delta, from float64) Percent {
	if from == 0 {
		return Percent{}
	}
	return Percent{Value: delta / from, Defined: true}
}

func (p Percent) String() string {
	if !p.Defined {
		return Undefined
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Defined {
		return []byte(`"` + Undefined + `"`), nil
	}
	return json.Marshal(p.Value)
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"`+Undefined+`"`)) || bytes.Equal(data, []byte("null")) {
		*p = Percent{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("pct_delta: %w", err)
	}
	*p = Percent{Value: v, Defined: true}
	return nil
}

// ParsePercent reverses String.
func ParsePercent(s string) (Percent, error) {
	if s == Undefined || s == "" {
		return Percent{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Percent{}, fmt.Errorf("pct_delta %q: %w", s, err)
	}
	return Percent{Value: v, Defined: true}, nil
}
