package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTimeColumn is matched by errors.Is when no time axis was found.
	ErrNoTimeColumn = errors.New("no time column found")

	// ErrNoMeasures is matched by errors.Is when no measure column was found.
	ErrNoMeasures = errors.New("no measure columns found")
)

// ErrorKind names a fatal detection failure.
type ErrorKind string

const (
	KindNoTimeColumnFound ErrorKind = "NoTimeColumnFound"
	KindNoMeasuresFound   ErrorKind = "NoMeasuresFound"
)

// DetectionError is returned by Detect when the table cannot be analysed.
// Reason identifies the detection threshold that was not met.
type DetectionError struct {
	Kind   ErrorKind
	Reason string
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.sentinel().Error(), e.Reason)
}

// Is makes errors.Is(err, ErrNoTimeColumn) and friends work.
func (e *DetectionError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *DetectionError) sentinel() error {
	if e.Kind == KindNoMeasuresFound {
		return ErrNoMeasures
	}
	return ErrNoTimeColumn
}
