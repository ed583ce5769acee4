package classify

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrQualityGate marks a well-formed result rejected on content grounds.
var ErrQualityGate = errors.New("quality gate rejected result")

// DefaultMinObservations is the shortest observations narrative accepted, in runes.
const DefaultMinObservations = 200

// Gate enforces semantic minimums beyond schema validity.
type Gate struct {
	MinObservations int
}

// Check returns nil when r is acceptable.
func (g Gate) Check(r *Result) error {
	if r == nil {
		return fmt.Errorf("%w: empty result", ErrQualityGate)
	}
	minChars := g.MinObservations
	if minChars <= 0 {
		minChars = DefaultMinObservations
	}
	if n := utf8.RuneCountInString(r.Observations); n < minChars {
		return fmt.Errorf("%w: observations has %d characters, need at least %d", ErrQualityGate, n, minChars)
	}
	return nil
}
