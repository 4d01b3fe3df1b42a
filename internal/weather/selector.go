package weather

import "fmt"

// DateSelector selects either a single date or an inclusive date range.
// The zero value is not a valid selector; use On or Between.
type DateSelector struct {
	start Date
	end   Date
}

// On selects exactly one date.
func On(d Date) DateSelector {
	return DateSelector{start: d, end: d}
}

// Between selects the inclusive range [start, end].
func Between(start, end Date) (DateSelector, error) {
	if end.Before(start) {
		return DateSelector{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	return DateSelector{start: start, end: end}, nil
}

func (s DateSelector) Start() Date { return s.start }
func (s DateSelector) End() Date   { return s.end }

// IsSingle reports whether the selector covers exactly one date.
func (s DateSelector) IsSingle() bool {
	return s.start == s.end
}

// Contains reports whether d falls within the selector, bounds included.
func (s DateSelector) Contains(d Date) bool {
	return !d.Before(s.start) && !d.After(s.end)
}

func (s DateSelector) String() string {
	if s.IsSingle() {
		return s.start.String()
	}
	return s.start.String() + ".." + s.end.String()
}
