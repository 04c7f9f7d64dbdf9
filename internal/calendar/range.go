package calendar

import "iter"

// Range is a half-open span of days [Start, End).  End is the checkout day
// and is not part of the range.
type Range struct {
	Start Date
	End   Date
}

// NewRange builds a Range without validating the order of its bounds.
func NewRange(start, end Date) Range { return Range{Start: start, End: end} }

// Empty reports whether the range contains no days (End <= Start).
func (r Range) Empty() bool { return !r.Start.Before(r.End) }

// Nights is the number of days in the range, zero when empty.
func (r Range) Nights() int {
	if r.Empty() {
		return 0
	}
	return r.Start.DaysUntil(r.End)
}

// Intersect returns the days r and o have in common.  The result is empty
// when they do not overlap.
func (r Range) Intersect(o Range) Range {
	out := r
	if o.Start.After(out.Start) {
		out.Start = o.Start
	}
	if o.End.Before(out.End) {
		out.End = o.End
	}
	return out
}

// Overlaps is the half-open overlap test: o.Start < r.End && o.End > r.Start.
// Ranges that only touch (one's End equals the other's Start) do not overlap.
func (r Range) Overlaps(o Range) bool {
	return o.Start.Before(r.End) && o.End.After(r.Start)
}

// Days yields every day in [Start, End) in ascending order.  The sequence
// is empty when End <= Start and may be ranged over any number of times.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.Start; d.Before(r.End); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) String() string { return r.Start.String() + "/" + r.End.String() }
