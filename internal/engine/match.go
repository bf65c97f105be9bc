package engine

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Range is a closed numeric interval. Max may be +Inf.
type Range struct {
	Min float64
	Max float64
}

// NewRange builds a range from optional bounds. A missing lower bound is
// zero and a missing upper bound is open. ok is false when both are nil.
func NewRange(min, max *float64) (r Range, ok bool) {
	if min == nil && max == nil {
		return Range{}, false
	}
	r = Range{Min: 0, Max: math.Inf(1)}
	if min != nil {
		r.Min = *min
	}
	if max != nil {
		r.Max = *max
	}
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r, true
}

// Overlaps reports whether the two closed intervals share any value.
func (r Range) Overlaps(o Range) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

// Contains reports whether v lies inside the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Midpoint returns the center of the interval, or Min for open ranges.
func (r Range) Midpoint() float64 {
	if math.IsInf(r.Max, 1) {
		return r.Min
	}
	return (r.Min + r.Max) / 2
}

// Gap returns the distance between two disjoint intervals, zero when they
// overlap.
func (r Range) Gap(o Range) float64 {
	switch {
	case r.Overlaps(o):
		return 0
	case r.Max < o.Min:
		return o.Min - r.Max
	default:
		return r.Min - o.Max
	}
}

func (r Range) String() string {
	if math.IsInf(r.Max, 1) {
		return formatNumber(r.Min) + "+"
	}
	if r.Min == r.Max {
		return formatNumber(r.Min)
	}
	return formatNumber(r.Min) + "-" + formatNumber(r.Max)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type rangeOutcome int

const (
	rangeOverlap rangeOutcome = iota
	rangeNearMiss
	rangeMiss
)

// compareRanges classifies how a plant's range relates to the desired one.
// Disjoint ranges whose midpoints differ by at most tolerance are a near miss.
func compareRanges(have, want Range, tolerance float64) rangeOutcome {
	if have.Overlaps(want) {
		return rangeOverlap
	}
	if math.Abs(have.Midpoint()-want.Midpoint()) <= tolerance {
		return rangeNearMiss
	}
	return rangeMiss
}

// RangesCompatible reports whether two optional ranges overlap. Missing
// ranges are compatible with everything.
func RangesCompatible(haveMin, haveMax, wantMin, wantMax *float64) bool {
	have, ok := NewRange(haveMin, haveMax)
	if !ok {
		return true
	}
	want, ok := NewRange(wantMin, wantMax)
	if !ok {
		return true
	}
	return have.Overlaps(want)
}

var zoneNumber = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([ab])?`)

// ParseZone parses hardiness zone notations such as "5-9", "5a-8b", "7" or
// "zones 3 to 7". Subzone "b" adds half a zone.
func ParseZone(s string) (Range, bool) {
	matches := zoneNumber.FindAllStringSubmatch(strings.ToLower(s), -1)
	if len(matches) == 0 || len(matches) > 2 {
		return Range{}, false
	}
	values := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Range{}, false
		}
		if m[2] == "b" {
			v += 0.5
		}
		values = append(values, v)
	}
	sort.Float64s(values)
	return Range{Min: values[0], Max: values[len(values)-1]}, true
}

// ZonesCompatible reports whether two zone strings overlap. ok is false when
// either side cannot be parsed.
func ZonesCompatible(plantZone, desiredZone string) (compatible, ok bool) {
	have, okHave := ParseZone(plantZone)
	want, okWant := ParseZone(desiredZone)
	if !okHave || !okWant {
		return false, false
	}
	return have.Overlaps(want), true
}

// PHCompatible reports whether target lies within the plant's tolerated pH
// interval. ok is false when the plant has no pH data.
func PHCompatible(target float64, min, max *float64) (compatible, ok bool) {
	r, ok := NewRange(min, max)
	if !ok {
		return false, false
	}
	return r.Contains(target), true
}

var budgetBands = map[string]Range{
	"low":     {Min: 0, Max: 50},
	"medium":  {Min: 50, Max: 150},
	"high":    {Min: 150, Max: 400},
	"premium": {Min: 400, Max: math.Inf(1)},
}

// BudgetBand returns the price interval of a named band.
func BudgetBand(name string) (Range, bool) {
	r, ok := budgetBands[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// BudgetCompatible reports whether price falls within the named band.
// known is false for unrecognized band names.
func BudgetCompatible(price float64, band string) (compatible, known bool) {
	r, ok := BudgetBand(band)
	if !ok {
		return false, false
	}
	return r.Contains(price), true
}

// MatchColor returns the first preferred color found as a case-insensitive
// substring of any of the plant's colors.
func MatchColor(preferred []string, plantColors ...string) (string, bool) {
	for _, want := range preferred {
		w := strings.ToLower(strings.TrimSpace(want))
		if w == "" {
			continue
		}
		for _, have := range plantColors {
			if strings.Contains(strings.ToLower(have), w) {
				return want, true
			}
		}
	}
	return "", false
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
