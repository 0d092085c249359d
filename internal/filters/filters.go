// Package filters implements the premium partner-search filter object:
// a fixed six-field spec with merge-not-replace updates, range clamping
// and a premium-gated panel wrapper.
package filters

// Hard bounds for the numeric range controls.
const (
	AgeBoundMin    = 18
	AgeBoundMax    = 65
	HeightBoundMin = 140
	HeightBoundMax = 220
)

// Spec is the full filter object reported on every change. Empty strings
// mean "any"; ranges are ordered [min, max] pairs.
type Spec struct {
	Gender      string `json:"gender"`
	Country     string `json:"country"`
	AgeRange    [2]int `json:"ageRange"`
	HeightRange [2]int `json:"heightRange"`
	Race        string `json:"race"`
	Religion    string `json:"religion"`
}

// DefaultSpec returns the initial filter object: all categorical fields
// empty, age 18-65, height 150-200.
func DefaultSpec() Spec {
	return Spec{
		AgeRange:    [2]int{18, 65},
		HeightRange: [2]int{150, 200},
	}
}

// Merge returns a copy of s with the single named field replaced. All
// other fields are left untouched. Unknown fields and values of the
// wrong type leave the spec unchanged; range values are clamped to their
// bounds and reordered so min <= max. Merge never fails.
func (s Spec) Merge(field string, value interface{}) Spec {
	switch field {
	case "gender":
		if v, ok := value.(string); ok {
			s.Gender = v
		}
	case "country":
		if v, ok := value.(string); ok {
			s.Country = v
		}
	case "race":
		if v, ok := value.(string); ok {
			s.Race = v
		}
	case "religion":
		if v, ok := value.(string); ok {
			s.Religion = v
		}
	case "ageRange":
		if v, ok := asRange(value); ok {
			s.AgeRange = clampRange(v, AgeBoundMin, AgeBoundMax)
		}
	case "heightRange":
		if v, ok := asRange(value); ok {
			s.HeightRange = clampRange(v, HeightBoundMin, HeightBoundMax)
		}
	}
	return s
}

// Normalize returns the spec with both ranges clamped and ordered. Used
// at the query boundary before the spec reaches storage.
func (s Spec) Normalize() Spec {
	s.AgeRange = clampRange(s.AgeRange, AgeBoundMin, AgeBoundMax)
	s.HeightRange = clampRange(s.HeightRange, HeightBoundMin, HeightBoundMax)
	return s
}

// IsDefault reports whether the spec equals DefaultSpec, i.e. the caller
// has not narrowed anything.
func (s Spec) IsDefault() bool {
	return s == DefaultSpec()
}

func asRange(value interface{}) ([2]int, bool) {
	switch v := value.(type) {
	case [2]int:
		return v, true
	case []int:
		if len(v) == 2 {
			return [2]int{v[0], v[1]}, true
		}
	}
	return [2]int{}, false
}

func clampRange(r [2]int, lo, hi int) [2]int {
	if r[0] > r[1] {
		r[0], r[1] = r[1], r[0]
	}
	if r[0] < lo {
		r[0] = lo
	}
	if r[1] > hi {
		r[1] = hi
	}
	if r[0] > hi {
		r[0] = hi
	}
	if r[1] < lo {
		r[1] = lo
	}
	return r
}
