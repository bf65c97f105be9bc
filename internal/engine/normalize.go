package engine

import (
	"regexp"
	"strings"
)

// synonyms maps free-form spellings onto a canonical class.
type synonyms map[string]string

var (
	sunClasses = synonyms{
		"full sun":      "full_sun",
		"fullsun":       "full_sun",
		"sun":           "full_sun",
		"sunny":         "full_sun",
		"part sun":      "partial_shade",
		"partial sun":   "partial_shade",
		"part shade":    "partial_shade",
		"partial shade": "partial_shade",
		"semi shade":    "partial_shade",
		"dappled shade": "partial_shade",
		"dappled":       "partial_shade",
		"full shade":    "full_shade",
		"shade":         "full_shade",
		"deep shade":    "full_shade",
	}

	soilClasses = synonyms{
		"clay":         "clay",
		"clay loam":    "clay",
		"loam":         "loam",
		"loamy":        "loam",
		"sand":         "sand",
		"sandy":        "sand",
		"sandy loam":   "sand",
		"silt":         "silt",
		"silty":        "silt",
		"chalk":        "chalk",
		"chalky":       "chalk",
		"peat":         "peat",
		"peaty":        "peat",
		"well drained": "well_drained",
		"rocky":        "rocky",
		"any":          "any",
		"adaptable":    "any",
	}

	// moistureClasses covers both the caller's site moisture and the
	// plant's water need, which share one low/medium/high scale.
	moistureClasses = synonyms{
		"dry":              "low",
		"low":              "low",
		"drought":          "low",
		"drought tolerant": "low",
		"xeric":            "low",
		"medium":           "medium",
		"moderate":         "medium",
		"average":          "medium",
		"moist":            "medium",
		"normal":           "medium",
		"wet":              "high",
		"high":             "high",
		"boggy":            "high",
		"saturated":        "high",
	}

	maintenanceClasses = synonyms{
		"low":       "low",
		"minimal":   "low",
		"easy":      "low",
		"medium":    "medium",
		"moderate":  "medium",
		"average":   "medium",
		"high":      "high",
		"intensive": "high",
	}

	seasonClasses = synonyms{
		"spring":       "spring",
		"early spring": "spring",
		"late spring":  "spring",
		"summer":       "summer",
		"early summer": "summer",
		"late summer":  "summer",
		"midsummer":    "summer",
		"fall":         "fall",
		"autumn":       "fall",
		"early fall":   "fall",
		"late fall":    "fall",
		"winter":       "winter",
		"year round":   "year_round",
		"all year":     "year_round",
	}
)

var (
	listSeparators = regexp.MustCompile(`\s*(?:,|;|/|\||&|\bto\b|\bor\b|\band\b)\s*`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return spaceRun.ReplaceAllString(s, " ")
}

// canonical resolves a single value to its class. Values already in
// canonical form resolve to themselves.
func (t synonyms) canonical(value string) (string, bool) {
	tok := normalizeToken(value)
	if tok == "" {
		return "", false
	}
	if c, ok := t[tok]; ok {
		return c, true
	}
	for _, c := range t {
		if normalizeToken(c) == tok {
			return c, true
		}
	}
	return "", false
}

// classes splits a possibly multi-valued attribute ("Full Sun, Part Shade")
// and resolves every part. Unrecognized parts are dropped.
func (t synonyms) classes(value string) map[string]bool {
	out := make(map[string]bool)
	if c, ok := t.canonical(value); ok {
		out[c] = true
		return out
	}
	for _, part := range listSeparators.Split(strings.ToLower(value), -1) {
		if c, ok := t.canonical(part); ok {
			out[c] = true
		}
	}
	return out
}

// seasonSet is classes for bloom seasons that also treats hyphens as range separators
// ("Spring-Summer").
func seasonSet(value string) map[string]bool {
	out := seasonClasses.classes(value)
	if len(out) > 0 {
		return out
	}
	for _, part := range strings.Split(value, "-") {
		if c, ok := seasonClasses.canonical(part); ok {
			out[c] = true
		}
	}
	return out
}

// classMatch reports how a desired class compares with a plant's attribute.
type classMatch int

const (
	classUnknown classMatch = iota
	classMatched
	classMismatched
)

func matchClass(t synonyms, desired, actual string) classMatch {
	want, ok := t.canonical(desired)
	if !ok {
		return classUnknown
	}
	have := t.classes(actual)
	if len(have) == 0 {
		return classUnknown
	}
	if have[want] || have["any"] {
		return classMatched
	}
	return classMismatched
}

func normalizePlantType(s string) string {
	s = normalizeToken(s)
	switch {
	case strings.HasSuffix(s, "shrubs"), strings.HasSuffix(s, "trees"),
		strings.HasSuffix(s, "perennials"), strings.HasSuffix(s, "annuals"),
		strings.HasSuffix(s, "grasses"), strings.HasSuffix(s, "vines"),
		strings.HasSuffix(s, "ferns"), strings.HasSuffix(s, "bulbs"),
		strings.HasSuffix(s, "succulents"), strings.HasSuffix(s, "groundcovers"):
		if strings.HasSuffix(s, "grasses") {
			return strings.TrimSuffix(s, "es")
		}
		return strings.TrimSuffix(s, "s")
	}
	return s
}
