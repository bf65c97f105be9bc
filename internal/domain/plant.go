package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rating is a qualitative low/medium/high attribute such as pest resistance.
type Rating string

const (
	RatingLow    Rating = "low"
	RatingMedium Rating = "medium"
	RatingHigh   Rating = "high"
)

// Rank orders ratings; unknown ratings rank zero.
func (r Rating) Rank() int {
	switch r {
	case RatingLow:
		return 1
	case RatingMedium:
		return 2
	case RatingHigh:
		return 3
	default:
		return 0
	}
}

// ParseRating normalizes free-form rating text. Unrecognized values yield
// the empty rating.
func ParseRating(s string) Rating {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "poor":
		return RatingLow
	case "medium", "moderate", "average", "fair":
		return RatingMedium
	case "high", "good", "excellent":
		return RatingHigh
	default:
		return ""
	}
}

// Plant is a catalog entry. The engine treats it as read-only.
type Plant struct {
	ID             string
	Name           string
	CommonName     string
	ScientificName string
	Category       string

	HeightMin *float64
	HeightMax *float64
	WidthMin  *float64
	WidthMax  *float64

	SunRequirement   string
	SoilType         string
	WaterNeed        string
	HardinessZone    string // "min-max", e.g. "5-9"
	MaintenanceLevel string
	BloomSeason      string
	BloomColor       string
	FoliageColor     string

	SoilPHMin *float64
	SoilPHMax *float64
	Price     *float64

	Native                 bool
	PollinatorFriendly     bool
	DeerResistant          bool
	SuitableForContainers  bool
	SuitableForHedging     bool
	SuitableForScreening   bool
	SuitableForGroundcover bool
	SuitableForSlopes      bool

	PestResistance    Rating
	DiseaseResistance Rating
	WildlifeValue     Rating

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the common name when present, otherwise the name.
func (p *Plant) DisplayName() string {
	if p.CommonName != "" {
		return p.CommonName
	}
	return p.Name
}

// ValidatePlant validates a Plant instance
func ValidatePlant(p *Plant) error {
	if p == nil {
		return fmt.Errorf("plant cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("plant ID is required")
	}

	if p.Name == "" {
		return fmt.Errorf("plant Name is required")
	}

	if p.HeightMin != nil && p.HeightMax != nil && *p.HeightMin > *p.HeightMax {
		return fmt.Errorf("plant height_min must not exceed height_max")
	}

	if p.WidthMin != nil && p.WidthMax != nil && *p.WidthMin > *p.WidthMax {
		return fmt.Errorf("plant width_min must not exceed width_max")
	}

	if p.SoilPHMin != nil && p.SoilPHMax != nil && *p.SoilPHMin > *p.SoilPHMax {
		return fmt.Errorf("plant soil_ph_min must not exceed soil_ph_max")
	}

	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("plant price must not be negative")
	}

	return nil
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
