package domain

import "math"

// Category names one of the five scoring groups.
type Category string

const (
	CategoryEnvironmental Category = "environmental"
	CategoryDesign        Category = "design"
	CategoryMaintenance   Category = "maintenance"
	CategorySpecial       Category = "special"
	CategoryContext       Category = "context"
)

// Categories lists the scoring groups in aggregation order.
var Categories = []Category{
	CategoryEnvironmental,
	CategoryDesign,
	CategoryMaintenance,
	CategorySpecial,
	CategoryContext,
}

// Weights maps each category to its share of the total score.
type Weights map[Category]float64

// DefaultWeights returns the standard category weights.
func DefaultWeights() Weights {
	return Weights{
		CategoryEnvironmental: 0.30,
		CategoryDesign:        0.25,
		CategoryMaintenance:   0.20,
		CategorySpecial:       0.15,
		CategoryContext:       0.10,
	}
}

// Sum returns the total of all known category weights.
func (w Weights) Sum() float64 {
	var sum float64
	for _, c := range Categories {
		sum += w[c]
	}
	return sum
}

// normalizeWeights fills missing categories from the defaults, drops
// negative or non-finite values and rescales so the weights sum to 1.
func normalizeWeights(in Weights) Weights {
	if len(in) == 0 {
		return DefaultWeights()
	}

	defaults := DefaultWeights()
	out := make(Weights, len(Categories))
	for _, c := range Categories {
		v, ok := in[c]
		if !ok {
			v = defaults[c]
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[c] = v
	}

	sum := out.Sum()
	if sum <= 0 {
		return defaults
	}
	for c, v := range out {
		out[c] = v / sum
	}
	return out
}

// EnvironmentalCriteria describes site conditions.
type EnvironmentalCriteria struct {
	HardinessZone string   `json:"hardiness_zone,omitempty"`
	SunExposure   string   `json:"sun_exposure,omitempty"`
	SoilType      string   `json:"soil_type,omitempty"`
	MoistureLevel string   `json:"moisture_level,omitempty"`
	SoilPH        *float64 `json:"soil_ph,omitempty"`
}

// DesignCriteria describes size and appearance.
type DesignCriteria struct {
	DesiredHeightMin *float64 `json:"desired_height_min,omitempty"`
	DesiredHeightMax *float64 `json:"desired_height_max,omitempty"`
	DesiredWidthMin  *float64 `json:"desired_width_min,omitempty"`
	DesiredWidthMax  *float64 `json:"desired_width_max,omitempty"`
	PreferredColors  []string `json:"preferred_colors,omitempty"`
	BloomSeason      string   `json:"bloom_season,omitempty"`
	PlantTypes       []string `json:"plant_types,omitempty"`
}

// MaintenanceCriteria describes upkeep expectations.
type MaintenanceCriteria struct {
	MaintenanceLevel          string `json:"maintenance_level,omitempty"`
	PestResistanceRequired    bool   `json:"pest_resistance_required,omitempty"`
	DiseaseResistanceRequired bool   `json:"disease_resistance_required,omitempty"`
}

// SpecialCriteria holds boolean requirements and wildlife preference.
type SpecialCriteria struct {
	NativePreference           bool   `json:"native_preference,omitempty"`
	DeerResistantRequired      bool   `json:"deer_resistant_required,omitempty"`
	PollinatorFriendlyRequired bool   `json:"pollinator_friendly_required,omitempty"`
	ContainerSuitable          bool   `json:"container_suitable,omitempty"`
	HedgingSuitable            bool   `json:"hedging_suitable,omitempty"`
	ScreeningSuitable          bool   `json:"screening_suitable,omitempty"`
	GroundcoverSuitable        bool   `json:"groundcover_suitable,omitempty"`
	SlopeSuitable              bool   `json:"slope_suitable,omitempty"`
	WildlifeValue              Rating `json:"wildlife_value,omitempty"`
}

// ProjectContext describes the project the plants are for.
type ProjectContext struct {
	BudgetRange string `json:"budget_range,omitempty"`
	ProjectType string `json:"project_type,omitempty"`
	Ecosystem   string `json:"ecosystem,omitempty"`
}

// Criteria is an immutable description of what the caller wants. Build it
// with NewCriteria; the zero value of every field means "no opinion".
type Criteria struct {
	env         EnvironmentalCriteria
	design      DesignCriteria
	maintenance MaintenanceCriteria
	special     SpecialCriteria
	context     ProjectContext
	weights     Weights
}

// CriteriaOption sets one group of a Criteria during construction.
type CriteriaOption func(*Criteria)

// WithEnvironmental sets the environmental group.
func WithEnvironmental(e EnvironmentalCriteria) CriteriaOption {
	return func(c *Criteria) { c.env = e }
}

// WithDesign sets the design group.
func WithDesign(d DesignCriteria) CriteriaOption {
	return func(c *Criteria) {
		d.PreferredColors = append([]string(nil), d.PreferredColors...)
		d.PlantTypes = append([]string(nil), d.PlantTypes...)
		c.design = d
	}
}

// WithMaintenance sets the maintenance group.
func WithMaintenance(m MaintenanceCriteria) CriteriaOption {
	return func(c *Criteria) { c.maintenance = m }
}

// WithSpecial sets the special-requirements group.
func WithSpecial(s SpecialCriteria) CriteriaOption {
	return func(c *Criteria) { c.special = s }
}

// WithContext sets the project context group.
func WithContext(p ProjectContext) CriteriaOption {
	return func(c *Criteria) { c.context = p }
}

// WithWeights overrides category weights. Missing categories keep their
// default; the result is rescaled to sum to 1.
func WithWeights(w Weights) CriteriaOption {
	return func(c *Criteria) {
		cp := make(Weights, len(w))
		for k, v := range w {
			cp[k] = v
		}
		c.weights = cp
	}
}

// NewCriteria builds a Criteria with defaults filled in.
func NewCriteria(opts ...CriteriaOption) Criteria {
	var c Criteria
	for _, opt := range opts {
		opt(&c)
	}
	c.weights = normalizeWeights(c.weights)
	if c.design.PreferredColors == nil {
		c.design.PreferredColors = []string{}
	}
	if c.design.PlantTypes == nil {
		c.design.PlantTypes = []string{}
	}
	return c
}

func (c Criteria) Environmental() EnvironmentalCriteria { return c.env }

func (c Criteria) Design() DesignCriteria {
	d := c.design
	d.PreferredColors = append([]string{}, d.PreferredColors...)
	d.PlantTypes = append([]string{}, d.PlantTypes...)
	return d
}

func (c Criteria) Maintenance() MaintenanceCriteria { return c.maintenance }

func (c Criteria) Special() SpecialCriteria { return c.special }

func (c Criteria) Context() ProjectContext { return c.context }

// Weights returns a copy of the normalized category weights.
func (c Criteria) Weights() Weights {
	if c.weights == nil {
		return DefaultWeights()
	}
	out := make(Weights, len(c.weights))
	for k, v := range c.weights {
		out[k] = v
	}
	return out
}

// Weight returns the weight of a single category.
func (c Criteria) Weight(cat Category) float64 {
	if c.weights == nil {
		return DefaultWeights()[cat]
	}
	return c.weights[cat]
}

// Snapshot is the serializable form of a Criteria, used for request logs.
type Snapshot struct {
	Environmental EnvironmentalCriteria `json:"environmental"`
	Design        DesignCriteria        `json:"design"`
	Maintenance   MaintenanceCriteria   `json:"maintenance"`
	Special       SpecialCriteria       `json:"special"`
	Context       ProjectContext        `json:"context"`
	Weights       map[string]float64    `json:"weights"`
}

// Snapshot returns a serializable copy of the criteria.
func (c Criteria) Snapshot() Snapshot {
	w := make(map[string]float64, len(Categories))
	for _, cat := range Categories {
		w[string(cat)] = c.Weight(cat)
	}
	return Snapshot{
		Environmental: c.env,
		Design:        c.Design(),
		Maintenance:   c.maintenance,
		Special:       c.special,
		Context:       c.context,
		Weights:       w,
	}
}

// CriteriaBuilder accumulates options and produces a Criteria.
type CriteriaBuilder struct {
	opts []CriteriaOption
}

// NewCriteriaBuilder returns an empty builder.
func NewCriteriaBuilder() *CriteriaBuilder {
	return &CriteriaBuilder{}
}

func (b *CriteriaBuilder) Environmental(e EnvironmentalCriteria) *CriteriaBuilder {
	b.opts = append(b.opts, WithEnvironmental(e))
	return b
}

func (b *CriteriaBuilder) Design(d DesignCriteria) *CriteriaBuilder {
	b.opts = append(b.opts, WithDesign(d))
	return b
}

func (b *CriteriaBuilder) Maintenance(m MaintenanceCriteria) *CriteriaBuilder {
	b.opts = append(b.opts, WithMaintenance(m))
	return b
}

func (b *CriteriaBuilder) Special(s SpecialCriteria) *CriteriaBuilder {
	b.opts = append(b.opts, WithSpecial(s))
	return b
}

func (b *CriteriaBuilder) Context(p ProjectContext) *CriteriaBuilder {
	b.opts = append(b.opts, WithContext(p))
	return b
}

func (b *CriteriaBuilder) Weights(w Weights) *CriteriaBuilder {
	b.opts = append(b.opts, WithWeights(w))
	return b
}

// Build returns the immutable Criteria. The builder may be reused.
func (b *CriteriaBuilder) Build() Criteria {
	return NewCriteria(b.opts...)
}
