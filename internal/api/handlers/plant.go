package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/plantrec/internal/api"
	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/service"
)

type CatalogService interface {
	Get(ctx context.Context, id string) (*domain.Plant, error)
	List(ctx context.Context, input service.ListPlantsInput) (*service.ListPlantsOutput, error)
	Upsert(ctx context.Context, p *domain.Plant) (*domain.Plant, error)
	Delete(ctx context.Context, id string) error
}

type PlantHandler struct {
	svc CatalogService
}

func NewPlantHandler(svc CatalogService) *PlantHandler {
	return &PlantHandler{svc: svc}
}

// PlantRequest is the body of PUT /plants/{id}. Ratings accept free-form
// text such as "good" or "moderate".
type PlantRequest struct {
	ID             string `json:"id" validate:"omitempty,max=128"`
	Name           string `json:"name" validate:"required,max=200"`
	CommonName     string `json:"common_name" validate:"max=200"`
	ScientificName string `json:"scientific_name" validate:"max=200"`
	Category       string `json:"category" validate:"max=64"`

	HeightMin *float64 `json:"height_min" validate:"omitempty,gte=0"`
	HeightMax *float64 `json:"height_max" validate:"omitempty,gte=0"`
	WidthMin  *float64 `json:"width_min" validate:"omitempty,gte=0"`
	WidthMax  *float64 `json:"width_max" validate:"omitempty,gte=0"`

	SunRequirement   string `json:"sun_requirement" validate:"max=100"`
	SoilType         string `json:"soil_type" validate:"max=100"`
	WaterNeed        string `json:"water_need" validate:"max=100"`
	HardinessZone    string `json:"hardiness_zone" validate:"max=20"`
	MaintenanceLevel string `json:"maintenance_level" validate:"max=50"`
	BloomSeason      string `json:"bloom_season" validate:"max=100"`
	BloomColor       string `json:"bloom_color" validate:"max=100"`
	FoliageColor     string `json:"foliage_color" validate:"max=100"`

	SoilPHMin *float64 `json:"soil_ph_min" validate:"omitempty,gte=0,lte=14"`
	SoilPHMax *float64 `json:"soil_ph_max" validate:"omitempty,gte=0,lte=14"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`

	Native                 bool `json:"native"`
	PollinatorFriendly     bool `json:"pollinator_friendly"`
	DeerResistant          bool `json:"deer_resistant"`
	SuitableForContainers  bool `json:"suitable_for_containers"`
	SuitableForHedging     bool `json:"suitable_for_hedging"`
	SuitableForScreening   bool `json:"suitable_for_screening"`
	SuitableForGroundcover bool `json:"suitable_for_groundcover"`
	SuitableForSlopes      bool `json:"suitable_for_slopes"`

	PestResistance    string `json:"pest_resistance" validate:"max=32"`
	DiseaseResistance string `json:"disease_resistance" validate:"max=32"`
	WildlifeValue     string `json:"wildlife_value" validate:"max=32"`
}

func (req *PlantRequest) toPlant(id string) *domain.Plant {
	return &domain.Plant{
		ID:                     id,
		Name:                   req.Name,
		CommonName:             req.CommonName,
		ScientificName:         req.ScientificName,
		Category:               req.Category,
		HeightMin:              req.HeightMin,
		HeightMax:              req.HeightMax,
		WidthMin:               req.WidthMin,
		WidthMax:               req.WidthMax,
		SunRequirement:         req.SunRequirement,
		SoilType:               req.SoilType,
		WaterNeed:              req.WaterNeed,
		HardinessZone:          req.HardinessZone,
		MaintenanceLevel:       req.MaintenanceLevel,
		BloomSeason:            req.BloomSeason,
		BloomColor:             req.BloomColor,
		FoliageColor:           req.FoliageColor,
		SoilPHMin:              req.SoilPHMin,
		SoilPHMax:              req.SoilPHMax,
		Price:                  req.Price,
		Native:                 req.Native,
		PollinatorFriendly:     req.PollinatorFriendly,
		DeerResistant:          req.DeerResistant,
		SuitableForContainers:  req.SuitableForContainers,
		SuitableForHedging:     req.SuitableForHedging,
		SuitableForScreening:   req.SuitableForScreening,
		SuitableForGroundcover: req.SuitableForGroundcover,
		SuitableForSlopes:      req.SuitableForSlopes,
		PestResistance:         domain.Rating(req.PestResistance),
		DiseaseResistance:      domain.Rating(req.DiseaseResistance),
		WildlifeValue:          domain.Rating(req.WildlifeValue),
	}
}

type PlantListResponse struct {
	Items   []service.PlantView `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func (h *PlantHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.HandleError(w, r, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid limit", err))
			return
		}
		limit = n
	}

	out, err := h.svc.List(r.Context(), service.ListPlantsInput{
		Category: q.Get("category"),
		Cursor:   q.Get("cursor"),
		Limit:    limit,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	items := make([]service.PlantView, 0, len(out.Items))
	for _, p := range out.Items {
		items = append(items, service.NewPlantView(p))
	}
	api.Success(w, http.StatusOK, PlantListResponse{Items: items, Cursor: out.Cursor, HasMore: out.HasMore})
}

func (h *PlantHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, service.NewPlantView(p))
}

// Put creates or replaces the plant named in the URL.
func (h *PlantHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PlantRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, r, err)
		return
	}
	if err := api.Validate(&req); err != nil {
		api.HandleError(w, r, err)
		return
	}
	if req.ID != "" && req.ID != id {
		api.HandleError(w, r, domain.NewDomainError(domain.ErrCodeValidation, "id in body does not match URL"))
		return
	}

	p, err := h.svc.Upsert(r.Context(), req.toPlant(id))
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, service.NewPlantView(p))
}

func (h *PlantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
