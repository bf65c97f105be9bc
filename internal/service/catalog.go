package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/plantrec/internal/cache"
	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/logging"
	"github.com/cloo-solutions/plantrec/internal/pagination"
	"github.com/cloo-solutions/plantrec/internal/telemetry"
)

// PlantRepositoryInterface defines the repository interface for the plant catalog
type PlantRepositoryInterface interface {
	ListAll(ctx context.Context) ([]*domain.Plant, error)
	GetByID(ctx context.Context, id string) (*domain.Plant, error)
	ListWithCursor(ctx context.Context, filter PlantFilter, cursor *pagination.Cursor, limit int) (*PlantPageResult, error)
	Upsert(ctx context.Context, p *domain.Plant) error
	Delete(ctx context.Context, id string) error
}

// PlantFilter narrows a catalog listing.
type PlantFilter struct {
	Category string
}

type PlantPageResult struct {
	Items      []*domain.Plant
	NextCursor string
	HasMore    bool
}

type ListPlantsInput struct {
	Category string
	Cursor   string
	Limit    int
}

type ListPlantsOutput struct {
	Items   []*domain.Plant
	Cursor  string
	HasMore bool
}

// catalogSnapshotKey holds the full catalog used by the scoring pass.
var catalogSnapshotKey = cache.Key(cache.NamespacePlants, "catalog")

// CatalogService reads and maintains the plant catalog. Every write purges
// the plant and recommendation cache namespaces.
type CatalogService struct {
	plants PlantRepositoryInterface
	tx     TxRunner
	cache  *cache.Cache
	ttl    time.Duration
	now    func() time.Time
}

// NewCatalogService creates a CatalogService. ttl bounds how long the
// catalog snapshot is served from cache.
func NewCatalogService(plants PlantRepositoryInterface, tx TxRunner, c *cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{
		plants: plants,
		tx:     tx,
		cache:  c,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Catalog returns every plant ordered by id. It is the read-only snapshot
// the engine scores against.
func (s *CatalogService) Catalog(ctx context.Context) ([]*domain.Plant, error) {
	plants, err := cache.GetOrLoad(ctx, s.cache, catalogSnapshotKey, s.ttl, s.plants.ListAll)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrCatalogFetch.Message, err)
	}
	return plants, nil
}

// Get retrieves a plant by ID
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Plant, error) {
	return s.plants.GetByID(ctx, id)
}

func (s *CatalogService) List(ctx context.Context, input ListPlantsInput) (*ListPlantsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.List", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	result, err := s.plants.ListWithCursor(ctx, PlantFilter{Category: input.Category}, cursor, pagination.ClampLimit(input.Limit))
	if err != nil {
		return nil, err
	}

	return &ListPlantsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Upsert normalizes, validates and stores a plant.
func (s *CatalogService) Upsert(ctx context.Context, p *domain.Plant) (*domain.Plant, error) {
	if p == nil {
		return nil, domain.ErrInvalidPlant
	}

	ctx, span := telemetry.StartSpan(ctx, "CatalogService.Upsert", telemetry.SpanAttributes{
		PlantID:   p.ID,
		Operation: "upsert",
	})
	defer span.End()

	s.prepare(p)
	if err := domain.ValidatePlant(p); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidPlant.Message, err)
	}

	if err := s.plants.Upsert(ctx, p); err != nil {
		span.SetError(err)
		return nil, err
	}

	s.invalidate(ctx)
	return p, nil
}

// Delete removes a plant from the catalog.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.plants.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Import upserts plants in a single transaction. Nothing is written when
// any plant is invalid.
func (s *CatalogService) Import(ctx context.Context, plants []*domain.Plant) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.Import", telemetry.SpanAttributes{
		Operation: "import",
	})
	defer span.End()

	for i, p := range plants {
		s.prepare(p)
		if err := domain.ValidatePlant(p); err != nil {
			return 0, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidPlant.Message,
				fmt.Errorf("entry %d: %w", i, err))
		}
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		for _, p := range plants {
			if err := repos.Plants().Upsert(ctx, p); err != nil {
				return fmt.Errorf("upsert %s: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return 0, err
	}

	s.invalidate(ctx)
	logging.Ctx(ctx).Info().Int("count", len(plants)).Msg("catalog imported")
	return len(plants), nil
}

func (s *CatalogService) prepare(p *domain.Plant) {
	if p == nil {
		return
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.PestResistance = domain.ParseRating(string(p.PestResistance))
	p.DiseaseResistance = domain.ParseRating(string(p.DiseaseResistance))
	p.WildlifeValue = domain.ParseRating(string(p.WildlifeValue))
}

func (s *CatalogService) invalidate(ctx context.Context) {
	s.cache.InvalidateNamespace(ctx, cache.NamespacePlants, cache.NamespaceRecommendations)
	telemetry.AddBreadcrumb(ctx, "cache", "catalog changed")
}
