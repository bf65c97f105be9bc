package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/plantrec/internal/cache"
	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/pagination"
)

// MockPlantRepository is a mock implementation of PlantRepositoryInterface
type MockPlantRepository struct {
	mock.Mock
}

func (m *MockPlantRepository) ListAll(ctx context.Context) ([]*domain.Plant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Plant), args.Error(1)
}

func (m *MockPlantRepository) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plant), args.Error(1)
}

func (m *MockPlantRepository) ListWithCursor(ctx context.Context, filter PlantFilter, cursor *pagination.Cursor, limit int) (*PlantPageResult, error) {
	args := m.Called(ctx, filter, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PlantPageResult), args.Error(1)
}

func (m *MockPlantRepository) Upsert(ctx context.Context, p *domain.Plant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPlantRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRecommendationRequestRepository is a mock implementation of RecommendationRequestRepositoryInterface
type MockRecommendationRequestRepository struct {
	mock.Mock
}

func (m *MockRecommendationRequestRepository) Create(ctx context.Context, r *domain.RecommendationRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecommendationRequestRepository) GetByID(ctx context.Context, id string) (*domain.RecommendationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecommendationRequest), args.Error(1)
}

func (m *MockRecommendationRequestRepository) GetForUpdate(ctx context.Context, id string) (*domain.RecommendationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecommendationRequest), args.Error(1)
}

func (m *MockRecommendationRequestRepository) UpdateFeedback(ctx context.Context, id string, fb *domain.Feedback) error {
	args := m.Called(ctx, id, fb)
	return args.Error(0)
}

func (m *MockRecommendationRequestRepository) Stats(ctx context.Context) (*domain.RecommendationStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecommendationStats), args.Error(1)
}

func (m *MockRecommendationRequestRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.RecommendationRequest, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecommendationRequest), args.Error(1)
}

// MockUUIDGenerator hands out the given ids in order.
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	return cache.New(cache.NewMemoryBackend(100), time.Minute)
}
