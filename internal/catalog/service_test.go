package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

type mockRepository struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
	calls    int
}

func (m *mockRepository) GetAll(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *mockRepository) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].Slug == slug {
			return &m.products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *mockRepository) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockCache struct {
	mu       sync.Mutex
	list     []domain.Product
	products map[int64]*domain.Product
	err      error
}

func newMockCache() *mockCache {
	return &mockCache{products: make(map[int64]*domain.Product)}
}

func (m *mockCache) GetList(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.list == nil {
		return nil, ErrCacheMiss
	}
	return m.list, nil
}

func (m *mockCache) SetList(_ context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.list = products
	return nil
}

func (m *mockCache) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	return p, nil
}

func (m *mockCache) SetProduct(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.products[p.ID] = p
	return nil
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "beaded bracelet", Slug: "beaded-bracelet", Price: decimal.NewFromInt(20), InStock: true},
		{ID: 2, Name: "macrame bag", Slug: "macrame-bag", Price: decimal.NewFromInt(55), InStock: true},
	}
}

func TestGetAllCacheMissFallsThrough(t *testing.T) {
	repo := &mockRepository{products: sampleProducts()}
	cache := newMockCache()
	svc := NewService(repo, cache)

	products, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 1, repo.callCount())

	// async cache fill lands
	require.Eventually(t, func() bool {
		cached, err := cache.GetList(context.Background())
		return err == nil && len(cached) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestGetAllServedFromCache(t *testing.T) {
	repo := &mockRepository{products: sampleProducts()}
	cache := newMockCache()
	require.NoError(t, cache.SetList(context.Background(), sampleProducts()))
	svc := NewService(repo, cache)

	products, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 0, repo.callCount(), "cache hit skips the repository")
}

func TestGetAllSurvivesCacheFailure(t *testing.T) {
	repo := &mockRepository{products: sampleProducts()}
	cache := newMockCache()
	cache.err = errors.New("redis down")
	svc := NewService(repo, cache)

	products, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := &mockRepository{products: sampleProducts()}
	svc := NewService(repo, newMockCache())

	_, err := svc.GetByID(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestGetByIDCachesResult(t *testing.T) {
	repo := &mockRepository{products: sampleProducts()}
	cache := newMockCache()
	svc := NewService(repo, cache)

	p, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "beaded bracelet", p.Name)

	require.Eventually(t, func() bool {
		cached, err := cache.GetProduct(context.Background(), 1)
		return err == nil && cached.ID == 1
	}, time.Second, 10*time.Millisecond)
}

func TestGetBySlug(t *testing.T) {
	repo := &mockRepository{products: sampleProducts()}
	svc := NewService(repo, newMockCache())

	p, err := svc.GetBySlug(context.Background(), "macrame-bag")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)
}
