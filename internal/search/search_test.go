package search

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/storefront/internal/ranking"
	"github.com/temcen/storefront/pkg/models"
)

type MockRanker struct {
	mock.Mock
}

func (m *MockRanker) Rank(ctx context.Context, query string, userID int64) ([]models.Product, error) {
	args := m.Called(ctx, query, userID)
	if products := args.Get(0); products != nil {
		return products.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FetchTrending(ctx context.Context, limit int) ([]models.Product, error) {
	args := m.Called(ctx, limit)
	if products := args.Get(0); products != nil {
		return products.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func ids(products []models.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestSearch_QueryGoesToRankerWithDefaultUser(t *testing.T) {
	orchestrator := NewOrchestrator(ranking.NewSampleRanker(), nil, 6, 1, testLogger())

	products, err := orchestrator.Search(context.Background(), "running shoes", models.Anonymous)

	require.NoError(t, err)
	assert.Len(t, products, 4)
	assert.Equal(t, "Comfortable Running Shoes", products[2].Title)
}

func TestSearch_KnownUserIsPassedThrough(t *testing.T) {
	ranker := new(MockRanker)
	ranker.On("Rank", mock.Anything, "saree", int64(42)).Return([]models.Product{{ID: 1002}}, nil)
	orchestrator := NewOrchestrator(ranker, nil, 6, 1, testLogger())

	products, err := orchestrator.Search(context.Background(), "  saree ", 42)

	require.NoError(t, err)
	assert.Equal(t, []int64{1002}, ids(products))
	ranker.AssertExpectations(t)
}

func TestSearch_EmptyQueryBrowsesCatalog(t *testing.T) {
	ranker := new(MockRanker)
	store := new(MockStore)
	store.On("FetchTrending", mock.Anything, 6).Return([]models.Product{{ID: 3}, {ID: 1}, {ID: 2}}, nil)
	orchestrator := NewOrchestrator(ranker, store, 6, 1, testLogger())

	result, err := orchestrator.Run(context.Background(), "   ", models.Anonymous)

	require.NoError(t, err)
	assert.Equal(t, SourceCatalog, result.Source)
	assert.False(t, result.Fallback)
	assert.Equal(t, []int64{3, 1, 2}, ids(result.Products), "upstream order is kept")
	ranker.AssertNotCalled(t, "Rank", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_CatalogFailureFallsBackToRanker(t *testing.T) {
	ranker := new(MockRanker)
	ranker.On("Rank", mock.Anything, "", int64(1)).Return(ranking.SampleProducts(), nil)
	store := new(MockStore)
	store.On("FetchTrending", mock.Anything, 6).Return(nil, errors.New("connection refused"))
	orchestrator := NewOrchestrator(ranker, store, 6, 1, testLogger())

	result, err := orchestrator.Run(context.Background(), "", models.Anonymous)

	require.NoError(t, err)
	assert.Equal(t, SourceRanking, result.Source)
	assert.True(t, result.Fallback)
	assert.Equal(t, []int64{1001, 1002, 1003, 1004}, ids(result.Products))
	ranker.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestSearch_NoCatalogUsesRanker(t *testing.T) {
	ranker := new(MockRanker)
	ranker.On("Rank", mock.Anything, "", int64(9)).Return([]models.Product{}, nil)
	orchestrator := NewOrchestrator(ranker, nil, 6, 1, testLogger())

	products, err := orchestrator.Search(context.Background(), "", 9)

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestSearch_RankerFailureIsSearchError(t *testing.T) {
	cause := errors.New("ranking unavailable")
	ranker := new(MockRanker)
	ranker.On("Rank", mock.Anything, "laptop", int64(1)).Return(nil, cause)
	orchestrator := NewOrchestrator(ranker, nil, 6, 1, testLogger())

	products, err := orchestrator.Search(context.Background(), "laptop", models.Anonymous)

	assert.Nil(t, products)
	var searchErr *Error
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "laptop", searchErr.Query)
	assert.Equal(t, SourceRanking, searchErr.Source)
	assert.ErrorIs(t, err, cause)
}

func TestSearch_CatalogAndFallbackBothFail(t *testing.T) {
	cause := errors.New("ranking unavailable")
	ranker := new(MockRanker)
	ranker.On("Rank", mock.Anything, "", int64(1)).Return(nil, cause)
	store := new(MockStore)
	store.On("FetchTrending", mock.Anything, 6).Return(nil, errors.New("connection refused"))
	orchestrator := NewOrchestrator(ranker, store, 6, 1, testLogger())

	result, err := orchestrator.Run(context.Background(), "   ", models.Anonymous)

	assert.Empty(t, result.Products)
	assert.Equal(t, SourceRanking, result.Source)
	assert.True(t, result.Fallback)
	var searchErr *Error
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "", searchErr.Query)
	assert.Equal(t, SourceRanking, searchErr.Source)
	assert.ErrorIs(t, err, cause)
	ranker.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestSearch_RunsAgainOnEveryCall(t *testing.T) {
	ranker := new(MockRanker)
	ranker.On("Rank", mock.Anything, "phone", int64(1)).Return([]models.Product{{ID: 1001}}, nil).Twice()
	orchestrator := NewOrchestrator(ranker, nil, 6, 1, testLogger())

	for i := 0; i < 2; i++ {
		_, err := orchestrator.Search(context.Background(), "phone", models.Anonymous)
		require.NoError(t, err)
	}

	ranker.AssertNumberOfCalls(t, "Rank", 2)
}
