package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ratemystudyspots/studyspots/internal/catalog"
	"github.com/ratemystudyspots/studyspots/internal/domain"
)

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Put(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) Get(ctx context.Context, spotKey, authorKey string) (*domain.Review, error) {
	args := m.Called(ctx, spotKey, authorKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, spotKey string) (map[string]domain.Review, error) {
	args := m.Called(ctx, spotKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Delete(ctx context.Context, spotKey, authorKey string) error {
	args := m.Called(ctx, spotKey, authorKey)
	return args.Error(0)
}

func (m *mockReviewRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishReviewSubmitted(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

const (
	robartsKey  = "robarts-library-4033"
	gersteinKey = "gerstein-1200"
	bahenKey    = "bahen-centre-ba-2270"
	commonsKey  = "robarts-library-commons"
	myhalKey    = "myhal-150"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]domain.StudySpot{
		{Building: "Robarts Library", RoomNumber: "4033", SeatingSpaces: "12", Grouping: "Individual", SpaceType: "Library"},
		{Building: "Gerstein", RoomNumber: "1200", SeatingSpaces: "60", Grouping: "Individual", SpaceType: "Study Room"},
		{Building: "Bahen Centre", RoomNumber: "BA 2270", SeatingSpaces: "30", Grouping: "Group", SpaceType: "Lab"},
		{Building: "Robarts Library", RoomNumber: "Commons", SeatingSpaces: "N/A", Grouping: "Group", SpaceType: "Lounge"},
		{Building: "Myhal", RoomNumber: "150", SeatingSpaces: "45", Grouping: "Group", SpaceType: "Library"},
	})
	require.NoError(t, err)
	return c
}
