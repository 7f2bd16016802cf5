package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetTrack(ctx context.Context, id int64) (*models.Track, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Track), args.Error(1)
}

func (m *MockRepository) ListCommentsByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Comment, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.Comment), args.Int(1), args.Error(2)
}

func (m *MockRepository) ListCommentsByTrack(ctx context.Context, trackID int64, limit, offset int) ([]*models.Comment, int, error) {
	args := m.Called(ctx, trackID, limit, offset)
	return args.Get(0).([]*models.Comment), args.Int(1), args.Error(2)
}

func (m *MockRepository) CreateComment(ctx context.Context, userID, trackID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, userID, trackID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockRepository) UpdateComment(ctx context.Context, userID, id int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, userID, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockRepository) DeleteComment(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func newTestService(r *MockRepository) *CommentService {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewCommentService(r, &config.Config{Pagination: config.Pagination{PageSize: 3, MaxPageSize: 100}}, log)
}

func TestCommentService_Create(t *testing.T) {
	tests := []struct {
		name       string
		requester  int64
		setupMocks func(r *MockRepository)
		wantErr    error
	}{
		{
			name:      "публичный трек",
			requester: 5,
			setupMocks: func(r *MockRepository) {
				r.On("GetTrack", mock.Anything, int64(1)).Return(&models.Track{ID: 1, UserID: 10}, nil)
				r.On("CreateComment", mock.Anything, int64(5), int64(1), "nice").
					Return(&models.Comment{ID: 3, UserID: 5, TrackID: 1, Text: "nice"}, nil)
			},
		},
		{
			name:      "свой приватный трек",
			requester: 10,
			setupMocks: func(r *MockRepository) {
				r.On("GetTrack", mock.Anything, int64(1)).Return(&models.Track{ID: 1, UserID: 10, Private: true}, nil)
				r.On("CreateComment", mock.Anything, int64(10), int64(1), "nice").
					Return(&models.Comment{ID: 3, UserID: 10, TrackID: 1, Text: "nice"}, nil)
			},
		},
		{
			name:      "чужой приватный трек",
			requester: 5,
			setupMocks: func(r *MockRepository) {
				r.On("GetTrack", mock.Anything, int64(1)).Return(&models.Track{ID: 1, UserID: 10, Private: true}, nil)
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:      "трек не существует",
			requester: 5,
			setupMocks: func(r *MockRepository) {
				r.On("GetTrack", mock.Anything, int64(1)).Return(nil, models.ErrNotFound)
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:       "аноним",
			requester:  0,
			setupMocks: func(r *MockRepository) {},
			wantErr:    models.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(MockRepository)
			tt.setupMocks(r)

			got, err := newTestService(r).Create(context.Background(), tt.requester, models.CommentInput{TrackID: 1, Text: "nice"})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				r.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "nice", got.Text)
		})
	}
}

func TestCommentService_ListByTrack(t *testing.T) {
	t.Run("аноним видит комментарии публичного трека", func(t *testing.T) {
		r := new(MockRepository)
		r.On("GetTrack", mock.Anything, int64(1)).Return(&models.Track{ID: 1, UserID: 10}, nil)
		r.On("ListCommentsByTrack", mock.Anything, int64(1), 3, 3).Return([]*models.Comment{{ID: 4}}, 4, nil)

		page, err := newTestService(r).ListByTrack(context.Background(), 0, 1, models.ListParams{Page: 2})

		require.NoError(t, err)
		assert.Equal(t, 4, page.Count)
		assert.Equal(t, 2, page.Page)
	})

	t.Run("приватный трек скрыт", func(t *testing.T) {
		r := new(MockRepository)
		r.On("GetTrack", mock.Anything, int64(1)).Return(&models.Track{ID: 1, UserID: 10, Private: true}, nil)

		_, err := newTestService(r).ListByTrack(context.Background(), 0, 1, models.ListParams{})

		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestCommentService_UpdateDelete(t *testing.T) {
	t.Run("чужой комментарий", func(t *testing.T) {
		r := new(MockRepository)
		r.On("UpdateComment", mock.Anything, int64(5), int64(3), "edited").Return(nil, models.ErrNotFound)

		_, err := newTestService(r).Update(context.Background(), 5, 3, models.CommentUpdate{Text: "edited"})

		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("удаление своего", func(t *testing.T) {
		r := new(MockRepository)
		r.On("DeleteComment", mock.Anything, int64(5), int64(3)).Return(nil)

		require.NoError(t, newTestService(r).Delete(context.Background(), 5, 3))
		r.AssertExpectations(t)
	})

	t.Run("аноним", func(t *testing.T) {
		err := newTestService(new(MockRepository)).Delete(context.Background(), 0, 3)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}
