package engagement

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/audio-library/internal/http/middlewarectx"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// MockService реализует интерфейс engagement.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Stream(ctx context.Context, requesterID, id int64) (*models.StoredFile, error) {
	args := m.Called(ctx, requesterID, id)
	if res := args.Get(0); res != nil {
		return res.(*models.StoredFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) StreamOwn(ctx context.Context, requesterID, id int64) (*models.StoredFile, error) {
	args := m.Called(ctx, requesterID, id)
	if res := args.Get(0); res != nil {
		return res.(*models.StoredFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Download(ctx context.Context, id int64) (*models.StoredFile, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.StoredFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Like(ctx context.Context, requesterID, id int64) (*models.LikeResult, error) {
	args := m.Called(ctx, requesterID, id)
	if res := args.Get(0); res != nil {
		return res.(*models.LikeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Unlike(ctx context.Context, requesterID, id int64) (*models.LikeResult, error) {
	args := m.Called(ctx, requesterID, id)
	if res := args.Get(0); res != nil {
		return res.(*models.LikeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) RecentlyPlayed(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.PlayedTrack], error) {
	args := m.Called(ctx, requesterID, params)
	if res := args.Get(0); res != nil {
		return res.(*models.Page[*models.PlayedTrack]), args.Error(1)
	}
	return nil, args.Error(1)
}

type content struct {
	*bytes.Reader
	closed bool
}

func (c *content) Close() error {
	c.closed = true
	return nil
}

func storedFile(data string) (*models.StoredFile, *content) {
	c := &content{Reader: bytes.NewReader([]byte(data))}
	return &models.StoredFile{
		Name:        "song.mp3",
		Size:        int64(len(data)),
		ModTime:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ContentType: "audio/mpeg",
		Content:     c,
	}, c
}

func setup() (http.Handler, *MockService) {
	m := new(MockService)
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	r := chi.NewRouter()
	r.Get("/tracks/{id}/stream", h.Stream)
	r.Get("/me/tracks/{id}/stream", h.StreamOwn)
	r.Get("/tracks/{id}/download", h.Download)
	r.Post("/tracks/{id}/like", h.Like)
	r.Delete("/tracks/{id}/like", h.Unlike)
	r.Get("/me/recently-played", h.RecentlyPlayed)
	return r, m
}

func withUser(req *http.Request, userID int64) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, userID))
}

func TestStream(t *testing.T) {
	t.Run("полный файл", func(t *testing.T) {
		router, m := setup()
		file, c := storedFile("0123456789")
		m.On("Stream", mock.Anything, int64(0), int64(3)).Return(file, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tracks/3/stream", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, "0123456789", w.Body.String())
		assert.Empty(t, w.Header().Get("Content-Disposition"))
		assert.True(t, c.closed)
		m.AssertExpectations(t)
	})

	t.Run("диапазон байтов", func(t *testing.T) {
		router, m := setup()
		file, _ := storedFile("0123456789")
		m.On("Stream", mock.Anything, int64(7), int64(3)).Return(file, nil)

		req := withUser(httptest.NewRequest(http.MethodGet, "/tracks/3/stream", nil), 7)
		req.Header.Set("Range", "bytes=2-5")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusPartialContent, w.Code)
		assert.Equal(t, "2345", w.Body.String())
		assert.Equal(t, "bytes 2-5/10", w.Header().Get("Content-Range"))
	})

	t.Run("приватный трек", func(t *testing.T) {
		router, m := setup()
		m.On("Stream", mock.Anything, int64(0), int64(4)).Return(nil, models.ErrNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tracks/4/stream", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("файл отсутствует в хранилище", func(t *testing.T) {
		router, m := setup()
		m.On("StreamOwn", mock.Anything, int64(7), int64(4)).Return(nil, models.ErrFileNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/me/tracks/4/stream", nil), 7))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), models.ErrFileNotFound.Error())
	})
}

func TestDownload(t *testing.T) {
	router, m := setup()
	file, c := storedFile("abc")
	m.On("Download", mock.Anything, int64(3)).Return(file, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tracks/3/download", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename=song.mp3`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "abc", w.Body.String())
	assert.True(t, c.closed)
}

func TestLike(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "лайк",
			method: http.MethodPost,
			setupMock: func(m *MockService) {
				m.On("Like", mock.Anything, int64(7), int64(3)).Return(&models.LikeResult{TrackID: 3, LikesCount: 1}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"likes_count":1`,
		},
		{
			name:   "свой трек",
			method: http.MethodPost,
			setupMock: func(m *MockService) {
				m.On("Like", mock.Anything, int64(7), int64(3)).Return(nil, models.ErrOwnTrack)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   models.ErrOwnTrack.Error(),
		},
		{
			name:   "повторный лайк",
			method: http.MethodPost,
			setupMock: func(m *MockService) {
				m.On("Like", mock.Anything, int64(7), int64(3)).Return(nil, models.ErrAlreadyLiked)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   models.ErrAlreadyLiked.Error(),
		},
		{
			name:   "снятие лайка",
			method: http.MethodDelete,
			setupMock: func(m *MockService) {
				m.On("Unlike", mock.Anything, int64(7), int64(3)).Return(&models.LikeResult{TrackID: 3}, nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "снятие несуществующего лайка",
			method: http.MethodDelete,
			setupMock: func(m *MockService) {
				m.On("Unlike", mock.Anything, int64(7), int64(3)).Return(nil, models.ErrNotLiked)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   models.ErrNotLiked.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setup()
			tt.setupMock(m)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, withUser(httptest.NewRequest(tt.method, "/tracks/3/like", nil), 7))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			m.AssertExpectations(t)
		})
	}
}

func TestRecentlyPlayed(t *testing.T) {
	router, m := setup()
	played := []*models.PlayedTrack{{Track: models.Track{ID: 3, Title: "Song"}}}
	m.On("RecentlyPlayed", mock.Anything, int64(7), models.ListParams{Page: 1}).
		Return(models.NewPage(played, 1, 1, 20), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/me/recently-played?page=1", nil), 7))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Song"`)
	m.AssertExpectations(t)
}
