package profile

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/audio-library/internal/http/middlewarectx"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// MockService реализует интерфейс profile.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) UpdateProfile(ctx context.Context, userID int64, in models.ProfileInput) (*models.Profile, error) {
	args := m.Called(ctx, userID, in)
	if res := args.Get(0); res != nil {
		return res.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ListSocialLinks(ctx context.Context, userID int64) ([]*models.SocialLink, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.([]*models.SocialLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) CreateSocialLink(ctx context.Context, userID int64, link string) (*models.SocialLink, error) {
	args := m.Called(ctx, userID, link)
	if res := args.Get(0); res != nil {
		return res.(*models.SocialLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) UpdateSocialLink(ctx context.Context, userID, id int64, link string) (*models.SocialLink, error) {
	args := m.Called(ctx, userID, id, link)
	if res := args.Get(0); res != nil {
		return res.(*models.SocialLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) DeleteSocialLink(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockService) SetNewsletter(ctx context.Context, userID int64, subscribed bool) (string, error) {
	args := m.Called(ctx, userID, subscribed)
	return args.String(0), args.Error(1)
}

func setup() (http.Handler, *MockService) {
	m := new(MockService)
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	r := chi.NewRouter()
	r.Get("/me/profile", h.Get)
	r.Put("/me/profile", h.Update)
	r.Get("/me/social-links", h.ListSocialLinks)
	r.Post("/me/social-links", h.CreateSocialLink)
	r.Put("/me/social-links/{id}", h.UpdateSocialLink)
	r.Delete("/me/social-links/{id}", h.DeleteSocialLink)
	r.Post("/me/newsletter", h.Subscribe)
	r.Delete("/me/newsletter", h.Unsubscribe)
	return r, m
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, int64(3)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetProfile(t *testing.T) {
	router, m := setup()
	m.On("GetProfile", mock.Anything, int64(3)).Return(&models.Profile{UserID: 3, City: "Kazan"}, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/me/profile", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"city":"Kazan"`)
}

func TestUpdateProfile(t *testing.T) {
	t.Run("с аватаром", func(t *testing.T) {
		router, m := setup()
		m.On("UpdateProfile", mock.Anything, int64(3), mock.MatchedBy(func(in models.ProfileInput) bool {
			return in.City == "Kazan" && in.DisplayName == "dj" && in.Avatar != nil && in.Avatar.Filename == "me.jpg"
		})).Return(&models.Profile{UserID: 3, City: "Kazan", Avatar: "avatar/user_3/me.jpg"}, nil)

		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		require.NoError(t, mw.WriteField("city", "Kazan"))
		require.NoError(t, mw.WriteField("display_name", "dj"))
		fw, err := mw.CreateFormFile("avatar", "me.jpg")
		require.NoError(t, err)
		_, _ = fw.Write([]byte{0xff, 0xd8})
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPut, "/me/profile", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `avatar/user_3/me.jpg`)
		m.AssertExpectations(t)
	})

	t.Run("слишком длинный город", func(t *testing.T) {
		router, m := setup()
		req := httptest.NewRequest(http.MethodPut, "/me/profile",
			strings.NewReader("city="+strings.Repeat("a", 31)))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		w := serve(router, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "field City must be at most 30 characters")
		m.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSocialLinks(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		url            string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "список",
			method: http.MethodGet,
			url:    "/me/social-links",
			setupMock: func(m *MockService) {
				m.On("ListSocialLinks", mock.Anything, int64(3)).
					Return([]*models.SocialLink{{ID: 1, UserID: 3, Link: "https://vk.com/dj"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"link":"https://vk.com/dj"`,
		},
		{
			name:   "создание",
			method: http.MethodPost,
			url:    "/me/social-links",
			body:   `{"link":"https://vk.com/dj"}`,
			setupMock: func(m *MockService) {
				m.On("CreateSocialLink", mock.Anything, int64(3), "https://vk.com/dj").
					Return(&models.SocialLink{ID: 1, UserID: 3, Link: "https://vk.com/dj"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "не ссылка",
			method:         http.MethodPost,
			url:            "/me/social-links",
			body:           `{"link":"vk"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Link must be a valid URL",
		},
		{
			name:   "изменение чужой ссылки",
			method: http.MethodPut,
			url:    "/me/social-links/9",
			body:   `{"link":"https://vk.com/x"}`,
			setupMock: func(m *MockService) {
				m.On("UpdateSocialLink", mock.Anything, int64(3), int64(9), "https://vk.com/x").Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "удаление",
			method: http.MethodDelete,
			url:    "/me/social-links/1",
			setupMock: func(m *MockService) {
				m.On("DeleteSocialLink", mock.Anything, int64(3), int64(1)).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setup()
			tt.setupMock(m)

			w := serve(router, httptest.NewRequest(tt.method, tt.url, strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			m.AssertExpectations(t)
		})
	}
}

func TestNewsletter(t *testing.T) {
	router, m := setup()
	m.On("SetNewsletter", mock.Anything, int64(3), true).Return("You are subscribed to the newsletter", nil)
	m.On("SetNewsletter", mock.Anything, int64(3), false).Return("You are unsubscribed from the newsletter", nil)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/me/newsletter", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"detail":"You are subscribed to the newsletter"`)

	w = serve(router, httptest.NewRequest(http.MethodDelete, "/me/newsletter", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unsubscribed")
	m.AssertExpectations(t)
}
