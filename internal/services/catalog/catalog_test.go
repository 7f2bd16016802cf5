package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Genre), args.Error(1)
}

func (m *MockRepository) CountGenres(ctx context.Context, ids []int64) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListLicenses(ctx context.Context, userID int64) ([]*models.License, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockRepository) GetLicense(ctx context.Context, id int64) (*models.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockRepository) CreateLicense(ctx context.Context, userID int64, text string) (*models.License, error) {
	args := m.Called(ctx, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockRepository) UpdateLicense(ctx context.Context, userID, id int64, text string) (*models.License, error) {
	args := m.Called(ctx, userID, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockRepository) DeleteLicense(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockRepository) ListAlbums(ctx context.Context, userID int64, publicOnly bool, limit, offset int) ([]*models.Album, int, error) {
	args := m.Called(ctx, userID, publicOnly, limit, offset)
	return args.Get(0).([]*models.Album), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetAlbum(ctx context.Context, id int64) (*models.Album, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Album), args.Error(1)
}

func (m *MockRepository) CreateAlbum(ctx context.Context, a models.Album) (*models.Album, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Album), args.Error(1)
}

func (m *MockRepository) UpdateAlbum(ctx context.Context, a models.Album) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockRepository) DeleteAlbum(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockRepository) ListTracks(ctx context.Context, f models.TrackFilter) ([]*models.Track, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]*models.Track), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetTrack(ctx context.Context, id int64) (*models.Track, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Track), args.Error(1)
}

func (m *MockRepository) CreateTrack(ctx context.Context, t models.Track, genreIDs []int64) (int64, error) {
	args := m.Called(ctx, t, genreIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) UpdateTrack(ctx context.Context, t models.Track, genreIDs []int64) error {
	return m.Called(ctx, t, genreIDs).Error(0)
}

func (m *MockRepository) DeleteTrack(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockRepository) ListPlaylists(ctx context.Context, userID int64, limit, offset int) ([]*models.Playlist, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.Playlist), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Playlist), args.Error(1)
}

func (m *MockRepository) CountVisibleTracks(ctx context.Context, userID int64, ids []int64) (int, error) {
	args := m.Called(ctx, userID, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CreatePlaylist(ctx context.Context, p models.Playlist, trackIDs []int64) (int64, error) {
	args := m.Called(ctx, p, trackIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) UpdatePlaylist(ctx context.Context, p models.Playlist, trackIDs []int64) error {
	return m.Called(ctx, p, trackIDs).Error(0)
}

func (m *MockRepository) DeletePlaylist(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

type MockFiles struct {
	mock.Mock
}

func (m *MockFiles) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	return m.Called(ctx, key, r, size).Error(0)
}

func (m *MockFiles) Open(ctx context.Context, key string) (*models.StoredFile, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredFile), args.Error(1)
}

func (m *MockFiles) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

var errDB = errors.New("db error")

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(r *MockRepository, c *MockCache, f *MockFiles) *CatalogService {
	cfg := &config.Config{
		Upload: config.Upload{
			ImageMaxSize:    2 << 20,
			AudioMaxSize:    6 << 20,
			ImageExtensions: []string{"jpg"},
			AudioExtensions: []string{"mp3", "wav"},
		},
		Pagination: config.Pagination{PageSize: 3, MaxPageSize: 100},
	}
	return NewCatalogService(r, c, f, cfg, newNoopLogger())
}

func fileUpload(name string, size int64) *models.FileUpload {
	return &models.FileUpload{Filename: name, Size: size, Content: strings.NewReader("data")}
}

func prefixed(prefix string) any {
	return mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, prefix) })
}

func TestCatalogService_ListGenres(t *testing.T) {
	genres := []*models.Genre{{ID: 1, Name: "Rock"}}

	t.Run("из кэша", func(t *testing.T) {
		r, c := new(MockRepository), new(MockCache)
		c.On("Get", mock.Anything, genresCacheKey, mock.Anything).Return(true, nil)

		_, err := newTestService(r, c, new(MockFiles)).ListGenres(context.Background())

		require.NoError(t, err)
		r.AssertNotCalled(t, "ListGenres", mock.Anything)
	})

	t.Run("промах кэша", func(t *testing.T) {
		r, c := new(MockRepository), new(MockCache)
		c.On("Get", mock.Anything, genresCacheKey, mock.Anything).Return(false, nil)
		r.On("ListGenres", mock.Anything).Return(genres, nil)
		c.On("Set", mock.Anything, genresCacheKey, genres, genresCacheTTL).Return(nil)

		got, err := newTestService(r, c, new(MockFiles)).ListGenres(context.Background())

		require.NoError(t, err)
		assert.Equal(t, genres, got)
		c.AssertExpectations(t)
	})

	t.Run("кэш недоступен", func(t *testing.T) {
		r, c := new(MockRepository), new(MockCache)
		c.On("Get", mock.Anything, genresCacheKey, mock.Anything).Return(false, errors.New("redis down"))
		r.On("ListGenres", mock.Anything).Return(genres, nil)
		c.On("Set", mock.Anything, genresCacheKey, genres, genresCacheTTL).Return(errors.New("redis down"))

		got, err := newTestService(r, c, new(MockFiles)).ListGenres(context.Background())

		require.NoError(t, err)
		assert.Equal(t, genres, got)
	})
}

func TestCatalogService_Licenses(t *testing.T) {
	t.Run("аноним", func(t *testing.T) {
		_, err := newTestService(new(MockRepository), nil, nil).ListLicenses(context.Background(), 0)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("чужая лицензия", func(t *testing.T) {
		r := new(MockRepository)
		r.On("UpdateLicense", mock.Anything, int64(1), int64(5), "MIT").Return(nil, models.ErrNotFound)

		_, err := newTestService(r, nil, nil).UpdateLicense(context.Background(), 1, 5, "MIT")

		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("лицензия используется", func(t *testing.T) {
		r := new(MockRepository)
		r.On("DeleteLicense", mock.Anything, int64(1), int64(5)).Return(models.ErrLicenseInUse)

		err := newTestService(r, nil, nil).DeleteLicense(context.Background(), 1, 5)

		assert.ErrorIs(t, err, models.ErrLicenseInUse)
	})
}

func TestCatalogService_UpdateAlbum(t *testing.T) {
	current := &models.Album{ID: 7, UserID: 1, Name: "old", CoverImage: "album/user_1/old.jpg"}

	tests := []struct {
		name       string
		requester  int64
		input      models.AlbumInput
		setupMocks func(r *MockRepository, f *MockFiles)
		wantErr    error
		wantCover  string
	}{
		{
			name:      "без новой обложки",
			requester: 1,
			input:     models.AlbumInput{Name: "new"},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetAlbum", mock.Anything, int64(7)).Return(current, nil)
				r.On("UpdateAlbum", mock.Anything, mock.Anything).Return(nil)
			},
			wantCover: "album/user_1/old.jpg",
		},
		{
			name:      "замена обложки удаляет старую",
			requester: 1,
			input:     models.AlbumInput{Name: "new", Cover: fileUpload("c.jpg", 10)},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetAlbum", mock.Anything, int64(7)).Return(current, nil)
				f.On("Save", mock.Anything, prefixed("album/user_1/c_"), mock.Anything, int64(10)).Return(nil)
				r.On("UpdateAlbum", mock.Anything, mock.Anything).Return(nil)
				f.On("Delete", mock.Anything, "album/user_1/old.jpg").Return(nil)
			},
		},
		{
			name:      "ошибка базы удаляет новую обложку",
			requester: 1,
			input:     models.AlbumInput{Name: "new", Cover: fileUpload("c.jpg", 10)},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetAlbum", mock.Anything, int64(7)).Return(current, nil)
				f.On("Save", mock.Anything, prefixed("album/user_1/c_"), mock.Anything, int64(10)).Return(nil)
				r.On("UpdateAlbum", mock.Anything, mock.Anything).Return(errDB)
				f.On("Delete", mock.Anything, prefixed("album/user_1/c_")).Return(nil)
			},
			wantErr: errDB,
		},
		{
			name:      "чужой альбом",
			requester: 2,
			input:     models.AlbumInput{Name: "new"},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetAlbum", mock.Anything, int64(7)).Return(current, nil)
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:      "неверное расширение обложки",
			requester: 1,
			input:     models.AlbumInput{Name: "new", Cover: fileUpload("c.png", 10)},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetAlbum", mock.Anything, int64(7)).Return(current, nil)
			},
			wantErr: models.ErrFileExtension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, f := new(MockRepository), new(MockFiles)
			tt.setupMocks(r, f)

			got, err := newTestService(r, nil, f).UpdateAlbum(context.Background(), tt.requester, 7, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "new", got.Name)
			if tt.wantCover != "" {
				assert.Equal(t, tt.wantCover, got.CoverImage)
			} else {
				assert.True(t, strings.HasPrefix(got.CoverImage, "album/user_1/c_"))
			}
			r.AssertExpectations(t)
			f.AssertExpectations(t)
		})
	}
}

func TestCatalogService_CreateTrack(t *testing.T) {
	albumID := int64(3)
	valid := func() models.TrackInput {
		return models.TrackInput{
			Title:     "song",
			LicenseID: 2,
			AlbumID:   &albumID,
			GenreIDs:  []int64{1, 1, 4},
			File:      fileUpload("song.mp3", 100),
		}
	}

	tests := []struct {
		name       string
		input      func() models.TrackInput
		setupMocks func(r *MockRepository, f *MockFiles)
		wantErr    error
	}{
		{
			name:  "успешная загрузка",
			input: valid,
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetLicense", mock.Anything, int64(2)).Return(&models.License{ID: 2, UserID: 1}, nil)
				r.On("GetAlbum", mock.Anything, albumID).Return(&models.Album{ID: albumID, UserID: 1}, nil)
				r.On("CountGenres", mock.Anything, []int64{1, 4}).Return(2, nil)
				f.On("Save", mock.Anything, prefixed("track/user_1/song_"), mock.Anything, int64(100)).Return(nil)
				r.On("CreateTrack", mock.Anything, mock.MatchedBy(func(tr models.Track) bool {
					return tr.UserID == 1 && tr.Title == "song" && strings.HasSuffix(tr.File, ".mp3")
				}), []int64{1, 4}).Return(int64(10), nil)
				r.On("GetTrack", mock.Anything, int64(10)).Return(&models.Track{ID: 10, UserID: 1}, nil)
			},
		},
		{
			name: "без файла",
			input: func() models.TrackInput {
				in := valid()
				in.File = nil
				return in
			},
			setupMocks: func(r *MockRepository, f *MockFiles) {},
			wantErr:    models.ErrFileRequired,
		},
		{
			name: "слишком большой файл",
			input: func() models.TrackInput {
				in := valid()
				in.File = fileUpload("song.mp3", 7<<20)
				return in
			},
			setupMocks: func(r *MockRepository, f *MockFiles) {},
			wantErr:    models.ErrFileTooLarge,
		},
		{
			name:  "чужая лицензия",
			input: valid,
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetLicense", mock.Anything, int64(2)).Return(&models.License{ID: 2, UserID: 9}, nil)
			},
			wantErr: models.ErrInvalidReference,
		},
		{
			name:  "несуществующий альбом",
			input: valid,
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetLicense", mock.Anything, int64(2)).Return(&models.License{ID: 2, UserID: 1}, nil)
				r.On("GetAlbum", mock.Anything, albumID).Return(nil, models.ErrNotFound)
			},
			wantErr: models.ErrInvalidReference,
		},
		{
			name:  "неизвестный жанр",
			input: valid,
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetLicense", mock.Anything, int64(2)).Return(&models.License{ID: 2, UserID: 1}, nil)
				r.On("GetAlbum", mock.Anything, albumID).Return(&models.Album{ID: albumID, UserID: 1}, nil)
				r.On("CountGenres", mock.Anything, []int64{1, 4}).Return(1, nil)
			},
			wantErr: models.ErrInvalidReference,
		},
		{
			name:  "ошибка базы удаляет файл",
			input: valid,
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetLicense", mock.Anything, int64(2)).Return(&models.License{ID: 2, UserID: 1}, nil)
				r.On("GetAlbum", mock.Anything, albumID).Return(&models.Album{ID: albumID, UserID: 1}, nil)
				r.On("CountGenres", mock.Anything, []int64{1, 4}).Return(2, nil)
				f.On("Save", mock.Anything, prefixed("track/user_1/song_"), mock.Anything, int64(100)).Return(nil)
				r.On("CreateTrack", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), models.ErrInvalidReference)
				f.On("Delete", mock.Anything, prefixed("track/user_1/song_")).Return(nil)
			},
			wantErr: models.ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, f := new(MockRepository), new(MockFiles)
			tt.setupMocks(r, f)

			got, err := newTestService(r, nil, f).CreateTrack(context.Background(), 1, tt.input())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				f.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(10), got.ID)
			r.AssertExpectations(t)
			f.AssertExpectations(t)
		})
	}
}

func TestCatalogService_UpdateTrack(t *testing.T) {
	current := &models.Track{
		ID: 5, UserID: 1, Title: "old", LicenseID: 2,
		File: "track/user_1/old.mp3", CoverImage: "track/user_1/cover/old.jpg",
	}
	ownLicense := &models.License{ID: 2, UserID: 1}

	tests := []struct {
		name       string
		requester  int64
		input      models.TrackInput
		setupMocks func(r *MockRepository, f *MockFiles)
		wantErr    error
		keptKeys   []string
	}{
		{
			name:      "замена аудио удаляет старый файл после сохранения",
			requester: 1,
			input:     models.TrackInput{Title: "new", LicenseID: 2, File: fileUpload("new.mp3", 100)},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetTrack", mock.Anything, int64(5)).Return(current, nil)
				r.On("GetLicense", mock.Anything, int64(2)).Return(ownLicense, nil)
				f.On("Save", mock.Anything, prefixed("track/user_1/new_"), mock.Anything, int64(100)).Return(nil)
				updated := r.On("UpdateTrack", mock.Anything, mock.MatchedBy(func(tr models.Track) bool {
					return strings.HasPrefix(tr.File, "track/user_1/new_") && tr.CoverImage == current.CoverImage
				}), []int64{}).Return(nil)
				f.On("Delete", mock.Anything, "track/user_1/old.mp3").Return(nil).NotBefore(updated)
			},
			keptKeys: []string{"track/user_1/cover/old.jpg"},
		},
		{
			name:      "замена обложки удаляет старую обложку",
			requester: 1,
			input:     models.TrackInput{Title: "new", LicenseID: 2, Cover: fileUpload("c.jpg", 10)},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetTrack", mock.Anything, int64(5)).Return(current, nil)
				r.On("GetLicense", mock.Anything, int64(2)).Return(ownLicense, nil)
				f.On("Save", mock.Anything, prefixed("track/user_1/cover/c_"), mock.Anything, int64(10)).Return(nil)
				updated := r.On("UpdateTrack", mock.Anything, mock.MatchedBy(func(tr models.Track) bool {
					return tr.File == current.File && strings.HasPrefix(tr.CoverImage, "track/user_1/cover/c_")
				}), []int64{}).Return(nil)
				f.On("Delete", mock.Anything, "track/user_1/cover/old.jpg").Return(nil).NotBefore(updated)
			},
			keptKeys: []string{"track/user_1/old.mp3"},
		},
		{
			name:      "ошибка базы удаляет новые файлы и сохраняет старые",
			requester: 1,
			input: models.TrackInput{
				Title: "new", LicenseID: 2, File: fileUpload("new.mp3", 100), Cover: fileUpload("c.jpg", 10),
			},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetTrack", mock.Anything, int64(5)).Return(current, nil)
				r.On("GetLicense", mock.Anything, int64(2)).Return(ownLicense, nil)
				f.On("Save", mock.Anything, prefixed("track/user_1/new_"), mock.Anything, int64(100)).Return(nil)
				f.On("Save", mock.Anything, prefixed("track/user_1/cover/c_"), mock.Anything, int64(10)).Return(nil)
				r.On("UpdateTrack", mock.Anything, mock.Anything, mock.Anything).Return(errDB)
				f.On("Delete", mock.Anything, prefixed("track/user_1/new_")).Return(nil)
				f.On("Delete", mock.Anything, prefixed("track/user_1/cover/c_")).Return(nil)
			},
			wantErr:  errDB,
			keptKeys: []string{"track/user_1/old.mp3", "track/user_1/cover/old.jpg"},
		},
		{
			name:      "чужой трек",
			requester: 2,
			input:     models.TrackInput{Title: "new", LicenseID: 2, File: fileUpload("new.mp3", 100)},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetTrack", mock.Anything, int64(5)).Return(current, nil)
			},
			wantErr:  models.ErrNotFound,
			keptKeys: []string{"track/user_1/old.mp3", "track/user_1/cover/old.jpg"},
		},
		{
			name:      "чужая лицензия",
			requester: 1,
			input:     models.TrackInput{Title: "new", LicenseID: 8, File: fileUpload("new.mp3", 100)},
			setupMocks: func(r *MockRepository, f *MockFiles) {
				r.On("GetTrack", mock.Anything, int64(5)).Return(current, nil)
				r.On("GetLicense", mock.Anything, int64(8)).Return(&models.License{ID: 8, UserID: 9}, nil)
			},
			wantErr:  models.ErrInvalidReference,
			keptKeys: []string{"track/user_1/old.mp3", "track/user_1/cover/old.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, f := new(MockRepository), new(MockFiles)
			tt.setupMocks(r, f)

			got, err := newTestService(r, nil, f).UpdateTrack(context.Background(), tt.requester, 5, tt.input)

			for _, key := range tt.keptKeys {
				f.AssertNotCalled(t, "Delete", mock.Anything, key)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				f.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			r.AssertExpectations(t)
			f.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetTrack(t *testing.T) {
	private := &models.Track{ID: 5, UserID: 1, Private: true}

	tests := []struct {
		name      string
		requester int64
		wantErr   error
	}{
		{name: "владелец", requester: 1},
		{name: "другой пользователь", requester: 2, wantErr: models.ErrNotFound},
		{name: "аноним", requester: 0, wantErr: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(MockRepository)
			r.On("GetTrack", mock.Anything, int64(5)).Return(private, nil)

			got, err := newTestService(r, nil, nil).GetTrack(context.Background(), tt.requester, 5)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, private, got)
		})
	}
}

func TestCatalogService_ListTracks(t *testing.T) {
	r := new(MockRepository)
	r.On("ListTracks", mock.Anything, models.TrackFilter{
		UserID: 4, PublicOnly: true, Search: "rock", Ordering: "-plays_count", Limit: 3, Offset: 3,
	}).Return([]*models.Track(nil), 4, nil)

	page, err := newTestService(r, nil, nil).ListAuthorTracks(context.Background(), 4, models.ListParams{
		Search: "rock", Ordering: "-plays_count", Page: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, 4, page.Count)
	assert.Equal(t, 2, page.Page)
	assert.NotNil(t, page.Results)
	r.AssertExpectations(t)
}

func TestCatalogService_DeleteTrack(t *testing.T) {
	track := &models.Track{ID: 5, UserID: 1, File: "track/user_1/a.mp3", CoverImage: "track/user_1/cover/a.jpg"}
	r, f := new(MockRepository), new(MockFiles)
	r.On("GetTrack", mock.Anything, int64(5)).Return(track, nil)
	r.On("DeleteTrack", mock.Anything, int64(1), int64(5)).Return(nil)
	f.On("Delete", mock.Anything, track.File).Return(nil)
	f.On("Delete", mock.Anything, track.CoverImage).Return(errors.New("s3 unavailable"))

	err := newTestService(r, nil, f).DeleteTrack(context.Background(), 1, 5)

	require.NoError(t, err)
	f.AssertExpectations(t)
}

func TestCatalogService_CreatePlaylist(t *testing.T) {
	t.Run("недоступный трек", func(t *testing.T) {
		r := new(MockRepository)
		r.On("CountVisibleTracks", mock.Anything, int64(1), []int64{3, 4}).Return(1, nil)

		_, err := newTestService(r, nil, nil).CreatePlaylist(context.Background(), 1, models.PlaylistInput{
			Title: "mix", TrackIDs: []int64{3, 4, 3},
		})

		assert.ErrorIs(t, err, models.ErrInvalidReference)
	})

	t.Run("успешное создание", func(t *testing.T) {
		r, f := new(MockRepository), new(MockFiles)
		r.On("CountVisibleTracks", mock.Anything, int64(1), []int64{3}).Return(1, nil)
		f.On("Save", mock.Anything, prefixed("playlist/user_1/cover/p_"), mock.Anything, int64(5)).Return(nil)
		r.On("CreatePlaylist", mock.Anything, mock.MatchedBy(func(p models.Playlist) bool {
			return p.UserID == 1 && p.Title == "mix" && p.CoverImage != ""
		}), []int64{3}).Return(int64(8), nil)
		r.On("GetPlaylist", mock.Anything, int64(8)).Return(&models.Playlist{ID: 8, UserID: 1, Title: "mix"}, nil)

		got, err := newTestService(r, nil, f).CreatePlaylist(context.Background(), 1, models.PlaylistInput{
			Title: "mix", TrackIDs: []int64{3}, Cover: fileUpload("p.jpg", 5),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(8), got.ID)
		r.AssertExpectations(t)
	})

	t.Run("чужой плейлист не изменить", func(t *testing.T) {
		r := new(MockRepository)
		r.On("GetPlaylist", mock.Anything, int64(8)).Return(&models.Playlist{ID: 8, UserID: 2}, nil)

		_, err := newTestService(r, nil, nil).UpdatePlaylist(context.Background(), 1, 8, models.PlaylistInput{Title: "x"})

		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
