package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/audio-library/internal/migrations"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает активного пользователя с уникальным email
func (f *TestDataFactory) CreateUser(t *testing.T, displayName string) int64 {
	id, err := f.storage.CreateUser(context.Background(), models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hashedpassword",
		FirstName:    displayName,
		IsActive:     true,
	})
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`UPDATE user_profiles SET display_name = $1 WHERE user_id = $2`, displayName, id)
	require.NoError(t, err)
	return id
}

// CreateLicense создает лицензию пользователя
func (f *TestDataFactory) CreateLicense(t *testing.T, userID int64) int64 {
	l, err := f.storage.CreateLicense(context.Background(), userID, "CC BY 4.0")
	require.NoError(t, err)
	return l.ID
}

// CreateTrack создает трек пользователя с собственной лицензией
func (f *TestDataFactory) CreateTrack(t *testing.T, userID int64, title string, private bool) int64 {
	id, err := f.storage.CreateTrack(context.Background(), models.Track{
		UserID:    userID,
		Title:     title,
		LicenseID: f.CreateLicense(t, userID),
		File:      fmt.Sprintf("track/user_%d/%s.mp3", userID, uuid.NewString()[:8]),
		Private:   private,
	}, nil)
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountRows возвращает количество строк таблицы по условию
func (v *TestVerification) CountRows(t *testing.T, table, where string, args ...any) int {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE "+where, args...).Scan(&count)
	require.NoError(t, err)
	return count
}

// VerifyLikesConsistent проверяет, что likes_count совпадает с числом лайков
func (v *TestVerification) VerifyLikesConsistent(t *testing.T, trackID int64) int64 {
	var cached, actual int64
	err := v.storage.DB.QueryRow(`
		SELECT t.likes_count, (SELECT COUNT(*) FROM track_likes l WHERE l.track_id = t.id)
		FROM tracks t WHERE t.id = $1`, trackID).Scan(&cached, &actual)
	require.NoError(t, err)
	require.Equal(t, actual, cached)
	return cached
}

const postgresPort nat.Port = "5432/tcp"

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err, "Failed to get host")
	port, err := postgresContainer.MappedPort(ctx, postgresPort)
	require.NoError(t, err, "Failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "Failed to apply migrations")
	require.NoError(t, CheckDatabaseReady(storage))

	cleanup := func() {
		_ = storage.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}
