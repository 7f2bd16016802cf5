package models

import (
	"io"
	"time"
)

// FileUpload загруженный клиентом файл до сохранения в хранилище.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// License текст лицензии, под которой автор публикует треки.
type License struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// LicenseInput тело запроса на создание и изменение лицензии.
type LicenseInput struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// Genre жанр, справочник только для чтения.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Album альбом автора.
type Album struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	CoverImage  string `json:"cover_image"`
}

// AlbumInput поля альбома из multipart-формы.
type AlbumInput struct {
	Name        string      `validate:"required,max=50"`
	Description string      `validate:"max=1000"`
	Private     bool        `validate:"-"`
	Cover       *FileUpload `validate:"-"`
}

// Track аудиотрек.
type Track struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Title        string    `json:"title"`
	LicenseID    int64     `json:"license_id"`
	Genres       []Genre   `json:"genres"`
	AlbumID      *int64    `json:"album_id"`
	LinkOfAuthor string    `json:"link_of_author"`
	File         string    `json:"file"`
	CoverImage   string    `json:"cover_image"`
	Private      bool      `json:"private"`
	CreateAt     time.Time `json:"create_at"`
	PlaysCount   int64     `json:"plays_count"`
	Download     int64     `json:"download"`
	LikesCount   int64     `json:"likes_count"`
	AuthorName   string    `json:"author_name,omitempty"`
}

// TrackInput поля трека из multipart-формы.
// File обязателен при создании и необязателен при изменении.
type TrackInput struct {
	Title        string      `validate:"required,max=100"`
	LicenseID    int64       `validate:"required,gt=0"`
	GenreIDs     []int64     `validate:"-"`
	AlbumID      *int64      `validate:"omitempty,gt=0"`
	LinkOfAuthor string      `validate:"omitempty,url,max=500"`
	Private      bool        `validate:"-"`
	File         *FileUpload `validate:"-"`
	Cover        *FileUpload `validate:"-"`
}

// Playlist плейлист пользователя.
type Playlist struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	Title      string  `json:"title"`
	CoverImage string  `json:"cover_image"`
	Tracks     []Track `json:"tracks"`
}

// PlaylistInput поля плейлиста из multipart-формы.
type PlaylistInput struct {
	Title    string      `validate:"required,max=50"`
	TrackIDs []int64     `validate:"-"`
	Cover    *FileUpload `validate:"-"`
}

// PlayedTrack запись истории прослушиваний.
type PlayedTrack struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

// Comment комментарий к треку.
type Comment struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	TrackID  int64     `json:"track_id"`
	Text     string    `json:"text"`
	CreateAt time.Time `json:"create_at"`
}

// CommentInput тело запроса на создание комментария.
type CommentInput struct {
	TrackID int64  `json:"track" validate:"required,gt=0"`
	Text    string `json:"text" validate:"required,max=1000"`
}

// CommentUpdate тело запроса на изменение комментария.
type CommentUpdate struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// StoredFile открытый файл трека для стриминга и скачивания.
type StoredFile struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
	Content     io.ReadSeekCloser
}

// LikeResult состояние лайков трека после действия.
type LikeResult struct {
	TrackID    int64 `json:"track_id"`
	LikesCount int64 `json:"likes_count"`
}
