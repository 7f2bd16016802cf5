// Package models содержит доменные модели аудио-библиотеки:
// пользователей и их профили, каталог (лицензии, жанры, альбомы, треки, плейлисты),
// комментарии, историю прослушиваний и задачи почтовой рассылки.
// Структуры используются в бизнес‑логике, при работе с хранилищем и в HTTP-ответах.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSpamEmail  bool      `json:"is_spam_email"` // Согласие на получение рассылки
	CreatedAt    time.Time `json:"created_at"`
}

// Profile профиль пользователя, создаётся вместе с User.
type Profile struct {
	UserID      int64  `json:"user_id"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Bio         string `json:"bio"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// ProfileInput изменяемые поля профиля.
type ProfileInput struct {
	Country     string      `validate:"max=30"`
	City        string      `validate:"max=30"`
	Bio         string      `validate:"max=2000"`
	DisplayName string      `validate:"max=30"`
	Avatar      *FileUpload `validate:"-"`
}

// SocialLink ссылка на страницу автора в другой сети.
type SocialLink struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Link   string `json:"link"`
}

// SocialLinkInput тело запроса на создание и изменение ссылки.
type SocialLinkInput struct {
	Link string `json:"link" validate:"required,url,max=100"`
}

// Author публичное представление пользователя.
type Author struct {
	ID             int64        `json:"id"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	DisplayName    string       `json:"display_name"`
	Country        string       `json:"country"`
	City           string       `json:"city"`
	Bio            string       `json:"bio"`
	Avatar         string       `json:"avatar"`
	SocialLinks    []SocialLink `json:"social_links,omitempty"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
}

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email,max=150"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	RePassword string `json:"re_password" validate:"required"`
	FirstName  string `json:"first_name" validate:"max=50"`
	LastName   string `json:"last_name" validate:"max=50"`
}

// TokenPair пара JWT-токенов.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// LoginRequest тело запроса на выпуск JWT.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest тело запроса на обновление access-токена.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// VerifyRequest тело запроса на проверку токена.
type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// EmailRequest тело запросов, где нужен только email.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ActivationRequest подтверждение email по ссылке из письма.
type ActivationRequest struct {
	UID   string `json:"uid" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// ResetPasswordConfirmRequest установка нового пароля по ссылке из письма.
type ResetPasswordConfirmRequest struct {
	UID         string `json:"uid" validate:"required"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// SetPasswordRequest смена пароля авторизованным пользователем.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// FollowResult результат подписки. Created равен false, если связь не создавалась:
// подписка на себя или повторная подписка, Message объясняет причину.
type FollowResult struct {
	Created bool   `json:"-"`
	Message string `json:"detail"`
}
