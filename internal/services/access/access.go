// Package services проверки доступа к ресурсам каталога.
//
// Запрашивающий пользователь передаётся как id, 0 означает анонимный запрос.
// Чужой приватный ресурс и чужой ресурс при изменении выглядят как несуществующие.
package services

import "github.com/magabrotheeeer/audio-library/internal/models"

// Anonymous id анонимного пользователя.
const Anonymous int64 = 0

// RequireUser возвращает ErrUnauthorized для анонимного запроса.
func RequireUser(requesterID int64) error {
	if requesterID == Anonymous {
		return models.ErrUnauthorized
	}
	return nil
}

// CanRead сообщает, видит ли пользователь ресурс.
func CanRead(ownerID int64, private bool, requesterID int64) bool {
	if !private {
		return true
	}
	return requesterID != Anonymous && requesterID == ownerID
}

// CheckRead возвращает ErrNotFound, если ресурс скрыт от пользователя.
func CheckRead(ownerID int64, private bool, requesterID int64) error {
	if !CanRead(ownerID, private, requesterID) {
		return models.ErrNotFound
	}
	return nil
}

// CheckWrite разрешает изменение только владельцу.
func CheckWrite(ownerID, requesterID int64) error {
	if err := RequireUser(requesterID); err != nil {
		return err
	}
	if ownerID != requesterID {
		return models.ErrNotFound
	}
	return nil
}
