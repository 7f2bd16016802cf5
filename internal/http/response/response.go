// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// Message информационный ответ без данных ресурса.
type Message struct {
	Detail string `json:"detail"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OK возвращает успешный Response без данных.
func OK() Response {
	return Response{Status: StatusOK}
}

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// statusByError порядок важен: первая совпавшая ошибка определяет статус.
var statusByError = []struct {
	err    error
	status int
}{
	{models.ErrUnauthorized, http.StatusUnauthorized},
	{models.ErrInvalidToken, http.StatusUnauthorized},
	{models.ErrUserInactive, http.StatusUnauthorized},
	{models.ErrForbidden, http.StatusForbidden},
	{models.ErrOwnTrack, http.StatusForbidden},
	{models.ErrInvalidCredentials, http.StatusForbidden},
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrFileNotFound, http.StatusNotFound},
	{models.ErrNotFollowing, http.StatusNotFound},
	{models.ErrEmailTaken, http.StatusConflict},
	{models.ErrPasswordMismatch, http.StatusBadRequest},
	{models.ErrLicenseInUse, http.StatusBadRequest},
	{models.ErrAlreadyLiked, http.StatusBadRequest},
	{models.ErrNotLiked, http.StatusBadRequest},
	{models.ErrFileTooLarge, http.StatusBadRequest},
	{models.ErrFileExtension, http.StatusBadRequest},
	{models.ErrFileRequired, http.StatusBadRequest},
	{models.ErrInvalidReference, http.StatusBadRequest},
}

// FromError сопоставляет доменную ошибку HTTP-статусу и ответу.
// Текст неизвестных ошибок наружу не отдаётся.
func FromError(err error) (int, ErrorResponse) {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status, Error(publicMessage(err, e.err))
		}
	}
	return http.StatusInternalServerError, Error("internal error")
}

// publicMessage отбрасывает префиксы op из цепочки, оставляя текст
// доменной ошибки и уточнение после неё.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

// RenderError пишет ответ с ошибкой и соответствующим статусом.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "url":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid URL", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// RenderValidation пишет ответ 422. Ошибка, не являющаяся ошибкой валидатора, отдаётся как 400.
func RenderValidation(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ValidationError(verrs))
		return
	}
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Error(err.Error()))
}
