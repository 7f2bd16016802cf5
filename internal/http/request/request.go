// Package request разбирает параметры HTTP-запросов: id из URL, параметры списков,
// JSON-тела и поля multipart-форм.
package request

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/audio-library/internal/http/response"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// multipartMemory часть формы, которая держится в памяти, остальное уходит во временные файлы.
const multipartMemory = 8 << 20

// ErrBadID возвращается для нечислового или неположительного id в URL.
var ErrBadID = errors.New("invalid id")

// ID читает положительный id из параметра маршрута.
func ID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadID, chi.URLParam(r, name))
	}
	return id, nil
}

// List читает search, ordering, page и page_size из строки запроса.
// Некорректные числа заменяются значениями по умолчанию.
func List(r *http.Request) models.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	return models.ListParams{
		Search:   strings.TrimSpace(q.Get("search")),
		Ordering: q.Get("ordering"),
		Page:     page,
		PageSize: pageSize,
	}
}

// DecodeJSON декодирует тело в dst и валидирует его. При ошибке пишет ответ
// и возвращает false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, validate *validator.Validate, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return false
	}
	return true
}

// Form разобранная multipart-форма. Close закрывает открытые файлы
// и удаляет временные файлы формы.
type Form struct {
	r      *http.Request
	opened []multipart.File
}

// ParseForm разбирает multipart/form-data или application/x-www-form-urlencoded тело.
func ParseForm(r *http.Request) (*Form, error) {
	const op = "request.ParseForm"
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			err = fmt.Errorf("%w: request body exceeds %d bytes", models.ErrFileTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Form{r: r}, nil
}

// String возвращает значение поля без пробелов по краям.
func (f *Form) String(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

// Bool возвращает true для "true", "1", "on".
func (f *Form) Bool(name string) bool {
	switch strings.ToLower(f.String(name)) {
	case "true", "1", "on":
		return true
	}
	return false
}

// Int64 возвращает числовое поле, 0 если поле пустое.
func (f *Form) Int64(name string) (int64, error) {
	v := f.String(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s must be a number", name)
	}
	return n, nil
}

// OptionalInt64 возвращает nil для пустого поля.
func (f *Form) OptionalInt64(name string) (*int64, error) {
	if f.String(name) == "" {
		return nil, nil
	}
	n, err := f.Int64(name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Int64s читает список id: повторяющееся поле или значения через запятую.
func (f *Form) Int64s(name string) ([]int64, error) {
	var ids []int64
	for _, v := range f.r.PostForm[name] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("field %s must contain numbers", name)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// File возвращает загруженный файл или nil, если поле не передано.
func (f *Form) File(name string) (*models.FileUpload, error) {
	file, header, err := f.r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", name, err)
	}
	f.opened = append(f.opened, file)
	return &models.FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, nil
}

// Close освобождает ресурсы формы.
func (f *Form) Close() {
	for _, file := range f.opened {
		_ = file.Close()
	}
	if f.r.MultipartForm != nil {
		_ = f.r.MultipartForm.RemoveAll()
	}
}

// Logger возвращает логгер обработчика с op и request_id.
func Logger(log *slog.Logger, r *http.Request, op string) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// PathID читает id из маршрута. При ошибке отвечает 400 и возвращает false.
func PathID(w http.ResponseWriter, r *http.Request, log *slog.Logger, name string) (int64, bool) {
	id, err := ID(r, name)
	if err != nil {
		log.Warn("invalid id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return 0, false
	}
	return id, true
}
