// Package query собирает SELECT-запросы для списочных эндпоинтов:
// фильтры, поиск по нескольким колонкам, сортировку по белому списку и пагинацию.
//
// Условия пишутся с плейсхолдером "?", при сборке они нумеруются как $1, $2 ...
package query

import (
	"strconv"
	"strings"
)

// Builder собирает запрос поверх базового SELECT ... FROM ... без WHERE.
type Builder struct {
	base    string
	where   []string
	args    []any
	orderBy string
	limit   int
	offset  int
}

// New создаёт Builder с базовым запросом.
func New(base string) *Builder {
	return &Builder{base: base}
}

// Where добавляет условие, объединяемое через AND.
func (b *Builder) Where(cond string, args ...any) *Builder {
	b.where = append(b.where, "("+cond+")")
	b.args = append(b.args, args...)
	return b
}

// Search добавляет поиск ILIKE по любой из колонок. Пустой term игнорируется.
func (b *Builder) Search(term string, columns ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return b
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, c+" ILIKE ?")
		args = append(args, pattern)
	}
	return b.Where(strings.Join(parts, " OR "), args...)
}

// OrderBy задаёт сортировку. ordering это имя поля из allowed, с префиксом "-"
// для убывания. Неизвестные поля заменяются на fallback.
func (b *Builder) OrderBy(ordering string, allowed map[string]string, fallback string) *Builder {
	b.orderBy = fallback
	desc := strings.HasPrefix(ordering, "-")
	column, ok := allowed[strings.TrimPrefix(ordering, "-")]
	if !ok {
		return b
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	b.orderBy = column + " " + dir
	if fallback != "" && fallback != b.orderBy {
		b.orderBy += ", " + fallback
	}
	return b
}

// Paginate задаёт LIMIT и OFFSET.
func (b *Builder) Paginate(limit, offset int) *Builder {
	b.limit = limit
	b.offset = offset
	return b
}

// Build возвращает итоговый запрос и аргументы.
func (b *Builder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString(b.base)
	b.writeWhere(&sb)
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	args := append([]any(nil), b.args...)
	if b.limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, b.limit, b.offset)
	}
	return numberPlaceholders(sb.String()), args
}

// BuildCount возвращает запрос количества строк с теми же условиями.
func (b *Builder) BuildCount() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM (")
	sb.WriteString(b.base)
	b.writeWhere(&sb)
	sb.WriteString(") AS counted")
	return numberPlaceholders(sb.String()), append([]any(nil), b.args...)
}

func (b *Builder) writeWhere(sb *strings.Builder) {
	if len(b.where) == 0 {
		return
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(b.where, " AND "))
}

func numberPlaceholders(q string) string {
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Page нормализует номер и размер страницы и возвращает смещение.
func Page(page, pageSize, defaultSize, maxSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if maxSize > 0 && pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// In возвращает строку плейсхолдеров для IN (...) из n элементов.
func In(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Args приводит срез к []any для передачи в Where.
func Args[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
