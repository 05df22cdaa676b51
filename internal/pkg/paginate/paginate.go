package paginate

import "strings"

// Valores padrão quando o cliente não informa page/limit.
// O teto de limit (100) é responsabilidade da validação de entrada, não daqui.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Options carrega os parâmetros de paginação e ordenação vindos da query string.
// SortBy segue o formato "campo:direção" (e.g., "createdAt:asc").
type Options struct {
	SortBy string
	Page   int
	Limit  int
}

// Normalize aplica os padrões para valores ausentes (zero).
// page < 1 e limit ≤ 0 são rejeitados pela validação upstream; aqui não há clamp,
// para manter o comportamento determinístico e testável.
func (o Options) Normalize() Options {
	if o.Page == 0 {
		o.Page = DefaultPage
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Skip calcula o deslocamento (OFFSET) da página solicitada.
func (o Options) Skip() int {
	return (o.Page - 1) * o.Limit
}

// OrderClause traduz o sortBy em uma cláusula ORDER BY segura.
//
// O campo é validado contra um conjunto fechado de colunas ordenáveis por
// entidade (allowed: campo da API → coluna SQL); nada vindo do cliente é
// interpolado diretamente no SQL. Campo desconhecido ou sortBy ausente caem
// no fallback (coluna de criação, descendente). Direção ausente ou token não
// reconhecido viram "desc".
func (o Options) OrderClause(allowed map[string]string, fallback string) string {
	field, direction := parseSortBy(o.SortBy)

	column, ok := allowed[field]
	if !ok {
		return fallback + " DESC"
	}
	if direction == "asc" {
		return column + " ASC"
	}
	return column + " DESC"
}

// parseSortBy separa "campo:direção"; direção padrão é desc.
func parseSortBy(sortBy string) (field, direction string) {
	if sortBy == "" {
		return "", "desc"
	}

	parts := strings.SplitN(sortBy, ":", 2)
	field = parts[0]
	direction = "desc"
	if len(parts) == 2 && parts[1] == "asc" {
		direction = "asc"
	}
	return field, direction
}

// Page é o envelope de resposta das listagens paginadas.
type Page[T any] struct {
	Results      []T `json:"results"`
	Page         int `json:"page"`
	Limit        int `json:"limit"`
	TotalPages   int `json:"totalPages"`
	TotalResults int `json:"totalResults"`
}

// NewPage monta o envelope a partir dos resultados da página e do total.
// totalPages = ceil(totalResults / limit). Results nunca é nil no JSON.
func NewPage[T any](results []T, opts Options, totalResults int) Page[T] {
	if results == nil {
		results = []T{}
	}

	totalPages := 0
	if opts.Limit > 0 {
		totalPages = (totalResults + opts.Limit - 1) / opts.Limit
	}

	return Page[T]{
		Results:      results,
		Page:         opts.Page,
		Limit:        opts.Limit,
		TotalPages:   totalPages,
		TotalResults: totalResults,
	}
}
