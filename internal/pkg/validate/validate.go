package validate

import (
	"fmt"
	"net/url"
	"strconv"
	"unicode"

	"github.com/go-playground/validator/v10"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/paginate"
)

// validate é a instância única do go-playground/validator, montada no init.
// A instância faz cache dos metadados de struct, então deve ser compartilhada.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// "password": exige ao menos uma letra e um dígito (o tamanho mínimo
	// fica na tag min=8, junto da declaração do campo).
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		hasLetter, hasDigit := false, false
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLetter(r):
				hasLetter = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasLetter && hasDigit
	})

	// "role": o papel precisa existir na tabela estática papel → permissões.
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.IsValidRole(domain.Role(fl.Field().String()))
	})

	return v
}

// Struct valida o payload contra as tags `validate` e traduz a primeira
// falha para um ValidationError com mensagem legível para o cliente.
func Struct(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperror.NewValidationError("Invalid request payload")
	}

	return apperror.NewValidationError(fieldMessage(verrs[0]))
}

// fieldMessage monta uma mensagem no estilo das validações do frontend.
func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "password":
		return "password must contain at least one letter and one number"
	case "role":
		return "role must be one of: USER, ADMIN"
	}
	return fmt.Sprintf("%s is invalid", field)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// ListOptions extrai e valida {sortBy, limit, page} da query string.
// limit fora de [1,100] ou page < 1 são rejeitados aqui, antes de qualquer
// chamada de serviço — o helper de paginação não re-valida.
func ListOptions(query url.Values) (paginate.Options, error) {
	opts := paginate.Options{SortBy: query.Get("sortBy")}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return paginate.Options{}, apperror.NewValidationError("limit must be an integer between 1 and 100")
		}
		opts.Limit = limit
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return paginate.Options{}, apperror.NewValidationError("page must be a positive integer")
		}
		opts.Page = page
	}

	return opts.Normalize(), nil
}

// ID converte um parâmetro de rota em um id inteiro positivo.
// O nome do parâmetro entra na mensagem ("contactId must be a valid integer").
func ID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NewValidationError(fmt.Sprintf("%s must be a valid integer", name))
	}
	return id, nil
}
