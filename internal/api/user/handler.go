package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/paginate"
	"landingapi/internal/pkg/validate"
)

// UserService define o contrato que o Handler espera do serviço de usuário.
type UserService interface {
	CreateUser(ctx context.Context, create domain.UserCreate) (domain.User, error)
	List(ctx context.Context, filter domain.UserFilter, opts paginate.Options) (paginate.Page[domain.User], error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	UpdateByID(ctx context.Context, id int64, update domain.UserUpdate) (domain.User, error)
	DeleteByID(ctx context.Context, id int64) (domain.User, error)
}

// Handler agrupa todos os métodos de Handler de usuários.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// CreateUserHandler lida com POST /api/users (permissão manageUsers).
// @Summary Cria um usuário
// @Description Criação administrativa de usuário, com papel informado no payload.
// @Tags users
// @Accept json
// @Produce json
// @Param user body domain.UserCreate true "Dados do usuário"
// @Success 201 {object} domain.User "Usuário criado (sem o campo de senha)"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou e-mail em uso"
// @Failure 403 {object} domain.ErrorResponse "Sem permissão"
// @Security ApiKeyAuth
// @Router /api/users [post]
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var create domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}
	if err := validate.Struct(create); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	// A struct domain.User oculta o hash da senha via tag `json:"-"`,
	// então a resposta nunca contém o campo de senha.
	newUser, err := h.Service.CreateUser(ctx, create)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, newUser, nil, http.StatusCreated)
}

// GetUsersHandler lida com GET /api/users (permissão getUsers).
// @Summary Lista usuários
// @Description Retorna usuários com filtro (name, role) e paginação.
// @Tags users
// @Produce json
// @Param name query string false "Filtra por nome (igualdade)"
// @Param role query string false "Filtra por papel (USER, ADMIN)"
// @Param sortBy query string false "Ordenação no formato campo:asc|desc"
// @Param limit query int false "Máximo de resultados por página (1–100)"
// @Param page query int false "Página (≥ 1)"
// @Success 200 {object} paginate.Page[domain.User] "Página de usuários"
// @Failure 401 {object} domain.ErrorResponse "Não autenticado"
// @Failure 403 {object} domain.ErrorResponse "Sem permissão"
// @Security ApiKeyAuth
// @Router /api/users [get]
func (h *Handler) GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := validate.ListOptions(r.URL.Query())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	filter := domain.UserFilter{
		Name: r.URL.Query().Get("name"),
		Role: domain.Role(r.URL.Query().Get("role")),
	}
	if filter.Role != "" && !domain.IsValidRole(filter.Role) {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("role must be one of: USER, ADMIN"), http.StatusOK)
		return
	}

	page, err := h.Service.List(ctx, filter, opts)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, page, nil, http.StatusOK)
}

// GetUserHandler lida com GET /api/users/{userId} (getUsers ou auto-acesso).
// @Summary Obtém um usuário por ID
// @Tags users
// @Produce json
// @Param userId path int true "ID do usuário"
// @Success 200 {object} domain.User "Usuário encontrado (sem o campo de senha)"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Security ApiKeyAuth
// @Router /api/users/{userId} [get]
func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validate.ID("userId", r.PathValue("userId"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	foundUser, err := h.Service.GetByID(ctx, id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, foundUser, nil, http.StatusOK)
}

// UpdateUserHandler lida com PATCH /api/users/{userId} (manageUsers ou auto-acesso).
// @Summary Atualiza parcialmente um usuário
// @Tags users
// @Accept json
// @Produce json
// @Param userId path int true "ID do usuário"
// @Param user body domain.UserUpdate true "Campos a atualizar"
// @Success 200 {object} domain.User "Usuário atualizado (sem o campo de senha)"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou e-mail em uso"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Security ApiKeyAuth
// @Router /api/users/{userId} [patch]
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validate.ID("userId", r.PathValue("userId"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var update domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}
	if err := validate.Struct(update); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	updatedUser, err := h.Service.UpdateByID(ctx, id, update)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updatedUser, nil, http.StatusOK)
}

// DeleteUserHandler lida com DELETE /api/users/{userId} (permissão manageUsers).
// @Summary Exclui um usuário
// @Tags users
// @Produce json
// @Param userId path int true "ID do usuário"
// @Success 200 {object} map[string]interface{} "Objeto vazio"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Security ApiKeyAuth
// @Router /api/users/{userId} [delete]
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validate.ID("userId", r.PathValue("userId"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if _, err := h.Service.DeleteByID(ctx, id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]interface{}{}, nil, http.StatusOK)
}
