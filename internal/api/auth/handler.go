package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/validate"
)

// AuthService define o contrato do fluxo de autenticação esperado pelo Handler.
type AuthService interface {
	Register(ctx context.Context, reg domain.UserRegistration) (domain.User, string, error)
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	Logout(ctx context.Context, tokenString string) error
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse é o corpo de sucesso do signup e do login.
type AuthResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Handler agrupa as rotas de autenticação (signup, login, logout).
type Handler struct {
	Service AuthService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AuthService, log logger.Logger) *Handler {
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

// RegisterHandler lida com POST /api/auth/register (signup público).
// @Summary Registra um novo usuário
// @Description Cria a conta com papel USER e já retorna o token de acesso.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Dados de cadastro"
// @Success 201 {object} AuthResponse "Usuário criado e token emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou e-mail em uso"
// @Router /api/auth/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}
	if err := validate.Struct(reg); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	newUser, tokenString, err := h.Service.Register(ctx, reg)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, AuthResponse{User: newUser, Token: tokenString}, nil, http.StatusCreated)
}

// LoginHandler lida com POST /api/auth/login.
// @Summary Autentica um usuário e retorna um JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais do usuário"
// @Success 200 {object} AuthResponse "Usuário autenticado e token emitido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /api/auth/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}
	if err := validate.Struct(loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	authedUser, tokenString, err := h.Service.Login(ctx, loginReq.Email, loginReq.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, AuthResponse{User: authedUser, Token: tokenString}, nil, http.StatusOK)
}

// LogoutHandler lida com POST /api/auth/logout.
// @Summary Revoga o token apresentado
// @Description Coloca o token na denylist até a expiração original. O cliente
// @Description limpa a sessão local mesmo quando esta chamada falha.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Objeto vazio"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Security ApiKeyAuth
// @Router /api/auth/logout [post]
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Please authenticate"), http.StatusOK)
		return
	}

	if err := h.Service.Logout(ctx, strings.TrimPrefix(authHeader, "Bearer ")); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]interface{}{}, nil, http.StatusOK)
}
