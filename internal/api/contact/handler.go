package contact

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

// ContactService define o contrato que o Handler espera do serviço de contato.
type ContactService interface {
	Create(ctx context.Context, create domain.ContactSubmissionCreate) (domain.ContactSubmission, error)
	List(ctx context.Context, filter domain.ContactFilter, opts paginate.Options) (paginate.Page[domain.ContactSubmission], error)
	GetByID(ctx context.Context, id int64) (domain.ContactSubmission, error)
	DeleteByID(ctx context.Context, id int64) (domain.ContactSubmission, error)
}

// NewsletterService define o contrato que o Handler espera do serviço de newsletter.
type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (domain.NewsletterSubscriber, error)
	List(ctx context.Context, filter domain.SubscriberFilter, opts paginate.Options) (paginate.Page[domain.NewsletterSubscriber], error)
	GetByID(ctx context.Context, id int64) (domain.NewsletterSubscriber, error)
	DeleteByID(ctx context.Context, id int64) (domain.NewsletterSubscriber, error)
}

// Handler agrupa as rotas de contato e newsletter (mesma área pública do site).
type Handler struct {
	Contacts   ContactService
	Newsletter NewsletterService
	Logger     logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Services e o Logger.
func NewHandler(contacts ContactService, newsletter NewsletterService, log logger.Logger) *Handler {
	return &Handler{
		Contacts:   contacts,
		Newsletter: newsletter,
		Logger:     log,
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

	// TRATAMENTO DE ERROS
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

// --- Formulário de contato ---

// CreateContactSubmissionHandler lida com a requisição POST /api/contact (pública).
// @Summary Envia uma mensagem pelo formulário de contato
// @Description Registra uma mensagem enviada pelo formulário público do site.
// @Tags contact
// @Accept json
// @Produce json
// @Param submission body domain.ContactSubmissionCreate true "Dados da mensagem"
// @Success 200 {object} map[string]interface{} "Mensagem registrada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /api/contact [post]
func (h *Handler) CreateContactSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var create domain.ContactSubmissionCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}
	if err := validate.Struct(create); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if _, err := h.Contacts.Create(ctx, create); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// O corpo de sucesso é contrato do frontend; a entidade criada não é exposta.
	h.handleServiceResponse(w, r, map[string]interface{}{
		"success": true,
		"message": "Thank you for your message! We'll get back to you within 24 hours.",
	}, nil, http.StatusOK)
}

// GetContactSubmissionsHandler lida com GET /api/contact (permissão manageContacts).
// @Summary Lista mensagens de contato
// @Description Retorna as mensagens do formulário com paginação.
// @Tags contact
// @Produce json
// @Param sortBy query string false "Ordenação no formato campo:asc|desc"
// @Param limit query int false "Máximo de resultados por página (1–100)"
// @Param page query int false "Página (≥ 1)"
// @Success 200 {object} paginate.Page[domain.ContactSubmission] "Página de mensagens"
// @Failure 401 {object} domain.ErrorResponse "Não autenticado"
// @Failure 403 {object} domain.ErrorResponse "Sem permissão"
// @Security ApiKeyAuth
// @Router /api/contact [get]
func (h *Handler) GetContactSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := validate.ListOptions(r.URL.Query())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	page, err := h.Contacts.List(ctx, domain.ContactFilter{}, opts)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, page, nil, http.StatusOK)
}

// GetContactSubmissionByIDHandler lida com GET /api/contact/{contactId}.
// @Summary Obtém uma mensagem de contato por ID
// @Tags contact
// @Produce json
// @Param contactId path int true "ID da mensagem"
// @Success 200 {object} domain.ContactSubmission "Mensagem encontrada"
// @Failure 404 {object} domain.ErrorResponse "Mensagem não encontrada"
// @Security ApiKeyAuth
// @Router /api/contact/{contactId} [get]
func (h *Handler) GetContactSubmissionByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validate.ID("contactId", r.PathValue("contactId"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	submission, err := h.Contacts.GetByID(ctx, id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, submission, nil, http.StatusOK)
}

// DeleteContactSubmissionHandler lida com DELETE /api/contact/{contactId}.
// @Summary Exclui uma mensagem de contato
// @Tags contact
// @Produce json
// @Param contactId path int true "ID da mensagem"
// @Success 200 {object} map[string]interface{} "Objeto vazio"
// @Failure 404 {object} domain.ErrorResponse "Mensagem não encontrada"
// @Security ApiKeyAuth
// @Router /api/contact/{contactId} [delete]
func (h *Handler) DeleteContactSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validate.ID("contactId", r.PathValue("contactId"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if _, err := h.Contacts.DeleteByID(ctx, id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]interface{}{}, nil, http.StatusOK)
}

// --- Newsletter ---

// SubscribeNewsletterHandler lida com POST /api/newsletter (pública).
// @Summary Inscreve um e-mail na newsletter
// @Description E-mail já inscrito resulta em 400 (Email already subscribed).
// @Tags newsletter
// @Accept json
// @Produce json
// @Param subscription body domain.NewsletterSubscribe true "E-mail para inscrição"
// @Success 200 {object} map[string]interface{} "Inscrição efetuada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou e-mail já inscrito"
// @Router /api/newsletter [post]
func (h *Handler) SubscribeNewsletterHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sub domain.NewsletterSubscribe
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}
	if err := validate.Struct(sub); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if _, err := h.Newsletter.Subscribe(ctx, sub.Email); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]interface{}{
		"success": true,
		"message": "Successfully subscribed to our newsletter! Welcome aboard!",
	}, nil, http.StatusOK)
}

// GetNewsletterSubscribersHandler lida com GET /api/newsletter (manageContacts).
// @Summary Lista inscritos na newsletter
// @Tags newsletter
// @Produce json
// @Param sortBy query string false "Ordenação no formato campo:asc|desc"
// @Param limit query int false "Máximo de resultados por página (1–100)"
// @Param page query int false "Página (≥ 1)"
// @Success 200 {object} paginate.Page[domain.NewsletterSubscriber] "Página de inscritos"
// @Failure 401 {object} domain.ErrorResponse "Não autenticado"
// @Failure 403 {object} domain.ErrorResponse "Sem permissão"
// @Security ApiKeyAuth
// @Router /api/newsletter [get]
func (h *Handler) GetNewsletterSubscribersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := validate.ListOptions(r.URL.Query())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	page, err := h.Newsletter.List(ctx, domain.SubscriberFilter{}, opts)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, page, nil, http.StatusOK)
}

// GetNewsletterSubscriberByIDHandler lida com GET /api/newsletter/{subscriptionId}.
// @Summary Obtém uma inscrição por ID
// @Tags newsletter
// @Produce json
// @Param subscriptionId path int true "ID da inscrição"
// @Success 200 {object} domain.NewsletterSubscriber "Inscrição encontrada"
// @Failure 404 {object} domain.ErrorResponse "Inscrição não encontrada"
// @Security ApiKeyAuth
// @Router /api/newsletter/{subscriptionId} [get]
func (h *Handler) GetNewsletterSubscriberByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validate.ID("subscriptionId", r.PathValue("subscriptionId"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	subscriber, err := h.Newsletter.GetByID(ctx, id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, subscriber, nil, http.StatusOK)
}

// DeleteNewsletterSubscriptionHandler lida com DELETE /api/newsletter/{subscriptionId}.
// @Summary Remove uma inscrição da newsletter
// @Tags newsletter
// @Produce json
// @Param subscriptionId path int true "ID da inscrição"
// @Success 200 {object} map[string]interface{} "Objeto vazio"
// @Failure 404 {object} domain.ErrorResponse "Inscrição não encontrada"
// @Security ApiKeyAuth
// @Router /api/newsletter/{subscriptionId} [delete]
func (h *Handler) DeleteNewsletterSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validate.ID("subscriptionId", r.PathValue("subscriptionId"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if _, err := h.Newsletter.DeleteByID(ctx, id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]interface{}{}, nil, http.StatusOK)
}
