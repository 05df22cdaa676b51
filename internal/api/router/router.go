package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"landingapi/internal/api/auth"
	"landingapi/internal/api/contact"
	"landingapi/internal/api/user"
	"landingapi/internal/domain"
	"landingapi/internal/pkg/cache"
	"landingapi/internal/pkg/middleware"
)

// Config agrupa o que o roteador precisa além dos handlers.
type Config struct {
	TokenService         middleware.TokenService
	Cache                cache.Client
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências e monta as
// cadeias de middleware por rota: rate limit nas rotas públicas, autenticação +
// permissão nas administrativas.
func NewRouter(contactHandler *contact.Handler, userHandler *user.Handler, authHandler *auth.Handler, cfg Config) http.Handler {

	// ServeMux padrão do net/http, com patterns de método (Go 1.22+):
	// o mesmo path carrega métodos com cadeias de middleware diferentes.
	mux := http.NewServeMux()

	authenticated := middleware.NewAuthMiddleware(cfg.TokenService, cfg.Cache)
	rateLimited := middleware.RateLimiter(cfg.Cache, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	manageContacts := middleware.RequirePermission(domain.PermissionManageContacts)
	manageUsers := middleware.RequirePermission(domain.PermissionManageUsers)
	getUsers := middleware.RequirePermission(domain.PermissionGetUsers)

	// Auto-acesso: leitura e atualização do próprio usuário dispensam a
	// permissão ampla. Opt-in explícito por rota; DELETE fica de fora.
	getUsersOrSelf := middleware.RequirePermissionOrSelf(domain.PermissionGetUsers, "userId")
	manageUsersOrSelf := middleware.RequirePermissionOrSelf(domain.PermissionManageUsers, "userId")

	// --- 1. Health Check ---
	mux.HandleFunc("GET /ping", PingHandler)

	// --- 2. Autenticação (rotas públicas com rate limit) ---
	mux.HandleFunc("POST /api/auth/register", rateLimited(authHandler.RegisterHandler))
	mux.HandleFunc("POST /api/auth/login", rateLimited(authHandler.LoginHandler))
	mux.HandleFunc("POST /api/auth/logout", authHandler.LogoutHandler)

	// --- 3. Formulário de Contato ---
	mux.HandleFunc("POST /api/contact", rateLimited(contactHandler.CreateContactSubmissionHandler))
	mux.HandleFunc("GET /api/contact", authenticated(manageContacts(contactHandler.GetContactSubmissionsHandler)))
	mux.HandleFunc("GET /api/contact/{contactId}", authenticated(manageContacts(contactHandler.GetContactSubmissionByIDHandler)))
	mux.HandleFunc("DELETE /api/contact/{contactId}", authenticated(manageContacts(contactHandler.DeleteContactSubmissionHandler)))

	// --- 4. Newsletter ---
	mux.HandleFunc("POST /api/newsletter", rateLimited(contactHandler.SubscribeNewsletterHandler))
	mux.HandleFunc("GET /api/newsletter", authenticated(manageContacts(contactHandler.GetNewsletterSubscribersHandler)))
	mux.HandleFunc("GET /api/newsletter/{subscriptionId}", authenticated(manageContacts(contactHandler.GetNewsletterSubscriberByIDHandler)))
	mux.HandleFunc("DELETE /api/newsletter/{subscriptionId}", authenticated(manageContacts(contactHandler.DeleteNewsletterSubscriptionHandler)))

	// --- 5. Usuários (administração) ---
	mux.HandleFunc("POST /api/users", authenticated(manageUsers(userHandler.CreateUserHandler)))
	mux.HandleFunc("GET /api/users", authenticated(getUsers(userHandler.GetUsersHandler)))
	mux.HandleFunc("GET /api/users/{userId}", authenticated(getUsersOrSelf(userHandler.GetUserHandler)))
	mux.HandleFunc("PATCH /api/users/{userId}", authenticated(manageUsersOrSelf(userHandler.UpdateUserHandler)))
	mux.HandleFunc("DELETE /api/users/{userId}", authenticated(manageUsers(userHandler.DeleteUserHandler)))

	// --- 6. Documentação (Swagger UI) ---
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Middleware global: id de correlação em todas as requisições.
	return middleware.RequestID(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
