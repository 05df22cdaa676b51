package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/cache"
	"landingapi/internal/pkg/token"
)

// ContextKey é o tipo das chaves de contexto deste pacote.
// Tipo próprio para não colidir com chaves string de outros pacotes.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
	RequestIDKey
)

// UserClaims representa os dados do usuário extraídos do token JWT,
// anexados ao contexto da requisição.
type UserClaims struct {
	UserID int64
	Role   domain.Role
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware cria o middleware de autenticação: valida o JWT do header
// Authorization, consulta a denylist de logout e anexa as claims ao contexto.
func NewAuthMiddleware(tokenSvc TokenService, cacheClient cache.Client) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, apperror.NewUnauthorizedError("Please authenticate"))
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			// 2. Validar o Token (assinatura + expiração)
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				writeAuthError(w, apperror.NewUnauthorizedError("Please authenticate"))
				return
			}

			// 3. Consultar a denylist: token revogado por logout continua
			// criptograficamente válido até expirar, então a checagem é obrigatória.
			revoked, err := cacheClient.Exists(r.Context(), token.DenylistPrefix+claims.ID)
			if err != nil && err != cache.ErrCacheMiss {
				writeAuthError(w, apperror.NewInternalError("Falha ao consultar denylist de tokens.", err))
				return
			}
			if revoked {
				writeAuthError(w, apperror.NewUnauthorizedError("Please authenticate"))
				return
			}

			// 4. Anexar Claims ao Contexto
			userClaims := UserClaims{
				UserID: claims.UserID,
				Role:   domain.Role(claims.Role),
			}
			ctx := context.WithValue(r.Context(), UserClaimsKey, userClaims)

			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetUserClaimsFromContext extrai as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// RequirePermission autoriza a rota apenas para papéis cuja tabela estática
// contém a permissão exigida. Papel desconhecido não tem permissão (fail-closed).
func RequirePermission(perm domain.Permission) func(next http.HandlerFunc) http.HandlerFunc {
	return requirePermission(perm, "")
}

// RequirePermissionOrSelf é a variante com exceção de auto-acesso: o chamador
// pode agir sobre o próprio recurso mesmo sem a permissão ampla, comparando o
// id das claims com o parâmetro de rota informado. O relaxamento é um opt-in
// explícito por rota, nunca um fallback implícito.
func RequirePermissionOrSelf(perm domain.Permission, idPathParam string) func(next http.HandlerFunc) http.HandlerFunc {
	return requirePermission(perm, idPathParam)
}

func requirePermission(perm domain.Permission, idPathParam string) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Claims precisam ter sido anexadas pelo middleware de autenticação.
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, apperror.NewUnauthorizedError("Please authenticate"))
				return
			}

			// 2. Decisão pura sobre (papel, permissão, auto-acesso).
			if domain.HasPermission(claims.Role, perm) {
				next.ServeHTTP(w, r)
				return
			}

			if idPathParam != "" && isSelfAccess(r, claims.UserID, idPathParam) {
				next.ServeHTTP(w, r)
				return
			}

			writeAuthError(w, apperror.NewForbiddenError("Forbidden"))
		}
	}
}

// isSelfAccess compara o id das claims com o id da rota.
func isSelfAccess(r *http.Request, userID int64, idPathParam string) bool {
	raw := r.PathValue(idPathParam)
	if raw == "" {
		return false
	}
	pathID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return pathID == userID
}

// writeAuthError envia a resposta de erro no mesmo formato JSON dos handlers.
func writeAuthError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	})
}
