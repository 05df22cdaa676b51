package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"landingapi/internal/domain"
	"landingapi/internal/pkg/middleware"
	"landingapi/internal/pkg/token"
)

// MockCacheClient é uma implementação mock da interface cache.Client
type MockCacheClient struct {
	mock.Mock
}

func (m *MockCacheClient) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheClient) GetInt(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheClient) Incr(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheClient) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheClient) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// okHandler registra se a cadeia de middleware deixou a requisição passar.
func okHandler(called *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}
}

// TestAuthMiddleware_MissingHeader testa a rejeição sem header Authorization.
func TestAuthMiddleware_MissingHeader(t *testing.T) {
	tokenSvc := token.NewService("test-secret", time.Minute)
	mockCache := new(MockCacheClient)

	called := false
	handler := middleware.NewAuthMiddleware(tokenSvc, mockCache)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please authenticate")
	assert.False(t, called)
}

// TestAuthMiddleware_InvalidToken testa a rejeição de token forjado/corrompido.
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tokenSvc := token.NewService("test-secret", time.Minute)
	mockCache := new(MockCacheClient)

	called := false
	handler := middleware.NewAuthMiddleware(tokenSvc, mockCache)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

// TestAuthMiddleware_ValidToken testa o caminho feliz: token válido, fora da
// denylist, claims anexadas ao contexto.
func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokenSvc := token.NewService("test-secret", time.Minute)
	mockCache := new(MockCacheClient)
	mockCache.On("Exists", mock.Anything, mock.Anything).Return(false, nil)

	tokenString, err := tokenSvc.GenerateToken(42, "ADMIN")
	assert.NoError(t, err)

	var gotClaims middleware.UserClaims
	handler := middleware.NewAuthMiddleware(tokenSvc, mockCache)(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserClaimsFromContext(r.Context())
		assert.True(t, ok)
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotClaims.UserID)
	assert.Equal(t, domain.RoleAdmin, gotClaims.Role)
}

// TestAuthMiddleware_RevokedToken testa que token na denylist (logout) é
// rejeitado mesmo sendo criptograficamente válido.
func TestAuthMiddleware_RevokedToken(t *testing.T) {
	tokenSvc := token.NewService("test-secret", time.Minute)
	mockCache := new(MockCacheClient)
	mockCache.On("Exists", mock.Anything, mock.Anything).Return(true, nil)

	tokenString, err := tokenSvc.GenerateToken(42, "ADMIN")
	assert.NoError(t, err)

	called := false
	handler := middleware.NewAuthMiddleware(tokenSvc, mockCache)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

// withClaims injeta claims no contexto como o middleware de autenticação faria.
func withClaims(req *http.Request, userID int64, role domain.Role) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserClaimsKey, middleware.UserClaims{
		UserID: userID,
		Role:   role,
	})
	return req.WithContext(ctx)
}

// TestRequirePermission_Allowed testa o acesso de um papel com a permissão exigida.
func TestRequirePermission_Allowed(t *testing.T) {
	called := false
	handler := middleware.RequirePermission(domain.PermissionManageContacts)(okHandler(&called))

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/contact", nil), 1, domain.RoleAdmin)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

// TestRequirePermission_Forbidden testa a rejeição 403 de um papel sem a permissão.
func TestRequirePermission_Forbidden(t *testing.T) {
	called := false
	handler := middleware.RequirePermission(domain.PermissionManageContacts)(okHandler(&called))

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/contact", nil), 1, domain.RoleUser)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

// TestRequirePermission_NoClaims testa a resposta 401 quando o middleware de
// autenticação não populou o contexto.
func TestRequirePermission_NoClaims(t *testing.T) {
	called := false
	handler := middleware.RequirePermission(domain.PermissionManageContacts)(okHandler(&called))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/contact", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

// TestRequirePermissionOrSelf testa a exceção de auto-acesso: USER sem a
// permissão ampla acessa o próprio recurso, mas não o de terceiros.
func TestRequirePermissionOrSelf(t *testing.T) {
	newRequest := func(pathID string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/users/"+pathID, nil)
		req.SetPathValue("userId", pathID)
		return req
	}

	t.Run("próprio recurso é permitido", func(t *testing.T) {
		called := false
		handler := middleware.RequirePermissionOrSelf(domain.PermissionGetUsers, "userId")(okHandler(&called))

		rec := httptest.NewRecorder()
		handler(rec, withClaims(newRequest("42"), 42, domain.RoleUser))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("recurso de terceiro é negado", func(t *testing.T) {
		called := false
		handler := middleware.RequirePermissionOrSelf(domain.PermissionGetUsers, "userId")(okHandler(&called))

		rec := httptest.NewRecorder()
		handler(rec, withClaims(newRequest("43"), 42, domain.RoleUser))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)
	})

	t.Run("admin acessa qualquer recurso", func(t *testing.T) {
		called := false
		handler := middleware.RequirePermissionOrSelf(domain.PermissionGetUsers, "userId")(okHandler(&called))

		rec := httptest.NewRecorder()
		handler(rec, withClaims(newRequest("43"), 42, domain.RoleAdmin))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}
