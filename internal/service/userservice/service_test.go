package userservice_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/paginate"
	"landingapi/internal/pkg/token"
	"landingapi/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter domain.UserFilter, opts paginate.Options) ([]domain.User, int, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenService é uma implementação mock da camada de token
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID int64, userRole string) (string, error) {
	args := m.Called(userID, userRole)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.CustomClaims), args.Error(1)
}

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

func newTestService(repo *MockUserRepository, tokenSvc *MockTokenService, cacheClient *MockCacheClient) *userservice.Service {
	return userservice.NewService(repo, tokenSvc, cacheClient, logger.NewLogger("debug"))
}

// TestRegister_Success testa o signup público: papel sempre USER, senha com hash,
// token emitido na sequência.
func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	saved := domain.User{ID: 1, Email: "jane@example.com", Name: "Jane", Role: domain.RoleUser}

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		// A senha nunca é persistida em claro e o papel é sempre USER.
		hashOK := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("passw0rd")) == nil
		return u.Role == domain.RoleUser && u.PasswordHash != "passw0rd" && hashOK
	})).Return(saved, nil)
	mockToken.On("GenerateToken", int64(1), "USER").Return("signed-token", nil)

	user, tokenString, err := svc.Register(context.Background(), domain.UserRegistration{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "passw0rd",
	})

	assert.NoError(t, err)
	assert.Equal(t, saved, user)
	assert.Equal(t, "signed-token", tokenString)
	mockRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

// TestRegister_DuplicateEmail testa a propagação do conflito de e-mail do repositório.
func TestRegister_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	conflict := apperror.NewConflictError("Email already taken")
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(domain.User{}, conflict)

	_, _, err := svc.Register(context.Background(), domain.UserRegistration{
		Name:     "Jane",
		Email:    "dup@example.com",
		Password: "passw0rd",
	})

	assert.Error(t, err)
	var conflictErr *apperror.ConflictError
	assert.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "Email already taken", err.Error())
	mockToken.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

// TestLogin_Success testa o login com credenciais corretas.
func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	hash, _ := bcrypt.GenerateFromPassword([]byte("passw0rd"), bcrypt.DefaultCost)
	stored := domain.User{ID: 3, Email: "jane@example.com", PasswordHash: string(hash), Role: domain.RoleAdmin}

	mockRepo.On("FindByEmail", mock.Anything, "jane@example.com").Return(stored, nil)
	mockToken.On("GenerateToken", int64(3), "ADMIN").Return("signed-token", nil)

	user, tokenString, err := svc.Login(context.Background(), "jane@example.com", "passw0rd")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "signed-token", tokenString)
	mockRepo.AssertExpectations(t)
}

// TestLogin_UnknownEmail testa que e-mail inexistente produz o mesmo erro
// genérico de credenciais, sem revelar quais e-mails existem.
func TestLogin_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	notFound := apperror.NewNotFoundError("User not found")
	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(domain.User{}, notFound)

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever1")

	assert.Error(t, err)
	var unauthorizedErr *apperror.UnauthorizedError
	assert.True(t, errors.As(err, &unauthorizedErr))
	assert.Equal(t, "Incorrect email or password", err.Error())
}

// TestLogin_WrongPassword testa a rejeição de senha incorreta com a mesma mensagem genérica.
func TestLogin_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	hash, _ := bcrypt.GenerateFromPassword([]byte("passw0rd"), bcrypt.DefaultCost)
	stored := domain.User{ID: 3, Email: "jane@example.com", PasswordHash: string(hash)}

	mockRepo.On("FindByEmail", mock.Anything, "jane@example.com").Return(stored, nil)

	_, _, err := svc.Login(context.Background(), "jane@example.com", "wrongpass1")

	assert.Error(t, err)
	assert.Equal(t, "Incorrect email or password", err.Error())
	mockToken.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

// TestLogout_AddsTokenToDenylist testa a revogação: o jti vai para a denylist
// com TTL limitado pela expiração original do token.
func TestLogout_AddsTokenToDenylist(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	claims := &token.CustomClaims{
		UserID: 3,
		Role:   "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		},
	}

	mockToken.On("ValidateToken", "the-token").Return(claims, nil)
	mockCache.On("Set", mock.Anything, token.DenylistPrefix+"jti-123", "1", mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= 30*time.Minute
	})).Return(nil)

	err := svc.Logout(context.Background(), "the-token")

	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
}

// TestLogout_InvalidToken testa que token inválido resulta em UnauthorizedError.
func TestLogout_InvalidToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	mockToken.On("ValidateToken", "garbage").Return(nil, errors.New("token inválido"))

	err := svc.Logout(context.Background(), "garbage")

	assert.Error(t, err)
	var unauthorizedErr *apperror.UnauthorizedError
	assert.True(t, errors.As(err, &unauthorizedErr))
	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateByID_PartialMerge testa o merge do PATCH: apenas os campos presentes
// no payload são alterados, com re-hash quando a senha muda.
func TestUpdateByID_PartialMerge(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	current := domain.User{ID: 5, Email: "old@example.com", Name: "Old Name", Role: domain.RoleUser, PasswordHash: "old-hash"}
	newName := "New Name"

	mockRepo.On("FindByID", mock.Anything, int64(5)).Return(current, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		// Só o nome muda; e-mail, papel e hash ficam intactos.
		return u.Name == newName && u.Email == "old@example.com" && u.PasswordHash == "old-hash" && u.Role == domain.RoleUser
	})).Return(domain.User{ID: 5, Email: "old@example.com", Name: newName, Role: domain.RoleUser}, nil)

	updated, err := svc.UpdateByID(context.Background(), 5, domain.UserUpdate{Name: &newName})

	assert.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	mockRepo.AssertExpectations(t)
}

// TestUserJSON_NeverExposesPasswordHash garante que a serialização da resposta
// nunca contém o hash da senha.
func TestUserJSON_NeverExposesPasswordHash(t *testing.T) {
	user := domain.User{ID: 1, Email: "jane@example.com", PasswordHash: "super-secret-hash", Name: "Jane"}

	raw, err := json.Marshal(user)

	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-hash")
	assert.NotContains(t, string(raw), "password")
}

// TestDeleteByID_ReturnsPriorState testa que a exclusão retorna o usuário removido.
func TestDeleteByID_ReturnsPriorState(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	mockCache := new(MockCacheClient)

	svc := newTestService(mockRepo, mockToken, mockCache)

	existing := domain.User{ID: 9, Email: "bye@example.com"}
	mockRepo.On("FindByID", mock.Anything, int64(9)).Return(existing, nil)
	mockRepo.On("Delete", mock.Anything, int64(9)).Return(nil)

	deleted, err := svc.DeleteByID(context.Background(), 9)

	assert.NoError(t, err)
	assert.Equal(t, existing, deleted)
	mockRepo.AssertExpectations(t)
}
