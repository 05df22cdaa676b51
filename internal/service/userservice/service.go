package userservice

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/cache"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/paginate"
	"landingapi/internal/pkg/token"
)

// UserRepository define o contrato que o Serviço de Usuário espera da Persistência.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindAll(ctx context.Context, filter domain.UserFilter, opts paginate.Options) ([]domain.User, int, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID int64, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// Service implementa a lógica de negócio de usuários e o fluxo de autenticação.
type Service struct {
	repo     UserRepository
	tokenSvc TokenService
	cache    cache.Client
	logger   logger.Logger
}

// NewService cria uma nova instância do Serviço de Usuário.
func NewService(repo UserRepository, tokenSvc TokenService, cacheClient cache.Client, logger logger.Logger) *Service {
	return &Service{
		repo:     repo,
		tokenSvc: tokenSvc,
		cache:    cacheClient,
		logger:   logger,
	}
}

// --- Fluxo de autenticação (signup / login / logout) ---

// Register cadastra um usuário via signup público e já emite o token.
// O papel é sempre USER: o cliente não escolhe o próprio papel.
func (s *Service) Register(ctx context.Context, reg domain.UserRegistration) (domain.User, string, error) {
	s.logger.Debug("Iniciando registro de usuário no serviço.", map[string]interface{}{"email": reg.Email})

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	user, err := s.repo.Save(ctx, domain.User{
		Email:        reg.Email,
		PasswordHash: string(hash),
		Name:         reg.Name,
		Role:         domain.RoleUser,
	})
	if err != nil {
		// ConflictError (e-mail duplicado) e DBError já vêm tipados do repositório.
		return domain.User{}, "", err
	}

	tokenString, err := s.tokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return domain.User{}, "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Usuário registrado com sucesso.", map[string]interface{}{"user_id": user.ID})
	return user, tokenString, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	if email == "" || password == "" {
		return domain.User{}, "", apperror.NewUnauthorizedError("Incorrect email or password")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// NotFound vira Unauthorized para não revelar quais e-mails existem.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.User{}, "", apperror.NewUnauthorizedError("Incorrect email or password")
		}
		return domain.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", apperror.NewUnauthorizedError("Incorrect email or password")
	}

	tokenString, err := s.tokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return domain.User{}, "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login efetuado com sucesso.", map[string]interface{}{"user_id": user.ID})
	return user, tokenString, nil
}

// Logout revoga o token apresentado, colocando o jti na denylist do Redis até
// a expiração original. Token já expirado não precisa de denylist.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokenSvc.ValidateToken(tokenString)
	if err != nil {
		return apperror.NewUnauthorizedError("Please authenticate")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.cache.Set(ctx, token.DenylistPrefix+claims.ID, "1", ttl); err != nil {
		s.logger.Error("Falha ao registrar token na denylist.", err)
		return apperror.NewInternalError("Falha ao revogar token.", err)
	}

	s.logger.Info("Token revogado por logout.", map[string]interface{}{"user_id": claims.UserID})
	return nil
}

// --- CRUD administrativo de usuários ---

// CreateUser cria um usuário pelo endpoint administrativo (papel informado).
func (s *Service) CreateUser(ctx context.Context, create domain.UserCreate) (domain.User, error) {
	s.logger.Debug("Iniciando criação administrativa de usuário.", map[string]interface{}{"email": create.Email, "role": create.Role})

	hash, err := bcrypt.GenerateFromPassword([]byte(create.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	user, err := s.repo.Save(ctx, domain.User{
		Email:        create.Email,
		PasswordHash: string(hash),
		Name:         create.Name,
		Role:         create.Role,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário criado pelo admin.", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return user, nil
}

// List retorna uma página de usuários com o envelope de paginação.
func (s *Service) List(ctx context.Context, filter domain.UserFilter, opts paginate.Options) (paginate.Page[domain.User], error) {
	opts = opts.Normalize()

	users, totalResults, err := s.repo.FindAll(ctx, filter, opts)
	if err != nil {
		s.logger.Error("Falha ao listar usuários no repositório.", err)
		return paginate.Page[domain.User]{}, err
	}

	return paginate.NewPage(users, opts, totalResults), nil
}

// GetByID busca um usuário pelo ID (NotFoundError quando ausente).
func (s *Service) GetByID(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UpdateByID aplica uma atualização parcial: carrega o estado atual, faz o
// merge apenas dos campos presentes no payload e persiste a linha inteira.
func (s *Service) UpdateByID(ctx context.Context, id int64, update domain.UserUpdate) (domain.User, error) {
	s.logger.Debug("Iniciando atualização de usuário no serviço.", map[string]interface{}{"id": id})

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
		}
		user.PasswordHash = string(hash)
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.IsEmailVerified != nil {
		user.IsEmailVerified = *update.IsEmailVerified
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário atualizado.", map[string]interface{}{"id": updated.ID})
	return updated, nil
}

// DeleteByID confirma a existência, remove o usuário e retorna o estado anterior.
func (s *Service) DeleteByID(ctx context.Context, id int64) (domain.User, error) {
	s.logger.Debug("Iniciando exclusão de usuário no serviço.", map[string]interface{}{"id": id})

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário excluído.", map[string]interface{}{"id": id})
	return user, nil
}
