package contactservice

import (
	"context"

	"landingapi/internal/domain"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/paginate"
)

// ContactRepository define o contrato que o Serviço de Contato espera da Persistência.
type ContactRepository interface {
	Save(ctx context.Context, submission domain.ContactSubmission) (domain.ContactSubmission, error)
	FindAll(ctx context.Context, filter domain.ContactFilter, opts paginate.Options) ([]domain.ContactSubmission, int, error)
	FindByID(ctx context.Context, id int64) (domain.ContactSubmission, error)
	Delete(ctx context.Context, id int64) error
}

// Service implementa a lógica de negócio das mensagens do formulário de contato.
type Service struct {
	repo   ContactRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Contato.
func NewService(repo ContactRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create registra uma nova mensagem do formulário de contato.
// O payload já chega validado pela camada de entrada (limites de tamanho, e-mail).
func (s *Service) Create(ctx context.Context, create domain.ContactSubmissionCreate) (domain.ContactSubmission, error) {
	s.logger.Debug("Iniciando criação de mensagem de contato no serviço.", map[string]interface{}{"email": create.Email})

	submission := domain.ContactSubmission{
		Name:    create.Name,
		Email:   create.Email,
		Subject: create.Subject,
		Message: create.Message,
	}

	created, err := s.repo.Save(ctx, submission)
	if err != nil {
		s.logger.Error("Falha ao criar mensagem de contato no repositório.", err)
		return domain.ContactSubmission{}, err
	}

	s.logger.Info("Mensagem de contato criada com sucesso.", map[string]interface{}{"id": created.ID})
	return created, nil
}

// List retorna uma página de mensagens com o envelope de paginação.
func (s *Service) List(ctx context.Context, filter domain.ContactFilter, opts paginate.Options) (paginate.Page[domain.ContactSubmission], error) {
	opts = opts.Normalize()

	submissions, totalResults, err := s.repo.FindAll(ctx, filter, opts)
	if err != nil {
		s.logger.Error("Falha ao listar mensagens de contato no repositório.", err)
		return paginate.Page[domain.ContactSubmission]{}, err
	}

	return paginate.NewPage(submissions, opts, totalResults), nil
}

// GetByID busca uma mensagem pelo ID (NotFoundError quando ausente).
func (s *Service) GetByID(ctx context.Context, id int64) (domain.ContactSubmission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.ContactSubmission{}, err // Erros do repositório já são NotFoundError ou DBError
	}
	return submission, nil
}

// DeleteByID confirma a existência, remove a mensagem e retorna o estado
// anterior. Id ausente resulta em NotFoundError — nunca um no-op silencioso.
func (s *Service) DeleteByID(ctx context.Context, id int64) (domain.ContactSubmission, error) {
	s.logger.Debug("Iniciando exclusão de mensagem de contato no serviço.", map[string]interface{}{"id": id})

	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.ContactSubmission{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.ContactSubmission{}, err
	}

	s.logger.Info("Mensagem de contato excluída.", map[string]interface{}{"id": id})
	return submission, nil
}
