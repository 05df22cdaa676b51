package newsletterservice

import (
	"context"
	"errors"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/paginate"
)

// NewsletterRepository define o contrato que o Serviço de Newsletter espera da Persistência.
type NewsletterRepository interface {
	Save(ctx context.Context, subscriber domain.NewsletterSubscriber) (domain.NewsletterSubscriber, error)
	FindAll(ctx context.Context, filter domain.SubscriberFilter, opts paginate.Options) ([]domain.NewsletterSubscriber, int, error)
	FindByID(ctx context.Context, id int64) (domain.NewsletterSubscriber, error)
	FindByEmail(ctx context.Context, email string) (domain.NewsletterSubscriber, error)
	Delete(ctx context.Context, id int64) error
}

// Service implementa a lógica de negócio das inscrições de newsletter.
type Service struct {
	repo   NewsletterRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Newsletter.
func NewService(repo NewsletterRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Subscribe registra um novo e-mail na newsletter.
//
// A pré-checagem por e-mail dá a mensagem de conflito no caminho comum, mas a
// janela entre checagem e INSERT não é fechada aqui: duas inscrições
// concorrentes do mesmo e-mail passam ambas pela checagem, e é a constraint
// UNIQUE do banco que transforma a segunda INSERT no mesmo ConflictError.
func (s *Service) Subscribe(ctx context.Context, email string) (domain.NewsletterSubscriber, error) {
	s.logger.Debug("Iniciando inscrição de newsletter no serviço.", map[string]interface{}{"email": email})

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		s.logger.Info("Inscrição rejeitada: e-mail já inscrito.", map[string]interface{}{"email": email})
		return domain.NewsletterSubscriber{}, apperror.NewConflictError("Email already subscribed")
	}

	var notFoundErr *apperror.NotFoundError
	if !errors.As(err, &notFoundErr) {
		// Falha real de consulta (timeout, conexão); não prosseguir para o INSERT.
		return domain.NewsletterSubscriber{}, err
	}

	subscriber, err := s.repo.Save(ctx, domain.NewsletterSubscriber{Email: email})
	if err != nil {
		s.logger.Error("Falha ao salvar inscrição de newsletter.", err)
		return domain.NewsletterSubscriber{}, err
	}

	s.logger.Info("Inscrição de newsletter criada com sucesso.", map[string]interface{}{"id": subscriber.ID})
	return subscriber, nil
}

// List retorna uma página de inscritos com o envelope de paginação.
func (s *Service) List(ctx context.Context, filter domain.SubscriberFilter, opts paginate.Options) (paginate.Page[domain.NewsletterSubscriber], error) {
	opts = opts.Normalize()

	subscribers, totalResults, err := s.repo.FindAll(ctx, filter, opts)
	if err != nil {
		s.logger.Error("Falha ao listar inscritos de newsletter no repositório.", err)
		return paginate.Page[domain.NewsletterSubscriber]{}, err
	}

	return paginate.NewPage(subscribers, opts, totalResults), nil
}

// GetByID busca uma inscrição pelo ID (NotFoundError quando ausente).
func (s *Service) GetByID(ctx context.Context, id int64) (domain.NewsletterSubscriber, error) {
	subscriber, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.NewsletterSubscriber{}, err
	}
	return subscriber, nil
}

// DeleteByID confirma a existência, remove a inscrição e retorna o estado anterior.
func (s *Service) DeleteByID(ctx context.Context, id int64) (domain.NewsletterSubscriber, error) {
	s.logger.Debug("Iniciando exclusão de inscrição de newsletter no serviço.", map[string]interface{}{"id": id})

	subscriber, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.NewsletterSubscriber{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.NewsletterSubscriber{}, err
	}

	s.logger.Info("Inscrição de newsletter excluída.", map[string]interface{}{"id": id})
	return subscriber, nil
}
