package newsletterservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/paginate"
	"landingapi/internal/service/newsletterservice"
)

// MockNewsletterRepository é uma implementação mock da interface NewsletterRepository
type MockNewsletterRepository struct {
	mock.Mock
}

func (m *MockNewsletterRepository) Save(ctx context.Context, subscriber domain.NewsletterSubscriber) (domain.NewsletterSubscriber, error) {
	args := m.Called(ctx, subscriber)
	return args.Get(0).(domain.NewsletterSubscriber), args.Error(1)
}

func (m *MockNewsletterRepository) FindAll(ctx context.Context, filter domain.SubscriberFilter, opts paginate.Options) ([]domain.NewsletterSubscriber, int, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]domain.NewsletterSubscriber), args.Int(1), args.Error(2)
}

func (m *MockNewsletterRepository) FindByID(ctx context.Context, id int64) (domain.NewsletterSubscriber, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.NewsletterSubscriber), args.Error(1)
}

func (m *MockNewsletterRepository) FindByEmail(ctx context.Context, email string) (domain.NewsletterSubscriber, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.NewsletterSubscriber), args.Error(1)
}

func (m *MockNewsletterRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestSubscribe_Success testa a inscrição de um e-mail novo.
func TestSubscribe_Success(t *testing.T) {
	mockRepo := new(MockNewsletterRepository)
	mockLogger := logger.NewLogger("debug")

	svc := newsletterservice.NewService(mockRepo, mockLogger)

	notFound := apperror.NewNotFoundError("Newsletter subscriber not found")
	expected := domain.NewsletterSubscriber{ID: 1, Email: "new@example.com"}

	mockRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(domain.NewsletterSubscriber{}, notFound)
	mockRepo.On("Save", mock.Anything, domain.NewsletterSubscriber{Email: "new@example.com"}).Return(expected, nil)

	subscriber, err := svc.Subscribe(context.Background(), "new@example.com")

	assert.NoError(t, err)
	assert.Equal(t, expected, subscriber)
	mockRepo.AssertExpectations(t)
}

// TestSubscribe_DuplicateEmail testa a rejeição de e-mail já inscrito.
func TestSubscribe_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockNewsletterRepository)
	mockLogger := logger.NewLogger("debug")

	svc := newsletterservice.NewService(mockRepo, mockLogger)

	existing := domain.NewsletterSubscriber{ID: 1, Email: "dup@example.com"}
	mockRepo.On("FindByEmail", mock.Anything, "dup@example.com").Return(existing, nil)

	_, err := svc.Subscribe(context.Background(), "dup@example.com")

	assert.Error(t, err)
	var conflictErr *apperror.ConflictError
	assert.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "Email already subscribed", err.Error())
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestSubscribe_RaceClosedByConstraint simula a corrida entre a pré-checagem e
// o INSERT: a checagem passa, mas a constraint UNIQUE do banco devolve o mesmo
// ConflictError visto no caminho comum.
func TestSubscribe_RaceClosedByConstraint(t *testing.T) {
	mockRepo := new(MockNewsletterRepository)
	mockLogger := logger.NewLogger("debug")

	svc := newsletterservice.NewService(mockRepo, mockLogger)

	notFound := apperror.NewNotFoundError("Newsletter subscriber not found")
	conflict := apperror.NewConflictError("Email already subscribed")

	mockRepo.On("FindByEmail", mock.Anything, "race@example.com").Return(domain.NewsletterSubscriber{}, notFound)
	mockRepo.On("Save", mock.Anything, domain.NewsletterSubscriber{Email: "race@example.com"}).
		Return(domain.NewsletterSubscriber{}, conflict)

	_, err := svc.Subscribe(context.Background(), "race@example.com")

	assert.Error(t, err)
	var conflictErr *apperror.ConflictError
	assert.True(t, errors.As(err, &conflictErr))
	mockRepo.AssertExpectations(t)
}

// TestSubscribe_LookupFailure testa que falha real de consulta não prossegue para o INSERT.
func TestSubscribe_LookupFailure(t *testing.T) {
	mockRepo := new(MockNewsletterRepository)
	mockLogger := logger.NewLogger("debug")

	svc := newsletterservice.NewService(mockRepo, mockLogger)

	dbErr := apperror.NewDBError("Falha na consulta de inscrição.", errors.New("connection refused"))
	mockRepo.On("FindByEmail", mock.Anything, "x@example.com").Return(domain.NewsletterSubscriber{}, dbErr)

	_, err := svc.Subscribe(context.Background(), "x@example.com")

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestDeleteByID_NotFound testa a exclusão de uma inscrição inexistente.
func TestDeleteByID_NotFound(t *testing.T) {
	mockRepo := new(MockNewsletterRepository)
	mockLogger := logger.NewLogger("debug")

	svc := newsletterservice.NewService(mockRepo, mockLogger)

	notFound := apperror.NewNotFoundError("Subscription not found")
	mockRepo.On("FindByID", mock.Anything, int64(42)).Return(domain.NewsletterSubscriber{}, notFound)

	_, err := svc.DeleteByID(context.Background(), 42)

	assert.Error(t, err)
	var nfErr *apperror.NotFoundError
	assert.True(t, errors.As(err, &nfErr))
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// TestList_EmptyPage testa o envelope para uma página sem resultados.
func TestList_EmptyPage(t *testing.T) {
	mockRepo := new(MockNewsletterRepository)
	mockLogger := logger.NewLogger("debug")

	svc := newsletterservice.NewService(mockRepo, mockLogger)

	mockRepo.On("FindAll", mock.Anything, domain.SubscriberFilter{}, paginate.Options{Page: 5, Limit: 10}).
		Return([]domain.NewsletterSubscriber{}, 14, nil)

	page, err := svc.List(context.Background(), domain.SubscriberFilter{}, paginate.Options{Page: 5, Limit: 10})

	assert.NoError(t, err)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 14, page.TotalResults)
	mockRepo.AssertExpectations(t)
}
