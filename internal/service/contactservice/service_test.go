package contactservice_test

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
	"landingapi/internal/service/contactservice"
)

// MockContactRepository é uma implementação mock da interface ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Save(ctx context.Context, submission domain.ContactSubmission) (domain.ContactSubmission, error) {
	args := m.Called(ctx, submission)
	return args.Get(0).(domain.ContactSubmission), args.Error(1)
}

func (m *MockContactRepository) FindAll(ctx context.Context, filter domain.ContactFilter, opts paginate.Options) ([]domain.ContactSubmission, int, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]domain.ContactSubmission), args.Int(1), args.Error(2)
}

func (m *MockContactRepository) FindByID(ctx context.Context, id int64) (domain.ContactSubmission, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ContactSubmission), args.Error(1)
}

func (m *MockContactRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestCreate_Success testa a criação de uma mensagem de contato.
func TestCreate_Success(t *testing.T) {
	mockRepo := new(MockContactRepository)
	mockLogger := logger.NewLogger("debug")

	svc := contactservice.NewService(mockRepo, mockLogger)

	create := domain.ContactSubmissionCreate{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "Hello",
		Message: "I'd like to know more about your services.",
	}
	expected := domain.ContactSubmission{
		ID:      1,
		Name:    create.Name,
		Email:   create.Email,
		Subject: create.Subject,
		Message: create.Message,
	}

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(s domain.ContactSubmission) bool {
		return s.ID == 0 && s.Email == create.Email && s.Subject == create.Subject
	})).Return(expected, nil)

	created, err := svc.Create(context.Background(), create)

	assert.NoError(t, err)
	assert.Equal(t, expected, created)
	mockRepo.AssertExpectations(t)
}

// TestList_Success testa a montagem do envelope de paginação.
func TestList_Success(t *testing.T) {
	mockRepo := new(MockContactRepository)
	mockLogger := logger.NewLogger("debug")

	svc := contactservice.NewService(mockRepo, mockLogger)

	submissions := []domain.ContactSubmission{
		{ID: 1, Email: "a@example.com"},
		{ID: 2, Email: "b@example.com"},
	}

	// O serviço normaliza page/limit antes de consultar o repositório.
	mockRepo.On("FindAll", mock.Anything, domain.ContactFilter{}, paginate.Options{Page: 1, Limit: 10}).
		Return(submissions, 12, nil)

	page, err := svc.List(context.Background(), domain.ContactFilter{}, paginate.Options{})

	assert.NoError(t, err)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 12, page.TotalResults)
	mockRepo.AssertExpectations(t)
}

// TestGetByID_NotFound testa a propagação do NotFoundError do repositório.
func TestGetByID_NotFound(t *testing.T) {
	mockRepo := new(MockContactRepository)
	mockLogger := logger.NewLogger("debug")

	svc := contactservice.NewService(mockRepo, mockLogger)

	notFound := apperror.NewNotFoundError("Contact submission not found")
	mockRepo.On("FindByID", mock.Anything, int64(99)).Return(domain.ContactSubmission{}, notFound)

	_, err := svc.GetByID(context.Background(), 99)

	assert.Error(t, err)
	var nfErr *apperror.NotFoundError
	assert.True(t, errors.As(err, &nfErr))
	mockRepo.AssertExpectations(t)
}

// TestDeleteByID_Success testa que a exclusão retorna o estado anterior do recurso.
func TestDeleteByID_Success(t *testing.T) {
	mockRepo := new(MockContactRepository)
	mockLogger := logger.NewLogger("debug")

	svc := contactservice.NewService(mockRepo, mockLogger)

	existing := domain.ContactSubmission{ID: 7, Email: "jane@example.com"}
	mockRepo.On("FindByID", mock.Anything, int64(7)).Return(existing, nil)
	mockRepo.On("Delete", mock.Anything, int64(7)).Return(nil)

	deleted, err := svc.DeleteByID(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, existing, deleted)
	mockRepo.AssertExpectations(t)
}

// TestDeleteByID_SecondDeleteFails testa que excluir um id já removido resulta
// em NotFoundError, nunca em um no-op silencioso.
func TestDeleteByID_SecondDeleteFails(t *testing.T) {
	mockRepo := new(MockContactRepository)
	mockLogger := logger.NewLogger("debug")

	svc := contactservice.NewService(mockRepo, mockLogger)

	notFound := apperror.NewNotFoundError("Contact submission not found")
	mockRepo.On("FindByID", mock.Anything, int64(7)).Return(domain.ContactSubmission{}, notFound)

	_, err := svc.DeleteByID(context.Background(), 7)

	assert.Error(t, err)
	var nfErr *apperror.NotFoundError
	assert.True(t, errors.As(err, &nfErr))
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
