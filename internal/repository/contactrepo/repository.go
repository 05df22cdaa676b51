package contactrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/paginate"
)

// sortableColumns é o conjunto fechado de campos ordenáveis da entidade
// (campo da API → coluna SQL). Nada fora desta lista chega ao ORDER BY.
var sortableColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"subject":   "subject",
	"createdAt": "created_at",
}

// selectColumns é a projeção fixa das respostas (allow-list por entidade).
const selectColumns = "id, name, email, subject, message, created_at"

// ContactRepository implementa a persistência das mensagens do formulário de contato.
type ContactRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewContactRepository cria e retorna uma nova instância do Repositório de Contato.
func NewContactRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *ContactRepository {
	return &ContactRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere uma nova mensagem de contato.
func (r *ContactRepository) Save(ctx context.Context, submission domain.ContactSubmission) (domain.ContactSubmission, error) {
	r.logger.Debug("Iniciando Save de mensagem de contato no repositório.", map[string]interface{}{"email": submission.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO contact_submissions (name, email, subject, message)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + selectColumns

	err := r.DB.QueryRowContext(ctxTimeout, query,
		submission.Name, submission.Email, submission.Subject, submission.Message,
	).Scan(
		&submission.ID, &submission.Name, &submission.Email,
		&submission.Subject, &submission.Message, &submission.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir mensagem de contato no DB.", err)
		return domain.ContactSubmission{}, apperror.NewDBError("Falha ao criar mensagem de contato", err)
	}

	r.logger.Info("Mensagem de contato salva com sucesso.", map[string]interface{}{"id": submission.ID})
	return submission, nil
}

// FindAll busca uma página de mensagens e o total de resultados do filtro.
// A query da página e o COUNT rodam concorrentemente (são leituras independentes).
func (r *ContactRepository) FindAll(ctx context.Context, filter domain.ContactFilter, opts paginate.Options) ([]domain.ContactSubmission, int, error) {
	r.logger.Debug("Iniciando FindAll de mensagens de contato.", map[string]interface{}{
		"page": opts.Page, "limit": opts.Limit, "sort_by": opts.SortBy,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where, args := buildWhere(filter)
	orderBy := opts.OrderClause(sortableColumns, "created_at")

	var (
		submissions  []domain.ContactSubmission
		totalResults int
	)

	g, gctx := errgroup.WithContext(ctxTimeout)

	g.Go(func() error {
		query := fmt.Sprintf(
			"SELECT %s FROM contact_submissions %s ORDER BY %s LIMIT $%d OFFSET $%d",
			selectColumns, where, orderBy, len(args)+1, len(args)+2,
		)
		pageArgs := append(append([]interface{}{}, args...), opts.Limit, opts.Skip())

		rows, err := r.DB.QueryContext(gctx, query, pageArgs...)
		if err != nil {
			return apperror.NewDBError("Falha ao buscar mensagens de contato", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s domain.ContactSubmission
			if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Subject, &s.Message, &s.CreatedAt); err != nil {
				return apperror.NewDBError("Falha ao mapear mensagem de contato do DB", err)
			}
			submissions = append(submissions, s)
		}
		if err := rows.Err(); err != nil {
			return apperror.NewDBError("Erro após iteração de mensagens de contato", err)
		}
		return nil
	})

	g.Go(func() error {
		query := "SELECT COUNT(*) FROM contact_submissions " + where
		if err := r.DB.QueryRowContext(gctx, query, args...).Scan(&totalResults); err != nil {
			return apperror.NewDBError("Falha ao contar mensagens de contato", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		r.logger.Error("Falha em FindAll de mensagens de contato.", err)
		return nil, 0, err
	}

	r.logger.Info("FindAll de mensagens de contato concluído.", map[string]interface{}{
		"returned": len(submissions), "total_results": totalResults,
	})
	return submissions, totalResults, nil
}

// FindByID busca uma mensagem de contato pelo ID.
func (r *ContactRepository) FindByID(ctx context.Context, id int64) (domain.ContactSubmission, error) {
	r.logger.Debug("Iniciando FindByID de mensagem de contato.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := "SELECT " + selectColumns + " FROM contact_submissions WHERE id = $1"

	var s domain.ContactSubmission
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&s.ID, &s.Name, &s.Email, &s.Subject, &s.Message, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Mensagem de contato não encontrada.", map[string]interface{}{"id": id})
		return domain.ContactSubmission{}, apperror.NewNotFoundError("Contact submission not found")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar mensagem de contato no DB.", err)
		return domain.ContactSubmission{}, apperror.NewDBError("Falha ao buscar mensagem de contato", err)
	}

	return s, nil
}

// Delete remove uma mensagem de contato pelo ID.
func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Debug("Iniciando Delete de mensagem de contato.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, "DELETE FROM contact_submissions WHERE id = $1", id)
	if err != nil {
		r.logger.Error("Falha ao deletar mensagem de contato do DB.", err)
		return apperror.NewDBError("Falha ao deletar mensagem de contato", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após Delete.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Mensagem de contato não encontrada para exclusão.", map[string]interface{}{"id": id})
		return apperror.NewNotFoundError("Contact submission not found")
	}

	r.logger.Info("Mensagem de contato deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// buildWhere monta a cláusula WHERE do conjunto fechado de filtros da entidade.
func buildWhere(filter domain.ContactFilter) (string, []interface{}) {
	if filter.Email == "" {
		return "", nil
	}
	return "WHERE email = $1", []interface{}{filter.Email}
}
