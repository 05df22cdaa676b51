package newsletterrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"landingapi/internal/domain"
	apperror "landingapi/internal/errors"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/paginate"
)

// uniqueViolation é o SQLSTATE de violação de constraint UNIQUE no PostgreSQL.
const uniqueViolation = "23505"

// sortableColumns é o conjunto fechado de campos ordenáveis da entidade.
var sortableColumns = map[string]string{
	"id":        "id",
	"email":     "email",
	"createdAt": "created_at",
}

const selectColumns = "id, email, created_at"

// NewsletterRepository implementa a persistência das inscrições de newsletter.
type NewsletterRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewNewsletterRepository cria e retorna uma nova instância do Repositório.
func NewNewsletterRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *NewsletterRepository {
	return &NewsletterRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere uma nova inscrição. A constraint UNIQUE(email) é a garantia real
// contra duplicatas: duas inscrições concorrentes para o mesmo e-mail passam
// ambas pela pré-checagem do serviço, e a segunda INSERT falha aqui com 23505,
// traduzida para o mesmo ConflictError da pré-checagem.
func (r *NewsletterRepository) Save(ctx context.Context, subscriber domain.NewsletterSubscriber) (domain.NewsletterSubscriber, error) {
	r.logger.Debug("Iniciando Save de inscrição de newsletter.", map[string]interface{}{"email": subscriber.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO newsletter_subscribers (email)
        VALUES ($1)
        RETURNING ` + selectColumns

	err := r.DB.QueryRowContext(ctxTimeout, query, subscriber.Email).Scan(
		&subscriber.ID, &subscriber.Email, &subscriber.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.logger.Info("Inscrição duplicada bloqueada pela constraint UNIQUE.", map[string]interface{}{"email": subscriber.Email})
			return domain.NewsletterSubscriber{}, apperror.NewConflictError("Email already subscribed")
		}
		r.logger.Error("Falha ao inserir inscrição de newsletter no DB.", err)
		return domain.NewsletterSubscriber{}, apperror.NewDBError("Falha ao criar inscrição de newsletter", err)
	}

	r.logger.Info("Inscrição de newsletter salva com sucesso.", map[string]interface{}{"id": subscriber.ID})
	return subscriber, nil
}

// FindAll busca uma página de inscritos e o total de resultados do filtro.
// Página e COUNT rodam concorrentemente.
func (r *NewsletterRepository) FindAll(ctx context.Context, filter domain.SubscriberFilter, opts paginate.Options) ([]domain.NewsletterSubscriber, int, error) {
	r.logger.Debug("Iniciando FindAll de inscritos de newsletter.", map[string]interface{}{
		"page": opts.Page, "limit": opts.Limit, "sort_by": opts.SortBy,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where, args := buildWhere(filter)
	orderBy := opts.OrderClause(sortableColumns, "created_at")

	var (
		subscribers  []domain.NewsletterSubscriber
		totalResults int
	)

	g, gctx := errgroup.WithContext(ctxTimeout)

	g.Go(func() error {
		query := fmt.Sprintf(
			"SELECT %s FROM newsletter_subscribers %s ORDER BY %s LIMIT $%d OFFSET $%d",
			selectColumns, where, orderBy, len(args)+1, len(args)+2,
		)
		pageArgs := append(append([]interface{}{}, args...), opts.Limit, opts.Skip())

		rows, err := r.DB.QueryContext(gctx, query, pageArgs...)
		if err != nil {
			return apperror.NewDBError("Falha ao buscar inscritos de newsletter", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s domain.NewsletterSubscriber
			if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
				return apperror.NewDBError("Falha ao mapear inscrito de newsletter do DB", err)
			}
			subscribers = append(subscribers, s)
		}
		if err := rows.Err(); err != nil {
			return apperror.NewDBError("Erro após iteração de inscritos de newsletter", err)
		}
		return nil
	})

	g.Go(func() error {
		query := "SELECT COUNT(*) FROM newsletter_subscribers " + where
		if err := r.DB.QueryRowContext(gctx, query, args...).Scan(&totalResults); err != nil {
			return apperror.NewDBError("Falha ao contar inscritos de newsletter", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		r.logger.Error("Falha em FindAll de inscritos de newsletter.", err)
		return nil, 0, err
	}

	r.logger.Info("FindAll de inscritos de newsletter concluído.", map[string]interface{}{
		"returned": len(subscribers), "total_results": totalResults,
	})
	return subscribers, totalResults, nil
}

// FindByID busca uma inscrição pelo ID.
func (r *NewsletterRepository) FindByID(ctx context.Context, id int64) (domain.NewsletterSubscriber, error) {
	r.logger.Debug("Iniciando FindByID de inscrição de newsletter.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := "SELECT " + selectColumns + " FROM newsletter_subscribers WHERE id = $1"

	var s domain.NewsletterSubscriber
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(&s.ID, &s.Email, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Inscrição de newsletter não encontrada.", map[string]interface{}{"id": id})
		return domain.NewsletterSubscriber{}, apperror.NewNotFoundError("Newsletter subscriber not found")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar inscrição de newsletter no DB.", err)
		return domain.NewsletterSubscriber{}, apperror.NewDBError("Falha ao buscar inscrição de newsletter", err)
	}

	return s, nil
}

// FindByEmail busca uma inscrição pelo e-mail (pré-checagem do subscribe).
func (r *NewsletterRepository) FindByEmail(ctx context.Context, email string) (domain.NewsletterSubscriber, error) {
	r.logger.Debug("Iniciando FindByEmail de inscrição de newsletter.", map[string]interface{}{"email": email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := "SELECT " + selectColumns + " FROM newsletter_subscribers WHERE email = $1"

	var s domain.NewsletterSubscriber
	err := r.DB.QueryRowContext(ctxTimeout, query, email).Scan(&s.ID, &s.Email, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewsletterSubscriber{}, apperror.NewNotFoundError("Newsletter subscriber not found")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar inscrição por e-mail no DB.", err)
		return domain.NewsletterSubscriber{}, apperror.NewDBError("Falha ao buscar inscrição por e-mail", err)
	}

	return s, nil
}

// Delete remove uma inscrição pelo ID.
func (r *NewsletterRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Debug("Iniciando Delete de inscrição de newsletter.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, "DELETE FROM newsletter_subscribers WHERE id = $1", id)
	if err != nil {
		r.logger.Error("Falha ao deletar inscrição de newsletter do DB.", err)
		return apperror.NewDBError("Falha ao deletar inscrição de newsletter", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após Delete.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Inscrição de newsletter não encontrada para exclusão.", map[string]interface{}{"id": id})
		return apperror.NewNotFoundError("Subscription not found")
	}

	r.logger.Info("Inscrição de newsletter deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}

func buildWhere(filter domain.SubscriberFilter) (string, []interface{}) {
	if filter.Email == "" {
		return "", nil
	}
	return "WHERE email = $1", []interface{}{filter.Email}
}
