package userrepo

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
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

// selectColumns inclui password_hash apenas para consumo interno do serviço
// de autenticação; a struct User nunca o serializa (`json:"-"`).
const selectColumns = "id, email, password_hash, name, role, is_email_verified, created_at, updated_at"

// UserRepository implementa a persistência da entidade User.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo usuário no banco de dados.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO users (email, password_hash, name, role, is_email_verified)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + selectColumns

	err := r.DB.QueryRowContext(ctxTimeout, query,
		user.Email, user.PasswordHash, user.Name, user.Role, user.IsEmailVerified,
	).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.Role, &user.IsEmailVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.logger.Info("Cadastro com e-mail duplicado bloqueado pela constraint UNIQUE.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError("Email already taken")
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao criar usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindAll busca uma página de usuários e o total de resultados do filtro.
// Página e COUNT rodam concorrentemente.
func (r *UserRepository) FindAll(ctx context.Context, filter domain.UserFilter, opts paginate.Options) ([]domain.User, int, error) {
	r.logger.Debug("Iniciando FindAll de usuários.", map[string]interface{}{
		"page": opts.Page, "limit": opts.Limit, "sort_by": opts.SortBy,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where, args := buildWhere(filter)
	orderBy := opts.OrderClause(sortableColumns, "created_at")

	var (
		users        []domain.User
		totalResults int
	)

	g, gctx := errgroup.WithContext(ctxTimeout)

	g.Go(func() error {
		query := fmt.Sprintf(
			"SELECT %s FROM users %s ORDER BY %s LIMIT $%d OFFSET $%d",
			selectColumns, where, orderBy, len(args)+1, len(args)+2,
		)
		pageArgs := append(append([]interface{}{}, args...), opts.Limit, opts.Skip())

		rows, err := r.DB.QueryContext(gctx, query, pageArgs...)
		if err != nil {
			return apperror.NewDBError("Falha ao buscar usuários", err)
		}
		defer rows.Close()

		for rows.Next() {
			var u domain.User
			if err := rows.Scan(
				&u.ID, &u.Email, &u.PasswordHash, &u.Name,
				&u.Role, &u.IsEmailVerified, &u.CreatedAt, &u.UpdatedAt,
			); err != nil {
				return apperror.NewDBError("Falha ao mapear usuário do DB", err)
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			return apperror.NewDBError("Erro após iteração de usuários", err)
		}
		return nil
	})

	g.Go(func() error {
		query := "SELECT COUNT(*) FROM users " + where
		if err := r.DB.QueryRowContext(gctx, query, args...).Scan(&totalResults); err != nil {
			return apperror.NewDBError("Falha ao contar usuários", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		r.logger.Error("Falha em FindAll de usuários.", err)
		return nil, 0, err
	}

	r.logger.Info("FindAll de usuários concluído.", map[string]interface{}{
		"returned": len(users), "total_results": totalResults,
	})
	return users, totalResults, nil
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	r.logger.Debug("Iniciando FindByID de usuário.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := "SELECT " + selectColumns + " FROM users WHERE id = $1"

	var u domain.User
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name,
		&u.Role, &u.IsEmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Usuário não encontrado no DB.", map[string]interface{}{"id": id})
		return domain.User{}, apperror.NewNotFoundError("User not found")
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}

	return u, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail (fluxo de login).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByEmail de usuário.", map[string]interface{}{"email": email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := "SELECT " + selectColumns + " FROM users WHERE email = $1"

	var u domain.User
	err := r.DB.QueryRowContext(ctxTimeout, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name,
		&u.Role, &u.IsEmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("User with email '%s' not found", email))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário por e-mail", err)
	}

	return u, nil
}

// Update persiste o estado completo do usuário (o serviço aplica o merge do
// PATCH parcial sobre a linha carregada antes de chamar aqui).
func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Update de usuário.", map[string]interface{}{"id": user.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE users
        SET email = $1, password_hash = $2, name = $3, role = $4,
            is_email_verified = $5, updated_at = now()
        WHERE id = $6
        RETURNING ` + selectColumns

	err := r.DB.QueryRowContext(ctxTimeout, query,
		user.Email, user.PasswordHash, user.Name, user.Role, user.IsEmailVerified, user.ID,
	).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.Role, &user.IsEmailVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Usuário não encontrado para atualização.", map[string]interface{}{"id": user.ID})
		return domain.User{}, apperror.NewNotFoundError("User not found")
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.User{}, apperror.NewConflictError("Email already taken")
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao atualizar usuário", err)
	}

	r.logger.Info("Usuário atualizado com sucesso.", map[string]interface{}{"id": user.ID})
	return user, nil
}

// Delete remove um usuário pelo ID.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Debug("Iniciando Delete de usuário.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		r.logger.Error("Falha ao deletar usuário do DB.", err)
		return apperror.NewDBError("Falha ao deletar usuário", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após Delete.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Usuário não encontrado para exclusão.", map[string]interface{}{"id": id})
		return apperror.NewNotFoundError("User not found")
	}

	r.logger.Info("Usuário deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// buildWhere monta a cláusula WHERE do conjunto fechado de filtros da entidade.
func buildWhere(filter domain.UserFilter) (string, []interface{}) {
	where := ""
	var args []interface{}

	if filter.Name != "" {
		args = append(args, filter.Name)
		where = fmt.Sprintf("WHERE name = $%d", len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		clause := fmt.Sprintf("role = $%d", len(args))
		if where == "" {
			where = "WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	return where, args
}
